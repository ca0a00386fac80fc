// Wraps zerolog logger, ensuring the timestamp goes in the beginning.
package log

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"catalogcrawl/oops"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.DurationFieldInteger = true
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}

type Options struct {
	Level   string
	Console bool
	File    string
}

type TimestampLogger struct {
	impl    zerolog.Logger
	closers []io.Closer
}

// New writes to stderr (human-readable when Console is set) and, if File is set, appends JSON lines
// to that file as well.
func New(opts Options) (*TimestampLogger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, oops.Wrapf(err, "log level")
		}
	}

	var stderr io.Writer = os.Stderr
	if opts.Console {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	writers := []io.Writer{stderr}
	var closers []io.Closer
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, oops.Wrap(err)
			}
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, oops.Wrap(err)
		}
		writers = append(writers, file)
		closers = append(closers, file)
	}

	impl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Stack().Logger()
	return &TimestampLogger{
		impl:    impl,
		closers: closers,
	}, nil
}

// NewWriter is for callers that own the destination, tests mostly.
func NewWriter(w io.Writer) *TimestampLogger {
	return &TimestampLogger{
		impl:    zerolog.New(w).With().Stack().Logger(),
		closers: nil,
	}
}

func (l *TimestampLogger) With(key, value string) *TimestampLogger {
	return &TimestampLogger{
		impl:    l.impl.With().Str(key, value).Logger(),
		closers: nil,
	}
}

func (l *TimestampLogger) Debug() *zerolog.Event {
	return l.impl.Debug().Timestamp()
}

func (l *TimestampLogger) Info() *zerolog.Event {
	return l.impl.Info().Timestamp()
}

func (l *TimestampLogger) Warn() *zerolog.Event {
	return l.impl.Warn().Timestamp()
}

func (l *TimestampLogger) Error() *zerolog.Event {
	return l.impl.Error().Timestamp()
}

func (l *TimestampLogger) Close() error {
	var firstErr error
	for _, closer := range l.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = oops.Wrap(err)
		}
	}
	l.closers = nil
	return firstErr
}
