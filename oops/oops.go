// Errors that remember where they were first wrapped.
package oops

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type StackTracer interface {
	Error() string
	StackTrace() errors.StackTrace
}

type Error struct {
	Inner StackTracer
}

func (err *Error) Error() string {
	return err.Inner.Error()
}

// FullString is the message followed by one frame per line.
func (err *Error) FullString() string {
	var b strings.Builder
	b.WriteString(err.Inner.Error())
	for _, frame := range err.StackTrace() {
		frameText, _ := frame.MarshalText()
		b.WriteString("\n\t")
		b.Write(frameText)
	}
	return b.String()
}

func (err *Error) Is(target error) bool {
	return errors.Is(err.Inner, target)
}

func (err *Error) As(target any) bool {
	return errors.As(err.Inner, target)
}

func (err *Error) Unwrap() error {
	return errors.Unwrap(err.Inner)
}

func (err *Error) StackTrace() errors.StackTrace {
	return err.Inner.StackTrace()
}

// Wrap keeps an existing stack if there is one.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}

	return &Error{
		Inner: errors.WithStack(err).(StackTracer),
	}
}

func Wrapf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}

	inner := errors.Wrapf(err, format, a...)
	return &Error{
		Inner: inner.(StackTracer),
	}
}

func New(message string) error {
	return &Error{
		Inner: errors.New(message).(StackTracer),
	}
}

func Newf(format string, a ...any) error {
	return &Error{
		Inner: errors.WithStack(fmt.Errorf(format, a...)).(StackTracer),
	}
}

// FullString falls back to Error() for errors without a stack.
func FullString(err error) string {
	var oopsErr *Error
	if errors.As(err, &oopsErr) {
		return oopsErr.FullString()
	}
	return err.Error()
}
