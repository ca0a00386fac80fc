package catalog

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"catalogcrawl/oops"
)

// Store is the durable side of the catalog. Load returns nil without an error when nothing has
// been persisted yet.
type Store interface {
	Load(ctx context.Context) (*Table, error)
	Save(ctx context.Context, table *Table) error
	Location() string
}

type CsvStore struct {
	Path string
}

func NewCsvStore(path string) *CsvStore {
	return &CsvStore{Path: path}
}

func (s *CsvStore) Location() string {
	return s.Path
}

func (s *CsvStore) Load(_ context.Context) (*Table, error) {
	return loadFile(s.Path, DecodeCsv)
}

func (s *CsvStore) Save(_ context.Context, table *Table) error {
	return writeFileAtomic(s.Path, func(w io.Writer) error {
		return EncodeCsv(w, table)
	})
}

func loadFile(path string, decode func(io.Reader) (*Table, error)) (*Table, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	defer file.Close()

	table, err := decode(bufio.NewReader(file))
	if err != nil {
		return nil, oops.Wrapf(err, "load %s", path)
	}
	return table, nil
}

// writeFileAtomic writes next to the target and renames over it, so readers see either the old
// table or the new one.
func writeFileAtomic(path string, write func(w io.Writer) error) (retErr error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oops.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return oops.Wrap(err)
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	buffered := bufio.NewWriter(tmp)
	if err := write(buffered); err != nil {
		return err
	}
	if err := buffered.Flush(); err != nil {
		return oops.Wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		return oops.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Wrap(err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return oops.Wrap(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return oops.Wrap(err)
	}
	return nil
}
