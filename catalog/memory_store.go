package catalog

import (
	"context"
	"slices"
)

// MemoryStore keeps the table in process and counts calls.
type MemoryStore struct {
	MaybeTable *Table
	LoadCount  int
	SaveCount  int
	LoadErr    error
	SaveErr    error
}

func NewMemoryStore(maybeTable *Table) *MemoryStore {
	return &MemoryStore{
		MaybeTable: maybeTable,
		LoadCount:  0,
		SaveCount:  0,
		LoadErr:    nil,
		SaveErr:    nil,
	}
}

func (s *MemoryStore) Location() string {
	return "memory"
}

func (s *MemoryStore) Load(_ context.Context) (*Table, error) {
	s.LoadCount++
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.MaybeTable == nil {
		return nil, nil
	}
	return &Table{Records: slices.Clone(s.MaybeTable.Records)}, nil
}

func (s *MemoryStore) Save(_ context.Context, table *Table) error {
	s.SaveCount++
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.MaybeTable = &Table{Records: slices.Clone(table.Records)}
	return nil
}
