package catalog

import (
	"context"
	"io"

	"catalogcrawl/oops"

	"github.com/goccy/go-json"
)

type jsonRecord struct {
	Id                 *string `json:"id"`
	AssessmentName     string  `json:"assessment_name"`
	Url                string  `json:"url"`
	RemoteTesting      bool    `json:"remote_testing"`
	AdaptiveIrtSupport bool    `json:"adaptive_irt_support"`
	TestType           string  `json:"test_type"`
}

// JsonStore keeps the same columns as the csv layout, with null for a missing identifier.
type JsonStore struct {
	Path string
}

func NewJsonStore(path string) *JsonStore {
	return &JsonStore{Path: path}
}

func (s *JsonStore) Location() string {
	return s.Path
}

func (s *JsonStore) Load(_ context.Context) (*Table, error) {
	return loadFile(s.Path, decodeJson)
}

func (s *JsonStore) Save(_ context.Context, table *Table) error {
	return writeFileAtomic(s.Path, func(w io.Writer) error {
		return encodeJson(w, table)
	})
}

func encodeJson(w io.Writer, table *Table) error {
	records := make([]jsonRecord, 0, table.Len())
	if table != nil {
		for _, record := range table.Records {
			records = append(records, jsonRecord{
				Id:                 record.MaybeId,
				AssessmentName:     record.AssessmentName,
				Url:                record.Url,
				RemoteTesting:      record.RemoteTesting,
				AdaptiveIrtSupport: record.AdaptiveIrtSupport,
				TestType:           record.TestType,
			})
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return oops.Wrap(encoder.Encode(records))
}

func decodeJson(r io.Reader) (*Table, error) {
	var records []jsonRecord
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&records); err != nil {
		return nil, oops.Wrap(err)
	}

	table := &Table{Records: make([]Record, 0, len(records))}
	for _, record := range records {
		maybeId := record.Id
		if maybeId != nil && *maybeId == "" {
			maybeId = nil
		}
		table.Records = append(table.Records, Record{
			MaybeId:            maybeId,
			Page:               0,
			AssessmentName:     record.AssessmentName,
			Url:                record.Url,
			RemoteTesting:      record.RemoteTesting,
			AdaptiveIrtSupport: record.AdaptiveIrtSupport,
			TestType:           record.TestType,
		})
	}
	return table, nil
}
