package catalog

import (
	"slices"
	"strings"
)

// TestTypeNotAvailable stands in for a row whose test type cell yielded no codes.
const TestTypeNotAvailable = "N/A"

type Record struct {
	MaybeId            *string
	Page               int
	AssessmentName     string
	Url                string
	RemoteTesting      bool
	AdaptiveIrtSupport bool
	TestType           string
}

func (r Record) Id() (string, bool) {
	if r.MaybeId == nil {
		return "", false
	}
	return *r.MaybeId, true
}

func (r Record) IdString() string {
	if r.MaybeId == nil {
		return "<nil>"
	}
	return *r.MaybeId
}

// Published drops run-scoped fields.
func (r Record) Published() Record {
	r.Page = 0
	return r
}

func Id(id string) *string {
	return &id
}

// Columns is the persisted header, in order.
var Columns = []string{
	"id",
	"assessment_name",
	"url",
	"remote_testing",
	"adaptive_irt_support",
	"test_type",
}

type Table struct {
	Records []Record
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Ids lists non-nil identifiers in table order.
func (t *Table) Ids() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.Records))
	for _, record := range t.Records {
		if id, ok := record.Id(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Table) IsSortedByName() bool {
	if t == nil {
		return true
	}
	return slices.IsSortedFunc(t.Records, compareByName)
}

func compareByName(a, b Record) int {
	return strings.Compare(a.AssessmentName, b.AssessmentName)
}

func formatBool(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
