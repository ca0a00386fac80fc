package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"catalogcrawl/oops"
)

func EncodeCsv(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return oops.Wrap(err)
	}
	if table != nil {
		for _, record := range table.Records {
			id, _ := record.Id()
			row := []string{
				id,
				record.AssessmentName,
				record.Url,
				formatBool(record.RemoteTesting),
				formatBool(record.AdaptiveIrtSupport),
				record.TestType,
			}
			if err := writer.Write(row); err != nil {
				return oops.Wrap(err)
			}
		}
	}
	writer.Flush()
	return oops.Wrap(writer.Error())
}

// DecodeCsv maps columns by header name; extra columns are ignored and every published column
// must be present. Cells are kept as text, so identifiers like "007" survive a reload.
func DecodeCsv(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err == io.EOF {
		return nil, oops.New("catalog csv has no header")
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	header := make(map[string]int, len(headerRow))
	for idx, name := range headerRow {
		header[strings.TrimSpace(strings.ToLower(strings.TrimPrefix(name, "\ufeff")))] = idx
	}
	for _, column := range Columns {
		if _, ok := header[column]; !ok {
			return nil, oops.Newf("catalog csv is missing column %q", column)
		}
	}

	table := &Table{Records: nil}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, oops.Wrap(err)
		}
		record, err := decodeRow(header, row)
		if err != nil {
			return nil, oops.Wrapf(err, "catalog csv line %d", line)
		}
		table.Records = append(table.Records, record)
	}
	return table, nil
}

func decodeRow(header map[string]int, row []string) (Record, error) {
	remoteTesting, err := parseBool(valueAt(header, row, "remote_testing"))
	if err != nil {
		return Record{}, err
	}
	adaptive, err := parseBool(valueAt(header, row, "adaptive_irt_support"))
	if err != nil {
		return Record{}, err
	}

	var maybeId *string
	if id := valueAt(header, row, "id"); id != "" {
		maybeId = &id
	}
	return Record{
		MaybeId:            maybeId,
		Page:               0,
		AssessmentName:     valueAt(header, row, "assessment_name"),
		Url:                valueAt(header, row, "url"),
		RemoteTesting:      remoteTesting,
		AdaptiveIrtSupport: adaptive,
		TestType:           valueAt(header, row, "test_type"),
	}, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("expected Yes or No, got %q", raw)
	}
}
