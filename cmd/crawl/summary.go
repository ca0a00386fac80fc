package crawl

import (
	"io"
	"os"
	"time"

	"catalogcrawl/crawler"
	"catalogcrawl/oops"

	"github.com/goccy/go-json"
)

type summary struct {
	RunId        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	StopReason   string    `json:"stop_reason"`
	Truncated    bool      `json:"truncated"`
	PagesVisited int       `json:"pages_visited"`
	Scraped      int       `json:"scraped"`
	New          int       `json:"new"`
	SkippedKnown int       `json:"skipped_known"`
	NilIds       int       `json:"nil_ids"`
	Total        int       `json:"total"`
	Written      bool      `json:"written"`
	NewIds       []string  `json:"new_ids"`
}

func newSummary(result *crawler.SyncResult) summary {
	return summary{
		RunId:        result.RunId,
		StartedAt:    result.StartedAt,
		FinishedAt:   result.FinishedAt,
		StopReason:   string(result.Walk.StopReason),
		Truncated:    result.Truncated(),
		PagesVisited: result.Walk.PagesVisited,
		Scraped:      len(result.Walk.Records),
		New:          result.Merge.NewCount,
		SkippedKnown: result.Merge.SkippedKnown,
		NilIds:       result.Merge.NilIds,
		Total:        result.Merge.MaybeTable.Len(),
		Written:      result.Merge.Written,
		NewIds:       result.Walk.NewIds,
	}
}

func writeSummary(path string, result *crawler.SyncResult) (retErr error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return oops.Wrap(err)
		}
		defer func() {
			if err := file.Close(); err != nil && retErr == nil {
				retErr = oops.Wrap(err)
			}
		}()
		w = file
	}
	return encodeSummary(w, newSummary(result))
}

func encodeSummary(w io.Writer, s summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return oops.Wrap(err)
	}
	return nil
}
