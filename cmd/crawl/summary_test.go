package crawl

import (
	"bytes"
	"testing"
	"time"

	"catalogcrawl/catalog"
	"catalogcrawl/crawler"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	result := &crawler.SyncResult{
		RunId:      "0b6f0b8e-7b8c-4a52-9b8f-3f1f6a0c2d11",
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
		Walk: &crawler.WalkResult{
			Records:      make([]catalog.Record, 14),
			NewIds:       []string{"N1", "N2"},
			PagesVisited: 3,
			LastPage:     2,
			StopReason:   crawler.StopReasonInconclusive,
		},
		Merge: &catalog.MergeResult{
			MaybeTable:   &catalog.Table{Records: make([]catalog.Record, 20)},
			NewCount:     2,
			SkippedKnown: 12,
			NilIds:       0,
			Written:      true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, encodeSummary(&buf, newSummary(result)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "inconclusive", decoded["stop_reason"])
	require.Equal(t, true, decoded["truncated"])
	require.Equal(t, float64(14), decoded["scraped"])
	require.Equal(t, float64(20), decoded["total"])
	require.Equal(t, []any{"N1", "N2"}, decoded["new_ids"])
	require.Equal(t, "2024-05-01T12:00:00Z", decoded["started_at"])
}
