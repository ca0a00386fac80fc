package rundb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"catalogcrawl/oops/oopstest"

	"github.com/stretchr/testify/require"
)

func openTestDb(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	oopstest.RequireNoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSnapshots(t *testing.T) {
	db := openTestDb(t)

	maybeHtml, err := db.Snapshot("https://example.com/a")
	oopstest.RequireNoError(t, err)
	require.Nil(t, maybeHtml)

	oopstest.RequireNoError(t, db.PutSnapshot("https://example.com/a", "<p>one</p>"))
	oopstest.RequireNoError(t, db.PutSnapshot("https://example.com/a", "<p>two</p>"))
	oopstest.RequireNoError(t, db.PutSnapshot("https://example.com/b", "<p>b</p>"))

	maybeHtml, err = db.Snapshot("https://example.com/a")
	oopstest.RequireNoError(t, err)
	require.NotNil(t, maybeHtml)
	require.Equal(t, "<p>two</p>", *maybeHtml)

	count, err := db.SnapshotCount()
	oopstest.RequireNoError(t, err)
	require.Equal(t, 2, count)
}

func TestRuns(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	runs := []Run{
		{
			Id:             "first",
			StartedAt:      base,
			FinishedAt:     base.Add(time.Minute),
			PagesVisited:   3,
			RecordsScraped: 17,
			RecordsNew:     17,
			StopReason:     "end_of_catalog",
			Written:        true,
			StoreLocation:  "data/catalog.csv",
		},
		{
			Id:             "second",
			StartedAt:      base.Add(time.Hour),
			FinishedAt:     base.Add(time.Hour + time.Second),
			PagesVisited:   1,
			RecordsScraped: 0,
			RecordsNew:     0,
			StopReason:     "reached_known",
			Written:        false,
			StoreLocation:  "data/catalog.csv",
		},
	}
	for _, run := range runs {
		oopstest.RequireNoError(t, db.RecordRun(ctx, run))
	}

	listed, err := db.ListRuns(ctx, 10)
	oopstest.RequireNoError(t, err)
	require.Equal(t, []Run{runs[1], runs[0]}, listed)

	listed, err = db.ListRuns(ctx, 1)
	oopstest.RequireNoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "second", listed[0].Id)
}

func TestListRunsOrdersWithinOneSecond(t *testing.T) {
	db := openTestDb(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	offsets := []time.Duration{0, 500 * time.Millisecond, 50 * time.Millisecond, 999999999}
	for i, offset := range offsets {
		oopstest.RequireNoError(t, db.RecordRun(ctx, Run{
			Id:             fmt.Sprintf("run-%d", i),
			StartedAt:      base.Add(offset),
			FinishedAt:     base.Add(offset),
			PagesVisited:   0,
			RecordsScraped: 0,
			RecordsNew:     0,
			StopReason:     "end_of_catalog",
			Written:        false,
			StoreLocation:  "data/catalog.csv",
		}))
	}

	listed, err := db.ListRuns(ctx, 10)
	oopstest.RequireNoError(t, err)
	var ids []string
	for _, run := range listed {
		ids = append(ids, run.Id)
	}
	require.Equal(t, []string{"run-3", "run-1", "run-2", "run-0"}, ids)
	require.True(t, listed[0].StartedAt.Equal(base.Add(999999999)))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path)
	oopstest.RequireNoError(t, err)
	oopstest.RequireNoError(t, db.PutSnapshot("u", "html"))
	oopstest.RequireNoError(t, db.Close())

	db, err = Open(path)
	oopstest.RequireNoError(t, err)
	defer db.Close()
	maybeHtml, err := db.Snapshot("u")
	oopstest.RequireNoError(t, err)
	require.Equal(t, "html", *maybeHtml)
}
