// Package rundb keeps rendered page snapshots and the history of crawl runs in a local SQLite file.
package rundb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"catalogcrawl/oops"

	_ "modernc.org/sqlite"
)

// Fixed width keeps text order equal to time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

type DB struct {
	db *sql.DB
}

type Run struct {
	Id             string
	StartedAt      time.Time
	FinishedAt     time.Time
	PagesVisited   int
	RecordsScraped int
	RecordsNew     int
	StopReason     string
	Written        bool
	StoreLocation  string
}

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, oops.Wrap(err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA synchronous = normal`,
		`PRAGMA busy_timeout = 1000`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, oops.Wrapf(err, "%s", pragma)
		}
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		create table if not exists page_snapshots (
			url text primary key,
			html text not null,
			captured_at text not null
		)
	`)
	if err != nil {
		return oops.Wrap(err)
	}
	_, err = db.Exec(`
		create table if not exists runs (
			id text primary key,
			started_at text not null,
			finished_at text not null,
			pages_visited integer not null,
			records_scraped integer not null,
			records_new integer not null,
			stop_reason text not null,
			written integer not null,
			store_location text not null
		)
	`)
	if err != nil {
		return oops.Wrap(err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) PutSnapshot(url string, html string) error {
	_, err := d.db.Exec(`
		insert into page_snapshots (url, html, captured_at) values (?, ?, ?)
		on conflict (url) do update set html = excluded.html, captured_at = excluded.captured_at
	`, url, html, time.Now().UTC().Format(timestampLayout))
	if err != nil {
		return oops.Wrap(err)
	}
	return nil
}

// Snapshot returns nil when the url was never captured.
func (d *DB) Snapshot(url string) (*string, error) {
	row := d.db.QueryRow(`select html from page_snapshots where url = ?`, url)
	var html string
	err := row.Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	return &html, nil
}

func (d *DB) SnapshotCount() (int, error) {
	var count int
	if err := d.db.QueryRow(`select count(*) from page_snapshots`).Scan(&count); err != nil {
		return 0, oops.Wrap(err)
	}
	return count, nil
}

func (d *DB) RecordRun(ctx context.Context, run Run) error {
	written := 0
	if run.Written {
		written = 1
	}
	_, err := d.db.ExecContext(ctx, `
		insert into runs (
			id, started_at, finished_at, pages_visited, records_scraped, records_new, stop_reason, written,
			store_location
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Id, run.StartedAt.UTC().Format(timestampLayout), run.FinishedAt.UTC().Format(timestampLayout),
		run.PagesVisited, run.RecordsScraped, run.RecordsNew, run.StopReason, written, run.StoreLocation,
	)
	if err != nil {
		return oops.Wrap(err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := d.db.QueryContext(ctx, `
		select
			id, started_at, finished_at, pages_visited, records_scraped, records_new, stop_reason, written,
			store_location
		from runs
		order by started_at desc, rowid desc
		limit ?
	`, limit)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finishedAt string
		var written int
		err := rows.Scan(
			&run.Id, &startedAt, &finishedAt, &run.PagesVisited, &run.RecordsScraped, &run.RecordsNew,
			&run.StopReason, &written, &run.StoreLocation,
		)
		if err != nil {
			return nil, oops.Wrap(err)
		}
		run.StartedAt, err = time.Parse(timestampLayout, startedAt)
		if err != nil {
			return nil, oops.Wrap(err)
		}
		run.FinishedAt, err = time.Parse(timestampLayout, finishedAt)
		if err != nil {
			return nil, oops.Wrap(err)
		}
		run.Written = written != 0
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Wrap(err)
	}
	return runs, nil
}
