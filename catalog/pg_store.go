package catalog

import (
	"context"
	"errors"

	"catalogcrawl/oops"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgTable = "catalog_records"

// PgStore keeps the table in postgres. A missing table reads as "never persisted".
type PgStore struct {
	pool *pgxpool.Pool
	dsn  string
}

func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return &PgStore{pool: pool, dsn: dsn}, nil
}

func (s *PgStore) Location() string {
	config, err := pgxpool.ParseConfig(s.dsn)
	if err != nil {
		return "postgres"
	}
	return "postgres://" + config.ConnConfig.Host + "/" + config.ConnConfig.Database + "#" + pgTable
}

func (s *PgStore) Close() {
	s.pool.Close()
}

func (s *PgStore) Load(ctx context.Context) (*Table, error) {
	rows, err := s.pool.Query(ctx, `
		select id, assessment_name, url, remote_testing, adaptive_irt_support, test_type
		from `+pgTable+`
		order by position
	`)
	if isUndefinedTable(err) {
		return nil, nil
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	defer rows.Close()

	table := &Table{Records: nil}
	for rows.Next() {
		var r Record
		err := rows.Scan(&r.MaybeId, &r.AssessmentName, &r.Url, &r.RemoteTesting, &r.AdaptiveIrtSupport, &r.TestType)
		if err != nil {
			return nil, oops.Wrap(err)
		}
		table.Records = append(table.Records, r)
	}
	if err := rows.Err(); isUndefinedTable(err) {
		return nil, nil
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	return table, nil
}

// Save replaces the whole table in one transaction.
func (s *PgStore) Save(ctx context.Context, table *Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Wrap(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		create table if not exists `+pgTable+` (
			position integer primary key,
			id text,
			assessment_name text not null,
			url text not null,
			remote_testing boolean not null,
			adaptive_irt_support boolean not null,
			test_type text not null
		)
	`)
	if err != nil {
		return oops.Wrap(err)
	}
	if _, err := tx.Exec(ctx, `delete from `+pgTable); err != nil {
		return oops.Wrap(err)
	}

	rows := make([][]any, 0, table.Len())
	for i, r := range table.Records {
		rows = append(rows, []any{
			i, r.MaybeId, r.AssessmentName, r.Url, r.RemoteTesting, r.AdaptiveIrtSupport, r.TestType,
		})
	}
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{pgTable},
		[]string{"position", "id", "assessment_name", "url", "remote_testing", "adaptive_irt_support", "test_type"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return oops.Wrap(err)
	}

	return oops.Wrap(tx.Commit(ctx))
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
