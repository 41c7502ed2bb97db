package summarycache

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/docsummarizer/internal/domain/summarizer"
	"github.com/yanqian/docsummarizer/pkg/util"
)

const createTableSQL = `
	CREATE TABLE IF NOT EXISTS summary_cache (
		document_hash TEXT NOT NULL,
		mode          TEXT NOT NULL,
		summary       TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (document_hash, mode)
	)
`

// PostgresStore keeps one row per (document hash, mode).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the summary_cache table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, createTableSQL)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, hash string) (summarizer.Record, bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT mode, summary
		FROM summary_cache
		WHERE document_hash = $1
	`, hash)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	record := summarizer.Record{}
	for rows.Next() {
		var mode, summary string
		if err := rows.Scan(&mode, &summary); err != nil {
			return nil, false, err
		}
		record[mode] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(record) == 0 {
		return nil, false, nil
	}
	return record, true, nil
}

// Put upserts every mode of record in one transaction.
func (s *PostgresStore) Put(ctx context.Context, hash string, record summarizer.Record) error {
	now := util.NowUTC()
	batch := &pgx.Batch{}
	for mode, summary := range record {
		batch.Queue(`
			INSERT INTO summary_cache (document_hash, mode, summary, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (document_hash, mode)
			DO UPDATE SET summary = EXCLUDED.summary, updated_at = EXCLUDED.updated_at
		`, hash, mode, summary, now)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

var _ summarizer.Cache = (*PostgresStore)(nil)
