// Package store persists extracted records in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdxkit/clausewitz/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	kind         TEXT        NOT NULL,
	key          TEXT        NOT NULL,
	file         TEXT        NOT NULL,
	content_hash TEXT        NOT NULL,
	data         JSONB       NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (kind, key)
);
CREATE INDEX IF NOT EXISTS records_file_idx ON records (file);
`

const upsertSQL = `
INSERT INTO records (kind, key, file, content_hash, data)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (kind, key) DO UPDATE
SET file = EXCLUDED.file,
    content_hash = EXCLUDED.content_hash,
    data = EXCLUDED.data,
    updated_at = now()
`

// batchSize bounds the statements queued in one pgx.Batch.
const batchSize = 500

// Record is one extracted record ready for storage.
type Record struct {
	Kind string
	Key  string
	File string
	Hash string
	Data json.RawMessage
}

// Store writes records through a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	types.Logger
}

// Connect opens a pool for databaseURL and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(pool, logger), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, Logger: types.Logger{L: types.Component(logger, "store")}}
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the records table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.Log(slog.LevelDebug, "schema ensured")
	return nil
}

// Upsert inserts records, replacing those with the same kind and key.
// It returns the number of rows written.
func (s *Store) Upsert(ctx context.Context, records []Record) (int, error) {
	written := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		chunk := records[start:end]

		batch := &pgx.Batch{}
		for _, r := range chunk {
			batch.Queue(upsertSQL, r.Kind, r.Key, r.File, r.Hash, []byte(r.Data))
		}
		br := s.pool.SendBatch(ctx, batch)
		for _, r := range chunk {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return written, fmt.Errorf("upsert %s %q: %w", r.Kind, r.Key, err)
			}
			written += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return written, fmt.Errorf("close batch: %w", err)
		}
	}
	s.Log(slog.LevelInfo, "records upserted", slog.Int("records", written))
	return written, nil
}

// Count returns the number of stored records of kind, or of all kinds
// when kind is empty.
func (s *Store) Count(ctx context.Context, kind string) (int, error) {
	var n int
	var err error
	if kind == "" {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM records WHERE kind = $1`, kind).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
