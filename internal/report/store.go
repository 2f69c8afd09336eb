package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"strings-sorter/internal/textutil"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS strings_sorter_runs (
	id           BIGSERIAL PRIMARY KEY,
	path         TEXT        NOT NULL,
	status       TEXT        NOT NULL,
	rows         INTEGER     NOT NULL,
	diagnostics  INTEGER     NOT NULL,
	content_hash TEXT,
	error        TEXT,
	duration_ms  BIGINT      NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertRun = `
INSERT INTO strings_sorter_runs (path, status, rows, diagnostics, content_hash, error, duration_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const latestRun = `
SELECT status, rows, diagnostics, content_hash
FROM strings_sorter_runs
WHERE path = $1
ORDER BY id DESC
LIMIT 1`

// Store records every outcome in PostgreSQL so runs can be audited later.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for databaseURL and verifies it is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Debug().Msg("Connected to PostgreSQL")
	return pool, nil
}

// EnsureSchema creates the runs table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("ensure runs table: %w", err)
	}
	return nil
}

func (s *Store) Report(ctx context.Context, o Outcome) error {
	var hash, errText *string
	if o.File != nil {
		h := textutil.Hash(o.File.Content)
		hash = &h
	}
	if o.Err != nil {
		e := o.Err.Error()
		errText = &e
	}

	_, err := s.pool.Exec(ctx, insertRun,
		o.Path,
		string(o.Status),
		o.Rows(),
		len(o.Diagnostics),
		hash,
		errText,
		o.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run for %s: %w", o.Path, err)
	}
	return nil
}

// runRecord is a stored outcome.
type runRecord struct {
	Status      Status
	Rows        int
	Diagnostics int
	ContentHash string
}

// latest returns the most recent record for path, or false if there is none.
func (s *Store) latest(ctx context.Context, path string) (runRecord, bool, error) {
	var (
		rec  runRecord
		hash *string
	)
	err := s.pool.QueryRow(ctx, latestRun, path).Scan(&rec.Status, &rec.Rows, &rec.Diagnostics, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return runRecord{}, false, nil
	}
	if err != nil {
		return runRecord{}, false, fmt.Errorf("latest run for %s: %w", path, err)
	}
	if hash != nil {
		rec.ContentHash = *hash
	}
	return rec, true, nil
}
