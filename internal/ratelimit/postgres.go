package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const createRateLimitTableSQL = `
CREATE TABLE IF NOT EXISTS callup_rate_limits (
	user_id TEXT PRIMARY KEY,
	last_submission_at TIMESTAMPTZ NOT NULL
)`

// checkAndReserveSQL is a conditional upsert: insert a fresh record, or
// update an existing one only when it is stale. The WHERE clause makes the
// decision and the write one statement, so concurrent submissions from the
// same user serialize on the row and at most one sees a returned row.
const checkAndReserveSQL = `
INSERT INTO callup_rate_limits (user_id, last_submission_at)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE
	SET last_submission_at = EXCLUDED.last_submission_at
	WHERE callup_rate_limits.last_submission_at <= $3
RETURNING last_submission_at`

const lastSubmissionSQL = `
SELECT last_submission_at FROM callup_rate_limits WHERE user_id = $1`

// PostgresStore is the Postgres-backed cooldown ledger.
type PostgresStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresStore connects to Postgres and ensures the ledger table exists.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultOpTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createRateLimitTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to create rate limit table: %w", err)
	}

	return &PostgresStore{db: db, timeout: defaultOpTimeout}, nil
}

// CheckAndReserve implements Store.
func (s *PostgresStore) CheckAndReserve(ctx context.Context, userID string, now time.Time, cooldown time.Duration) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cutoff := now.Add(-cooldown)

	var reservedAt time.Time
	err := s.db.QueryRowContext(ctx, checkAndReserveSQL, userID, now, cutoff).Scan(&reservedAt)
	if err == nil {
		return Outcome{Allowed: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Outcome{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// The upsert declined, so the record is inside the window. The follow-up
	// read only computes the advisory remaining time; a concurrent accepted
	// submission can only move last_submission_at forward, which never
	// re-opens the window this call already lost.
	var last time.Time
	if err := s.db.QueryRowContext(ctx, lastSubmissionSQL, userID).Scan(&last); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	remaining := cooldown - now.Sub(last)
	if remaining < 0 {
		remaining = 0
	}
	return Outcome{Remaining: remaining}, nil
}

// Ping checks whether the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
