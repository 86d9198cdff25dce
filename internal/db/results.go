package db

import (
	"context"
	"fmt"

	"guardians/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultStore archives finished games and serves the leaderboard.
type ResultStore interface {
	RecordResult(ctx context.Context, r game.GameResult) error
	TopResults(ctx context.Context, limit int) ([]game.GameResult, error)
	Close() error
}

// Open picks a store: Postgres when databaseURL is set, else SQLite when sqlitePath is set, else Noop.
func Open(ctx context.Context, databaseURL, sqlitePath string) (ResultStore, error) {
	switch {
	case databaseURL != "":
		pool, err := Connect(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		store := NewPostgresResults(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	case sqlitePath != "":
		return NewSQLiteResults(sqlitePath)
	default:
		return Noop{}, nil
	}
}

type PostgresResults struct {
	pool *pgxpool.Pool
}

func NewPostgresResults(pool *pgxpool.Pool) *PostgresResults {
	return &PostgresResults{pool: pool}
}

func (s *PostgresResults) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_results (
			id              BIGSERIAL PRIMARY KEY,
			session_id      TEXT NOT NULL UNIQUE,
			days            INTEGER NOT NULL,
			portfolio_value DOUBLE PRECISION NOT NULL,
			peak_value      DOUBLE PRECISION NOT NULL,
			badges          INTEGER NOT NULL,
			coins           INTEGER NOT NULL,
			gems            INTEGER NOT NULL,
			stars           INTEGER NOT NULL,
			finished_at     TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate game_results: %w", err)
	}
	return nil
}

func (s *PostgresResults) RecordResult(ctx context.Context, r game.GameResult) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO game_results (session_id, days, portfolio_value, peak_value, badges, coins, gems, stars, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO NOTHING
	`, r.SessionID, r.Days, r.PortfolioValue, r.PeakValue, r.Badges, r.Coins, r.Gems, r.Stars, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}

func (s *PostgresResults) TopResults(ctx context.Context, limit int) ([]game.GameResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT session_id, days, portfolio_value, peak_value, badges, coins, gems, stars, finished_at
		FROM game_results
		ORDER BY portfolio_value DESC, finished_at ASC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.GameResult
	for rows.Next() {
		var r game.GameResult
		if err := rows.Scan(&r.SessionID, &r.Days, &r.PortfolioValue, &r.PeakValue, &r.Badges, &r.Coins, &r.Gems, &r.Stars, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresResults) Close() error {
	s.pool.Close()
	return nil
}

// Noop discards results.
type Noop struct{}

func (Noop) RecordResult(context.Context, game.GameResult) error { return nil }

func (Noop) TopResults(context.Context, int) ([]game.GameResult, error) { return nil, nil }

func (Noop) Close() error { return nil }

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
