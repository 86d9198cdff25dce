package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"guardians/internal/game"

	_ "modernc.org/sqlite"
)

// SQLiteResults keeps the results archive in a local SQLite file.
type SQLiteResults struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteResults(path string) (*SQLiteResults, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &SQLiteResults{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteResults) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS game_results (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id      TEXT NOT NULL UNIQUE,
			days            INTEGER NOT NULL,
			portfolio_value REAL NOT NULL,
			peak_value      REAL NOT NULL,
			badges          INTEGER NOT NULL,
			coins           INTEGER NOT NULL,
			gems            INTEGER NOT NULL,
			stars           INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_value ON game_results(portfolio_value)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteResults) RecordResult(ctx context.Context, r game.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_results (session_id, days, portfolio_value, peak_value, badges, coins, gems, stars, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.SessionID, r.Days, r.PortfolioValue, r.PeakValue, r.Badges, r.Coins, r.Gems, r.Stars, r.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}

func (s *SQLiteResults) TopResults(ctx context.Context, limit int) ([]game.GameResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, days, portfolio_value, peak_value, badges, coins, gems, stars, finished_at
		FROM game_results
		ORDER BY portfolio_value DESC, finished_at ASC
		LIMIT ?
	`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.GameResult
	for rows.Next() {
		var r game.GameResult
		var finished int64
		if err := rows.Scan(&r.SessionID, &r.Days, &r.PortfolioValue, &r.PeakValue, &r.Badges, &r.Coins, &r.Gems, &r.Stars, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteResults) Close() error {
	return s.db.Close()
}
