package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Table names.
const (
	tableNotes     = "notes"
	tableRecords   = "records"
	tableGoals     = "goals"
	tableAttempts  = "quiz_attempts"
	tableSummaries = "progress_summaries"
	tableLLM       = "llm_requests"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		date INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS notes_user ON notes (user_id, category)`,
	`CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		date INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS records_user ON records (user_id, category)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		target_level TEXT NOT NULL DEFAULT '',
		start_date INTEGER NOT NULL DEFAULT 0,
		end_date INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS goals_user ON goals (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		test_count INTEGER NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		wrong_indices TEXT NOT NULL DEFAULT '[]',
		taken_at INTEGER NOT NULL,
		progress_percent REAL NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_attempts_user ON quiz_attempts (user_id, category, seq)`,
	`CREATE TABLE IF NOT EXISTS progress_summaries (
		user_id TEXT NOT NULL,
		period TEXT NOT NULL,
		overall_percent REAL NOT NULL DEFAULT 0,
		categories TEXT NOT NULL DEFAULT '[]',
		narrative TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, period)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}

// builder returns an ent SQL builder for the SQLite dialect.
func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Times are stored as unix milliseconds; zero means unset.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
