package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyreport/internal/learning"
)

var attemptColumns = []string{
	"id", "user_id", "category", "test_count", "score", "total",
	"wrong_indices", "taken_at", "progress_percent",
}

type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func attemptFilter(userID, category string) *entsql.Predicate {
	if category == "" {
		return entsql.EQ("user_id", userID)
	}
	return entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("category", learning.NormalizeCategory(category)),
	)
}

func (r *attemptRepo) ListRecentAttempts(ctx context.Context, userID, category string, limit int) ([]learning.QuizAttempt, error) {
	b := builder()
	sel := b.Select(attemptColumns...).
		From(b.Table(tableAttempts)).
		Where(attemptFilter(userID, category)).
		OrderBy(entsql.Desc("seq"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []learning.QuizAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *attemptRepo) SaveAttemptAndReport(ctx context.Context, a learning.QuizAttempt, report json.RawMessage) error {
	wrong, err := json.Marshal(nonNilInts(a.WrongIndices))
	if err != nil {
		return fmt.Errorf("marshal wrong indices: %w", err)
	}
	if len(report) == 0 {
		report = json.RawMessage("{}")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return err
	}

	query, args := builder().Insert(tableAttempts).
		Columns(append([]string{"seq"}, append(attemptColumns, "report_json")...)...).
		Values(seq, a.ID, a.UserID, learning.NormalizeCategory(a.Category), a.Sequence, a.Score, a.Total,
			string(wrong), toMillis(a.TakenAt), a.ProgressPercent, string(report)).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) LatestReport(ctx context.Context, userID, category string) (*StoredReport, error) {
	b := builder()
	query, args := b.Select(append(attemptColumns, "report_json")...).
		From(b.Table(tableAttempts)).
		Where(attemptFilter(userID, category)).
		OrderBy(entsql.Desc("seq")).
		Limit(1).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		sr         StoredReport
		wrong      string
		takenAt    int64
		reportJSON string
	)
	a := &sr.Attempt
	if err := rows.Scan(&a.ID, &a.UserID, &a.Category, &a.Sequence, &a.Score, &a.Total,
		&wrong, &takenAt, &a.ProgressPercent, &reportJSON); err != nil {
		return nil, fmt.Errorf("scan latest report: %w", err)
	}
	if err := json.Unmarshal([]byte(wrong), &a.WrongIndices); err != nil {
		return nil, fmt.Errorf("decode wrong indices: %w", err)
	}
	a.TakenAt = fromMillis(takenAt)
	sr.Report = json.RawMessage(reportJSON)
	return &sr, nil
}

func (r *attemptRepo) CountAttempts(ctx context.Context, userID, category string) (int, error) {
	b := builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(tableAttempts)).
		Where(attemptFilter(userID, category)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func scanAttempt(rows *sql.Rows) (learning.QuizAttempt, error) {
	var (
		a       learning.QuizAttempt
		wrong   string
		takenAt int64
	)
	if err := rows.Scan(&a.ID, &a.UserID, &a.Category, &a.Sequence, &a.Score, &a.Total,
		&wrong, &takenAt, &a.ProgressPercent); err != nil {
		return a, fmt.Errorf("scan attempt: %w", err)
	}
	if err := json.Unmarshal([]byte(wrong), &a.WrongIndices); err != nil {
		return a, fmt.Errorf("decode wrong indices: %w", err)
	}
	a.TakenAt = fromMillis(takenAt)
	return a, nil
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
