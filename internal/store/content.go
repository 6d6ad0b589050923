package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyreport/internal/learning"
)

type noteRepo struct {
	db *sql.DB
}

func (r *noteRepo) ListNotes(ctx context.Context, userID string) ([]learning.Note, error) {
	b := builder()
	query, args := b.Select("title", "content", "category", "date").
		From(b.Table(tableNotes)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("date"), entsql.Desc("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []learning.Note
	for rows.Next() {
		var n learning.Note
		var date int64
		if err := rows.Scan(&n.Title, &n.Content, &n.Category, &date); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.Date = fromMillis(date)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepo) AddNote(ctx context.Context, userID string, n learning.Note) error {
	query, args := builder().Insert(tableNotes).
		Columns("user_id", "title", "content", "category", "date").
		Values(userID, n.Title, n.Content, learning.NormalizeCategory(n.Category), toMillis(n.Date)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

type recordRepo struct {
	db *sql.DB
}

func (r *recordRepo) ListRecords(ctx context.Context, userID string) ([]learning.Record, error) {
	b := builder()
	query, args := b.Select("subject", "category", "memo", "date").
		From(b.Table(tableRecords)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("date"), entsql.Desc("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []learning.Record
	for rows.Next() {
		var rec learning.Record
		var date int64
		if err := rows.Scan(&rec.Subject, &rec.Category, &rec.Memo, &date); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Date = fromMillis(date)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *recordRepo) AddRecord(ctx context.Context, userID string, rec learning.Record) error {
	query, args := builder().Insert(tableRecords).
		Columns("user_id", "subject", "category", "memo", "date").
		Values(userID, rec.Subject, learning.NormalizeCategory(rec.Category), rec.Memo, toMillis(rec.Date)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

type goalRepo struct {
	db *sql.DB
}

func (r *goalRepo) LatestGoal(ctx context.Context, userID string) (*learning.Goal, error) {
	b := builder()
	query, args := b.Select("subject", "detail", "target_level", "start_date", "end_date").
		From(b.Table(tableGoals)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Limit(1).
		Query()

	var g learning.Goal
	var start, end int64
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&g.Subject, &g.Detail, &g.TargetLevel, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest goal: %w", err)
	}
	g.StartDate = fromMillis(start)
	g.EndDate = fromMillis(end)
	return &g, nil
}

func (r *goalRepo) SaveGoal(ctx context.Context, userID string, g learning.Goal) error {
	query, args := builder().Insert(tableGoals).
		Columns("user_id", "subject", "detail", "target_level", "start_date", "end_date", "created_at").
		Values(userID, g.Subject, g.Detail, g.TargetLevel, toMillis(g.StartDate), toMillis(g.EndDate), time.Now().UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}
