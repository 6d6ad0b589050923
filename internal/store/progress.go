package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyreport/internal/learning"
)

type progressRepo struct {
	db *sql.DB
}

func (r *progressRepo) GetSummary(ctx context.Context, userID string) (*learning.ProgressSummary, error) {
	b := builder()
	query, args := b.Select("user_id", "period", "overall_percent", "categories", "narrative", "version", "updated_at").
		From(b.Table(tableSummaries)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("period")).
		Limit(1).
		Query()

	var (
		s          learning.ProgressSummary
		categories string
		updatedAt  int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.UserID, &s.Period, &s.OverallPercent, &categories, &s.Narrative, &s.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress summary: %w", err)
	}
	if err := json.Unmarshal([]byte(categories), &s.Categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}

func (r *progressRepo) SaveSummary(ctx context.Context, s *learning.ProgressSummary) error {
	categories := s.Categories
	if categories == nil {
		categories = []learning.CategoryProgress{}
	}
	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	var (
		query string
		args  []any
	)
	if s.Version == 0 {
		query, args = builder().Insert(tableSummaries).
			Columns("user_id", "period", "overall_percent", "categories", "narrative", "version", "updated_at").
			Values(s.UserID, s.Period, s.OverallPercent, string(raw), s.Narrative, 1, toMillis(s.UpdatedAt)).
			OnConflict(entsql.ConflictColumns("user_id", "period"), entsql.DoNothing()).
			Query()
	} else {
		query, args = builder().Update(tableSummaries).
			Set("overall_percent", s.OverallPercent).
			Set("categories", string(raw)).
			Set("narrative", s.Narrative).
			Set("updated_at", toMillis(s.UpdatedAt)).
			Add("version", 1).
			Where(entsql.And(
				entsql.EQ("user_id", s.UserID),
				entsql.EQ("period", s.Period),
				entsql.EQ("version", s.Version),
			)).
			Query()
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save progress summary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save progress summary: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	s.Version++
	return nil
}

type categoryRepo struct {
	db *sql.DB
}

func (r *categoryRepo) ReassignCategory(ctx context.Context, userID, from, to string) (int64, error) {
	from = learning.NormalizeCategory(from)
	to = learning.NormalizeCategory(to)
	if from == to {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var moved int64
	for _, table := range []string{tableNotes, tableRecords, tableAttempts} {
		query, args := builder().Update(table).
			Set("category", to).
			Where(entsql.And(
				entsql.EQ("user_id", userID),
				entsql.EQ("category", from),
			)).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("reassign %s: %w", table, err)
		}
		if table == tableAttempts {
			if moved, err = res.RowsAffected(); err != nil {
				return 0, fmt.Errorf("reassign %s: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reassign: %w", err)
	}
	return moved, nil
}
