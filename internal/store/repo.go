package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/studyreport/internal/learning"
)

// ErrVersionConflict is returned by ProgressRepo.SaveSummary when the stored
// summary changed since it was read.
var ErrVersionConflict = errors.New("progress summary version conflict")

// GoalRepo reads and writes learning goals.
type GoalRepo interface {
	// LatestGoal returns the most recently saved goal, or nil if none exist.
	LatestGoal(ctx context.Context, userID string) (*learning.Goal, error)

	SaveGoal(ctx context.Context, userID string, g learning.Goal) error
}

// NoteRepo reads and writes study notes.
type NoteRepo interface {
	ListNotes(ctx context.Context, userID string) ([]learning.Note, error)
	AddNote(ctx context.Context, userID string, n learning.Note) error
}

// RecordRepo reads and writes study records.
type RecordRepo interface {
	ListRecords(ctx context.Context, userID string) ([]learning.Record, error)
	AddRecord(ctx context.Context, userID string, r learning.Record) error
}

// StoredReport is a persisted report together with the attempt it belongs to.
type StoredReport struct {
	Attempt learning.QuizAttempt
	Report  json.RawMessage
}

// AttemptRepo is the quiz-log store.
type AttemptRepo interface {
	// ListRecentAttempts returns up to limit attempts, newest first.
	// An empty category lists attempts across all categories.
	ListRecentAttempts(ctx context.Context, userID, category string, limit int) ([]learning.QuizAttempt, error)

	// SaveAttemptAndReport stores the attempt and its rendered report in one
	// transaction. Saving the same attempt ID again is a no-op.
	SaveAttemptAndReport(ctx context.Context, a learning.QuizAttempt, report json.RawMessage) error

	// LatestReport returns the newest report in the category, or nil.
	LatestReport(ctx context.Context, userID, category string) (*StoredReport, error)

	// CountAttempts returns how many attempts the user has in the category.
	CountAttempts(ctx context.Context, userID, category string) (int, error)
}

// ProgressRepo is the progress-summary store.
type ProgressRepo interface {
	// GetSummary returns the user's most recent summary, or nil.
	GetSummary(ctx context.Context, userID string) (*learning.ProgressSummary, error)

	// SaveSummary writes s if the stored row still has s.Version, then
	// increments s.Version. A zero Version inserts a new period row.
	SaveSummary(ctx context.Context, s *learning.ProgressSummary) error
}

// CategoryRepo performs cross-table category maintenance.
type CategoryRepo interface {
	// ReassignCategory moves notes, records and attempts from one category
	// to another and returns the number of attempts moved.
	ReassignCategory(ctx context.Context, userID, from, to string) (int64, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// RecentLLMRequests returns up to limit events, newest first.
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error)
}
