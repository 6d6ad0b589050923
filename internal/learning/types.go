package learning

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DefaultCategory is the bucket used when no category is given and the
// destination for data folded out of a deleted category.
const DefaultCategory = "general"

// legacyDefaultCategory is the default category name older clients send.
const legacyDefaultCategory = "기본"

// NormalizeCategory trims and NFC-normalizes the category and maps empty
// and legacy default names to DefaultCategory.
func NormalizeCategory(c string) string {
	c = norm.NFC.String(strings.TrimSpace(c))
	if c == "" || c == legacyDefaultCategory {
		return DefaultCategory
	}
	return strings.ToLower(c)
}

// QuizAttempt is one scored quiz submission. Attempts are immutable once
// saved; a newer attempt supersedes but never replaces an older one.
type QuizAttempt struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Category     string    `json:"category"`
	Sequence     int       `json:"testCount"`
	Score        int       `json:"score"`
	Total        int       `json:"total"`
	WrongIndices []int     `json:"wrongIndices"`
	TakenAt      time.Time `json:"takenAt"`

	// ProgressPercent is the smoothed progress recorded by the report
	// generated for this attempt.
	ProgressPercent float64 `json:"progressPercent"`
}

// Percent returns the raw score as a percentage of the total.
func (a QuizAttempt) Percent() float64 {
	if a.Total <= 0 {
		return 0
	}
	return 100 * float64(a.Score) / float64(a.Total)
}

// Note is a free-text study note.
type Note struct {
	Title    string    `json:"title" yaml:"title"`
	Content  string    `json:"content" yaml:"content"`
	Category string    `json:"category" yaml:"category"`
	Date     time.Time `json:"date" yaml:"date"`
}

// Record is a study log entry.
type Record struct {
	Subject  string    `json:"subject" yaml:"subject"`
	Category string    `json:"category" yaml:"category"`
	Memo     string    `json:"memo" yaml:"memo"`
	Date     time.Time `json:"date" yaml:"date"`
}

// Goal is a user's stated learning goal.
type Goal struct {
	Subject     string    `json:"subject" yaml:"subject"`
	Detail      string    `json:"detail" yaml:"detail"`
	TargetLevel string    `json:"targetLevel" yaml:"target_level"`
	StartDate   time.Time `json:"startDate" yaml:"start_date"`
	EndDate     time.Time `json:"endDate" yaml:"end_date"`
}

// Period returns the ISO-week key of t, e.g. "2026-W42". Progress summaries
// are kept one row per user per period.
func Period(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
