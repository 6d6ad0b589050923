package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyreport/internal/badges"
	"github.com/abhisek/studyreport/internal/learning"
	"github.com/abhisek/studyreport/internal/ui/theme"
)

// ProgressSummary renders the overall bar followed by one bar per
// category with its quiz count and average score.
func ProgressSummary(s *learning.ProgressSummary, width int) string {
	if s == nil || len(s.Categories) == 0 {
		return theme.Hint.Render("No quiz results yet.")
	}

	labelWidth := len("overall")
	for _, c := range s.Categories {
		labelWidth = max(labelWidth, lipgloss.Width(c.Category))
	}

	lines := []string{
		theme.Title.Render(fmt.Sprintf("Progress for %s (%s)", s.UserID, s.Period)),
		ProgressBar{Label: "overall", LabelWidth: labelWidth, Percent: s.OverallPercent, Width: width}.View(),
		"",
	}
	for _, c := range s.Categories {
		bar := ProgressBar{Label: c.Category, LabelWidth: labelWidth, Percent: c.ProgressPercent, Width: width}
		detail := fmt.Sprintf("%*s %d quizzes, avg %.1f, last week %.0f%%",
			labelWidth, "", c.QuizCount, c.AverageScore, c.PreviousWeekPercent)
		lines = append(lines, bar.View(), theme.Hint.Render(detail))
	}
	return strings.Join(lines, "\n")
}

// BadgeList renders badges as colored chips on one line.
func BadgeList(list []badges.Badge) string {
	chips := make([]string, 0, len(list))
	for _, b := range list {
		style := lipgloss.NewStyle().Foreground(theme.ForRarity(b.Rarity)).Bold(true)
		chips = append(chips, style.Render(fmt.Sprintf("[%s · %s]", b.Name, b.Rarity.DisplayName())))
	}
	return strings.Join(chips, " ")
}

// Panel frames body under a heading.
func Panel(heading, body string) string {
	return theme.Card.Render(theme.Heading.Render(heading) + "\n" + body)
}
