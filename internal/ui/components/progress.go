// Package components renders reusable pieces of CLI output.
package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyreport/internal/ui/theme"
)

const (
	filledCell = "█"
	emptyCell  = "░"
	minBar     = 4
)

// ProgressBar is a one-line bar for a 0-100 percentage.
type ProgressBar struct {
	Label      string
	LabelWidth int // pads the label so stacked bars line up
	Percent    float64
	Width      int // total width including label and percentage
}

// View renders the bar.
func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		b.WriteString(theme.Label.Render(label))
		b.WriteString(" ")
	}

	pct := min(max(p.Percent, 0), 100)
	suffix := fmt.Sprintf(" %3.0f%%", pct)
	barWidth := max(p.Width-lipgloss.Width(b.String())-len(suffix), minBar)
	filled := int(float64(barWidth) * pct / 100)

	fg := lipgloss.NewStyle().Foreground(theme.ForPercent(pct))
	b.WriteString(fg.Render(strings.Repeat(filledCell, filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat(emptyCell, barWidth-filled)))
	b.WriteString(fg.Bold(true).Render(suffix))
	return b.String()
}
