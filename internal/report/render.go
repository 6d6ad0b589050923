package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abhisek/studyreport/internal/diagnosis"
)

// MaxWrongListed is how many wrong answers the narrative lists.
const MaxWrongListed = 5

const dateLayout = "2006-01-02"

//go:embed report.tmpl
var reportTemplate string

// Renderer turns a Report into narrative text for one locale. It is safe
// for concurrent use.
type Renderer struct {
	printer *message.Printer
	tmpl    *template.Template
}

// NewRenderer returns a Renderer for locale (e.g. "en", "ko-KR").
// Unsupported locales fall back to English.
func NewRenderer(locale string) (*Renderer, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	tag := language.English
	if locale != "" {
		requested, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
		_, idx, _ := language.NewMatcher(Supported).Match(requested)
		tag = Supported[idx]
	}
	p := message.NewPrinter(tag, message.Catalog(cat))

	funcs := template.FuncMap{
		"t": func(key string, args ...any) string { return p.Sprintf(key, args...) },
		"pct": func(v float64) string { return p.Sprintf("%.0f%%", v) },
		"signed": func(v float64) string { return fmt.Sprintf("%+.0f", v) },
		"date": func(v time.Time) string {
			if v.IsZero() {
				return "-"
			}
			return v.Format(dateLayout)
		},
		"join": func(v []string) string { return strings.Join(v, ", ") },
		"inc":  func(i int) int { return i + 1 },
		"deref": func(b *bool) bool { return b != nil && *b },
	}
	tmpl, err := template.New("report").Funcs(funcs).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{printer: p, tmpl: tmpl}, nil
}

type view struct {
	*Report
	TopWrong  []diagnosis.WrongAnswer
	MoreWrong int
}

// RenderTo writes the narrative for rep to w.
func (r *Renderer) RenderTo(w io.Writer, rep *Report) error {
	if rep == nil {
		_, err := io.WriteString(w, r.printer.Sprintf("No report available.")+"\n")
		return err
	}
	v := view{Report: rep, TopWrong: rep.WrongAnswers}
	if len(v.TopWrong) > MaxWrongListed {
		v.MoreWrong = len(v.TopWrong) - MaxWrongListed
		v.TopWrong = v.TopWrong[:MaxWrongListed]
	}
	if err := r.tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Render returns the narrative for rep. It never fails: if the template
// cannot be executed, a one-line score summary is returned instead.
func (r *Renderer) Render(rep *Report) string {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, rep); err != nil {
		return r.printer.Sprintf("%d of %d correct (%s)", rep.Score.Score, rep.Score.Total,
			r.printer.Sprintf("%.0f%%", rep.Score.Percent)) + "\n"
	}
	return buf.String()
}
