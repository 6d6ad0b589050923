package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyreport/internal/ui/components"
	"github.com/abhisek/studyreport/internal/ui/theme"
)

func newReportCmd() *cobra.Command {
	var (
		userID   string
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the latest report and recent history of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			view, err := a.engine.CategoryReport(ctx, userID, category)
			if err != nil {
				return err
			}

			w := output(cmd)
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			if view.LatestReport == nil {
				fmt.Fprintln(w, theme.Hint.Render(fmt.Sprintf("No reports in %q yet.", view.Category)))
				return nil
			}
			fmt.Fprintln(w, view.LatestReport.Narrative)

			if p := view.Progress; p != nil {
				fmt.Fprintln(w)
				fmt.Fprintln(w, components.ProgressBar{Label: "progress", Percent: p.ProgressPercent, Width: 48}.View())
			}
			if len(view.RecentHistory) > 0 {
				var b strings.Builder
				for _, h := range view.RecentHistory {
					fmt.Fprintf(&b, "#%-3d %s  %3d/%-3d  progress %5.1f%%\n",
						h.Sequence, h.TakenAt.Local().Format("2006-01-02"), h.Score, h.Total, h.ProgressPercent)
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, components.Panel("Recent attempts", strings.TrimRight(b.String(), "\n")))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "User ID")
	f.StringVar(&category, "category", "", "Learning category (default general)")
	f.BoolVar(&asJSON, "json", false, "Print as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
