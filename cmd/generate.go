package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyreport/internal/engine"
	"github.com/abhisek/studyreport/internal/ui/components"
	"github.com/abhisek/studyreport/internal/ui/theme"
)

func newGenerateCmd() *cobra.Command {
	var (
		req    engine.GenerateRequest
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Record a quiz result and print its report",
		Example: "  studyreport generate --user alice --category programming --score 7 --total 10 --wrong 2,5,9",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.engine.GenerateReport(ctx, req)
			var pe *engine.PersistenceError
			if err != nil && !(errors.As(err, &pe) && rep != nil) {
				return err
			}

			w := output(cmd)
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(rep); encErr != nil {
					return encErr
				}
			} else {
				fmt.Fprintln(w, rep.Narrative)
				if len(rep.Badges) > 0 {
					fmt.Fprintln(w, components.BadgeList(rep.Badges))
				}
			}
			if pe != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), theme.Warn.Render("warning: report was not saved: "+pe.Error()))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.UserID, "user", "", "User ID")
	f.StringVar(&req.Category, "category", "", "Learning category (default general)")
	f.IntVar(&req.Score, "score", 0, "Number of correct answers")
	f.IntVar(&req.Total, "total", 0, "Number of questions")
	f.IntSliceVar(&req.WrongIndices, "wrong", nil, "Zero-based indices of wrongly answered questions")
	f.IntVar(&req.Sequence, "seq", 0, "Test number within the category (0 = next)")
	f.BoolVar(&asJSON, "json", false, "Print the structured report as JSON")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}
