package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyreport/internal/ui/components"
)

func newProgressCmd() *cobra.Command {
	var (
		userID string
		width  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a user's progress across categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.engine.Progress(ctx, userID)
			if err != nil {
				return err
			}
			w := output(cmd)
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			fmt.Fprintln(w, components.ProgressSummary(summary, width))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&userID, "user", "", "User ID")
	f.IntVar(&width, "width", 60, "Width of the progress bars")
	f.BoolVar(&asJSON, "json", false, "Print as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
