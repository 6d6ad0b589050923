package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLLMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Inspect recorded LLM requests",
	}

	var limit int
	var purpose string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent LLM requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			events, err := s.EventRepo().RecentLLMRequests(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			w := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(w, "No LLM requests recorded.")
				return nil
			}

			fmt.Fprintf(w, "%-5s  %-19s  %-22s  %-11s  %-24s  %6s  %6s  %7s  %s\n",
				"SEQ", "TIME", "PURPOSE", "PROVIDER", "MODEL", "IN", "OUT", "MS", "OK")
			fmt.Fprintln(w, strings.Repeat("─", 118))
			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				ok := "✓"
				if !e.Success {
					ok = "✗ " + e.ErrorMessage
				}
				fmt.Fprintf(w, "%-5d  %-19s  %-22s  %-11s  %-24s  %6d  %6d  %7d  %s\n",
					e.Sequence, e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Purpose, e.Provider, clip(e.Model, 24),
					e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Number of requests to show")
	list.Flags().StringVar(&purpose, "purpose", "", "Only show this purpose")

	cmd.AddCommand(list)
	return cmd
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
