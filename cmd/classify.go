package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	var userID, category string
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Show the topics the configured classifier derives",
		Long: "Classifies the given text, or with --user the user's stored notes and\n" +
			"records, using the keyword table or the configured LLM provider.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			text := strings.Join(args, " ")
			if userID != "" {
				snap := a.collector.Collect(ctx, userID, category)
				text = strings.TrimSpace(text + "\n" + snap.LearningText())
			}
			if text == "" {
				return errors.New("nothing to classify: pass text or --user")
			}

			got, err := a.engine.Classifier.Classify(ctx, text)
			if err != nil {
				return err
			}
			for i, t := range got {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Classify this user's notes and records")
	cmd.Flags().StringVar(&category, "category", "", "Limit --user text to one category")
	return cmd
}
