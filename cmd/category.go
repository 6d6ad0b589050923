package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyreport/internal/learning"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage learning categories",
	}

	var userID string
	del := &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category, moving its data and progress into " + learning.DefaultCategory,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.DeleteCategory(ctx, userID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %q into %q.\n", learning.NormalizeCategory(args[0]), learning.DefaultCategory)
			return nil
		},
	}
	del.Flags().StringVar(&userID, "user", "", "User ID")
	_ = del.MarkFlagRequired("user")

	cmd.AddCommand(del)
	return cmd
}
