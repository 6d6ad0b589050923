package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "studyreport",
		Short: "Quiz progress tracking and study reports",
		Long: "studyreport turns quiz results into smoothed progress, topic mastery,\n" +
			"error analysis and a weekly action plan, per learning category.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides STUDYREPORT_DB)")
	pf.String("locale", "", "Report language: en or ko (overrides STUDYREPORT_LOCALE)")
	pf.String("log", "", "Log mode: dev or prod (overrides STUDYREPORT_LOG)")
	pf.String("env-file", "", "Load settings from this .env file instead of ./.env")

	root.AddCommand(
		newGenerateCmd(),
		newReportCmd(),
		newProgressCmd(),
		newImportCmd(),
		newCategoryCmd(),
		newClassifyCmd(),
		newServeCmd(),
		newLLMCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
