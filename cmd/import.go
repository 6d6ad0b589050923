package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyreport/internal/engine"
	"github.com/abhisek/studyreport/internal/learning"
)

// fixture is the YAML layout accepted by the import command.
type fixture struct {
	User    string            `yaml:"user"`
	Goal    *learning.Goal    `yaml:"goal"`
	Notes   []learning.Note   `yaml:"notes"`
	Records []learning.Record `yaml:"records"`

	// Quizzes are replayed through report generation in order.
	Quizzes []fixtureQuiz `yaml:"quizzes"`
}

type fixtureQuiz struct {
	Category string `yaml:"category"`
	Score    int    `yaml:"score"`
	Total    int    `yaml:"total"`
	Wrong    []int  `yaml:"wrong"`
}

func parseFixture(data []byte) (*fixture, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.User == "" {
		return nil, errors.New("fixture: user is required")
	}
	return &f, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Load notes, records, a goal and quiz results from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fx, err := parseFixture(data)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := buildApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if fx.Goal != nil {
				if err := a.store.GoalRepo().SaveGoal(ctx, fx.User, *fx.Goal); err != nil {
					return err
				}
			}
			for _, n := range fx.Notes {
				if err := a.store.NoteRepo().AddNote(ctx, fx.User, n); err != nil {
					return err
				}
			}
			for _, r := range fx.Records {
				if err := a.store.RecordRepo().AddRecord(ctx, fx.User, r); err != nil {
					return err
				}
			}
			for i, q := range fx.Quizzes {
				_, err := a.engine.GenerateReport(ctx, engine.GenerateRequest{
					UserID:       fx.User,
					Category:     q.Category,
					Score:        q.Score,
					Total:        q.Total,
					WrongIndices: q.Wrong,
				})
				if err != nil {
					return fmt.Errorf("quiz %d: %w", i+1, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported for %s: %d notes, %d records, %d quizzes",
				fx.User, len(fx.Notes), len(fx.Records), len(fx.Quizzes))
			if fx.Goal != nil {
				fmt.Fprint(cmd.OutOrStdout(), ", 1 goal")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ".")
			return nil
		},
	}
}
