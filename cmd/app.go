package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/abhisek/studyreport/internal/aggregate"
	"github.com/abhisek/studyreport/internal/collector"
	"github.com/abhisek/studyreport/internal/config"
	"github.com/abhisek/studyreport/internal/engine"
	"github.com/abhisek/studyreport/internal/llm"
	"github.com/abhisek/studyreport/internal/lock"
	"github.com/abhisek/studyreport/internal/logger"
	"github.com/abhisek/studyreport/internal/report"
	"github.com/abhisek/studyreport/internal/store"
	"github.com/abhisek/studyreport/internal/topics"
)

// app is the fully wired runtime shared by every command.
type app struct {
	cfg       config.Config
	log       *logger.Logger
	store     *store.Store
	locker    lock.Locker
	collector *collector.Collector
	engine    *engine.Engine
	closers   []func() error
}

// loadConfig reads .env and the environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("locale"); v != "" {
		cfg.Locale = v
	}
	if v, _ := cmd.Flags().GetString("log"); v != "" {
		cfg.LogMode = v
	}
	if cfg.DBPath == "" {
		if cfg.DBPath, err = store.DefaultDBPath(); err != nil {
			return config.Config{}, fmt.Errorf("resolve database path: %w", err)
		}
	} else if err := store.EnsureDir(cfg.DBPath); err != nil {
		return config.Config{}, fmt.Errorf("prepare database directory: %w", err)
	}
	return cfg, cfg.Validate()
}

// openStore opens only the database, for commands that need nothing else.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// buildApp wires config → logger → store → locker → classifier → renderer
// → collector → aggregator → engine.
func buildApp(ctx context.Context, cmd *cobra.Command) (a *app, err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.log, err = logger.New(cfg.LogMode); err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	a.closers = append(a.closers, func() error { a.log.Sync(); return nil })

	if a.store, err = store.Open(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, a.store.Close)

	if cfg.RedisAddr != "" {
		rl, err := lock.NewRedisLocker(ctx, a.log, lock.RedisOptions{
			Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.locker = rl
		a.closers = append(a.closers, rl.Close)
	} else {
		a.locker = lock.NewMemoryLocker()
	}

	classifier, err := newClassifier(ctx, cfg, a.log, a.store.EventRepo())
	if err != nil {
		return nil, err
	}
	renderer, err := report.NewRenderer(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	a.collector = collector.New(a.log, a.store.NoteRepo(), a.store.RecordRepo(), a.store.GoalRepo(),
		a.store.AttemptRepo(), cfg.HistoryLimit)
	agg := aggregate.New(a.log, a.store.ProgressRepo(), a.locker,
		aggregate.WithRetry(cfg.SaveRetry), aggregate.WithLockTTL(cfg.LockTTL))

	a.engine, err = engine.New(engine.Deps{
		Log:           a.log,
		Collector:     a.collector,
		Attempts:      a.store.AttemptRepo(),
		Summaries:     a.store.ProgressRepo(),
		Categories:    a.store.CategoryRepo(),
		Recorder:      agg,
		Locker:        a.locker,
		Classifier:    classifier,
		Renderer:      renderer,
		LockTTL:       cfg.LockTTL,
		SaveRetry:     cfg.SaveRetry,
		PatternWindow: cfg.PatternWindow,
		HistoryLimit:  cfg.HistoryLimit,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newClassifier(ctx context.Context, cfg config.Config, log *logger.Logger, events store.EventRepo) (topics.Classifier, error) {
	table, err := topics.LoadTable(cfg.TopicsFile)
	if err != nil {
		return nil, err
	}
	keyword := topics.NewKeywordClassifier(table)
	if cfg.Classifier != config.ClassifierLLM {
		return keyword, nil
	}
	provider, err := llm.NewProvider(ctx, cfg.LLM, events, log)
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	return topics.NewLLMClassifier(provider, keyword, log), nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// output downsamples styled text to what the destination supports, which
// is plain text when it is not a terminal.
func output(cmd *cobra.Command) io.Writer {
	return colorprofile.NewWriter(cmd.OutOrStdout(), os.Environ())
}
