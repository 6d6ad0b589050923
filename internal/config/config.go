// Package config assembles runtime settings from .env files, the process
// environment and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/studyreport/internal/llm"
	"github.com/abhisek/studyreport/internal/progress"
	"github.com/abhisek/studyreport/internal/retry"
)

const envPrefix = "STUDYREPORT_"

// Classifier modes.
const (
	ClassifierKeyword = "keyword"
	ClassifierLLM     = "llm"
)

// Config holds all runtime settings.
type Config struct {
	// DBPath is the SQLite database file. Empty means store.DefaultDBPath.
	DBPath string

	// Locale selects the narrative language: "en" or "ko".
	Locale string

	// LogMode is "dev" or "prod".
	LogMode string

	// RedisAddr enables the Redis-backed generation lock when set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// LockTTL bounds how long a generation lock survives a crashed holder.
	LockTTL time.Duration

	// HistoryLimit is how many recent attempts the collector reads.
	HistoryLimit int

	// PatternWindow is how many prior scores the pattern analyzer inspects.
	PatternWindow int

	HTTPAddr string

	// Classifier is "keyword" or "llm".
	Classifier string

	// TopicsFile optionally replaces the built-in keyword table.
	TopicsFile string

	SaveRetry retry.Config
	LLM       llm.Config
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Locale:        "en",
		LogMode:       "dev",
		LockTTL:       30 * time.Second,
		HistoryLimit:  10,
		PatternWindow: 5,
		HTTPAddr:      ":8080",
		Classifier:    ClassifierKeyword,
		SaveRetry: retry.Config{
			MaxAttempts: 3,
			InitialWait: 100 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Multiplier:  2.0,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load reads the given .env files (default ".env") into the environment and
// then builds a Config from it. Missing files are skipped; variables already
// set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := getenv("DB"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := getenv("LOG"); v != "" {
		cfg.LogMode = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("CLASSIFIER"); v != "" {
		cfg.Classifier = v
	}
	if v := getenv("TOPICS_FILE"); v != "" {
		cfg.TopicsFile = v
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", cfg.RedisDB); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit, err = intEnv("HISTORY_LIMIT", cfg.HistoryLimit); err != nil {
		return Config{}, err
	}
	if cfg.PatternWindow, err = intEnv("PATTERN_WINDOW", cfg.PatternWindow); err != nil {
		return Config{}, err
	}
	if cfg.LockTTL, err = durationEnv("LOCK_TTL", cfg.LockTTL); err != nil {
		return Config{}, err
	}

	cfg.LLM = llm.ConfigFromEnv()
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a request.
func (c Config) Validate() error {
	switch c.Locale {
	case "en", "ko":
	default:
		return fmt.Errorf("unsupported locale %q (want en or ko)", c.Locale)
	}
	switch c.LogMode {
	case "dev", "prod":
	default:
		return fmt.Errorf("unsupported log mode %q (want dev or prod)", c.LogMode)
	}
	switch c.Classifier {
	case ClassifierKeyword:
	case ClassifierLLM:
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("llm classifier: %w", err)
		}
	default:
		return fmt.Errorf("unknown classifier %q (want keyword or llm)", c.Classifier)
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("%sHISTORY_LIMIT must be positive, got %d", envPrefix, c.HistoryLimit)
	}
	if c.PatternWindow <= 0 {
		return fmt.Errorf("%sPATTERN_WINDOW must be positive, got %d", envPrefix, c.PatternWindow)
	}
	// The collected history feeds both the pattern and the delta windows.
	if need := max(c.PatternWindow, progress.DeltaWindow); c.HistoryLimit < need {
		return fmt.Errorf("%sHISTORY_LIMIT must be at least %d to fill the pattern and delta windows, got %d",
			envPrefix, need, c.HistoryLimit)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("%sLOCK_TTL must be positive, got %s", envPrefix, c.LockTTL)
	}
	return nil
}

func getenv(key string) string {
	return os.Getenv(envPrefix + key)
}

func intEnv(key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d, nil
}
