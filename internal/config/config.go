// Package config gathers the application configuration from the
// environment into one explicit struct. No package-level state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/vocabsrs/internal/personalization"
	"github.com/example/vocabsrs/internal/srs"
	"github.com/example/vocabsrs/pkg/models"
)

// Config is the full application configuration.
type Config struct {
	// DBDriver selects the store backend: "sqlite3" or "postgres".
	DBDriver string
	// DBDSN is the connection string; for sqlite3 it is the file path.
	DBDSN string

	// Default session goals for the study loop.
	Goals models.SessionGoals

	// Tuning parameters for the scheduling algorithm and the
	// personalization tracker.
	SRS             srs.Params
	Personalization personalization.Config

	// RemindersEnabled turns the hourly due-count reminder job on.
	RemindersEnabled bool
}

// Load reads .env if present, then the process environment. Missing
// variables fall back to defaults; malformed values are an error.
func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		DBDriver: getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:    getEnv("DB_DSN", "data/vocabsrs.db"),
	}

	var err error
	if cfg.Goals.NewItemTarget, err = getEnvInt("SESSION_NEW_TARGET", 5); err != nil {
		return Config{}, err
	}
	if cfg.Goals.ReviewTarget, err = getEnvInt("SESSION_REVIEW_TARGET", 20); err != nil {
		return Config{}, err
	}
	if cfg.Goals.TimeBudget, err = getEnvDuration("SESSION_TIME_BUDGET", 15*time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.SRS.MasteryRepetitions, err = getEnvInt("SRS_MASTERY_REPETITIONS", 8); err != nil {
		return Config{}, err
	}
	if cfg.SRS.MasteryEase, err = getEnvFloat("SRS_MASTERY_EASE", 2.8); err != nil {
		return Config{}, err
	}
	if cfg.SRS.MaxIntervalDays, err = getEnvInt("SRS_MAX_INTERVAL_DAYS", 365); err != nil {
		return Config{}, err
	}
	if cfg.SRS.DifficultyWeight, err = getEnvFloat("SRS_DIFFICULTY_WEIGHT", 0.3); err != nil {
		return Config{}, err
	}

	if cfg.Personalization.DriftUp, err = getEnvFloat("PERSONALIZATION_DRIFT_UP", 0.1); err != nil {
		return Config{}, err
	}
	if cfg.Personalization.DriftDown, err = getEnvFloat("PERSONALIZATION_DRIFT_DOWN", 0.05); err != nil {
		return Config{}, err
	}
	if cfg.Personalization.Decay, err = getEnvFloat("PERSONALIZATION_DECAY", 0.9); err != nil {
		return Config{}, err
	}

	cfg.RemindersEnabled = getEnv("REMINDERS_ENABLED", "false") == "true"
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number", key, v)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration", key, v)
	}
	return d, nil
}
