package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/vrischmann/envconfig"
)

// Env holds the environment overrides. Every variable is optional.
type Env struct {
	ConfigPath    string `envconfig:"CXN_CONFIG"`
	WatchInterval int    `envconfig:"CXN_WATCH_INTERVAL"` // seconds
	LogLevel      string `envconfig:"CXN_LOG_LEVEL"`
	LogDir        string `envconfig:"CXN_LOG_DIR"`
	MetricsFile   string `envconfig:"CXN_METRICS_FILE"`
	Privileged    bool   `envconfig:"CXN_PRIVILEGED"`
}

// FromEnv loads ./.env when present (real environment wins), then reads the
// CXN_* variables.
func FromEnv() (Env, error) {
	if err := loadDotEnv(); err != nil {
		return Env{}, fmt.Errorf("load .env: %w", err)
	}
	var e Env
	if err := envconfig.InitWithOptions(&e, envconfig.Options{AllOptional: true}); err != nil {
		return Env{}, fmt.Errorf("read environment: %w", err)
	}
	if e.WatchInterval < 0 {
		return Env{}, fmt.Errorf("CXN_WATCH_INTERVAL must not be negative, got %d", e.WatchInterval)
	}
	return e, nil
}

func (e Env) WatchIntervalDuration() time.Duration {
	return time.Duration(e.WatchInterval) * time.Second
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}
