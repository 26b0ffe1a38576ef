package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/cxn/internal/domain"
)

const (
	projectName = "cxn"

	DefaultTimeoutMS  = 1000
	DefaultRetryCount = 3
	DefaultInterval   = 5 // seconds
)

var validate = validator.New()

// Config is the on-disk configuration (cxn.yml).
type Config struct {
	TimeoutMS   int          `yaml:"timeout_ms" validate:"gt=0"`  // per ping/dns attempt
	RetryCount  int          `yaml:"retry_count" validate:"gte=1"` // dns attempts
	Interval    int          `yaml:"interval" validate:"gt=0"`     // default watch interval, seconds
	Nameservers []string     `yaml:"nameservers" validate:"dive,required"`
	Hosts       []HostConfig `yaml:"hosts" validate:"dive"`

	// Source is the file the config came from; empty for built-in defaults.
	Source string `yaml:"-"`
}

// HostConfig is one entry of the hosts list.
type HostConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Address string `yaml:"address" validate:"required"`
	Ping    bool   `yaml:"ping"`
	DNS     bool   `yaml:"dns"`
}

func Default() Config {
	return Config{
		TimeoutMS:  DefaultTimeoutMS,
		RetryCount: DefaultRetryCount,
		Interval:   DefaultInterval,
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// HostSpecs converts the hosts list into the engine's read-only specs,
// preserving order.
func (c Config) HostSpecs() []domain.HostSpec {
	out := make([]domain.HostSpec, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		out = append(out, domain.HostSpec{
			Name:     strings.TrimSpace(h.Name),
			Address:  strings.TrimSpace(h.Address),
			WantPing: h.Ping,
			WantDNS:  h.DNS,
		})
	}
	return out
}

// PrimaryPath is $XDG_CONFIG_HOME/cxn/cxn.yml (~/.config/cxn/cxn.yml).
func PrimaryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, projectName, projectName+".yml")
}

// FallbackPath is ./cxn.yml.
func FallbackPath() string {
	return projectName + ".yml"
}

// Load resolves the configuration. An explicit path must load; otherwise the
// primary and fallback locations are tried in order, skipping broken files,
// and built-in defaults are used when neither yields a config.
func Load(path string, logger *zap.Logger) (Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != "" {
		cfg, err := LoadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config from %s: %w", path, err)
		}
		logger.Info("config_loaded", zap.String("path", path), zap.Int("hosts", len(cfg.Hosts)))
		return cfg, nil
	}

	for _, candidate := range []string{PrimaryPath(), FallbackPath()} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		cfg, err := LoadFile(candidate)
		if err != nil {
			logger.Warn("config_load_failed", zap.String("path", candidate), zap.Error(err))
			continue
		}
		logger.Info("config_loaded", zap.String("path", candidate), zap.Int("hosts", len(cfg.Hosts)))
		return cfg, nil
	}

	logger.Info("config_defaults")
	return Default(), nil
}

// LoadFile reads and validates one YAML file. Keys missing from the file keep
// their default values.
func LoadFile(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Source = path
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = multierr.Append(errs, fmt.Errorf("field '%s' failed validation: %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = multierr.Append(errs, fmt.Errorf("config validation failed: %w", err))
		}
	}

	seen := make(map[string]int, len(c.Hosts))
	for i, h := range c.Hosts {
		if strings.Contains(h.Address, "://") {
			errs = multierr.Append(errs, fmt.Errorf("host %q: address must be an IP or hostname, not a URL", h.Name))
		}
		if h.Name == "" {
			continue
		}
		if prev, dup := seen[h.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("host %q: duplicate name (entries %d and %d)", h.Name, prev, i))
			continue
		}
		seen[h.Name] = i
	}
	return errs
}
