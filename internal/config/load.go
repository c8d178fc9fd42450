package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SCRY"

var defaults = map[string]any{
	"server.port":             8080,
	"server.read_timeout":     "15s",
	"server.write_timeout":    "15s",
	"server.shutdown_timeout": "10s",
	"server.metrics_enabled":  true,

	"database.driver":            "sqlite",
	"database.url":               "file:scry-study.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	"database.max_open_conns":    10,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": "5m",
	"database.auto_migrate":      true,

	"log.level":      "info",
	"log.format":     "json",
	"log.add_source": false,

	"study.timezone":             "UTC",
	"study.default_review_limit": 0,

	// zero keeps the scheduler default; registered so env overrides bind
	"srs.min_ease":                   0.0,
	"srs.max_ease":                   0.0,
	"srs.max_interval_days":          0,
	"srs.again_ease_adjustment":      0.0,
	"srs.hard_ease_adjustment":       0.0,
	"srs.easy_ease_adjustment":       0.0,
	"srs.hard_interval_modifier":     0.0,
	"srs.easy_bonus":                 0.0,
	"srs.first_review_hard_interval": 0,
	"srs.first_review_good_interval": 0,
	"srs.first_review_easy_interval": 0,
	"srs.again_review_minutes":       0,
}

// Load reads configuration from defaults and SCRY_* environment variables.
// Environment variables take precedence over defaults.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from defaults, the optional file at path and
// SCRY_* environment variables, in increasing order of precedence.
// The result is validated before it is returned.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
