package config

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain/srs"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig     `mapstructure:"server" validate:"required"`
	Database DatabaseConfig   `mapstructure:"database" validate:"required"`
	Log      LogConfig        `mapstructure:"log" validate:"required"`
	SRS      srs.ParamsConfig `mapstructure:"srs"`
	Study    StudyConfig      `mapstructure:"study" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
}

// DatabaseConfig contains database connection settings.
// Driver selects the backend: "pgx" for PostgreSQL, "sqlite" for an
// embedded database file, or "memory" for a process-local store that is lost
// on exit.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=pgx sqlite memory"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level     string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format    string `mapstructure:"format" validate:"required,oneof=json text"`
	AddSource bool   `mapstructure:"add_source"`
}

// StudyConfig contains study engine settings.
type StudyConfig struct {
	// Timezone decides where a study day starts for statistics and streaks.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
	// DefaultReviewLimit applies to sessions started without an explicit limit.
	// Zero means unlimited.
	DefaultReviewLimit int `mapstructure:"default_review_limit" validate:"gte=0"`
}
