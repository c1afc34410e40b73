package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Import   ImportConfig   `mapstructure:"import" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	// CORSAllowedOrigins lists browser origins allowed to call the API.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" validate:"dive,required"`
	// Timezone decides where "today" starts for statistics. "Local" uses the host zone.
	Timezone        string `mapstructure:"timezone" validate:"required"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// Location resolves Timezone. Load has already validated it.
func (c ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Database drivers supported by the card store.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the card store backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a postgres connection URL or a sqlite file path.
	URL             string `mapstructure:"url" validate:"required"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=525600"`
}

// ImportConfig bounds the import pipeline.
type ImportConfig struct {
	// MaxBodyBytes caps JSON request bodies, import payloads included.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"required,gt=0"`
}
