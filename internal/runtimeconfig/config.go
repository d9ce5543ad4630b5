package runtimeconfig

import (
	"errors"
	"strings"
	"time"
)

var ErrStorageDriverUnknown = errors.New("backoffice config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("backoffice config: storage dsn is required")
var ErrAuthSigningKeyRequired = errors.New("backoffice config: auth signing key is required")
var ErrCacheRedisAddrRequired = errors.New("backoffice config: redis address is required when redis cache is enabled")
var ErrAuditRetentionInvalid = errors.New("backoffice config: audit retention must be zero or positive")
var ErrLoggingLevelInvalid = errors.New("backoffice config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("backoffice config: logging format is invalid")

// Config aggregates runtime settings for the back-office module. Fields use
// simple types so host applications can bind them from any config source.
type Config struct {
	BasePath  string
	Storage   StorageConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Audit     AuditConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
}

// StorageConfig selects and configures the database backend.
type StorageConfig struct {
	Driver string
	DSN    string
}

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// AuthConfig configures session token issuance and validation.
type AuthConfig struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
}

// CacheConfig configures the invalidation notifier.
type CacheConfig struct {
	Enabled   bool
	RedisAddr string
	RedisDB   int
	Password  string
	KeyPrefix string
	Channel   string
}

// AuditConfig configures the audit trail retention job.
type AuditConfig struct {
	RetentionDays int
	PurgeCron     string
}

// SchedulerConfig configures the scheduled publication job.
type SchedulerConfig struct {
	ActivationCron string
}

// LoggingConfig captures provider options for runtime logging.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		BasePath: "/admin/api",
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "file:backoffice.db?cache=shared&_fk=1",
		},
		Auth: AuthConfig{
			Issuer:   "backoffice",
			TokenTTL: 12 * time.Hour,
		},
		Cache: CacheConfig{
			KeyPrefix: "backoffice:cache:",
			Channel:   "backoffice.cache.invalidate",
		},
		Audit: AuditConfig{
			RetentionDays: 730,
			PurgeCron:     "@daily",
		},
		Scheduler: SchedulerConfig{
			ActivationCron: "@every 5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case DriverPostgres, DriverSQLite:
	default:
		return ErrStorageDriverUnknown
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return ErrAuthSigningKeyRequired
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.RedisAddr) == "" {
		return ErrCacheRedisAddrRequired
	}
	if c.Audit.RetentionDays < 0 {
		return ErrAuditRetentionInvalid
	}
	if level := strings.ToLower(strings.TrimSpace(c.Logging.Level)); level != "" {
		switch level {
		case "trace", "debug", "info", "warn", "error":
		default:
			return ErrLoggingLevelInvalid
		}
	}
	if format := strings.ToLower(strings.TrimSpace(c.Logging.Format)); format != "" {
		switch format {
		case "text", "json":
		default:
			return ErrLoggingFormatInvalid
		}
	}
	return nil
}
