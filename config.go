package backoffice

import "github.com/goliatone/go-backoffice/internal/runtimeconfig"

// Config aggregates runtime settings for the back-office module.
type Config = runtimeconfig.Config

// StorageConfig selects and configures the database backend.
type StorageConfig = runtimeconfig.StorageConfig

// AuthConfig configures session token issuance and validation.
type AuthConfig = runtimeconfig.AuthConfig

// CacheConfig configures the invalidation notifier.
type CacheConfig = runtimeconfig.CacheConfig

// AuditConfig configures the audit trail retention job.
type AuditConfig = runtimeconfig.AuditConfig

// SchedulerConfig configures the scheduled publication job.
type SchedulerConfig = runtimeconfig.SchedulerConfig

// LoggingConfig captures provider options for runtime logging.
type LoggingConfig = runtimeconfig.LoggingConfig

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
