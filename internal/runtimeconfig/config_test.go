package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-backoffice/internal/runtimeconfig"
)

func validConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Auth.SigningKey = "secret"
	return cfg
}

func TestConfigValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "oracle"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_RequiresSigningKey(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.SigningKey = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrAuthSigningKeyRequired) {
		t.Fatalf("expected ErrAuthSigningKeyRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresRedisAddrWhenCacheEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.RedisAddr = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheRedisAddrRequired) {
		t.Fatalf("expected ErrCacheRedisAddrRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsBadLoggingValues(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
