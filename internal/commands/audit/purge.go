package auditcmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/commands"
	"github.com/goliatone/go-backoffice/internal/logging"
	"github.com/goliatone/go-backoffice/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const purgeMessageType = "backoffice.audit.purge"

// DefaultRetentionDays keeps two years of audit history unless overridden.
const DefaultRetentionDays = 730

// PurgeCommand removes audit entries older than the retention window. The
// purge itself is intentionally not written back to the trail. When DryRun
// is set the handler only reports what would be removed.
type PurgeCommand struct {
	RetentionDays int  `json:"retention_days,omitempty"`
	DryRun        bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (PurgeCommand) Type() string { return purgeMessageType }

// Validate satisfies command.Message.
func (c PurgeCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RetentionDays, validation.Min(0)),
	)
}

type purgeHandlerConfig struct {
	cronConfig command.HandlerConfig
	timeout    time.Duration
	retention  int
}

// PurgeHandlerOption customises the purge handler.
type PurgeHandlerOption func(*purgeHandlerConfig)

// PurgeWithCronExpression overrides the cron expression for the purge handler.
func PurgeWithCronExpression(expression string) PurgeHandlerOption {
	return func(cfg *purgeHandlerConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// PurgeWithTimeout overrides the default execution timeout.
func PurgeWithTimeout(timeout time.Duration) PurgeHandlerOption {
	return func(cfg *purgeHandlerConfig) {
		cfg.timeout = timeout
	}
}

// PurgeWithRetentionDays overrides the default retention window applied when
// a command does not carry one.
func PurgeWithRetentionDays(days int) PurgeHandlerOption {
	return func(cfg *purgeHandlerConfig) {
		if days > 0 {
			cfg.retention = days
		}
	}
}

// PurgeHandler deletes expired audit entries through the recorder.
type PurgeHandler struct {
	recorder   audit.Recorder
	logger     interfaces.Logger
	cronConfig command.HandlerConfig
	timeout    time.Duration
	retention  int
	now        func() time.Time
}

// NewPurgeHandler constructs a handler over the supplied recorder.
func NewPurgeHandler(recorder audit.Recorder, logger interfaces.Logger, opts ...PurgeHandlerOption) *PurgeHandler {
	cfg := purgeHandlerConfig{
		cronConfig: command.HandlerConfig{
			Expression: "@daily",
		},
		timeout:   commands.DefaultCommandTimeout,
		retention: DefaultRetentionDays,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &PurgeHandler{
		recorder:   recorder,
		logger:     commands.EnsureLogger(logger),
		cronConfig: cfg.cronConfig,
		timeout:    cfg.timeout,
		retention:  cfg.retention,
		now:        time.Now,
	}
}

// Execute satisfies command.Commander[PurgeCommand].
func (h *PurgeHandler) Execute(ctx context.Context, msg PurgeCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	retention := msg.RetentionDays
	if retention <= 0 {
		retention = h.retention
	}
	cutoff := h.now().UTC().AddDate(0, 0, -retention)

	logger := logging.WithFields(h.logger, map[string]any{
		"operation": "audit.purge",
		"cutoff":    cutoff.Format(time.RFC3339),
	})

	if msg.DryRun {
		expired, err := h.recorder.List(ctx, audit.ListFilter{})
		if err != nil {
			return commands.WrapExecuteError(err)
		}
		count := 0
		for _, entry := range expired {
			if entry.CreatedAt.Before(cutoff) {
				count++
			}
		}
		logging.WithFields(logger, map[string]any{
			"dry_run":       true,
			"expired_count": count,
		}).Debug("audit.command.purge.dry_run")
		return nil
	}

	removed, err := h.recorder.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	logging.WithFields(logger, map[string]any{
		"removed": removed,
	}).Info("audit.command.purge.removed")
	return nil
}

// CronHandler satisfies command.CronCommand by binding the purge to a cron runner.
func (h *PurgeHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), PurgeCommand{})
	}
}

// CronOptions satisfies command.CronCommand by returning the configured cron metadata.
func (h *PurgeHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the purge handler to CLI integrations.
func (h *PurgeHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for the audit purge.
func (h *PurgeHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"audit", "purge"},
		Group:       "audit",
		Description: "Remove audit entries past the retention window; supports dry-run",
	}
}
