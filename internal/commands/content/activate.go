package contentcmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-backoffice/internal/commands"
	"github.com/goliatone/go-backoffice/internal/content"
	"github.com/goliatone/go-backoffice/internal/logging"
	"github.com/goliatone/go-backoffice/pkg/interfaces"
	command "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

const activateMessageType = "backoffice.content.activate_scheduled"

// ActivateScheduledCommand publishes scheduled entries whose publish time has
// arrived. ActorID attributes the resulting audit entries; when empty the
// system actor (uuid.Nil) is used.
type ActivateScheduledCommand struct {
	ActorID string `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (ActivateScheduledCommand) Type() string { return activateMessageType }

// Validate satisfies command.Message.
func (c ActivateScheduledCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ActorID, validation.By(func(value any) error {
			raw, _ := value.(string)
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			_, err := uuid.Parse(raw)
			return err
		})),
	)
}

type activateHandlerConfig struct {
	cronConfig command.HandlerConfig
	timeout    time.Duration
}

// ActivateHandlerOption customises the activation handler.
type ActivateHandlerOption func(*activateHandlerConfig)

// ActivateWithCronExpression overrides the cron expression.
func ActivateWithCronExpression(expression string) ActivateHandlerOption {
	return func(cfg *activateHandlerConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// ActivateWithTimeout overrides the default execution timeout.
func ActivateWithTimeout(timeout time.Duration) ActivateHandlerOption {
	return func(cfg *activateHandlerConfig) {
		cfg.timeout = timeout
	}
}

// ActivateHandler flips due scheduled entries into the published state.
type ActivateHandler struct {
	service    *content.Service
	logger     interfaces.Logger
	cronConfig command.HandlerConfig
	timeout    time.Duration
}

// NewActivateHandler constructs the handler over the content service.
func NewActivateHandler(service *content.Service, logger interfaces.Logger, opts ...ActivateHandlerOption) *ActivateHandler {
	cfg := activateHandlerConfig{
		cronConfig: command.HandlerConfig{
			Expression: "@every 5m",
		},
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &ActivateHandler{
		service:    service,
		logger:     commands.EnsureLogger(logger),
		cronConfig: cfg.cronConfig,
		timeout:    cfg.timeout,
	}
}

// Execute satisfies command.Commander[ActivateScheduledCommand].
func (h *ActivateHandler) Execute(ctx context.Context, msg ActivateScheduledCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	actorID := uuid.Nil
	if trimmed := strings.TrimSpace(msg.ActorID); trimmed != "" {
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return commands.WrapValidationError(err)
		}
		actorID = parsed
	}

	activated, err := h.service.ActivateDue(ctx, actorID)
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	if len(activated) > 0 {
		logging.WithFields(h.logger, map[string]any{
			"operation": "content.activate_scheduled",
			"activated": len(activated),
		}).Info("content.command.activate.published")
	}
	return nil
}

// CronHandler satisfies command.CronCommand by binding activation to a cron runner.
func (h *ActivateHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), ActivateScheduledCommand{})
	}
}

// CronOptions satisfies command.CronCommand by returning the configured cron metadata.
func (h *ActivateHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the activation handler to CLI integrations.
func (h *ActivateHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for scheduled activation.
func (h *ActivateHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"content", "activate"},
		Group:       "content",
		Description: "Publish scheduled entries whose publish time has arrived",
	}
}
