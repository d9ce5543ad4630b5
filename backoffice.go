package backoffice

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-backoffice/internal/access"
	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/auth"
	"github.com/goliatone/go-backoffice/internal/cache"
	auditcmd "github.com/goliatone/go-backoffice/internal/commands/audit"
	contentcmd "github.com/goliatone/go-backoffice/internal/commands/content"
	"github.com/goliatone/go-backoffice/internal/content"
	backofficehttp "github.com/goliatone/go-backoffice/internal/http"
	"github.com/goliatone/go-backoffice/internal/logging"
	"github.com/goliatone/go-backoffice/internal/permissions"
	"github.com/goliatone/go-backoffice/internal/storage"
	"github.com/goliatone/go-backoffice/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// Module is the top level back-office runtime façade. It owns the wiring
// between storage, the access gate, the content service, and the admin API.
type Module struct {
	cfg Config

	db          *bun.DB
	ownsDB      bool
	redisClient redis.UniversalClient

	provider interfaces.LoggerProvider
	registry *permissions.Registry
	types    *content.TypeRegistry

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	actors      access.ActorStore
	gate        *access.Gate
	tokens      *auth.TokenService
	recorder    audit.Recorder
	invalidator cache.Invalidator
	sink        interfaces.ActivitySink
	service     *content.Service
}

// Option overrides a default dependency before wiring completes.
type Option func(*Module)

// WithDB injects an existing database handle instead of opening one from the
// storage configuration. The caller keeps ownership of the handle.
func WithDB(db *bun.DB) Option {
	return func(m *Module) {
		if db != nil {
			m.db = db
			m.ownsDB = false
		}
	}
}

// WithLoggerProvider attaches a logger provider for every module namespace.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithRoleRegistry overrides the static role table.
func WithRoleRegistry(registry *permissions.Registry) Option {
	return func(m *Module) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// WithTypeRegistry overrides the content type table.
func WithTypeRegistry(types *content.TypeRegistry) Option {
	return func(m *Module) {
		if types != nil {
			m.types = types
		}
	}
}

// WithActorStore overrides the account lookup used by the access gate.
func WithActorStore(actors access.ActorStore) Option {
	return func(m *Module) {
		if actors != nil {
			m.actors = actors
		}
	}
}

// WithAuditRecorder overrides the audit trail backend.
func WithAuditRecorder(recorder audit.Recorder) Option {
	return func(m *Module) {
		if recorder != nil {
			m.recorder = recorder
		}
	}
}

// WithInvalidator overrides the cache invalidation notifier.
func WithInvalidator(invalidator cache.Invalidator) Option {
	return func(m *Module) {
		if invalidator != nil {
			m.invalidator = invalidator
		}
	}
}

// WithRepositoryCache overrides the read-through cache used by repository
// lookups. Without it, enabling the cache config builds the library default.
func WithRepositoryCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(m *Module) {
		m.cacheService = service
		m.keySerializer = serializer
	}
}

// WithActivitySink forwards audit entries to a go-users activity feed.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(m *Module) {
		m.sink = sink
	}
}

// New wires a back-office module from configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:      cfg,
		registry: permissions.DefaultRegistry(),
		types:    content.DefaultTypes(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.db == nil {
		db, err := storage.Open(cfg.Storage)
		if err != nil {
			return nil, err
		}
		m.db = db
		m.ownsDB = true
	}

	if m.actors == nil {
		m.actors = auth.NewBunAccountStore(m.db)
	}
	m.gate = access.NewGate(m.actors, m.registry,
		access.WithLogger(logging.AccessLogger(m.provider)))

	m.tokens = auth.NewTokenService(cfg.Auth.SigningKey, cfg.Auth.Issuer,
		auth.WithTokenTTL(cfg.Auth.TokenTTL))

	if m.recorder == nil {
		m.recorder = audit.NewBunRecorder(m.db)
	}

	if m.invalidator == nil {
		if cfg.Cache.Enabled {
			m.redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Cache.RedisAddr,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.RedisDB,
			})
			m.invalidator = cache.NewRedisInvalidator(m.redisClient,
				cache.WithKeyPrefix(cfg.Cache.KeyPrefix),
				cache.WithChannel(cfg.Cache.Channel))
		} else {
			m.invalidator = cache.NewNoOp()
		}
	}

	if cfg.Cache.Enabled && m.cacheService == nil {
		if service, err := repocache.NewCacheService(repocache.DefaultConfig()); err == nil {
			m.cacheService = service
		}
	}
	if m.cacheService != nil && m.keySerializer == nil {
		m.keySerializer = repocache.NewDefaultKeySerializer()
	}

	serviceOpts := []content.ServiceOption{
		content.WithLogger(logging.ContentLogger(m.provider)),
		content.WithAuditRecorder(m.recorder),
		content.WithInvalidator(m.invalidator),
		content.WithSlugChecker(content.NewBunEntryLookupWithCache(m.db, m.cacheService, m.keySerializer)),
	}
	if m.sink != nil {
		serviceOpts = append(serviceOpts, content.WithActivityHook(audit.SinkHook{Sink: m.sink}))
	}
	m.service = content.NewService(content.NewBunEntryStore(m.db), m.types, serviceOpts...)

	return m, nil
}

// Content returns the content service.
func (m *Module) Content() *content.Service {
	return m.service
}

// Gate returns the access gate.
func (m *Module) Gate() *access.Gate {
	return m.gate
}

// Tokens returns the session token service.
func (m *Module) Tokens() *auth.TokenService {
	return m.tokens
}

// Audit returns the audit recorder.
func (m *Module) Audit() audit.Recorder {
	return m.recorder
}

// Roles returns the static role registry.
func (m *Module) Roles() *permissions.Registry {
	return m.registry
}

// DB exposes the underlying database handle.
func (m *Module) DB() *bun.DB {
	return m.db
}

// RegisterRoutes attaches the admin API to the provided mux.
func (m *Module) RegisterRoutes(mux *http.ServeMux) error {
	api := backofficehttp.NewAdminAPI(
		backofficehttp.WithBasePath(m.cfg.BasePath),
		backofficehttp.WithContentService(m.service),
		backofficehttp.WithGate(m.gate),
		backofficehttp.WithSessionResolver(m.tokens),
		backofficehttp.WithAuditRecorder(m.recorder),
		backofficehttp.WithLogger(logging.HTTPLogger(m.provider)),
	)
	return api.Register(mux)
}

// AuditPurgeHandler returns the retention purge command handler, configured
// from the module's audit settings.
func (m *Module) AuditPurgeHandler() *auditcmd.PurgeHandler {
	return auditcmd.NewPurgeHandler(m.recorder,
		logging.AuditLogger(m.provider),
		auditcmd.PurgeWithRetentionDays(m.cfg.Audit.RetentionDays),
		auditcmd.PurgeWithCronExpression(m.cfg.Audit.PurgeCron),
	)
}

// ScheduledActivationHandler returns the scheduled publication command
// handler, configured from the module's scheduler settings.
func (m *Module) ScheduledActivationHandler() *contentcmd.ActivateHandler {
	return contentcmd.NewActivateHandler(m.service,
		logging.ContentLogger(m.provider),
		contentcmd.ActivateWithCronExpression(m.cfg.Scheduler.ActivationCron),
	)
}

// Close releases resources the module owns.
func (m *Module) Close() error {
	var firstErr error
	if m.redisClient != nil {
		if err := m.redisClient.Close(); err != nil {
			firstErr = err
		}
	}
	if m.ownsDB && m.db != nil {
		if err := m.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("backoffice: close: %w", firstErr)
	}
	return nil
}
