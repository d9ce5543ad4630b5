package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/cache"
	"github.com/goliatone/go-backoffice/internal/domain"
	"github.com/goliatone/go-backoffice/internal/logging"
	"github.com/goliatone/go-backoffice/pkg/interfaces"
	"github.com/google/uuid"
)

// SlugChecker answers the advisory uniqueness question before a write. The
// database constraint remains the authority; the checker only exists to turn
// the common collision into a friendly error without opening a transaction.
type SlugChecker interface {
	SlugTaken(ctx context.Context, entryType, slug string, excludeID uuid.UUID) (bool, error)
}

// Service coordinates entry mutations: validation, lifecycle transitions,
// the atomic write, and the best-effort audit and cache side effects that
// follow a successful commit.
type Service struct {
	store       EntryStore
	types       *TypeRegistry
	slugs       SlugChecker
	recorder    audit.Recorder
	activity    audit.SinkHook
	invalidator cache.Invalidator
	logger      interfaces.Logger
	now         func() time.Time
	idgen       func() uuid.UUID
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithClock overrides the service clock.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides entry ID generation.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *Service) {
		if generator != nil {
			s.idgen = generator
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditRecorder attaches the audit trail.
func WithAuditRecorder(recorder audit.Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithActivityHook forwards audit entries to a go-users activity sink.
func WithActivityHook(hook audit.SinkHook) ServiceOption {
	return func(s *Service) {
		s.activity = hook
	}
}

// WithInvalidator attaches the cache invalidation notifier.
func WithInvalidator(invalidator cache.Invalidator) ServiceOption {
	return func(s *Service) {
		s.invalidator = invalidator
	}
}

// WithSlugChecker overrides the advisory slug lookup. Without one the
// service falls back to the store's GetBySlug.
func WithSlugChecker(checker SlugChecker) ServiceOption {
	return func(s *Service) {
		if checker != nil {
			s.slugs = checker
		}
	}
}

// NewService constructs the content service.
func NewService(store EntryStore, types *TypeRegistry, opts ...ServiceOption) *Service {
	if types == nil {
		types = DefaultTypes()
	}
	service := &Service{
		store:  store,
		types:  types,
		logger: logging.ContentLogger(nil),
		now:    time.Now,
		idgen:  uuid.New,
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.slugs == nil {
		service.slugs = storeSlugChecker{store: store}
	}
	return service
}

// Types exposes the content type registry.
func (s *Service) Types() *TypeRegistry {
	return s.types
}

// CreateInput is the payload for a new entry.
type CreateInput struct {
	Type        string
	Title       string
	Slug        string
	Body        string
	Status      domain.Status
	PublishedAt *time.Time
	Metadata    map[string]any
	Tags        []string
	Categories  []string
	Attachments []string
	ActorID     uuid.UUID
}

// UpdateInput is the payload for a partial entry update. Nil fields keep
// their stored values; association slices, when present, replace the stored
// set wholesale.
type UpdateInput struct {
	ID               uuid.UUID
	Title            *string
	Slug             *string
	Body             *string
	Status           *domain.Status
	PublishedAt      *time.Time
	ClearPublishedAt bool
	Metadata         map[string]any
	Tags             *[]string
	Categories       *[]string
	Attachments      *[]string
	ActorID          uuid.UUID
}

// List returns a page of entries of the given type.
func (s *Service) List(ctx context.Context, entryType string, opts ListOptions) ([]*Entry, int, error) {
	descriptor, ok := s.types.Lookup(entryType)
	if !ok {
		return nil, 0, ErrEntryTypeUnknown
	}
	if opts.Status != "" && !opts.Status.IsValid() {
		return nil, 0, NewValidationError("status", "unknown status "+string(opts.Status))
	}
	return s.store.List(ctx, descriptor.Name, opts.Normalize())
}

// Get returns a single entry of the given type.
func (s *Service) Get(ctx context.Context, entryType string, id uuid.UUID) (*Entry, error) {
	descriptor, ok := s.types.Lookup(entryType)
	if !ok {
		return nil, ErrEntryTypeUnknown
	}
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.EntryType != descriptor.Name {
		return nil, &NotFoundError{Resource: "entry", Key: id.String()}
	}
	return entry, nil
}

// GetBySlug returns a single entry by its slug.
func (s *Service) GetBySlug(ctx context.Context, entryType, slugValue string) (*Entry, error) {
	descriptor, ok := s.types.Lookup(entryType)
	if !ok {
		return nil, ErrEntryTypeUnknown
	}
	return s.store.GetBySlug(ctx, descriptor.Name, slugValue)
}

// Create validates and persists a new entry, then records the audit entry
// and dirties the type's cache tags.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Entry, error) {
	descriptor, ok := s.types.Lookup(input.Type)
	if !ok {
		return nil, ErrEntryTypeUnknown
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, NewValidationError("title", "title is required")
	}

	slugValue, err := s.resolveSlug(input.Slug, title)
	if err != nil {
		return nil, err
	}
	if err := ValidateBody(descriptor, input.Body); err != nil {
		return nil, err
	}
	if err := ValidateMetadata(descriptor, input.Metadata); err != nil {
		return nil, err
	}

	status, publishedAt, err := Transition(domain.StatusDraft, nil, TransitionRequest{
		Status:      input.Status,
		PublishedAt: input.PublishedAt,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if taken, err := s.slugs.SlugTaken(ctx, descriptor.Name, slugValue, uuid.Nil); err != nil {
		s.logger.Warn("advisory slug check failed, deferring to constraint",
			"type", descriptor.Name, "slug", slugValue, "error", err)
	} else if taken {
		return nil, &ConflictError{EntryType: descriptor.Name, Slug: slugValue}
	}

	now := s.now().UTC()
	entry := &Entry{
		ID:          s.idgen(),
		EntryType:   descriptor.Name,
		Title:       title,
		Slug:        slugValue,
		Body:        input.Body,
		Status:      string(status),
		PublishedAt: publishedAt,
		Metadata:    input.Metadata,
		AuthorID:    input.ActorID,
		UpdatedBy:   input.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	entry.Tags = buildTags(entry.ID, input.Tags, s.idgen)
	entry.Categories = buildCategories(entry.ID, input.Categories, s.idgen)
	entry.Attachments = buildAttachments(entry.ID, input.Attachments, s.idgen)

	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}

	verb := audit.VerbCreate
	if status == domain.StatusPublished {
		verb = audit.VerbPublish
	}
	s.afterCommit(ctx, descriptor, entry, input.ActorID, verb)
	return entry, nil
}

// Update applies a partial update, re-running validation and the lifecycle
// transition against the stored entry.
func (s *Service) Update(ctx context.Context, entryType string, input UpdateInput) (*Entry, error) {
	descriptor, ok := s.types.Lookup(entryType)
	if !ok {
		return nil, ErrEntryTypeUnknown
	}
	if input.ID == uuid.Nil {
		return nil, ErrEntryIDRequired
	}

	entry, err := s.Get(ctx, descriptor.Name, input.ID)
	if err != nil {
		return nil, err
	}
	previousStatus := domain.Status(entry.Status)

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, NewValidationError("title", "title is required")
		}
		entry.Title = title
	}

	if input.Slug != nil {
		slugValue, err := s.resolveSlug(*input.Slug, entry.Title)
		if err != nil {
			return nil, err
		}
		entry.Slug = slugValue
	}
	if input.Body != nil {
		entry.Body = *input.Body
	}
	if err := ValidateBody(descriptor, entry.Body); err != nil {
		return nil, err
	}
	if input.Metadata != nil {
		entry.Metadata = input.Metadata
	}
	if err := ValidateMetadata(descriptor, entry.Metadata); err != nil {
		return nil, err
	}

	request := TransitionRequest{
		Status:           previousStatus,
		PublishedAt:      input.PublishedAt,
		ClearPublishedAt: input.ClearPublishedAt,
	}
	if input.Status != nil {
		request.Status = *input.Status
	}
	status, publishedAt, err := Transition(previousStatus, entry.PublishedAt, request, s.now())
	if err != nil {
		return nil, err
	}
	entry.Status = string(status)
	entry.PublishedAt = publishedAt

	if input.Slug != nil {
		if taken, err := s.slugs.SlugTaken(ctx, descriptor.Name, entry.Slug, entry.ID); err != nil {
			s.logger.Warn("advisory slug check failed, deferring to constraint",
				"type", descriptor.Name, "slug", entry.Slug, "error", err)
		} else if taken {
			return nil, &ConflictError{EntryType: descriptor.Name, Slug: entry.Slug}
		}
	}

	if input.Tags != nil {
		entry.Tags = buildTags(entry.ID, *input.Tags, s.idgen)
	}
	if input.Categories != nil {
		entry.Categories = buildCategories(entry.ID, *input.Categories, s.idgen)
	}
	if input.Attachments != nil {
		entry.Attachments = buildAttachments(entry.ID, *input.Attachments, s.idgen)
	}

	entry.UpdatedBy = input.ActorID
	entry.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, descriptor, entry, input.ActorID, updateVerb(previousStatus, status))
	return entry, nil
}

// Delete removes an entry and dirties the type's cache tags.
func (s *Service) Delete(ctx context.Context, entryType string, id uuid.UUID, actorID uuid.UUID) error {
	descriptor, ok := s.types.Lookup(entryType)
	if !ok {
		return ErrEntryTypeUnknown
	}
	entry, err := s.Get(ctx, descriptor.Name, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.afterCommit(ctx, descriptor, entry, actorID, audit.VerbDelete)
	return nil
}

// Purge permanently removes an entry and its associations. Soft delete is
// the default path; this is the escape hatch for data that must not linger.
func (s *Service) Purge(ctx context.Context, entryType string, id uuid.UUID, actorID uuid.UUID) error {
	descriptor, ok := s.types.Lookup(entryType)
	if !ok {
		return ErrEntryTypeUnknown
	}
	entry, err := s.Get(ctx, descriptor.Name, id)
	if err != nil {
		return err
	}
	if err := s.store.Purge(ctx, id); err != nil {
		return err
	}
	s.afterCommit(ctx, descriptor, entry, actorID, audit.VerbDelete)
	return nil
}

// ActivateDue flips scheduled entries whose publish time has passed into the
// published state. It returns the activated entries.
func (s *Service) ActivateDue(ctx context.Context, actorID uuid.UUID) ([]*Entry, error) {
	now := s.now().UTC()
	due, err := s.store.ListScheduledDue(ctx, now)
	if err != nil {
		return nil, err
	}

	activated := make([]*Entry, 0, len(due))
	for _, entry := range due {
		descriptor, ok := s.types.Lookup(entry.EntryType)
		if !ok {
			s.logger.Warn("scheduled entry references unregistered type",
				"entry_id", entry.ID, "type", entry.EntryType)
			continue
		}
		entry.Status = string(domain.StatusPublished)
		entry.UpdatedBy = actorID
		entry.UpdatedAt = now
		if err := s.store.Update(ctx, entry); err != nil {
			s.logger.Error("scheduled activation failed",
				"entry_id", entry.ID, "type", entry.EntryType, "error", err)
			continue
		}
		s.afterCommit(ctx, descriptor, entry, actorID, audit.VerbPublish)
		activated = append(activated, entry)
	}
	return activated, nil
}

// afterCommit runs the best-effort side effects of a committed mutation.
// Neither the audit write nor the invalidation can fail the caller; both
// log on failure and move on.
func (s *Service) afterCommit(ctx context.Context, descriptor TypeDescriptor, entry *Entry, actorID uuid.UUID, verb string) {
	auditEntry := audit.Entry{
		ID:         s.idgen(),
		ActorID:    actorID,
		Action:     audit.Action(descriptor.Name, verb),
		TargetType: descriptor.Name,
		TargetID:   entry.ID.String(),
		Metadata: map[string]any{
			"slug":   entry.Slug,
			"status": entry.Status,
		},
		CreatedAt: s.now().UTC(),
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, auditEntry); err != nil {
			s.logger.Warn("audit write failed after commit",
				"action", auditEntry.Action, "target_id", auditEntry.TargetID, "error", err)
		}
	}
	if s.activity.Sink != nil {
		if err := s.activity.Notify(ctx, auditEntry); err != nil {
			s.logger.Warn("activity sink notify failed",
				"action", auditEntry.Action, "target_id", auditEntry.TargetID, "error", err)
		}
	}
	if s.invalidator != nil && len(descriptor.CacheTags) > 0 {
		if err := s.invalidator.Invalidate(ctx, descriptor.CacheTags...); err != nil {
			s.logger.Warn("cache invalidation failed after commit",
				"tags", strings.Join(descriptor.CacheTags, ","), "error", err)
		}
	}
}

func (s *Service) resolveSlug(raw, title string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		value = title
	}
	normalized, err := NormalizeSlug(value)
	if err != nil {
		return "", err
	}
	if err := ValidateSlug(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

func updateVerb(previous, next domain.Status) string {
	if previous == next {
		return audit.VerbUpdate
	}
	switch next {
	case domain.StatusPublished:
		return audit.VerbPublish
	case domain.StatusArchived:
		return audit.VerbArchive
	default:
		return audit.VerbUpdate
	}
}

func buildTags(entryID uuid.UUID, labels []string, idgen func() uuid.UUID) []*EntryTag {
	tags := make([]*EntryTag, 0, len(labels))
	for position, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		tags = append(tags, &EntryTag{
			ID:       idgen(),
			EntryID:  entryID,
			Label:    label,
			Position: position,
		})
	}
	return tags
}

func buildCategories(entryID uuid.UUID, labels []string, idgen func() uuid.UUID) []*EntryCategory {
	categories := make([]*EntryCategory, 0, len(labels))
	for position, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		categories = append(categories, &EntryCategory{
			ID:       idgen(),
			EntryID:  entryID,
			Label:    label,
			Position: position,
		})
	}
	return categories
}

func buildAttachments(entryID uuid.UUID, refs []string, idgen func() uuid.UUID) []*EntryAttachment {
	attachments := make([]*EntryAttachment, 0, len(refs))
	for position, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		attachments = append(attachments, &EntryAttachment{
			ID:       idgen(),
			EntryID:  entryID,
			MediaRef: ref,
			Position: position,
		})
	}
	return attachments
}

// storeSlugChecker adapts the store's GetBySlug into the advisory check.
type storeSlugChecker struct {
	store EntryStore
}

func (c storeSlugChecker) SlugTaken(ctx context.Context, entryType, slugValue string, excludeID uuid.UUID) (bool, error) {
	entry, err := c.store.GetBySlug(ctx, entryType, slugValue)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	if excludeID != uuid.Nil && entry.ID == excludeID {
		return false, nil
	}
	return true, nil
}
