package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEntryTypeUnknown = errors.New("content: entry type is not registered")
	ErrEntryIDRequired  = errors.New("content: entry id required")
	ErrSlugExists       = errors.New("content: slug already exists")
	ErrValidation       = errors.New("content: validation failed")
	ErrTransaction      = errors.New("content: transaction failed")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ConflictError captures slug collisions surfaced by the advisory pre-check
// or by the database unique constraint at commit time.
type ConflictError struct {
	EntryType string
	Slug      string
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ErrSlugExists.Error()
	}
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return ErrSlugExists.Error()
	}
	return fmt.Sprintf("%s: type=%s slug=%s", ErrSlugExists.Error(), e.EntryType, slug)
}

func (e *ConflictError) Unwrap() error {
	return ErrSlugExists
}

// FieldIssue names a single invalid field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-scoped validation failures, including the
// body word limit and the scheduled-publish date rule.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Message == "" {
			parts = append(parts, issue.Field)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError builds a single-field validation failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Issues: []FieldIssue{{Field: field, Message: message}}}
}

// Issues extracts field issues from an error when it wraps a ValidationError.
func Issues(err error) []FieldIssue {
	if err == nil {
		return nil
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return validationErr.Issues
	}
	return nil
}

// TransactionError wraps persistence failures that rolled the mutation back.
// The cause stays available for operators; callers only see a generic error.
type TransactionError struct {
	Op    string
	Cause error
}

func (e *TransactionError) Error() string {
	if e == nil || e.Cause == nil {
		return ErrTransaction.Error()
	}
	return fmt.Sprintf("%s: %s: %v", ErrTransaction.Error(), e.Op, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return ErrTransaction
}
