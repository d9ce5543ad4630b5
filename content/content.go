// Package content is the public surface of the content lifecycle engine.
// It aliases the internal implementation so host applications can name the
// entry types, inputs, and errors without reaching into internal packages.
package content

import "github.com/goliatone/go-backoffice/internal/content"

type (
	Entry           = content.Entry
	EntryTag        = content.EntryTag
	EntryCategory   = content.EntryCategory
	EntryAttachment = content.EntryAttachment

	TypeDescriptor = content.TypeDescriptor
	TypeRegistry   = content.TypeRegistry

	Service       = content.Service
	ServiceOption = content.ServiceOption
	CreateInput   = content.CreateInput
	UpdateInput   = content.UpdateInput
	ListOptions   = content.ListOptions
	EntryStore    = content.EntryStore
	SlugChecker   = content.SlugChecker

	NotFoundError   = content.NotFoundError
	ConflictError   = content.ConflictError
	ValidationError = content.ValidationError
	FieldIssue      = content.FieldIssue
)

var (
	ErrEntryTypeUnknown = content.ErrEntryTypeUnknown
	ErrEntryIDRequired  = content.ErrEntryIDRequired
	ErrSlugExists       = content.ErrSlugExists
	ErrValidation       = content.ErrValidation
	ErrTransaction      = content.ErrTransaction
)

// NewTypeRegistry builds a registry from explicit descriptors.
var NewTypeRegistry = content.NewTypeRegistry

// DefaultTypes returns the stock clinic content types.
var DefaultTypes = content.DefaultTypes

// Issues extracts field level issues from a validation error chain.
var Issues = content.Issues
