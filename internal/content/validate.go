package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// NormalizeSlug canonicalizes a user supplied slug.
func NormalizeSlug(value string) (string, error) {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return "", NewValidationError("slug", "slug could not be normalized")
	}
	return normalized, nil
}

// ValidateSlug enforces the canonical slug shape.
func ValidateSlug(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return NewValidationError("slug", "slug is required")
	}
	if !slug.IsValid(trimmed) {
		return NewValidationError("slug", "slug must contain lowercase letters, digits and hyphens only")
	}
	return nil
}

// CountWords returns the whitespace-delimited word count of a body.
func CountWords(body string) int {
	return len(strings.FieldsFunc(body, unicode.IsSpace))
}

// ValidateBody enforces the per-type word limit.
func ValidateBody(descriptor TypeDescriptor, body string) error {
	limit := descriptor.WordLimit()
	if CountWords(body) > limit {
		return NewValidationError("body", "body exceeds the allowed word count")
	}
	return nil
}

// ValidateMetadata checks metadata against the type's JSON schema, when the
// type declares one. Types without a schema accept any metadata object.
func ValidateMetadata(descriptor TypeDescriptor, metadata map[string]any) error {
	if len(descriptor.MetadataSchema) == 0 {
		return nil
	}
	compiled, err := compileSchema(descriptor.MetadataSchema)
	if err != nil {
		return NewValidationError("metadata", "metadata schema is invalid")
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	if err := compiled.Validate(metadata); err != nil {
		return &ValidationError{Issues: metadataIssues(err)}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func metadataIssues(err error) []FieldIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []FieldIssue{{Field: "metadata", Message: err.Error()}}
	}

	issues := []FieldIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			field := "metadata"
			if location := strings.Trim(node.InstanceLocation, "/"); location != "" {
				field = "metadata." + strings.ReplaceAll(location, "/", ".")
			}
			issues = append(issues, FieldIssue{
				Field:   field,
				Message: strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}
