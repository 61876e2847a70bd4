package model

import (
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateProjectConfig checks the status columns of a project config.
// Column ids must be unique and names non-empty. Duplicate or sparse
// OrderIndex values are allowed; SortColumns resolves them.
func ValidateProjectConfig(pc *ProjectConfig) error {
	var ve ValidationError

	if strings.TrimSpace(pc.ProjectID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "projectId", Message: "is required"})
	}

	seen := make(map[int]bool, len(pc.Statuses))
	for i, c := range pc.Statuses {
		field := fmt.Sprintf("statuses[%d]", i)
		if seen[c.ID] {
			ve.Errors = append(ve.Errors, FieldError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate id %d", c.ID),
			})
		}
		seen[c.ID] = true
		if strings.TrimSpace(c.Name) == "" {
			ve.Errors = append(ve.Errors, FieldError{Field: field + ".name", Message: "is required"})
		}
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateIssue checks that an issue can be sent as a full-object update.
func ValidateIssue(is *Issue) error {
	var ve ValidationError
	if strings.TrimSpace(is.ID) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "id", Message: "is required"})
	}
	if strings.TrimSpace(is.Title) == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "title", Message: "is required"})
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}
