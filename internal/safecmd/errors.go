package safecmd

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTemplate indicates a template with no content.
	ErrEmptyTemplate = errors.New("template is empty")
	// ErrMissingBinding indicates a placeholder with no bound value.
	ErrMissingBinding = errors.New("missing binding")
	// ErrUnusedBinding indicates a binding the template never references,
	// reported only when the registry is strict.
	ErrUnusedBinding = errors.New("binding not referenced by template")
)

// ParseError describes a malformed template string.
type ParseError struct {
	Template string
	Pos      int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse template at offset %d: %s", e.Pos, e.Reason)
}

// ValidationError describes a rejected placeholder value. The value is
// carried verbatim; it is never sanitized or truncated.
type ValidationError struct {
	Placeholder string
	Value       string
	Reason      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("placeholder %q: value rejected: %s", e.Placeholder, e.Reason)
}
