package safecmd

import "fmt"

// Validator decides whether a candidate value may be substituted. A nil
// return accepts; a non-nil return rejects and explains why. Validators
// must never modify the value they are shown.
type Validator func(value string) error

// Registry maps placeholder names to validators, with a conservative
// fallback for names that have none. Each caller owns its registry; there
// is no package-level state. Registration is not synchronized — callers
// that register concurrently must serialize themselves.
type Registry struct {
	validators map[string]Validator
	fallback   Validator
	strict     bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithFallback replaces the default conservative fallback validator.
func WithFallback(fn Validator) Option {
	return func(r *Registry) {
		if fn != nil {
			r.fallback = fn
		}
	}
}

// WithStrict makes Fill treat bindings the template never references as an
// error instead of ignoring them.
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// NewRegistry returns a registry using DefaultValidator as the fallback.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		validators: make(map[string]Validator),
		fallback:   DefaultValidator,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a validator with a placeholder name. Registering the
// same name again replaces the earlier validator. A nil validator removes
// the registration, restoring the fallback for that name.
func (r *Registry) Register(name string, fn Validator) {
	if fn == nil {
		delete(r.validators, name)
		return
	}
	r.validators[name] = fn
}

// Validate applies the validator registered for name, or the fallback when
// none is. Rejections are returned as *ValidationError carrying the
// placeholder, the verbatim value, and the reason.
func (r *Registry) Validate(name, value string) error {
	fn, ok := r.validators[name]
	if !ok {
		fn = r.fallback
	}
	if err := fn(value); err != nil {
		return &ValidationError{Placeholder: name, Value: value, Reason: err.Error()}
	}
	return nil
}

// DefaultValidator is the conservative fallback policy: the value must be
// non-empty, start with an alphanumeric character, and contain only
// alphanumerics, underscore, and hyphen. Everything a shell could
// interpret is outside that set.
func DefaultValidator(value string) error {
	if value == "" {
		return fmt.Errorf("empty value")
	}
	for i, r := range value {
		if alphanumeric(r) {
			continue
		}
		if i > 0 && (r == '_' || r == '-') {
			continue
		}
		if i == 0 {
			return fmt.Errorf("leading character %q not allowed, must be alphanumeric", r)
		}
		return fmt.Errorf("character %q not allowed", r)
	}
	return nil
}

func alphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
