package safecmd

import (
	"fmt"
	"sort"
	"strings"
)

// FillArgs validates every binding the template references and returns the
// filled template as an argv slice, one element per template word.
//
// The call is all-or-nothing: a placeholder with no binding, a rejected
// value, or (for strict registries) a binding the template never uses
// fails the whole call and no partially filled result exists. Unreferenced
// bindings are otherwise ignored.
func (r *Registry) FillArgs(t *Template, bindings map[string]string) ([]string, error) {
	if t == nil {
		return nil, fmt.Errorf("template is required")
	}

	for _, name := range t.names {
		value, ok := bindings[name]
		if !ok {
			return nil, fmt.Errorf("placeholder %q: %w", name, ErrMissingBinding)
		}
		if err := r.Validate(name, value); err != nil {
			return nil, err
		}
	}

	if r.strict {
		if err := checkUnused(t, bindings); err != nil {
			return nil, err
		}
	}

	args := make([]string, 0, len(t.words))
	var b strings.Builder
	for _, word := range t.words {
		b.Reset()
		for _, seg := range word {
			if seg.placeholder != "" {
				b.WriteString(bindings[seg.placeholder])
				continue
			}
			b.WriteString(seg.text)
		}
		args = append(args, b.String())
	}

	return args, nil
}

// Fill is FillArgs joined with single spaces, ready to hand to a shell.
// Whitespace runs in the template collapse to single separators.
func (r *Registry) Fill(t *Template, bindings map[string]string) (string, error) {
	args, err := r.FillArgs(t, bindings)
	if err != nil {
		return "", err
	}
	return strings.Join(args, " "), nil
}

func checkUnused(t *Template, bindings map[string]string) error {
	referenced := make(map[string]bool, len(t.names))
	for _, name := range t.names {
		referenced[name] = true
	}

	unused := make([]string, 0)
	for name := range bindings {
		if !referenced[name] {
			unused = append(unused, name)
		}
	}
	if len(unused) == 0 {
		return nil
	}

	sort.Strings(unused)
	return fmt.Errorf("%w: %s", ErrUnusedBinding, strings.Join(unused, ", "))
}
