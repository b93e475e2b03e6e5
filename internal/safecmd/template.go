// Package safecmd builds shell command lines from trusted templates and
// validated untrusted values.
//
// A template mixes literal text, which is trusted and never inspected, with
// {name} placeholders whose fill values are untrusted and must pass a
// validator before substitution. The point is to make command lines handed
// to a shell less dangerous; it cannot make them safe.
package safecmd

import (
	"fmt"
	"strings"
)

// segment is one piece of a template word: either literal text or a
// placeholder reference, never both.
type segment struct {
	text        string
	placeholder string
}

// Template is a parsed command template. Words are separated by whitespace;
// each placeholder fills in within its word. Literal braces are written
// doubled ({{ and }}).
type Template struct {
	raw   string
	words [][]segment
	names []string
}

// Parse compiles a template string. Malformed placeholder syntax is a
// construction error, reported before any values are seen.
func Parse(raw string) (*Template, error) {
	t := &Template{raw: raw}

	var word []segment
	var lit strings.Builder
	seen := make(map[string]bool)

	flushLiteral := func() {
		if lit.Len() > 0 {
			word = append(word, segment{text: lit.String()})
			lit.Reset()
		}
	}
	flushWord := func() {
		flushLiteral()
		if len(word) > 0 {
			t.words = append(t.words, word)
			word = nil
		}
	}

	i := 0
	for i < len(raw) {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flushWord()
			i++
		case c == '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return nil, &ParseError{Template: raw, Pos: i, Reason: "unterminated placeholder"}
			}
			name := raw[i+1 : i+1+end]
			if name == "" {
				return nil, &ParseError{Template: raw, Pos: i, Reason: "placeholder with no name"}
			}
			if !validPlaceholderName(name) {
				return nil, &ParseError{Template: raw, Pos: i, Reason: fmt.Sprintf("invalid placeholder name %q", name)}
			}
			flushLiteral()
			word = append(word, segment{placeholder: name})
			if !seen[name] {
				seen[name] = true
				t.names = append(t.names, name)
			}
			i += end + 2
		case c == '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, &ParseError{Template: raw, Pos: i, Reason: "unexpected '}' outside placeholder"}
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushWord()

	if len(t.words) == 0 {
		return nil, ErrEmptyTemplate
	}

	return t, nil
}

// MustParse is Parse for templates known good at compile time.
func MustParse(raw string) *Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the original template text.
func (t *Template) String() string {
	return t.raw
}

// Placeholders returns the distinct placeholder names in first-appearance
// order. The returned slice is a copy.
func (t *Template) Placeholders() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

func validPlaceholderName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
