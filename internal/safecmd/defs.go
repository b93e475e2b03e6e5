package safecmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is a command template described in a YAML file, together with
// validator policy for its placeholders.
type Definition struct {
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Command      string           `yaml:"command"`
	Placeholders []PlaceholderDef `yaml:"placeholders,omitempty"`
	Source       string           // file path
}

// PlaceholderDef declares validation policy for one placeholder. Pattern
// and Choices are mutually exclusive; a placeholder declared with neither
// uses the registry fallback.
type PlaceholderDef struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Pattern     string   `yaml:"pattern,omitempty"`
	Choices     []string `yaml:"choices,omitempty"`
}

// LoadDefinition reads a single definition file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definition %s: %w", path, err)
	}

	def, err := parseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("parse definition %s: %w", path, err)
	}
	def.Source = path
	return def, nil
}

// LoadDefinitionsFromDir loads every .yaml/.yml definition in a directory,
// sorted by name. A missing directory yields an empty slice.
func LoadDefinitionsFromDir(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read definition dir %s: %w", dir, err)
	}

	defs := make([]*Definition, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		def, err := LoadDefinition(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})

	return defs, nil
}

// Build compiles the definition into a parsed template and a registry wired
// with the declared per-placeholder validators. Declaring a validator for a
// placeholder the command never references is a definition error.
func (d *Definition) Build(opts ...Option) (*Template, *Registry, error) {
	tmpl, err := Parse(d.Command)
	if err != nil {
		return nil, nil, fmt.Errorf("definition %q: %w", d.Name, err)
	}

	referenced := make(map[string]bool)
	for _, name := range tmpl.Placeholders() {
		referenced[name] = true
	}

	registry := NewRegistry(opts...)
	for _, ph := range d.Placeholders {
		if ph.Name == "" {
			return nil, nil, fmt.Errorf("definition %q: placeholder with no name", d.Name)
		}
		if !referenced[ph.Name] {
			return nil, nil, fmt.Errorf("definition %q: validator for unmapped placeholder %q", d.Name, ph.Name)
		}
		fn, err := ph.validator()
		if err != nil {
			return nil, nil, fmt.Errorf("definition %q, placeholder %q: %w", d.Name, ph.Name, err)
		}
		if fn != nil {
			registry.Register(ph.Name, fn)
		}
	}

	return tmpl, registry, nil
}

func (p *PlaceholderDef) validator() (Validator, error) {
	if p.Pattern != "" && len(p.Choices) > 0 {
		return nil, fmt.Errorf("pattern and choices are mutually exclusive")
	}

	if p.Pattern != "" {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		pattern := p.Pattern
		return func(value string) error {
			if !re.MatchString(value) {
				return fmt.Errorf("does not match pattern %s", pattern)
			}
			return nil
		}, nil
	}

	if len(p.Choices) > 0 {
		allowed := make(map[string]bool, len(p.Choices))
		for _, choice := range p.Choices {
			allowed[choice] = true
		}
		choices := strings.Join(p.Choices, ", ")
		return func(value string) error {
			if !allowed[value] {
				return fmt.Errorf("not one of: %s", choices)
			}
			return nil
		}, nil
	}

	return nil, nil
}

func parseDefinition(data []byte) (*Definition, error) {
	def := &Definition{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, err
	}
	if strings.TrimSpace(def.Name) == "" {
		return nil, fmt.Errorf("definition name is required")
	}
	if strings.TrimSpace(def.Command) == "" {
		return nil, fmt.Errorf("definition command is required")
	}
	return def, nil
}
