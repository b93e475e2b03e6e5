// Package config loads shellshim configuration from defaults, an optional
// YAML config file, and SHELLSHIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds every tunable for both the launcher and the template builder.
type Config struct {
	// Interpreter is the binary used to run the wrapped script.
	Interpreter string `mapstructure:"interpreter"`

	// InterpreterEnv names the environment variable that overrides
	// Interpreter at launch time. PYTHON is honored as a fallback.
	InterpreterEnv string `mapstructure:"interpreter_env"`

	// ScriptSuffix is appended to the program name to form the target
	// script name under ROOT/libexec.
	ScriptSuffix string `mapstructure:"script_suffix"`

	// ModuleDir is the directory under ROOT/lib prepended to the search path.
	ModuleDir string `mapstructure:"module_dir"`

	// SearchPathVar is the environment variable that receives the
	// module search path (PYTHONPATH for the default interpreter).
	SearchPathVar string `mapstructure:"search_path_var"`

	// PTY runs the wrapped script under a pseudo-terminal when stdin is one.
	PTY bool `mapstructure:"pty"`

	// StrictBindings makes fill reject bindings the template never uses.
	StrictBindings bool `mapstructure:"strict_bindings"`

	// TemplateDir is where the templates subcommands look for definitions.
	TemplateDir string `mapstructure:"template_dir"`

	// LogLevel sets the zerolog level for diagnostics.
	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Interpreter:    "python",
		InterpreterEnv: "SHELLSHIM_INTERPRETER",
		ScriptSuffix:   ".py",
		ModuleDir:      "python",
		SearchPathVar:  "PYTHONPATH",
		LogLevel:       "warn",
	}
}

// Load reads configuration. An empty path means "use the default location
// if it exists"; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("interpreter", defaults.Interpreter)
	v.SetDefault("interpreter_env", defaults.InterpreterEnv)
	v.SetDefault("script_suffix", defaults.ScriptSuffix)
	v.SetDefault("module_dir", defaults.ModuleDir)
	v.SetDefault("search_path_var", defaults.SearchPathVar)
	v.SetDefault("pty", false)
	v.SetDefault("strict_bindings", false)
	v.SetDefault("template_dir", "")
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix("SHELLSHIM")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if defaultPath, err := DefaultPath(); err == nil {
		v.SetConfigFile(defaultPath)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *fs.PathError
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &pathErr) && !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", defaultPath, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shellshim", "config.yaml"), nil
}
