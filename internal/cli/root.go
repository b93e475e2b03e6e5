// Package cli implements the shellshim command surface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/opencode-ai/shellshim/internal/config"
	"github.com/opencode-ai/shellshim/internal/logging"
)

var (
	cfgFile    string
	jsonOutput bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shellshim",
	Short: "Wrapper launcher and safer shell-command templating",
	Long: `shellshim bundles two small utilities:

  - a launcher that fronts an interpreter script installed under
    ROOT/libexec, adjusting the module search path before running it
    (invoke shellshim through a symlinked program name, or use 'run');
  - a template builder that validates untrusted values before
    substituting them into a shell command line ('fill', 'check').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		logging.Setup(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/shellshim/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		PrintError(err)
		return 1
	}
	return 0
}

// GetConfig returns the loaded configuration; before any command has run
// it falls back to the defaults.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}
