package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/shellshim/internal/config"
	"github.com/opencode-ai/shellshim/internal/launcher"
	"github.com/opencode-ai/shellshim/internal/logging"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().SetInterspersed(false)
}

var runCmd = &cobra.Command{
	Use:   "run <name-or-path> [args...]",
	Short: "Launch the wrapped script for a program name",
	Long: `Launch the companion script for a wrapper, exactly as invoking the
wrapper through a symlink would: the script lives at ROOT/libexec/<name>
plus the configured suffix, ROOT/lib/<module-dir> is prepended to the
search-path variable, and the script's exit code becomes ours.`,
	Example: `  # Equivalent to invoking /opt/app/bin/myprog arg1 arg2 via symlink
  shellshim run /opt/app/bin/myprog arg1 arg2`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code := Launch(args[0], args[1:])
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

// Launch resolves and runs a wrapped script, reporting configuration
// errors on stderr. It returns the process exit code and never panics;
// main uses it directly for symlinked invocations.
func Launch(argv0 string, args []string) int {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logging.Setup(cfg.LogLevel)

	plan, err := launcher.Resolve(argv0, args, launcherOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(argv0), err)
		return 1
	}

	code, err := launcher.Run(context.Background(), plan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", plan.Name, err)
		return 1
	}
	return code
}

func launcherOptions(cfg *config.Config) launcher.Options {
	return launcher.Options{
		Interpreter:    cfg.Interpreter,
		InterpreterEnv: cfg.InterpreterEnv,
		ScriptSuffix:   cfg.ScriptSuffix,
		ModuleDir:      cfg.ModuleDir,
		SearchPathVar:  cfg.SearchPathVar,
		UsePTY:         cfg.PTY && hasTTY(),
	}
}
