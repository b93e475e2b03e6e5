// Package launcher resolves a wrapper invocation into the companion script
// it fronts, then runs that script with an adjusted module search path.
//
// The wrapper is installed as ROOT/bin/NAME; the script it launches lives
// at ROOT/libexec/NAME plus an interpreter suffix, and ROOT/lib/<module-dir>
// is prepended to the interpreter's search-path variable before the script
// starts. Resolution is split from execution so every configuration error
// surfaces before a process is spawned.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/opencode-ai/shellshim/internal/logging"
)

var (
	// ErrEmptyArgv0 indicates the invocation path could not be determined.
	ErrEmptyArgv0 = errors.New("invocation path is empty")
	// ErrScriptMissing indicates the target script does not exist.
	ErrScriptMissing = errors.New("script does not exist")
	// ErrScriptNotExecutable indicates the target script exists but lacks
	// an execute bit.
	ErrScriptNotExecutable = errors.New("script is not executable")
)

// Options configure resolution. Zero values take the conventional Python
// wrapper defaults.
type Options struct {
	// Interpreter runs the target script when no override variable is set.
	Interpreter string

	// InterpreterEnv names the override variable. PYTHON is consulted as a
	// fallback when the named variable is unset.
	InterpreterEnv string

	// ScriptSuffix is appended to the program name under ROOT/libexec.
	ScriptSuffix string

	// ModuleDir is the directory under ROOT/lib added to the search path.
	ModuleDir string

	// SearchPathVar receives the module search path in the child.
	SearchPathVar string

	// UsePTY runs the child under a pseudo-terminal.
	UsePTY bool

	// Environ is the base environment; defaults to os.Environ().
	Environ []string

	// LookupEnv resolves override variables; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Plan is a fully resolved launch: everything Run needs, nothing left to
// fail except the spawn itself.
type Plan struct {
	ID          string
	Name        string
	Root        string
	Script      string
	Interpreter string
	Args        []string
	Env         []string
	UsePTY      bool
}

func (o *Options) applyDefaults() {
	if o.Interpreter == "" {
		o.Interpreter = "python"
	}
	if o.InterpreterEnv == "" {
		o.InterpreterEnv = "SHELLSHIM_INTERPRETER"
	}
	if o.ScriptSuffix == "" {
		o.ScriptSuffix = ".py"
	}
	if o.ModuleDir == "" {
		o.ModuleDir = "python"
	}
	if o.SearchPathVar == "" {
		o.SearchPathVar = "PYTHONPATH"
	}
	if o.Environ == nil {
		o.Environ = os.Environ()
	}
	if o.LookupEnv == nil {
		o.LookupEnv = os.LookupEnv
	}
}

// Resolve derives the program name and root from argv0, verifies the
// target script, and builds the child environment. Arguments are carried
// into the plan verbatim.
func Resolve(argv0 string, args []string, opts Options) (*Plan, error) {
	opts.applyDefaults()

	if strings.TrimSpace(argv0) == "" {
		return nil, ErrEmptyArgv0
	}

	abs, err := filepath.Abs(argv0)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", argv0, err)
	}

	name := filepath.Base(abs)
	root := filepath.Dir(filepath.Dir(abs))
	script := filepath.Join(root, "libexec", name+opts.ScriptSuffix)

	info, err := os.Stat(script)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", script, ErrScriptMissing)
		}
		return nil, fmt.Errorf("stat %s: %w", script, err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return nil, fmt.Errorf("%s: %w", script, ErrScriptNotExecutable)
	}

	interpreter := opts.Interpreter
	if value, ok := opts.LookupEnv(opts.InterpreterEnv); ok && value != "" {
		interpreter = value
	} else if value, ok := opts.LookupEnv("PYTHON"); ok && value != "" {
		interpreter = value
	}

	modulePath := filepath.Join(root, "lib", opts.ModuleDir)

	return &Plan{
		ID:          uuid.NewString(),
		Name:        name,
		Root:        root,
		Script:      script,
		Interpreter: interpreter,
		Args:        args,
		Env:         prependSearchPath(opts.Environ, opts.SearchPathVar, modulePath),
		UsePTY:      opts.UsePTY,
	}, nil
}

// prependSearchPath returns env with modulePath prepended to variable,
// keeping any prior value after the platform list separator. All other
// entries pass through in order.
func prependSearchPath(env []string, variable, modulePath string) []string {
	prefix := variable + "="
	out := make([]string, 0, len(env)+1)
	replaced := false

	for _, entry := range env {
		if !strings.HasPrefix(entry, prefix) {
			out = append(out, entry)
			continue
		}
		prior := entry[len(prefix):]
		value := modulePath
		if prior != "" {
			value = modulePath + string(os.PathListSeparator) + prior
		}
		out = append(out, prefix+value)
		replaced = true
	}

	if !replaced {
		out = append(out, prefix+modulePath)
	}

	return out
}

// Run spawns the interpreter on the plan's script and waits for it,
// returning the child's exit code. Stdio is inherited (or proxied through
// a pty when the plan asks for one). A child killed by a signal reports
// 128+signal, matching shell convention. The error return covers spawn
// failures only; a nonzero child exit is not an error.
func Run(ctx context.Context, plan *Plan) (int, error) {
	if plan == nil {
		return 1, fmt.Errorf("plan is required")
	}

	logger := logging.Component("launcher")
	logger.Debug().
		Str("launch_id", plan.ID).
		Str("script", plan.Script).
		Str("interpreter", plan.Interpreter).
		Msg("launching wrapped script")

	argv := make([]string, 0, len(plan.Args)+1)
	argv = append(argv, plan.Script)
	argv = append(argv, plan.Args...)

	cmd := exec.CommandContext(ctx, plan.Interpreter, argv...)
	cmd.Env = plan.Env

	var err error
	if plan.UsePTY {
		err = runPTY(cmd)
	} else {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		err = cmd.Run()
	}

	if err == nil {
		return 0, nil
	}

	exitErr := new(exec.ExitError)
	if errors.As(err, &exitErr) {
		return exitCode(exitErr), nil
	}

	return 1, fmt.Errorf("run %s: %w", plan.Script, err)
}

func runPTY(cmd *exec.Cmd) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer ptmx.Close()

	go func() {
		_, _ = io.Copy(ptmx, os.Stdin)
	}()
	_, _ = io.Copy(os.Stdout, ptmx)

	return cmd.Wait()
}

func exitCode(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return 1
}
