package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// installTree builds ROOT/bin/NAME and ROOT/libexec/NAME<suffix>, returning
// the argv0 path for the wrapper.
func installTree(t *testing.T, name, script string, mode os.FileMode) string {
	t.Helper()
	root := t.TempDir()

	binDir := filepath.Join(root, "bin")
	libexecDir := filepath.Join(root, "libexec")
	for _, dir := range []string{binDir, libexecDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	argv0 := filepath.Join(binDir, name)
	if err := os.WriteFile(argv0, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write wrapper: %v", err)
	}
	if err := os.WriteFile(filepath.Join(libexecDir, name+".py"), []byte(script), mode); err != nil {
		t.Fatalf("write script: %v", err)
	}

	return argv0
}

func noEnv(string) (string, bool) { return "", false }

func TestResolve(t *testing.T) {
	argv0 := installTree(t, "myprog", "print('hi')\n", 0o755)
	root := filepath.Dir(filepath.Dir(argv0))

	plan, err := Resolve(argv0, []string{"--flag", "arg"}, Options{
		Environ:   []string{"HOME=/home/u"},
		LookupEnv: noEnv,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if plan.Name != "myprog" {
		t.Fatalf("Name = %q", plan.Name)
	}
	if plan.Root != root {
		t.Fatalf("Root = %q, want %q", plan.Root, root)
	}
	if want := filepath.Join(root, "libexec", "myprog.py"); plan.Script != want {
		t.Fatalf("Script = %q, want %q", plan.Script, want)
	}
	if plan.Interpreter != "python" {
		t.Fatalf("Interpreter = %q, want python", plan.Interpreter)
	}
	if len(plan.Args) != 2 || plan.Args[0] != "--flag" || plan.Args[1] != "arg" {
		t.Fatalf("Args = %v", plan.Args)
	}
	if plan.ID == "" {
		t.Fatalf("plan has no launch id")
	}
}

func TestResolveSetsSearchPath(t *testing.T) {
	argv0 := installTree(t, "myprog", "", 0o755)
	root := filepath.Dir(filepath.Dir(argv0))
	modulePath := filepath.Join(root, "lib", "python")

	plan, err := Resolve(argv0, nil, Options{
		Environ:   []string{"HOME=/home/u", "PYTHONPATH=/existing"},
		LookupEnv: noEnv,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := "PYTHONPATH=" + modulePath + string(os.PathListSeparator) + "/existing"
	found := false
	for _, entry := range plan.Env {
		if strings.HasPrefix(entry, "PYTHONPATH=") {
			if entry != want {
				t.Fatalf("search path entry = %q, want %q", entry, want)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("no PYTHONPATH entry in %v", plan.Env)
	}

	// Other entries pass through in order.
	if plan.Env[0] != "HOME=/home/u" {
		t.Fatalf("environment reordered: %v", plan.Env)
	}
}

func TestResolveSetsSearchPathWhenUnset(t *testing.T) {
	argv0 := installTree(t, "myprog", "", 0o755)
	root := filepath.Dir(filepath.Dir(argv0))

	plan, err := Resolve(argv0, nil, Options{
		Environ:   []string{"HOME=/home/u"},
		LookupEnv: noEnv,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := "PYTHONPATH=" + filepath.Join(root, "lib", "python")
	found := false
	for _, entry := range plan.Env {
		if entry == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q in %v", want, plan.Env)
	}
}

func TestResolveInterpreterOverride(t *testing.T) {
	argv0 := installTree(t, "myprog", "", 0o755)

	env := map[string]string{"SHELLSHIM_INTERPRETER": "python3.12"}
	plan, err := Resolve(argv0, nil, Options{
		Environ: []string{},
		LookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Interpreter != "python3.12" {
		t.Fatalf("Interpreter = %q, want python3.12", plan.Interpreter)
	}
}

func TestResolveInterpreterPythonFallback(t *testing.T) {
	argv0 := installTree(t, "myprog", "", 0o755)

	env := map[string]string{"PYTHON": "pypy"}
	plan, err := Resolve(argv0, nil, Options{
		Environ: []string{},
		LookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Interpreter != "pypy" {
		t.Fatalf("Interpreter = %q, want pypy", plan.Interpreter)
	}
}

func TestResolveMissingScript(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	argv0 := filepath.Join(binDir, "myprog")

	_, err := Resolve(argv0, nil, Options{Environ: []string{}, LookupEnv: noEnv})
	if !errors.Is(err, ErrScriptMissing) {
		t.Fatalf("Resolve error = %v, want ErrScriptMissing", err)
	}
	if want := filepath.Join(root, "libexec", "myprog.py"); !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not name the missing path %q", err, want)
	}
}

func TestResolveNonExecutableScript(t *testing.T) {
	argv0 := installTree(t, "myprog", "", 0o644)

	_, err := Resolve(argv0, nil, Options{Environ: []string{}, LookupEnv: noEnv})
	if !errors.Is(err, ErrScriptNotExecutable) {
		t.Fatalf("Resolve error = %v, want ErrScriptNotExecutable", err)
	}
}

func TestResolveEmptyArgv0(t *testing.T) {
	if _, err := Resolve("", nil, Options{LookupEnv: noEnv}); !errors.Is(err, ErrEmptyArgv0) {
		t.Fatalf("error = %v, want ErrEmptyArgv0", err)
	}
}

func TestRunPropagatesExitCode(t *testing.T) {
	argv0 := installTree(t, "myprog", "#!/bin/sh\nexit 7\n", 0o755)

	plan, err := Resolve(argv0, nil, Options{
		Environ:   []string{"PATH=" + os.Getenv("PATH")},
		LookupEnv: noEnv,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	plan.Interpreter = "sh"

	code, err := Run(context.Background(), plan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
}

func TestRunForwardsArgsAndEnv(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	script := "#!/bin/sh\nprintf '%s|%s' \"$*\" \"$PYTHONPATH\" > \"$OUT\"\n"
	argv0 := installTree(t, "myprog", script, 0o755)
	root := filepath.Dir(filepath.Dir(argv0))

	plan, err := Resolve(argv0, []string{"one", "two words"}, Options{
		Environ: []string{
			"PATH=" + os.Getenv("PATH"),
			"OUT=" + out,
			"PYTHONPATH=/prior",
		},
		LookupEnv: noEnv,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	plan.Interpreter = "sh"

	code, err := Run(context.Background(), plan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got := string(data)
	wantArgs := "one two words"
	wantPath := filepath.Join(root, "lib", "python") + string(os.PathListSeparator) + "/prior"
	if got != wantArgs+"|"+wantPath {
		t.Fatalf("child saw %q, want args %q and search path %q", got, wantArgs, wantPath)
	}
}

func TestRunMissingInterpreter(t *testing.T) {
	argv0 := installTree(t, "myprog", "#!/bin/sh\n", 0o755)

	plan, err := Resolve(argv0, nil, Options{Environ: []string{}, LookupEnv: noEnv})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	plan.Interpreter = filepath.Join(t.TempDir(), "no-such-interpreter")

	code, err := Run(context.Background(), plan)
	if err == nil {
		t.Fatalf("expected spawn error")
	}
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
