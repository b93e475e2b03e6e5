package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/opencode-ai/shellshim/internal/cli"
)

func main() {
	// Installed under another name (typically a symlink in ROOT/bin), the
	// binary is pure launcher: arguments pass through verbatim, nothing is
	// parsed as a flag.
	name := strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
	if name != "shellshim" {
		os.Exit(cli.Launch(os.Args[0], os.Args[1:]))
	}

	os.Exit(cli.Execute())
}
