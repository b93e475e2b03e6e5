// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.Mutex
	root   zerolog.Logger
	inited bool
)

// Setup initializes the root logger. Level accepts zerolog level names
// ("debug", "info", "warn", ...); anything unparseable falls back to warn.
// Diagnostics go to stderr so they never mix with wrapped-script output.
func Setup(level string) {
	mu.Lock()
	defer mu.Unlock()

	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		parsed = zerolog.WarnLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	root = zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
	inited = true
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = root.Output(w)
	inited = true
}

// Component returns a logger tagged with a component name.
func Component(name string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !inited {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		root = zerolog.New(writer).Level(zerolog.WarnLevel).With().Timestamp().Logger()
		inited = true
	}
	return root.With().Str("component", name).Logger()
}
