// Command lyrics-catalog serves and browses a catalog of song lyrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-lyrics-catalog/internal/config"
)

func main() {
	if err := run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runner := NewRunner(RunnerOpts{
		Config: cfg,
		Logger: newLogger(stderr, cfg.LogLevel),
		Input:  stdin,
		Output: stdout,
	})

	return runner.App().Run(ctx, args)
}

// userMessage renders err for the terminal, using the catalog's wording for known failures.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errInvalidCredentials):
		return "Invalid credentials. Please try again."
	case errors.Is(err, errSongNotFound):
		return "Song not found"
	default:
		return err.Error()
	}
}

// newLogger creates the process logger. Everything below main receives it explicitly.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}
