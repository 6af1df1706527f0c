package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/client"
	"github.com/justestif/go-lyrics-catalog/internal/config"
)

// Runner holds the dependencies shared by command actions.
type Runner struct {
	config   *config.Config
	logger   *log.Logger
	input    io.Reader
	output   io.Writer
	sessions *auth.SessionCache
	now      func() time.Time
}

// RunnerOpts configures a Runner. Nil fields get defaults.
type RunnerOpts struct {
	Config   *config.Config
	Logger   *log.Logger
	Input    io.Reader
	Output   io.Writer
	Sessions *auth.SessionCache
}

// NewRunner creates a Runner from opts.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = &config.Config{
			SessionTTL: auth.DefaultSessionTTL,
			APIURL:     client.DefaultBaseURL,
			LogLevel:   log.InfoLevel,
		}
	}
	if opts.Logger == nil {
		opts.Logger = newLogger(nil, opts.Config.LogLevel)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		input:    opts.Input,
		output:   opts.Output,
		sessions: opts.Sessions,
		now:      time.Now,
	}
}

// App builds the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:      "lyrics-catalog",
		Usage:     "Serve, browse and curate a catalog of song lyrics",
		Version:   "0.1.0",
		Writer:    r.output,
		ErrWriter: r.output,
		Commands:  r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range []func(*Runner) *cli.Command{
		serveCommand, migrateCommand, browseCommand, showCommand, adminCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// apiURL returns the configured API base URL, overridden by --api-url.
func (r *Runner) apiURL(cmd *cli.Command) string {
	if u := cmd.String("api-url"); u != "" {
		return u
	}
	return r.config.APIURL
}

// apiClient returns a client for apiURL.
func (r *Runner) apiClient(cmd *cli.Command) *client.Client {
	return client.New(r.apiURL(cmd))
}

// sessionCache returns the admin session cache, creating the default one on first use.
func (r *Runner) sessionCache() (*auth.SessionCache, error) {
	if r.sessions != nil {
		return r.sessions, nil
	}
	cache, err := auth.DefaultSessionCache()
	if err != nil {
		return nil, fmt.Errorf("locating session cache: %w", err)
	}
	r.sessions = cache
	return cache, nil
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	output = append(output, '\n')
	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (r *Runner) writef(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func apiURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "api-url",
		Usage: "Base URL of the catalog API (default from LYRICS_API_URL)",
	}
}
