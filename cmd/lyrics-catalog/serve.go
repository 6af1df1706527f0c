package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/db"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
	"github.com/justestif/go-lyrics-catalog/internal/web"
)

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalog HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from LYRICS_ADDR)",
			},
			&cli.StringFlag{
				Name:  "database-url",
				Usage: "PostgreSQL connection string; empty keeps songs in memory",
			},
		},
		Action: r.Serve,
	}
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "database-url",
				Usage: "PostgreSQL connection string (default from DATABASE_URL)",
			},
		},
		Action: r.Migrate,
	}
}

// Serve starts the API server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := r.config.Addr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}

	store, closeStore, err := r.openStore(ctx, cmd.String("database-url"))
	if err != nil {
		return err
	}
	defer closeStore()

	gate := auth.NewGate(r.config.Admin, r.config.SessionTTL)
	if !gate.Configured() {
		r.logger.Warn("admin login disabled; set ADMIN_USERNAME and ADMIN_PASSWORD to enable editing")
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:   addr,
		Songs:  songs.NewService(store),
		Gate:   gate,
		Logger: r.logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

// Migrate applies pending migrations and reports each one.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	url := r.databaseURL(cmd.String("database-url"))
	if url == "" {
		return fmt.Errorf("no database configured: set DATABASE_URL or pass --database-url")
	}

	database, err := db.New(ctx, url)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return r.writef("Database is up to date.\n")
	}
	for _, v := range applied {
		if err := r.writef("Applied migration %04d\n", v); err != nil {
			return err
		}
	}
	return nil
}

// openStore connects to PostgreSQL and migrates it, or falls back to memory when no URL is set.
func (r *Runner) openStore(ctx context.Context, flagURL string) (songs.Store, func(), error) {
	url := r.databaseURL(flagURL)
	if url == "" {
		r.logger.Warn("DATABASE_URL not set; songs are kept in memory and lost on exit")
		return db.NewMemorySongRepository(), func() {}, nil
	}

	database, err := db.New(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	applied, err := database.Migrate(ctx)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	if len(applied) > 0 {
		r.logger.Info("applied migrations", "versions", applied)
	}
	return database.Songs(), database.Close, nil
}

func (r *Runner) databaseURL(flagURL string) string {
	if flagURL != "" {
		return flagURL
	}
	return r.config.DatabaseURL
}
