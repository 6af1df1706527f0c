package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/catalog"
	"github.com/justestif/go-lyrics-catalog/internal/client"
	"github.com/justestif/go-lyrics-catalog/internal/editor"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

// Errors with a fixed user-facing wording; see userMessage.
var (
	errNotLoggedIn        = errors.New("not logged in: run `lyrics-catalog admin login` first")
	errInvalidCredentials = errors.New("invalid credentials")
	errSongNotFound       = errors.New("song not found")
)

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Log in and create, edit or delete songs",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with the admin credentials and cache the session",
				Flags: []cli.Flag{
					apiURLFlag(),
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						Usage:   "Admin username (default from ADMIN_USERNAME)",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Admin password; read from stdin when omitted",
					},
				},
				Action: r.AdminLogin,
			},
			{
				Name:   "logout",
				Usage:  "End the cached admin session",
				Flags:  []cli.Flag{apiURLFlag()},
				Action: r.AdminLogout,
			},
			{
				Name:   "add",
				Usage:  "Create a song",
				Flags:  append(songFlags(), apiURLFlag()),
				Action: r.AdminAdd,
			},
			{
				Name:  "edit",
				Usage: "Overwrite a song; unset flags keep their current values",
				Flags: append(songFlags(), apiURLFlag()),
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.AdminEdit,
			},
			{
				Name:  "delete",
				Usage: "Delete a song after confirmation",
				Flags: []cli.Flag{
					apiURLFlag(),
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
				},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.AdminDelete,
			},
		},
	}
}

func songFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "artist"},
		&cli.StringFlag{Name: "album"},
		&cli.IntFlag{Name: "year"},
		&cli.StringFlag{Name: "genre"},
		&cli.StringFlag{Name: "duration", Usage: "Duration as text, e.g. 3:45"},
		&cli.StringFlag{Name: "lyrics"},
		&cli.StringFlag{Name: "lyrics-file", Usage: "Read lyrics from a file, or - for stdin"},
	}
}

// AdminLogin exchanges credentials for a session and caches it.
func (r *Runner) AdminLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	if username == "" {
		username = r.config.Admin.Username
	}
	if username == "" {
		return fmt.Errorf("username required: pass --username or set ADMIN_USERNAME")
	}

	password := cmd.String("password")
	if password == "" {
		if err := r.writef("Password: "); err != nil {
			return err
		}
		line, err := bufio.NewReader(r.input).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	cache, err := r.sessionCache()
	if err != nil {
		return err
	}

	session, err := r.apiClient(cmd).Login(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errInvalidCredentials
	case err != nil:
		return err
	}

	if err := cache.Save(r.apiURL(cmd), session); err != nil {
		return err
	}
	r.logger.Debug("session cached", "path", cache.Path())
	return r.writef("Logged in as %s until %s.\n", session.Username, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
}

// AdminLogout ends the session on the server and removes the cached copy.
func (r *Runner) AdminLogout(ctx context.Context, cmd *cli.Command) error {
	cache, err := r.sessionCache()
	if err != nil {
		return err
	}
	server, session, err := cache.Peek()
	if err != nil && !errors.Is(err, auth.ErrMalformedSession) {
		return err
	}
	if session != nil {
		c := client.New(server)
		c.SetSession(session)
		if err := c.Logout(ctx); err != nil {
			r.logger.Warn("server logout failed; removing cached session anyway", "err", err)
		}
	}
	if err := cache.Delete(); err != nil {
		return err
	}
	return r.writef("Logged out.\n")
}

// AdminAdd creates a song from flags.
func (r *Runner) AdminAdd(ctx context.Context, cmd *cli.Command) error {
	flow, _, _, err := r.newWorkflow(ctx, cmd)
	if err != nil {
		return err
	}
	if err := flow.StartCreate(); err != nil {
		return err
	}

	draft, err := r.applySongFlags(cmd, flow.Draft())
	if err != nil {
		return err
	}
	song, err := flow.Submit(ctx, draft)
	if err != nil {
		return r.mutationError(err)
	}
	return r.writef("Created %q (%s).\n", song.Title, song.ID)
}

// AdminEdit overwrites a song; flags that were not given keep the stored value.
func (r *Runner) AdminEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id required: lyrics-catalog admin edit <id>")
	}
	flow, view, c, err := r.newWorkflow(ctx, cmd)
	if err != nil {
		return err
	}

	song, err := r.findSong(ctx, view, c, id)
	if err != nil {
		return err
	}
	if err := flow.StartEdit(*song); err != nil {
		return err
	}

	draft, err := r.applySongFlags(cmd, flow.Draft())
	if err != nil {
		_ = flow.Cancel()
		return err
	}
	updated, err := flow.Submit(ctx, draft)
	if err != nil {
		return r.mutationError(err)
	}
	return r.writef("Updated %q (%s).\n", updated.Title, updated.ID)
}

// AdminDelete deletes a song once the user confirms.
func (r *Runner) AdminDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id required: lyrics-catalog admin delete <id>")
	}
	flow, view, c, err := r.newWorkflow(ctx, cmd)
	if err != nil {
		return err
	}

	song, err := r.findSong(ctx, view, c, id)
	if err != nil {
		return err
	}
	if err := flow.RequestDelete(*song); err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm(fmt.Sprintf("Delete %q by %s? [y/N] ", song.Title, song.Artist))
		if err != nil {
			return err
		}
		if !ok {
			_ = flow.Cancel()
			return r.writef("Cancelled.\n")
		}
	}

	if err := flow.ConfirmDelete(ctx); err != nil {
		return r.mutationError(err)
	}
	return r.writef("Song deleted successfully.\n")
}

// newWorkflow builds an editor workflow over the API using the cached session.
// The first dashboard page is loaded so edits and deletes reconcile a real list.
func (r *Runner) newWorkflow(ctx context.Context, cmd *cli.Command) (*editor.Workflow, *catalog.View, *client.Client, error) {
	cache, err := r.sessionCache()
	if err != nil {
		return nil, nil, nil, err
	}
	session, err := cache.Load(r.apiURL(cmd), r.now())
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		return nil, nil, nil, fmt.Errorf("admin session expired: run `lyrics-catalog admin login` again")
	case errors.Is(err, auth.ErrMalformedSession):
		return nil, nil, nil, errNotLoggedIn
	case err != nil:
		return nil, nil, nil, err
	case session == nil:
		return nil, nil, nil, errNotLoggedIn
	}

	c := r.apiClient(cmd)
	c.SetSession(session)
	view := catalog.NewView(c, catalog.AdminPageSize)
	if err := view.LoadFirstPage(ctx); err != nil {
		return nil, nil, nil, r.mutationError(err)
	}
	return editor.New(c, view, session), view, c, nil
}

// findSong returns the song with id from the loaded dashboard page, asking
// the API for songs beyond it.
func (r *Runner) findSong(ctx context.Context, view *catalog.View, c *client.Client, id string) (*songs.Song, error) {
	for _, s := range view.Songs() {
		if s.ID == id {
			return &s, nil
		}
	}
	song, err := c.Get(ctx, id)
	if err != nil {
		return nil, r.mutationError(err)
	}
	return song, nil
}

// mutationError turns service errors into messages for the terminal.
// A session the server no longer accepts is dropped from the cache.
func (r *Runner) mutationError(err error) error {
	var verr *songs.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := verr.FieldErrors()
		if len(fields) == 0 {
			return err
		}
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		slices.Sort(names)
		msgs := make([]string, 0, len(names))
		for _, name := range names {
			msgs = append(msgs, fields[name])
		}
		return fmt.Errorf("invalid song: %s", strings.Join(msgs, "; "))
	case errors.Is(err, songs.ErrNotFound):
		return errSongNotFound
	case errors.Is(err, client.ErrUnauthorized):
		if cache, cerr := r.sessionCache(); cerr == nil {
			_ = cache.Delete()
		}
		return errNotLoggedIn
	case errors.Is(err, songs.ErrUnavailable):
		return fmt.Errorf("catalog unavailable, try again later: %w", err)
	default:
		return err
	}
}

// applySongFlags overlays the song flags that were set onto draft.
func (r *Runner) applySongFlags(cmd *cli.Command, draft songs.Fields) (songs.Fields, error) {
	for name, dst := range map[string]*string{
		"title":    &draft.Title,
		"artist":   &draft.Artist,
		"album":    &draft.Album,
		"genre":    &draft.Genre,
		"duration": &draft.Duration,
		"lyrics":   &draft.Lyrics,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}
	if cmd.IsSet("year") {
		draft.Year = cmd.Int("year")
	}

	if path := cmd.String("lyrics-file"); path != "" {
		lyrics, err := r.readLyrics(path)
		if err != nil {
			return draft, err
		}
		draft.Lyrics = lyrics
	}
	return draft, nil
}

func (r *Runner) readLyrics(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r.input)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading lyrics: %w", err)
	}
	return string(data), nil
}

func (r *Runner) confirm(prompt string) (bool, error) {
	if err := r.writef("%s", prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
