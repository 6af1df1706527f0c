package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/justestif/go-lyrics-catalog/internal/catalog"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "List songs, newest first, with optional search, genre filter and sort",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.StringFlag{
				Name:    "search",
				Aliases: []string{"s"},
				Usage:   "Case-insensitive match on title, artist or album",
			},
			&cli.StringFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Only songs of this genre",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort by title, artist or year",
				Value: string(catalog.SortByTitle),
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of pages to load",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Load every page",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Songs per page",
				Value: catalog.PublicPageSize,
			},
			&cli.BoolFlag{
				Name:  "genres",
				Usage: "List the genres of the loaded songs instead of the songs",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Browse,
	}
}

func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print one song with its full lyrics",
		Flags: []cli.Flag{
			apiURLFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Action: r.Show,
	}
}

// Browse loads pages into a catalog view and prints the derived list.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	pageSize := cmd.Int("page-size")
	if pageSize < 1 {
		return fmt.Errorf("--page-size must be at least 1")
	}

	view := catalog.NewView(r.apiClient(cmd), pageSize)
	if err := loadPages(ctx, view, cmd.Int("pages"), cmd.Bool("all")); err != nil {
		return err
	}

	if cmd.Bool("genres") {
		genres := view.Genres()
		if cmd.Bool("json") {
			return r.writeJSON(genres)
		}
		for _, g := range genres {
			if err := r.writef("%s\n", g); err != nil {
				return err
			}
		}
		return nil
	}

	list := view.Derive(catalog.Query{
		Search: cmd.String("search"),
		Genre:  cmd.String("genre"),
		Sort:   catalog.ParseSortKey(cmd.String("sort")),
	})

	if cmd.Bool("json") {
		return r.writeJSON(list)
	}

	if len(list) == 0 {
		if view.Total() == 0 {
			return r.writef("No songs in the catalog yet.\n")
		}
		return r.writef("No songs found. Try a different search or genre.\n")
	}

	if err := r.writef("%s\n", songTable(list)); err != nil {
		return err
	}

	footer := fmt.Sprintf("Showing %d of %d loaded songs (%d in catalog).", len(list), len(view.Songs()), view.Total())
	if view.HasMore() {
		footer += " More available: use --pages or --all."
	}
	return r.writef("%s\n", mutedStyle.Render(footer))
}

// Show prints a song's metadata followed by its lyrics, line breaks intact.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("song id required: lyrics-catalog show <id>")
	}

	song, err := r.apiClient(cmd).Get(ctx, id)
	if err != nil {
		if errors.Is(err, songs.ErrNotFound) {
			return fmt.Errorf("no song with id %s", id)
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(song.Title) + "\n")
	fmt.Fprintf(&b, "%s · %s (%d)\n", song.Artist, song.Album, song.Year)
	b.WriteString(mutedStyle.Render(song.Genre+" · "+song.Duration) + "\n\n")
	b.WriteString(song.Lyrics)
	if !strings.HasSuffix(song.Lyrics, "\n") {
		b.WriteString("\n")
	}
	return r.writef("%s", b.String())
}

// loadPages loads the first page, then up to pages-1 more, or every page when all is set.
func loadPages(ctx context.Context, view *catalog.View, pages int, all bool) error {
	if err := view.LoadFirstPage(ctx); err != nil {
		return fmt.Errorf("loading songs: %w", err)
	}
	for i := 1; view.HasMore() && (all || i < pages); i++ {
		if err := view.LoadNextPage(ctx); err != nil {
			return fmt.Errorf("loading more songs: %w", err)
		}
	}
	return nil
}

func songTable(list []songs.Song) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.ID, s.Title, s.Artist, s.Album, strconv.Itoa(s.Year), s.Genre, s.Duration})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "TITLE", "ARTIST", "ALBUM", "YEAR", "GENRE", "DURATION").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
