package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

// SortKey selects the presentation order of a derived view.
type SortKey string

// Supported sort keys.
const (
	SortByTitle  SortKey = "title"
	SortByArtist SortKey = "artist"
	SortByYear   SortKey = "year"
)

// ParseSortKey maps a user-supplied key onto a SortKey.
// Unknown or empty keys fall back to SortByTitle.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortByArtist:
		return SortByArtist
	case SortByYear:
		return SortByYear
	default:
		return SortByTitle
	}
}

// Query describes a derived projection of the accumulated songs.
type Query struct {
	Search string  // case-insensitive substring of title, artist or album
	Genre  string  // exact genre, empty for all
	Sort   SortKey // presentation order
}

// Derive filters and sorts songs according to q using the collation rules of tag.
// The input slice is never modified.
//
// Title and artist sort ascending; year sorts newest first. All orders are stable.
func Derive(list []songs.Song, q Query, tag language.Tag) []songs.Song {
	out := Filter(list, q.Search, q.Genre)
	Sort(out, q.Sort, tag)
	return out
}

// Filter returns the songs matching search and genre in their original order.
func Filter(list []songs.Song, search, genre string) []songs.Song {
	fold := cases.Fold()
	needle := fold.String(search)

	out := make([]songs.Song, 0, len(list))
	for _, s := range list {
		if genre != "" && s.Genre != genre {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(s.Title), needle) &&
			!strings.Contains(fold.String(s.Artist), needle) &&
			!strings.Contains(fold.String(s.Album), needle) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Sort orders list in place by key.
func Sort(list []songs.Song, key SortKey, tag language.Tag) {
	switch key {
	case SortByYear:
		slices.SortStableFunc(list, func(a, b songs.Song) int {
			return b.Year - a.Year
		})
	case SortByArtist:
		c := collate.New(tag)
		slices.SortStableFunc(list, func(a, b songs.Song) int {
			return c.CompareString(a.Artist, b.Artist)
		})
	default:
		c := collate.New(tag)
		slices.SortStableFunc(list, func(a, b songs.Song) int {
			return c.CompareString(a.Title, b.Title)
		})
	}
}

// Genres returns the distinct genres of list in first-seen order.
func Genres(list []songs.Song) []string {
	seen := make(map[string]bool)
	var genres []string
	for _, s := range list {
		if s.Genre == "" || seen[s.Genre] {
			continue
		}
		seen[s.Genre] = true
		genres = append(genres, s.Genre)
	}
	return genres
}
