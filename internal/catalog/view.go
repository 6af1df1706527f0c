// Package catalog accumulates pages of songs and derives filtered, sorted views of them.
package catalog

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/text/language"

	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

// Default page sizes for the two catalog front ends.
const (
	PublicPageSize = 6
	AdminPageSize  = 10
)

// Common errors.
var (
	ErrNoMorePages  = errors.New("no more pages")
	ErrLoadInFlight = errors.New("page load already in flight")
	ErrStaleLoad    = errors.New("page load superseded by a reload")
)

// Lister fetches one page of the catalog.
// It is implemented by songs.Service and client.Client.
type Lister interface {
	List(ctx context.Context, page, limit int) (*songs.Page, error)
}

// View accumulates catalog pages fetched through a Lister.
// It is safe for concurrent use; no lock is held while a page is being fetched.
type View struct {
	lister   Lister
	pageSize int
	lang     language.Tag

	mu           sync.Mutex
	songs        []songs.Song
	page         int
	hasMore      bool
	total        int
	err          error
	generation   uint64
	loadingFirst bool
	loadingNext  bool
}

// Option configures a View.
type Option func(*View)

// WithLanguage sets the collation language used for title and artist sorting.
func WithLanguage(tag language.Tag) Option {
	return func(v *View) { v.lang = tag }
}

// NewView creates an empty view that fetches pageSize songs per page.
// A non-positive pageSize selects PublicPageSize.
func NewView(lister Lister, pageSize int, opts ...Option) *View {
	if pageSize <= 0 {
		pageSize = PublicPageSize
	}
	v := &View{
		lister:   lister,
		pageSize: pageSize,
		lang:     language.English,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// LoadFirstPage fetches page 1 and replaces the accumulated songs with it.
//
// Each call supersedes any load still in flight: their results are discarded
// when they arrive. On failure the view is left empty with the error recorded.
// Next-page loads are refused until the latest first-page load completes.
func (v *View) LoadFirstPage(ctx context.Context) error {
	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.loadingFirst = true
	v.loadingNext = false
	v.mu.Unlock()

	page, err := v.lister.List(ctx, 1, v.pageSize)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return ErrStaleLoad
	}
	v.loadingFirst = false
	if err != nil {
		v.songs = nil
		v.page = 0
		v.hasMore = false
		v.total = 0
		v.err = err
		return err
	}

	v.songs = append([]songs.Song(nil), page.Songs...)
	v.page = 1
	v.hasMore = page.HasMore
	v.total = page.Total
	v.err = nil
	return nil
}

// LoadNextPage fetches the page after the current one and appends it.
//
// It returns ErrLoadInFlight while a first-page load or another next-page load
// is running and ErrNoMorePages when the catalog is exhausted. A failed load
// leaves the accumulated songs untouched so the caller can retry.
func (v *View) LoadNextPage(ctx context.Context) error {
	v.mu.Lock()
	if v.loadingFirst {
		v.mu.Unlock()
		return ErrLoadInFlight
	}
	if !v.hasMore {
		v.mu.Unlock()
		return ErrNoMorePages
	}
	if v.loadingNext {
		v.mu.Unlock()
		return ErrLoadInFlight
	}
	v.loadingNext = true
	gen := v.generation
	next := v.page + 1
	v.mu.Unlock()

	page, err := v.lister.List(ctx, next, v.pageSize)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return ErrStaleLoad
	}
	v.loadingNext = false
	if err != nil {
		v.err = err
		return err
	}

	v.songs = append(v.songs, page.Songs...)
	v.page = next
	v.hasMore = page.HasMore
	v.total = page.Total
	v.err = nil
	return nil
}

// Songs returns a copy of the accumulated songs in accumulation order.
func (v *View) Songs() []songs.Song {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]songs.Song(nil), v.songs...)
}

// Derive returns the accumulated songs filtered and sorted by q.
func (v *View) Derive(q Query) []songs.Song {
	return Derive(v.Songs(), q, v.lang)
}

// Genres returns the distinct genres of the accumulated songs.
func (v *View) Genres() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Genres(v.songs)
}

// Page returns the number of the last page loaded, 0 before the first load.
func (v *View) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// HasMore reports whether the catalog has songs beyond those accumulated.
func (v *View) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

// Total returns the catalog size reported by the most recent load.
func (v *View) Total() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// Err returns the error of the most recent failed load, nil after a success.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Append adds a newly created song to the end of the accumulated songs.
func (v *View) Append(song songs.Song) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.songs = append(v.songs, song)
	v.total++
}

// ReplaceSong swaps in song for the accumulated song with the same ID, keeping its position.
// It reports whether a song was replaced.
func (v *View) ReplaceSong(song songs.Song) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.songs {
		if v.songs[i].ID == song.ID {
			v.songs[i] = song
			return true
		}
	}
	return false
}

// Remove drops the accumulated song with the given ID.
// It reports whether a song was removed.
func (v *View) Remove(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.songs {
		if v.songs[i].ID == id {
			v.songs = append(v.songs[:i:i], v.songs[i+1:]...)
			if v.total > 0 {
				v.total--
			}
			return true
		}
	}
	return false
}
