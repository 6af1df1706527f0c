package songs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-lyrics-catalog/internal/db"
)

const (
	// DefaultPageSize is the page size used when a caller does not specify one.
	DefaultPageSize = 10

	// MaxPageSize caps the number of songs returned by a single List call.
	MaxPageSize = 100
)

// Store is the record store the services operate on.
// It is implemented by db.SongRepository and db.MemorySongRepository.
type Store interface {
	ListPage(ctx context.Context, offset, limit int) ([]db.Song, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Song, error)
	Insert(ctx context.Context, song *db.Song) error
	Replace(ctx context.Context, song *db.Song) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Page is one slice of the catalog, newest songs first.
type Page struct {
	Songs   []Song `json:"songs"`
	HasMore bool   `json:"hasMore"`
	Total   int    `json:"total"`
}

// Service implements the listing and record operations over a Store.
type Service struct {
	store Store
}

// NewService creates a new song service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns page number page (1-based) of at most limit songs.
//
// The total count is read independently of the page, so HasMore may be stale
// when songs are written concurrently.
func (s *Service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		return nil, invalid("page must be at least 1")
	}
	if limit < 1 {
		return nil, invalid("limit must be at least 1")
	}
	limit = min(limit, MaxPageSize)
	offset := (page - 1) * limit

	var (
		rows  []db.Song
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.store.ListPage(gctx, offset, limit)
		if err != nil {
			return fmt.Errorf("listing songs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx)
		if err != nil {
			return fmt.Errorf("counting songs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, unavailable(err)
	}

	songs := make([]Song, len(rows))
	for i, r := range rows {
		songs[i] = fromDB(r)
	}
	return &Page{
		Songs:   songs,
		HasMore: offset+len(songs) < total,
		Total:   total,
	}, nil
}

// Get retrieves a song by ID.
func (s *Service) Get(ctx context.Context, id string) (*Song, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("song %q: %w", id, ErrNotFound)
	}
	row, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, storeError(id, err)
	}
	song := fromDB(*row)
	return &song, nil
}

// Create inserts a new song; the store assigns its ID and timestamps.
func (s *Service) Create(ctx context.Context, fields Fields) (*Song, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	row := toDB(fields)
	if err := s.store.Insert(ctx, &row); err != nil {
		return nil, unavailable(fmt.Errorf("creating song: %w", err))
	}
	song := fromDB(row)
	return &song, nil
}

// Replace overwrites every editable field of an existing song.
// Fields left empty are not preserved from the stored record; callers must send the full set.
func (s *Service) Replace(ctx context.Context, id string, fields Fields) (*Song, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("song %q: %w", id, ErrNotFound)
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	row := toDB(fields)
	row.ID = uid
	if err := s.store.Replace(ctx, &row); err != nil {
		return nil, storeError(id, err)
	}
	song := fromDB(row)
	return &song, nil
}

// Delete removes a song. Deleting an absent song reports ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("song %q: %w", id, ErrNotFound)
	}
	if err := s.store.Delete(ctx, uid); err != nil {
		return storeError(id, err)
	}
	return nil
}

// storeError maps a store failure onto the service error taxonomy.
func storeError(id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("song %q: %w", id, ErrNotFound)
	}
	return unavailable(err)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
