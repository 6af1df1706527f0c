package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySongRepository keeps songs in process memory.
// It mirrors SongRepository semantics for development and testing.
type MemorySongRepository struct {
	mu    sync.RWMutex
	songs map[uuid.UUID]*memorySong
	seq   int64
	now   func() time.Time
}

type memorySong struct {
	song Song
	seq  int64
}

// NewMemorySongRepository creates an empty in-memory song repository.
func NewMemorySongRepository() *MemorySongRepository {
	return &MemorySongRepository{
		songs: make(map[uuid.UUID]*memorySong),
		now:   time.Now,
	}
}

// SetClock replaces the time source used for timestamps.
func (r *MemorySongRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// ListPage retrieves up to limit songs after skipping offset, newest first.
func (r *MemorySongRepository) ListPage(_ context.Context, offset, limit int) ([]Song, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := make([]*memorySong, 0, len(r.songs))
	for _, s := range r.songs {
		ordered = append(ordered, s)
	}
	slices.SortFunc(ordered, func(a, b *memorySong) int {
		if c := b.song.CreatedAt.Compare(a.song.CreatedAt); c != 0 {
			return c
		}
		return int(b.seq - a.seq)
	})

	if offset >= len(ordered) {
		return nil, nil
	}
	end := min(offset+limit, len(ordered))

	songs := make([]Song, 0, end-offset)
	for _, s := range ordered[offset:end] {
		songs = append(songs, s.song)
	}
	return songs, nil
}

// Count returns the total number of songs.
func (r *MemorySongRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.songs), nil
}

// Get retrieves a song by ID.
func (r *MemorySongRepository) Get(_ context.Context, id uuid.UUID) (*Song, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.songs[id]
	if !ok {
		return nil, ErrNotFound
	}
	song := s.song
	return &song, nil
}

// Insert creates a new song, assigning its ID and timestamps.
func (r *MemorySongRepository) Insert(_ context.Context, song *Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if song.ID == uuid.Nil {
		song.ID = uuid.New()
	}
	now := r.now()
	song.CreatedAt = now
	song.UpdatedAt = now

	r.seq++
	r.songs[song.ID] = &memorySong{song: *song, seq: r.seq}
	return nil
}

// Replace overwrites every editable field of an existing song.
func (r *MemorySongRepository) Replace(_ context.Context, song *Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.songs[song.ID]
	if !ok {
		return ErrNotFound
	}
	song.CreatedAt = s.song.CreatedAt
	song.UpdatedAt = r.now()
	s.song = *song
	return nil
}

// Delete removes a song by ID.
func (r *MemorySongRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.songs[id]; !ok {
		return ErrNotFound
	}
	delete(r.songs, id)
	return nil
}
