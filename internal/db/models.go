package db

import (
	"time"

	"github.com/google/uuid"
)

// Song represents a stored song-lyric record.
type Song struct {
	ID        uuid.UUID
	Title     string
	Artist    string
	Album     string
	Year      int
	Genre     string
	Duration  string // display string, e.g. "4:05"
	Lyrics    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
