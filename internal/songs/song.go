// Package songs provides the listing and record services for song-lyric records.
package songs

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/justestif/go-lyrics-catalog/internal/db"
)

// Song is a song-lyric record as exposed to clients.
type Song struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	Year      int       `json:"year"`
	Genre     string    `json:"genre"`
	Duration  string    `json:"duration"`
	Lyrics    string    `json:"lyrics"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Fields is the editable field set of a song: everything except the ID and timestamps.
// Create and Replace always take the complete set.
type Fields struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Year     int    `json:"year"`
	Genre    string `json:"genre"`
	Duration string `json:"duration"`
	Lyrics   string `json:"lyrics"`
}

// Fields returns the editable fields of the song.
func (s Song) Fields() Fields {
	return Fields{
		Title:    s.Title,
		Artist:   s.Artist,
		Album:    s.Album,
		Year:     s.Year,
		Genre:    s.Genre,
		Duration: s.Duration,
		Lyrics:   s.Lyrics,
	}
}

// Validate checks that every text field is present.
// The returned error wraps ErrValidation and carries per-field messages.
func (f Fields) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Title, validation.Required.Error("title is required")),
		validation.Field(&f.Artist, validation.Required.Error("artist is required")),
		validation.Field(&f.Album, validation.Required.Error("album is required")),
		validation.Field(&f.Genre, validation.Required.Error("genre is required")),
		validation.Field(&f.Duration, validation.Required.Error("duration is required")),
		validation.Field(&f.Lyrics, validation.Required.Error("lyrics are required")),
	)
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// fromDB converts a stored song to its client representation.
func fromDB(s db.Song) Song {
	return Song{
		ID:        s.ID.String(),
		Title:     s.Title,
		Artist:    s.Artist,
		Album:     s.Album,
		Year:      s.Year,
		Genre:     s.Genre,
		Duration:  s.Duration,
		Lyrics:    s.Lyrics,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// toDB converts editable fields to a stored song.
func toDB(f Fields) db.Song {
	return db.Song{
		Title:    f.Title,
		Artist:   f.Artist,
		Album:    f.Album,
		Year:     f.Year,
		Genre:    f.Genre,
		Duration: f.Duration,
		Lyrics:   f.Lyrics,
	}
}
