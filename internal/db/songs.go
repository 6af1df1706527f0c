package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

const songColumns = `id, title, artist, album, year, genre, duration, lyrics, created_at, updated_at`

// ListPage retrieves up to limit songs after skipping offset, newest first.
// Songs created in the same instant are ordered by insertion, latest first.
func (r *SongRepository) ListPage(ctx context.Context, offset, limit int) ([]Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		ORDER BY created_at DESC, seq DESC
		OFFSET $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, *song)
	}
	return songs, rows.Err()
}

// Count returns the total number of songs.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM songs`
	var count int
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return count, nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id uuid.UUID) (*Song, error) {
	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE id = $1
	`
	song, err := scanSong(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return song, nil
}

// Insert creates a new song, assigning its ID and timestamps.
func (r *SongRepository) Insert(ctx context.Context, song *Song) error {
	query := `
		INSERT INTO songs (id, title, artist, album, year, genre, duration, lyrics, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	if song.ID == uuid.Nil {
		song.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		song.ID,
		song.Title,
		song.Artist,
		song.Album,
		song.Year,
		song.Genre,
		song.Duration,
		song.Lyrics,
	).Scan(&song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting song: %w", err)
	}
	return nil
}

// Replace overwrites every editable field of an existing song.
// CreatedAt is left untouched; UpdatedAt is refreshed.
func (r *SongRepository) Replace(ctx context.Context, song *Song) error {
	query := `
		UPDATE songs
		SET title = $2, artist = $3, album = $4, year = $5, genre = $6,
			duration = $7, lyrics = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		song.ID,
		song.Title,
		song.Artist,
		song.Album,
		song.Year,
		song.Genre,
		song.Duration,
		song.Lyrics,
	).Scan(&song.CreatedAt, &song.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("replacing song: %w", err)
	}
	return nil
}

// Delete removes a song by ID.
func (r *SongRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM songs WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting song: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSong(row pgx.Row) (*Song, error) {
	var song Song
	err := row.Scan(
		&song.ID,
		&song.Title,
		&song.Artist,
		&song.Album,
		&song.Year,
		&song.Genre,
		&song.Duration,
		&song.Lyrics,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &song, nil
}
