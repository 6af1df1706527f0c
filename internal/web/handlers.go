package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

// maxBodyBytes bounds request bodies; lyrics are long but not that long.
const maxBodyBytes = 1 << 20

// SongService is the listing and record service exposed over HTTP.
type SongService interface {
	List(ctx context.Context, page, limit int) (*songs.Page, error)
	Get(ctx context.Context, id string) (*songs.Song, error)
	Create(ctx context.Context, fields songs.Fields) (*songs.Song, error)
	Replace(ctx context.Context, id string, fields songs.Fields) (*songs.Song, error)
	Delete(ctx context.Context, id string) error
}

// Handlers contains HTTP handlers for the JSON API.
type Handlers struct {
	songs    SongService
	gate     *auth.Gate
	sessions *SessionStore
	logger   *log.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc SongService, gate *auth.Gate, sessions *SessionStore, logger *log.Logger) *Handlers {
	return &Handlers{
		songs:    svc,
		gate:     gate,
		sessions: sessions,
		logger:   logger,
	}
}

// ListSongs returns one page of songs (GET /api/songs?page=&limit=).
func (h *Handlers) ListSongs(w http.ResponseWriter, r *http.Request) {
	page, err := intQuery(r, "page", 1)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit", songs.DefaultPageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.songs.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetSong returns a single song (GET /api/songs/{id}).
func (h *Handlers) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, song)
}

// CreateSong adds a song (POST /api/songs).
func (h *Handlers) CreateSong(w http.ResponseWriter, r *http.Request) {
	var fields songs.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		h.writeError(w, r, err)
		return
	}

	song, err := h.songs.Create(r.Context(), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("song created", "id", song.ID, "title", song.Title)
	writeJSON(w, http.StatusCreated, song)
}

// ReplaceSong overwrites a song with the full field set in the body (PUT /api/songs/{id}).
func (h *Handlers) ReplaceSong(w http.ResponseWriter, r *http.Request) {
	var fields songs.Fields
	if err := decodeJSON(w, r, &fields); err != nil {
		h.writeError(w, r, err)
		return
	}

	song, err := h.songs.Replace(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("song replaced", "id", song.ID)
	writeJSON(w, http.StatusOK, song)
}

// DeleteSong removes a song (DELETE /api/songs/{id}).
func (h *Handlers) DeleteSong(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.songs.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("song deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Song deleted successfully"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks admin credentials and starts a session (POST /api/admin/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.gate.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.logger.Warn("admin login rejected", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid credentials. Please try again."})
		return
	case err != nil:
		h.writeError(w, r, err)
		return
	}

	h.sessions.Add(session)
	setCookie(w, session)
	h.logger.Info("admin logged in", "user", session.Username, "expires", session.ExpiresAt)
	writeJSON(w, http.StatusOK, session)
}

// Logout ends the admin session (POST /api/admin/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.sessions.Delete(cookie.Value)
	}
	clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Health reports that the server is up (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// RequireAdmin rejects requests that carry no live admin session.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.sessions.GetFromRequest(r) == nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "admin login required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps err onto a status code and writes it as JSON.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	var status int

	var verr *songs.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Fields = verr.FieldErrors()
	case errors.Is(err, songs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, songs.ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "Song not found"
	case errors.Is(err, songs.ErrUnavailable):
		status = http.StatusServiceUnavailable
		h.logger.Error("store unavailable", "method", r.Method, "path", r.URL.Path, "err", err)
		resp.Error = songs.ErrUnavailable.Error()
	default:
		status = http.StatusInternalServerError
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		resp.Error = "internal error"
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &songs.ValidationError{Err: err}
	}
	return nil
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &songs.ValidationError{Err: errors.New(key + " must be an integer")}
	}
	return n, nil
}
