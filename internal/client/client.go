// Package client talks to the lyrics catalog JSON API over HTTP.
//
// A Client satisfies catalog.Lister and editor.Records, so the terminal
// front end drives the same view and workflow code against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

const (
	// DefaultBaseURL is the API address used when none is configured.
	DefaultBaseURL = "http://127.0.0.1:8080"

	userAgent         = "lyrics-catalog/1.0"
	sessionCookieName = "admin_session"
)

// ErrUnauthorized is returned when the server rejects the admin session.
var ErrUnauthorized = errors.New("admin session rejected by server")

// Client is a lyrics catalog API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	sessionID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSession attaches a previously issued admin session to later requests.
// A nil session detaches it.
func (c *Client) SetSession(session *auth.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if session == nil {
		c.sessionID = ""
		return
	}
	c.sessionID = session.ID
}

// List fetches one page of songs.
func (c *Client) List(ctx context.Context, page, limit int) (*songs.Page, error) {
	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	var result songs.Page
	if err := c.do(ctx, http.MethodGet, "/api/songs?"+q.Encode(), nil, &result); err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	return &result, nil
}

// Get fetches a single song.
func (c *Client) Get(ctx context.Context, id string) (*songs.Song, error) {
	var song songs.Song
	if err := c.do(ctx, http.MethodGet, "/api/songs/"+url.PathEscape(id), nil, &song); err != nil {
		return nil, fmt.Errorf("getting song: %w", err)
	}
	return &song, nil
}

// Create adds a song.
func (c *Client) Create(ctx context.Context, fields songs.Fields) (*songs.Song, error) {
	var song songs.Song
	if err := c.do(ctx, http.MethodPost, "/api/songs", fields, &song); err != nil {
		return nil, fmt.Errorf("creating song: %w", err)
	}
	return &song, nil
}

// Replace overwrites a song with fields.
func (c *Client) Replace(ctx context.Context, id string, fields songs.Fields) (*songs.Song, error) {
	var song songs.Song
	if err := c.do(ctx, http.MethodPut, "/api/songs/"+url.PathEscape(id), fields, &song); err != nil {
		return nil, fmt.Errorf("replacing song: %w", err)
	}
	return &song, nil
}

// Delete removes a song.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/songs/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting song: %w", err)
	}
	return nil
}

// Login exchanges admin credentials for a session and attaches it to the client.
func (c *Client) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	body := map[string]string{"username": username, "password": password}

	var session auth.Session
	err := c.do(ctx, http.MethodPost, "/api/admin/login", body, &session)
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		switch apiErr.status {
		case http.StatusUnauthorized:
			return nil, auth.ErrInvalidCredentials
		case http.StatusServiceUnavailable:
			return nil, auth.ErrNotConfigured
		}
	}
	if err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	c.SetSession(&session)
	return &session, nil
}

// Logout ends the attached session on the server and detaches it.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/admin/logout", nil, nil)
	c.SetSession(nil)
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

// do performs a single request, encoding in as JSON and decoding the response into out.
// Failures are returned as they are; nothing is retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.sessionID})
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", songs.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response body: %w", songs.ErrUnavailable, err)
	}

	if resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: parsing response: %w", songs.ErrUnavailable, err)
	}
	return nil
}

// apiError is a non-2xx response from the server.
type apiError struct {
	status  int
	message string
	fields  map[string]string
}

func newAPIError(status int, raw []byte) *apiError {
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	e := &apiError{status: status}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		e.message = body.Error
		e.fields = body.Fields
	} else {
		e.message = http.StatusText(status)
	}
	return e
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.status, e.message)
}

// Unwrap maps the status onto the song error taxonomy so callers can use errors.Is.
func (e *apiError) Unwrap() error {
	switch e.status {
	case http.StatusBadRequest:
		return e.validationError()
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return songs.ErrNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return songs.ErrUnavailable
	default:
		return nil
	}
}

func (e *apiError) validationError() *songs.ValidationError {
	if len(e.fields) == 0 {
		return &songs.ValidationError{Err: errors.New(e.message)}
	}
	errs := make(validation.Errors, len(e.fields))
	for field, msg := range e.fields {
		errs[field] = errors.New(msg)
	}
	return &songs.ValidationError{Err: errs}
}
