package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDirName   = "lyrics-catalog"
	sessionFileName = "session.json"
)

// ErrMalformedSession is returned when the cache file does not hold a usable session.
var ErrMalformedSession = errors.New("malformed cached session")

// SessionCache keeps the CLI's admin session between invocations.
//
// A session is tied to the API server that issued it: loading for a
// different server finds nothing. An expired session is removed the
// first time it is loaded.
type SessionCache struct {
	path string
}

// cachedSession is the on-disk form.
type cachedSession struct {
	Server  string   `json:"server"`
	Session *Session `json:"session"`
}

// DefaultSessionCache returns a cache under the user config directory,
// e.g. ~/.config/lyrics-catalog/session.json.
func DefaultSessionCache() (*SessionCache, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}
	return NewSessionCache(filepath.Join(configDir, configDirName, sessionFileName)), nil
}

// NewSessionCache creates a SessionCache stored at path.
func NewSessionCache(path string) *SessionCache {
	return &SessionCache{path: path}
}

// Path returns the cache file location.
func (c *SessionCache) Path() string {
	return c.path
}

// Save records session as issued by server, replacing any cached session.
func (c *SessionCache) Save(server string, session *Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("saving session: %w", ErrMalformedSession)
	}

	data, err := json.MarshalIndent(cachedSession{Server: normalizeServer(server), Session: session}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load returns the session cached for server if it is still valid at now.
//
// It returns (nil, nil) when nothing is cached for server. An expired
// session is deleted and reported as ErrSessionExpired; an unreadable one
// is deleted and reported as ErrMalformedSession.
func (c *SessionCache) Load(server string, now time.Time) (*Session, error) {
	cached, err := c.read()
	if err != nil || cached == nil {
		return nil, err
	}
	if cached.Server != normalizeServer(server) {
		return nil, nil
	}
	if !cached.Session.Valid(now) {
		if err := c.Delete(); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}
	return cached.Session, nil
}

// Peek returns whatever session is cached and the server it belongs to,
// without checking expiry. It is meant for logging out.
func (c *SessionCache) Peek() (server string, session *Session, err error) {
	cached, err := c.read()
	if err != nil || cached == nil {
		return "", nil, err
	}
	return cached.Server, cached.Session, nil
}

// Delete removes the cache file. A missing file is not an error.
func (c *SessionCache) Delete() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// read loads the cache file, discarding it when it cannot be used.
func (c *SessionCache) read() (*cachedSession, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil || cached.Session == nil || cached.Session.ID == "" {
		if derr := c.Delete(); derr != nil {
			return nil, derr
		}
		return nil, ErrMalformedSession
	}
	return &cached, nil
}

func normalizeServer(server string) string {
	return strings.TrimRight(strings.TrimSpace(server), "/")
}
