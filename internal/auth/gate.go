// Package auth provides the admin login gate and its session value.
//
// The gate compares submitted credentials against two configured strings.
// It is a convenience gate for the editor, not an access-control mechanism:
// secrets are configured in plain text and nothing is hashed.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// DefaultSessionTTL is how long an admin session stays valid when no TTL is configured.
const DefaultSessionTTL = 12 * time.Hour

// Common errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfigured      = errors.New("admin login is not configured")
	ErrSessionExpired     = errors.New("admin session expired")
)

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Session records a successful admin login.
type Session struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Valid reports whether the session exists and has not expired at now.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// Check returns ErrSessionExpired unless the session is valid at now.
func (s *Session) Check(now time.Time) error {
	if !s.Valid(now) {
		return ErrSessionExpired
	}
	return nil
}

// Gate checks admin credentials and issues sessions.
type Gate struct {
	creds Credentials
	ttl   time.Duration
	now   func() time.Time
}

// NewGate creates a gate for the configured credentials.
// A non-positive ttl selects DefaultSessionTTL.
func NewGate(creds Credentials, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Gate{creds: creds, ttl: ttl, now: time.Now}
}

// Configured reports whether both a username and a password were configured.
func (g *Gate) Configured() bool {
	return g != nil && g.creds.Username != "" && g.creds.Password != ""
}

// Login issues a session when username and password both match.
func (g *Gate) Login(username, password string) (*Session, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.creds.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generating session id: %w", err)
	}

	now := g.now()
	return &Session{
		ID:        id,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.ttl),
	}, nil
}

// generateSessionID creates a cryptographically random session ID.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
