// Package web provides the HTTP JSON API for the lyrics catalog.
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
)

const sessionCookieName = "admin_session"

// SessionStore keeps admin sessions in memory, keyed by session ID.
// Sessions are lost on restart; admins log in again.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*auth.Session
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*auth.Session),
		now:      time.Now,
	}
}

// Add stores a session issued by the login gate.
func (s *SessionStore) Add(session *auth.Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
}

// Get retrieves a live session by ID. Expired sessions are dropped.
func (s *SessionStore) Get(id string) *auth.Session {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if !session.Valid(s.now()) {
		s.Delete(id)
		return nil
	}
	return session
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// DeleteExpired removes every expired session and returns how many were removed.
func (s *SessionStore) DeleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if !session.Valid(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// GetFromRequest extracts the session from the request cookie.
func (s *SessionStore) GetFromRequest(r *http.Request) *auth.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.Get(cookie.Value)
}

// setCookie sets the session cookie on the response.
func setCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie removes the session cookie from the response.
func clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
