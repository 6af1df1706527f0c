// Package editor implements the admin create/edit/delete workflow over a catalog view.
//
// A Workflow is an exclusive modal state machine: at most one of Creating,
// Editing or ConfirmingDelete is active at a time. The accumulated catalog is
// reconciled only after the record service confirms a change.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/catalog"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
)

// State is the active modal of a Workflow.
type State int

// Workflow states.
const (
	Idle State = iota
	Creating
	Editing
	ConfirmingDelete
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case ConfirmingDelete:
		return "confirming-delete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Common errors.
var (
	ErrModalActive = errors.New("another editor action is active")
	ErrNotActive   = errors.New("no matching editor action is active")
	ErrInFlight    = errors.New("editor request already in flight")
	ErrNotLoggedIn = errors.New("admin login required")
)

// Records is the record service the workflow mutates through.
// It is implemented by songs.Service and client.Client.
type Records interface {
	Create(ctx context.Context, fields songs.Fields) (*songs.Song, error)
	Replace(ctx context.Context, id string, fields songs.Fields) (*songs.Song, error)
	Delete(ctx context.Context, id string) error
}

// Workflow drives create, edit and delete intents for one admin session.
// It is safe for concurrent use; no lock is held during a service call.
type Workflow struct {
	records Records
	view    *catalog.View
	now     func() time.Time

	mu       sync.Mutex
	session  *auth.Session
	state    State
	draft    songs.Fields
	target   *songs.Song
	viewing  *songs.Song
	inFlight bool
	err      error
}

// New creates an idle workflow that reconciles view after successful changes.
func New(records Records, view *catalog.View, session *auth.Session) *Workflow {
	return &Workflow{
		records: records,
		view:    view,
		session: session,
		now:     time.Now,
	}
}

// SetSession replaces the admin session, e.g. after a fresh login.
func (w *Workflow) SetSession(session *auth.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = session
}

// StartCreate opens the create modal with an empty draft for the current year.
func (w *Workflow) StartCreate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.canStart(); err != nil {
		return err
	}
	w.state = Creating
	w.draft = songs.Fields{Year: w.now().Year()}
	w.target = nil
	w.err = nil
	return nil
}

// StartEdit opens the edit modal with a draft copied from song.
func (w *Workflow) StartEdit(song songs.Song) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.canStart(); err != nil {
		return err
	}
	w.state = Editing
	w.draft = song.Fields()
	w.target = &song
	w.err = nil
	return nil
}

// RequestDelete opens the delete confirmation for song.
func (w *Workflow) RequestDelete(song songs.Song) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.canStart(); err != nil {
		return err
	}
	w.state = ConfirmingDelete
	w.draft = songs.Fields{}
	w.target = &song
	w.err = nil
	return nil
}

// Cancel discards the active draft or delete target without calling the service.
// Cancelling while idle does nothing.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrInFlight
	}
	w.reset()
	w.err = nil
	return nil
}

// Submit saves draft for the active create or edit modal.
//
// On success the catalog view is updated and the workflow returns to Idle.
// On failure the modal stays open with draft preserved so the user can retry.
func (w *Workflow) Submit(ctx context.Context, draft songs.Fields) (*songs.Song, error) {
	w.mu.Lock()
	if w.state != Creating && w.state != Editing {
		w.mu.Unlock()
		return nil, ErrNotActive
	}
	if w.inFlight {
		w.mu.Unlock()
		return nil, ErrInFlight
	}
	w.draft = draft
	if err := w.checkSession(); err != nil {
		w.err = err
		w.mu.Unlock()
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		w.err = err
		w.mu.Unlock()
		return nil, err
	}
	state := w.state
	var id string
	if w.target != nil {
		id = w.target.ID
	}
	w.inFlight = true
	w.err = nil
	w.mu.Unlock()

	var (
		song *songs.Song
		err  error
	)
	if state == Creating {
		song, err = w.records.Create(ctx, draft)
	} else {
		song, err = w.records.Replace(ctx, id, draft)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if err != nil {
		w.err = err
		return nil, err
	}

	if state == Creating {
		w.view.Append(*song)
	} else {
		w.view.ReplaceSong(*song)
	}
	w.reset()
	return song, nil
}

// ConfirmDelete deletes the song held by the delete confirmation.
//
// The workflow returns to Idle whether or not the delete succeeds; the song
// stays in the catalog view unless the service confirmed its removal.
func (w *Workflow) ConfirmDelete(ctx context.Context) error {
	w.mu.Lock()
	if w.state != ConfirmingDelete {
		w.mu.Unlock()
		return ErrNotActive
	}
	if w.inFlight {
		w.mu.Unlock()
		return ErrInFlight
	}
	if err := w.checkSession(); err != nil {
		w.err = err
		w.mu.Unlock()
		return err
	}
	id := w.target.ID
	w.inFlight = true
	w.err = nil
	w.mu.Unlock()

	err := w.records.Delete(ctx, id)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	w.reset()
	if err != nil {
		w.err = err
		return err
	}
	w.view.Remove(id)
	return nil
}

// Open shows song in the read-only detail overlay. It does not affect the modal state.
func (w *Workflow) Open(song songs.Song) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewing = &song
}

// CloseView hides the detail overlay.
func (w *Workflow) CloseView() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewing = nil
}

// Viewing returns the song in the detail overlay, if any.
func (w *Workflow) Viewing() (songs.Song, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.viewing == nil {
		return songs.Song{}, false
	}
	return *w.viewing, true
}

// State returns the active modal.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns the current draft of the create or edit modal.
func (w *Workflow) Draft() songs.Fields {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Target returns the song being edited or awaiting delete confirmation.
func (w *Workflow) Target() (songs.Song, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.target == nil {
		return songs.Song{}, false
	}
	return *w.target, true
}

// Busy reports whether a submit or delete is in flight.
// Front ends disable the triggering control while it is true.
func (w *Workflow) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

// Err returns the error surfaced by the last failed action, if any.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// canStart reports whether a new intent may open. Callers hold w.mu.
func (w *Workflow) canStart() error {
	if w.inFlight {
		return ErrInFlight
	}
	if w.state != Idle {
		return fmt.Errorf("%w: %s", ErrModalActive, w.state)
	}
	return w.checkSession()
}

// checkSession requires a live admin session. Callers hold w.mu.
func (w *Workflow) checkSession() error {
	if w.session == nil {
		return ErrNotLoggedIn
	}
	if err := w.session.Check(w.now()); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
	}
	return nil
}

// reset returns to Idle, discarding draft and target. Callers hold w.mu.
func (w *Workflow) reset() {
	w.state = Idle
	w.draft = songs.Fields{}
	w.target = nil
}
