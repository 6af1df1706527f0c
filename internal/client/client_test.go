package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/justestif/go-lyrics-catalog/internal/auth"
	"github.com/justestif/go-lyrics-catalog/internal/catalog"
	"github.com/justestif/go-lyrics-catalog/internal/db"
	"github.com/justestif/go-lyrics-catalog/internal/editor"
	"github.com/justestif/go-lyrics-catalog/internal/songs"
	"github.com/justestif/go-lyrics-catalog/internal/web"
)

const (
	testUser     = "admin"
	testPassword = "s3cret"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := web.NewServer(web.ServerConfig{
		Songs:    songs.NewService(db.NewMemorySongRepository()),
		Gate:     auth.NewGate(auth.Credentials{Username: testUser, Password: testPassword}, 0),
		Logger:   log.New(io.Discard),
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func fields(title string) songs.Fields {
	return songs.Fields{
		Title:    title,
		Artist:   "Sade",
		Album:    "Diamond Life",
		Year:     1984,
		Genre:    "Soul",
		Duration: "4:58",
		Lyrics:   "Diamond life, lover boy\nHe move in space with minimum waste",
	}
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t).URL)

	if _, err := c.Login(ctx, testUser, testPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	created, err := c.Create(ctx, fields("Smooth Operator"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := c.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(created, got, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("Get() mismatch (-created +got):\n%s", diff)
	}
	if got.Lyrics != fields("").Lyrics {
		t.Errorf("lyrics not preserved verbatim: %q", got.Lyrics)
	}

	replaced, err := c.Replace(ctx, created.ID, fields("Your Love Is King"))
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if replaced.Title != "Your Love Is King" || replaced.ID != created.ID {
		t.Errorf("Replace() = %+v", replaced)
	}

	page, err := c.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 || len(page.Songs) != 1 || page.HasMore {
		t.Errorf("List() = %+v", page)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, created.ID); !errors.Is(err, songs.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := c.Delete(ctx, created.ID); !errors.Is(err, songs.ErrNotFound) {
		t.Errorf("Delete() again error = %v, want ErrNotFound", err)
	}
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t).URL)

	if _, err := c.Create(ctx, fields("Anonymous")); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Create() without session error = %v, want ErrUnauthorized", err)
	}

	if _, err := c.Login(ctx, testUser, "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}

	if _, err := c.Login(ctx, testUser, testPassword); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	bad := fields("No lyrics")
	bad.Lyrics = ""
	_, err := c.Create(ctx, bad)
	if !errors.Is(err, songs.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}
	var verr *songs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error %T is not a ValidationError", err)
	}
	if _, ok := verr.FieldErrors()["lyrics"]; !ok {
		t.Errorf("FieldErrors() = %v, want lyrics entry", verr.FieldErrors())
	}

	if _, err := c.List(ctx, 0, 10); !errors.Is(err, songs.ErrValidation) {
		t.Errorf("List(0) error = %v, want ErrValidation", err)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := c.Create(ctx, fields("After logout")); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Create() after logout error = %v, want ErrUnauthorized", err)
	}
}

func TestClientUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := New(url)
	if _, err := c.List(context.Background(), 1, 6); !errors.Is(err, songs.ErrUnavailable) {
		t.Errorf("List() against closed server error = %v, want ErrUnavailable", err)
	}
}

func TestClientDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"service unavailable"}`)
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL)
	if _, err := c.List(context.Background(), 1, 6); !errors.Is(err, songs.ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
	if err := c.Delete(context.Background(), "00000000-0000-0000-0000-000000000000"); !errors.Is(err, songs.ErrUnavailable) {
		t.Errorf("Delete() error = %v, want ErrUnavailable", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
}

func TestClientMalformedReplyIsUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `<html>gateway page</html>`)
	}))
	t.Cleanup(ts.Close)

	c := New(ts.URL)
	if _, err := c.List(context.Background(), 1, 6); !errors.Is(err, songs.ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
	if _, err := c.Get(context.Background(), "00000000-0000-0000-0000-000000000000"); !errors.Is(err, songs.ErrUnavailable) {
		t.Errorf("Get() error = %v, want ErrUnavailable", err)
	}

	view := catalog.NewView(c, catalog.PublicPageSize)
	if err := view.LoadFirstPage(context.Background()); !errors.Is(err, songs.ErrUnavailable) {
		t.Errorf("LoadFirstPage() error = %v, want ErrUnavailable", err)
	}
	if len(view.Songs()) != 0 || view.Err() == nil {
		t.Errorf("view not degraded: %d songs, err %v", len(view.Songs()), view.Err())
	}
}

func TestClientDrivesViewAndWorkflow(t *testing.T) {
	ctx := context.Background()
	c := New(newAPI(t).URL)

	session, err := c.Login(ctx, testUser, testPassword)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	for _, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		if _, err := c.Create(ctx, fields(title)); err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
	}

	view := catalog.NewView(c, catalog.PublicPageSize)
	if err := view.LoadFirstPage(ctx); err != nil {
		t.Fatalf("LoadFirstPage() error = %v", err)
	}
	if len(view.Songs()) != 6 || !view.HasMore() {
		t.Fatalf("first page: %d songs, hasMore %v", len(view.Songs()), view.HasMore())
	}
	if err := view.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage() error = %v", err)
	}
	if len(view.Songs()) != 7 || view.HasMore() {
		t.Fatalf("second page: %d songs, hasMore %v", len(view.Songs()), view.HasMore())
	}

	flow := editor.New(c, view, session)
	if err := flow.StartCreate(); err != nil {
		t.Fatalf("StartCreate() error = %v", err)
	}
	created, err := flow.Submit(ctx, fields("H"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(view.Songs()) != 8 {
		t.Errorf("view has %d songs after create, want 8", len(view.Songs()))
	}

	if err := flow.RequestDelete(*created); err != nil {
		t.Fatalf("RequestDelete() error = %v", err)
	}
	if err := flow.ConfirmDelete(ctx); err != nil {
		t.Fatalf("ConfirmDelete() error = %v", err)
	}
	if _, err := c.Get(ctx, created.ID); !errors.Is(err, songs.ErrNotFound) {
		t.Errorf("Get() after workflow delete error = %v, want ErrNotFound", err)
	}
	if len(view.Songs()) != 7 {
		t.Errorf("view has %d songs after delete, want 7", len(view.Songs()))
	}
}
