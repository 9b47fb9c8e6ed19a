// Package testutil boots the fake Dojo API and a fully wired client for
// tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/dojo/internal/app/bootstrap"
	"github.com/dalemusser/dojo/internal/app/fakeapi"
	"github.com/dalemusser/dojo/internal/app/store/tokens"
	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"go.uber.org/zap"
)

// Env is a client wired against an in-process fake API.
type Env struct {
	T      *testing.T
	Fake   *fakeapi.Server
	Server *httptest.Server
	Store  *tokens.MemoryStore
	Notes  *notify.Recorder
	App    *bootstrap.App
}

// EnvOption adjusts the config an Env is built with.
type EnvOption func(*bootstrap.AppConfig)

// WithRefreshHistoryOnCreate turns on the history reload after challenge creation.
func WithRefreshHistoryOnCreate() EnvOption {
	return func(c *bootstrap.AppConfig) { c.RefreshHistoryOnCreate = true }
}

// WithFeedbackAuth sends the bearer token on the feedback endpoint.
func WithFeedbackAuth() EnvOption {
	return func(c *bootstrap.AppConfig) { c.FeedbackAuth = true }
}

// NewEnv starts a fake API on an httptest server and builds an App against
// it with an empty in-memory token store. Everything is closed on cleanup.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	fake := fakeapi.New(zap.NewNop(), nil)
	srv := httptest.NewServer(fake.Routes())
	t.Cleanup(srv.Close)

	cfg := bootstrap.AppConfig{
		APIBaseURL: srv.URL,
		TokenPath:  "unused",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := tokens.NewMemoryStore("")
	notes := &notify.Recorder{}
	app, err := bootstrap.Build(cfg, bootstrap.Deps{
		Store:      store,
		HTTPClient: srv.Client(),
		Notes:      notes,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("bootstrap.Build: %v", err)
	}
	// Runs before srv.Close, so no load outlives the server.
	t.Cleanup(app.Wait)

	return &Env{T: t, Fake: fake, Server: srv, Store: store, Notes: notes, App: app}
}

// Client returns a separate api client pointed at the fake API, useful for
// driving the server as another user.
func (e *Env) Client() *apiclient.Client {
	e.T.Helper()
	c, err := apiclient.New(apiclient.Options{BaseURL: e.Server.URL, HTTPClient: e.Server.Client(), Log: zap.NewNop()})
	if err != nil {
		e.T.Fatalf("apiclient.New: %v", err)
	}
	return c
}

// SignIn seeds a user, logs in through the session, and starts the App on
// the dashboard with its group list loaded. It returns the user's id.
func (e *Env) SignIn(username, email, password string) string {
	e.T.Helper()
	id := e.Fake.AddUser(username, email, password, "")
	ctx, cancel := TestContext()
	defer cancel()
	if _, err := e.App.Session.Login(ctx, email, password); err != nil {
		e.T.Fatalf("login %s: %v", email, err)
	}
	e.App.Start(ctx)
	e.App.Wait()
	e.Notes.Reset()
	return id
}

// TestContext returns a context with a timeout suitable for tests.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}
