package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

func newClient(t *testing.T, h http.Handler, feedbackAuth bool) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := apiclient.New(apiclient.Options{
		BaseURL:      srv.URL,
		HTTPClient:   srv.Client(),
		Log:          zap.NewNop(),
		FeedbackAuth: feedbackAuth,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	for _, base := range []string{"", "localhost:8000", "/api", "ftp://x"} {
		if _, err := apiclient.New(apiclient.Options{BaseURL: base}); err == nil {
			t.Errorf("New(%q) should fail", base)
		}
	}
}

func TestLogin_FormEncodedAndBearer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("login Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
			return
		}
		if r.PostForm.Get("username") != "a@b.com" || r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-1", "token_type": "bearer"})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": "u1", "username": "ann", "email": "a@b.com"})
	})
	c := newClient(t, mux, false)
	ctx := context.Background()

	tok, err := c.Login(ctx, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok != "tok-1" {
		t.Fatalf("token = %q, want tok-1", tok)
	}

	if _, err := c.Me(ctx); !apiclient.IsAuth(err) {
		t.Errorf("Me without token: err = %v, want AuthError", err)
	}

	c.SetToken(tok)
	u, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.ID != "u1" || u.Email != "a@b.com" {
		t.Errorf("user = %+v", u)
	}
}

func TestLogin_FailureCarriesDetail(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"detail", map[string]string{"detail": "Incorrect email or password"}, "Incorrect email or password"},
		{"no detail", map[string]string{}, apiclient.LoginFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tt.body)
			}), false)

			_, err := c.Login(context.Background(), "a@b.com", "nope")
			var ae *apiclient.AuthError
			if !errors.As(err, &ae) {
				t.Fatalf("err = %v, want *AuthError", err)
			}
			if ae.Message != tt.want {
				t.Errorf("Message = %q, want %q", ae.Message, tt.want)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /groups/{id}/join", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Group not found"})
	})
	mux.HandleFunc("POST /groups/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{
			{"loc": []any{"body", "name"}, "msg": "field required", "type": "missing"},
		}})
	})
	mux.HandleFunc("GET /groups/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "boom")
	})
	c := newClient(t, mux, false)
	ctx := context.Background()

	err := c.JoinGroup(ctx, "missing")
	var re *apiclient.RequestError
	if !errors.As(err, &re) || re.Status != http.StatusNotFound {
		t.Fatalf("JoinGroup err = %v, want 404 RequestError", err)
	}
	if apiclient.Message(err) != "Group not found" {
		t.Errorf("Message = %q", apiclient.Message(err))
	}

	_, err = c.CreateGroup(ctx, "", "")
	var ve *apiclient.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("CreateGroup err = %v, want ValidationError", err)
	}
	if ve.Fields["name"] != "field required" {
		t.Errorf("Fields = %v", ve.Fields)
	}

	_, err = c.ListGroups(ctx)
	if apiclient.Message(err) != apiclient.FallbackMessage {
		t.Errorf("Message = %q, want fallback", apiclient.Message(err))
	}
}

func TestNetworkFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := apiclient.New(apiclient.Options{BaseURL: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.ListGroups(context.Background())
	var re *apiclient.RequestError
	if !errors.As(err, &re) || re.Status != 0 {
		t.Fatalf("err = %v, want RequestError without status", err)
	}
	if apiclient.Message(err) != apiclient.FallbackMessage {
		t.Errorf("Message = %q", apiclient.Message(err))
	}
}

func TestFeedbackAuthFlag(t *testing.T) {
	for _, withAuth := range []bool{false, true} {
		var gotAuth string
		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusOK, []any{})
		}), withAuth)
		c.SetToken("tok")

		items, err := c.Feedback(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Feedback: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("items = %v, want empty", items)
		}
		if (gotAuth != "") != withAuth {
			t.Errorf("FeedbackAuth=%v: Authorization = %q", withAuth, gotAuth)
		}
	}
}

func TestCreateChallenge_WireBody(t *testing.T) {
	var got map[string]any
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/challenges/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"id": "c1", "group_id": "g1", "Topic": "Graphs", "difficulty": "Medium",
		})
	}), false)

	ch, err := c.CreateChallenge(context.Background(), "g1", "Graphs", models.DifficultyMedium)
	if err != nil {
		t.Fatalf("CreateChallenge: %v", err)
	}
	if got["Topic"] != "Graphs" || got["group_id"] != "g1" || got["difficulty"] != "Medium" {
		t.Errorf("body = %v", got)
	}
	if ch.ID != "c1" || ch.Topic != "Graphs" {
		t.Errorf("challenge = %+v", ch)
	}
}
