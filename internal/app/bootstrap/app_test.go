package bootstrap_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/dojo/internal/app/bootstrap"
	"github.com/dalemusser/dojo/internal/app/features/groups"
	"github.com/dalemusser/dojo/internal/app/features/login"
	"github.com/dalemusser/dojo/internal/app/features/register"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/testutil"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		target   string
		signedIn bool
		want     navigation.State
	}{
		{"login", false, navigation.State{View: navigation.Login}},
		{"register", false, navigation.State{View: navigation.Register}},
		{"dashboard", false, navigation.State{View: navigation.Login}},
		{"profile", false, navigation.State{View: navigation.Login}},
		{"group:g1", false, navigation.State{View: navigation.Login}},
		{"submit:c1", false, navigation.State{View: navigation.Login}},

		{"dashboard", true, navigation.State{View: navigation.Dashboard}},
		{"profile", true, navigation.State{View: navigation.Profile}},
		{"group:g1", true, navigation.State{View: navigation.Group, Params: navigation.Params{GroupID: "g1"}}},
		{"submit:c1", true, navigation.State{View: navigation.Dashboard, Params: navigation.Params{ChallengeID: "c1"}}},
		{"login", true, navigation.State{View: navigation.Dashboard}},
		{"register", true, navigation.State{View: navigation.Dashboard}},
	}

	for _, tt := range tests {
		req, err := navigation.ParseTarget(tt.target)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", tt.target, err)
		}
		got := bootstrap.Resolve(req, tt.signedIn)
		if got != tt.want {
			t.Errorf("Resolve(%q, signedIn=%v) = %+v, want %+v", tt.target, tt.signedIn, got, tt.want)
		}
		if !tt.signedIn && got.View.MemberGated() {
			t.Errorf("Resolve(%q) reached member-gated view %q while signed out", tt.target, got.View)
		}
	}
}

func TestStart_NoToken(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	st := env.App.Start(ctx)
	if st.View != navigation.Login {
		t.Errorf("view = %q, want login", st.View)
	}
	if got := env.Fake.Hits("GET /auth/me"); got != 0 {
		t.Errorf("/auth/me called %d times without a token", got)
	}
}

func TestStart_InvalidTokenDemotesSilently(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_ = env.Store.Save("not-a-real-token")

	st := env.App.Start(ctx)
	if st.View != navigation.Login {
		t.Errorf("view = %q, want login", st.View)
	}
	if env.App.Session.SignedIn() {
		t.Error("session should be empty")
	}
	if tok, _ := env.Store.Load(); tok != "" {
		t.Errorf("stored token = %q, want cleared", tok)
	}
	if n := len(env.Notes.Events()); n != 0 {
		t.Errorf("got %d notifications, want none", n)
	}
	if s := env.App.Login.Status(); s.General != "" {
		t.Errorf("login banner = %q, want none", s.General)
	}
}

func TestStart_ValidTokenOpensDashboard(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := env.Fake.AddUser("ann", "ann@b.com", "secret", "")
	tok, err := env.Fake.Token(id)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	_ = env.Store.Save(tok)

	st := env.App.Start(ctx)
	if st.View != navigation.Dashboard {
		t.Fatalf("view = %q, want dashboard", st.View)
	}
	if got := env.App.Session.UserID(); got != id {
		t.Errorf("user id = %q, want %q", got, id)
	}
	env.App.Wait()
	if env.Fake.Hits("GET /groups/") != 1 {
		t.Error("dashboard should load groups on mount")
	}
}

func TestLogin_StoresTokenAndOpensDashboard(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	env.Fake.AddUser("ann", "a@b.com", "secret", "")
	env.App.Start(ctx)

	if err := env.App.Login.Submit(ctx, login.Input{Email: "a@b.com", Password: "secret"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tok, _ := env.Store.Load(); tok == "" {
		t.Error("token was not persisted")
	}
	if v := env.App.Nav.State().View; v != navigation.Dashboard {
		t.Errorf("view = %q, want dashboard", v)
	}
	if u, ok := env.App.Session.User(); !ok || u.Email != "a@b.com" {
		t.Errorf("session user = %+v, %v", u, ok)
	}
}

func TestLogin_BadPasswordShowsBanner(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	env.Fake.AddUser("ann", "a@b.com", "secret", "")
	env.App.Start(ctx)

	err := env.App.Login.Submit(ctx, login.Input{Email: "a@b.com", Password: "wrong-one"})
	if err == nil {
		t.Fatal("expected an error")
	}
	s := env.App.Login.Status()
	if s.General != "Invalid email or password" {
		t.Errorf("banner = %q", s.General)
	}
	if len(s.FieldErrors) != 0 {
		t.Errorf("field errors = %v, want none", s.FieldErrors)
	}
	if v := env.App.Nav.State().View; v != navigation.Login {
		t.Errorf("view = %q, want login", v)
	}
	if tok, _ := env.Store.Load(); tok != "" {
		t.Error("no token should be stored")
	}
}

func TestRegister_InvalidInputSendsNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.App.Start(ctx)

	err := env.App.Register.Submit(ctx, register.Input{Username: "ab", Email: "x", Password: "123"})
	if !errors.Is(err, formpipe.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}

	want := map[string]string{
		"username": "Minimum 3 letters",
		"email":    "Invalid email",
		"password": "Minimum 4 characters",
	}
	got := env.App.Register.Status().FieldErrors
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("field %s = %q, want %q", field, got[field], msg)
		}
	}
	if n := env.Fake.Hits("POST /auth/register"); n != 0 {
		t.Errorf("register endpoint called %d times", n)
	}
}

func TestRegister_SuccessGoesToLogin(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.App.Start(ctx)
	if err := env.App.Navigate("register"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	err := env.App.Register.Submit(ctx, register.Input{Username: "annie", Email: "ann@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if v := env.App.Nav.State().View; v != navigation.Login {
		t.Errorf("view = %q, want login", v)
	}
	if env.App.Session.SignedIn() {
		t.Error("registering must not sign in")
	}
	if !env.Notes.Has(notify.Success, register.SuccessMessage) {
		t.Errorf("notes = %v", env.Notes.Events())
	}
}

func TestRegister_DuplicateEmailShowsBanner(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.Fake.AddUser("ann", "ann@b.com", "secret", "")
	env.App.Start(ctx)

	err := env.App.Register.Submit(ctx, register.Input{Username: "annie", Email: "ann@b.com", Password: "secret"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := env.App.Register.Status().General; got != "User with this email already exists" {
		t.Errorf("banner = %q", got)
	}
}

func TestNavigate_SignedOutStaysOnLogin(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.App.Start(ctx)

	for _, target := range []string{"dashboard", "profile", "group:abc", "submit:c1"} {
		if err := env.App.Navigate(target); err != nil {
			t.Fatalf("Navigate(%q): %v", target, err)
		}
		if v := env.App.Nav.State().View; v != navigation.Login {
			t.Errorf("Navigate(%q) view = %q, want login", target, v)
		}
	}
	if env.Fake.Hits("GET /groups/") != 0 {
		t.Error("no member data should be fetched while signed out")
	}
}

func TestNavigate_UnknownTargetKeepsView(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	err := env.App.Navigate("settings")
	if !errors.Is(err, navigation.ErrUnknownView) {
		t.Fatalf("err = %v, want ErrUnknownView", err)
	}
	if v := env.App.Nav.State().View; v != navigation.Dashboard {
		t.Errorf("view = %q, want dashboard", v)
	}
}

func TestNavigate_ReentryRefetches(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")
	before := env.Fake.Hits("GET /groups/")

	_ = env.App.Navigate("profile")
	_ = env.App.Navigate("dashboard")
	env.App.Wait()

	if got := env.Fake.Hits("GET /groups/") - before; got != 1 {
		t.Errorf("group list fetched %d times on re-entry, want 1", got)
	}
}

func TestLogout(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	env.App.Logout()

	if env.App.Session.SignedIn() {
		t.Error("session should be empty")
	}
	if tok, _ := env.Store.Load(); tok != "" {
		t.Error("stored token should be cleared")
	}
	if v := env.App.Nav.State().View; v != navigation.Login {
		t.Errorf("view = %q, want login", v)
	}
	if len(env.App.Dashboard.View().MyGroups) != 0 {
		t.Error("dashboard view-model should be discarded")
	}
}

func TestNavigate_ReturnsWhileLoadHangs(t *testing.T) {
	env := testutil.NewEnv(t)
	me := env.SignIn("ann", "ann@b.com", "secret")
	gid := env.Fake.AddGroup("Graphs", "graph problems", me)

	release := make(chan struct{})
	env.Fake.Hold("GET /groups/", release)

	returned := make(chan error, 1)
	go func() { returned <- env.App.Navigate("group:" + gid) }()
	select {
	case err := <-returned:
		if err != nil {
			t.Fatalf("Navigate: %v", err)
		}
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("Navigate blocked on the group load")
	}

	if v := env.App.Group.View(); !v.Loading {
		t.Error("group view should show its loading state")
	}
	if err := env.App.Navigate("dashboard"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if v := env.App.Nav.State().View; v != navigation.Dashboard {
		t.Errorf("view = %q, want dashboard", v)
	}

	env.Fake.Hold("GET /groups/", nil)
	close(release)
	env.App.Wait()

	if v := env.App.Group.View(); v.Group.ID != "" || v.Fatal != "" {
		t.Errorf("late group response applied after leaving: %+v", v)
	}
	if got := len(env.App.Dashboard.View().MyGroups); got != 1 {
		t.Errorf("my groups = %d, want 1", got)
	}
}

func TestRetry(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	env.Fake.Fail("GET /groups/", 500, "Database unavailable")
	_ = env.App.Navigate("profile")
	if err := env.App.Retry(context.Background()); !errors.Is(err, bootstrap.ErrNothingToRetry) {
		t.Errorf("Retry on profile = %v, want ErrNothingToRetry", err)
	}

	_ = env.App.Navigate("dashboard")
	env.App.Wait()
	if got := env.App.Dashboard.View().Error; got != "Database unavailable" {
		t.Fatalf("page error = %q", got)
	}

	env.Fake.Heal("GET /groups/")
	if err := env.App.Retry(context.Background()); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	env.App.Wait()
	if got := env.App.Dashboard.View().Error; got != "" {
		t.Errorf("page error after retry = %q", got)
	}

	_ = env.App.Navigate("group:missing")
	env.App.Wait()
	if err := env.App.Retry(context.Background()); !errors.Is(err, groups.ErrNotRetryable) {
		t.Errorf("Retry on unknown group = %v, want ErrNotRetryable", err)
	}
}

func TestChanged_CalledWhenLoadResolves(t *testing.T) {
	env := testutil.NewEnv(t)
	env.SignIn("ann", "ann@b.com", "secret")

	calls := make(chan struct{}, 16)
	env.App.SetChanged(func() { calls <- struct{}{} })
	defer env.App.SetChanged(nil)

	_ = env.App.Navigate("profile")
	_ = env.App.Navigate("dashboard")
	env.App.Wait()

	select {
	case <-calls:
	default:
		t.Error("Changed was not called after the dashboard load")
	}
}
