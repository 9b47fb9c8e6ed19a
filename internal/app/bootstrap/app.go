// internal/app/bootstrap/app.go
package bootstrap

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/dojo/internal/app/features/dashboard"
	"github.com/dalemusser/dojo/internal/app/features/feedback"
	"github.com/dalemusser/dojo/internal/app/features/groups"
	"github.com/dalemusser/dojo/internal/app/features/login"
	"github.com/dalemusser/dojo/internal/app/features/profile"
	"github.com/dalemusser/dojo/internal/app/features/register"
	"github.com/dalemusser/dojo/internal/app/system/auth"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Root controller                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// App is the root controller. It owns the session, decides which view a
// navigation request actually lands on, and mounts the view's orchestrator.
//
// Orchestrators keep nothing across mounts: leaving a view resets it and
// entering a view loads it again. Loads run in the background, so
// navigation never waits on the network.
type App struct {
	Session *auth.SessionManager
	Nav     *navigation.Controller
	Notes   notify.Notifier
	Log     *zap.Logger

	Login     *login.Handler
	Register  *register.Handler
	Profile   *profile.Handler
	Dashboard *dashboard.Handler
	Group     *groups.Handler
	Feedback  *feedback.Modal

	mu      sync.Mutex
	ctx     context.Context
	changed func()

	// navMu serializes view switches.
	navMu sync.Mutex
	loads sync.WaitGroup
}

// ErrNothingToRetry is returned by Retry on a view without a retryable load.
var ErrNothingToRetry = errors.New("nothing to retry here")

// Start restores a persisted session and mounts the initial view:
// dashboard when the stored token is still good, login otherwise.
// A failed restore is silent.
func (a *App) Start(ctx context.Context) navigation.State {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	initial := string(navigation.Login)
	if a.Session.Restore(ctx) {
		initial = string(navigation.Dashboard)
	}
	if err := a.NavigateContext(ctx, initial); err != nil {
		a.Log.Error("initial navigation failed", zap.Error(err))
	}
	return a.Nav.State()
}

// Navigate implements the Navigator interface the form handlers use. Loads
// run on the context passed to Start.
func (a *App) Navigate(target string) error {
	return a.NavigateContext(a.baseContext(), target)
}

// NavigateContext resolves target against the session, unmounts the current
// view, and mounts the resolved one. It returns once the view is switched;
// the new view's loads continue in the background and are not cancelled by
// a later switch. Unknown targets leave the view as is.
func (a *App) NavigateContext(ctx context.Context, target string) error {
	req, err := navigation.ParseTarget(target)
	if err != nil {
		return err
	}
	a.navMu.Lock()
	defer a.navMu.Unlock()

	next := Resolve(req, a.Session.SignedIn())
	if next.View != req.View {
		a.Log.Debug("navigation redirected",
			zap.String("requested", req.Target()), zap.String("view", string(next.View)))
	}

	prev := a.Nav.State()
	a.unmount(prev.View)
	a.Nav.Set(next)
	a.mount(ctx, next)
	return nil
}

// Logout ends the session, drops every view-model, and shows login.
func (a *App) Logout() {
	a.navMu.Lock()
	defer a.navMu.Unlock()
	a.Session.Logout()
	for _, v := range navigation.Views {
		a.unmount(v)
	}
	a.Nav.Set(navigation.State{View: navigation.Login})
	a.Log.Info("logged out")
}

// Resolve applies the session gate to a requested view. Signed-out users
// only reach login and register. Signed-in users reach profile and group;
// every other request, including login and register, shows the dashboard.
// A submit request keeps its challenge id even though it renders the
// dashboard.
func Resolve(req navigation.State, signedIn bool) navigation.State {
	if !signedIn {
		if req.View == navigation.Register {
			return navigation.State{View: navigation.Register}
		}
		return navigation.State{View: navigation.Login}
	}

	switch req.View {
	case navigation.Profile, navigation.Group:
		return req
	case navigation.Submit:
		return navigation.State{View: navigation.Dashboard, Params: navigation.Params{ChallengeID: req.Params.ChallengeID}}
	}
	return navigation.State{View: navigation.Dashboard}
}

func (a *App) baseContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *App) unmount(v navigation.View) {
	switch v {
	case navigation.Dashboard, navigation.Submit:
		a.Dashboard.Reset()
	case navigation.Group:
		a.Feedback.Close()
		a.Group.Reset()
	}
}

// mount starts the view's loads and returns without waiting for them.
func (a *App) mount(ctx context.Context, st navigation.State) {
	switch st.View {
	case navigation.Dashboard:
		a.track(st.View, a.Dashboard.LoadAsync(ctx), true)
	case navigation.Group:
		// The group view reports each section through its Changed hook.
		a.track(st.View, a.Group.ActivateAsync(ctx, st.Params.GroupID), false)
	}
}

// Retry re-runs the active view's failed load in the background.
func (a *App) Retry(ctx context.Context) error {
	a.navMu.Lock()
	defer a.navMu.Unlock()

	st := a.Nav.State()
	switch st.View {
	case navigation.Dashboard, navigation.Submit:
		a.track(st.View, a.Dashboard.LoadAsync(ctx), true)
		return nil
	case navigation.Group:
		if !a.Group.View().Retryable {
			return groups.ErrNotRetryable
		}
		a.track(st.View, a.Group.ActivateAsync(ctx, st.Params.GroupID), false)
		return nil
	}
	return ErrNothingToRetry
}

// OpenFeedback opens the feedback modal for userID and loads it in the
// background.
func (a *App) OpenFeedback(ctx context.Context, userID string) {
	opened := a.Feedback.OpenAsync(ctx, userID)
	done := make(chan error, 1)
	go func() {
		<-opened
		done <- nil
	}()
	a.track(navigation.Group, done, true)
}

// Wait blocks until every background load started so far has resolved.
func (a *App) Wait() {
	a.loads.Wait()
}

// SetChanged registers fn to be called whenever a background load has
// applied its result. Passing nil removes it.
func (a *App) SetChanged(fn func()) {
	a.mu.Lock()
	a.changed = fn
	a.mu.Unlock()
}

func (a *App) notifyChanged() {
	a.mu.Lock()
	fn := a.changed
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// track waits for done off the caller's goroutine. Load failures are part
// of the view-model, so they are only logged here.
func (a *App) track(view navigation.View, done <-chan error, report bool) {
	a.loads.Add(1)
	go func() {
		defer a.loads.Done()
		err := <-done

		var nf *groups.NotFoundError
		switch {
		case err == nil:
		case errors.As(err, &nf):
			a.Log.Debug("group view has no group", zap.String("group_id", nf.GroupID))
		default:
			a.Log.Debug("view load failed", zap.String("view", string(view)), zap.Error(err))
		}
		if report {
			a.notifyChanged()
		}
	}()
}
