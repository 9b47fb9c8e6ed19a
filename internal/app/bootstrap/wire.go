// internal/app/bootstrap/wire.go
package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/dojo/internal/app/features/dashboard"
	"github.com/dalemusser/dojo/internal/app/features/feedback"
	"github.com/dalemusser/dojo/internal/app/features/groups"
	"github.com/dalemusser/dojo/internal/app/features/login"
	"github.com/dalemusser/dojo/internal/app/features/profile"
	"github.com/dalemusser/dojo/internal/app/features/register"
	"github.com/dalemusser/dojo/internal/app/store/tokens"
	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/auth"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Deps are the collaborators Build does not create from config.
type Deps struct {
	// Store persists the token. Nil means a FileStore at appCfg.TokenPath.
	Store tokens.Store
	// HTTPClient is passed to the api client. Nil means http.DefaultClient.
	HTTPClient *http.Client
	// Notes receives toasts. Nil discards them.
	Notes notify.Notifier
}

// Build wires the api client, session, navigation and every view
// orchestrator into an App. The App shows login until Start is called.
func Build(appCfg AppConfig, deps Deps, logger *zap.Logger) (*App, error) {
	timeouts.Configure(timeouts.Config{Request: appCfg.RequestTimeout, Login: appCfg.LoginTimeout})

	store := deps.Store
	if store == nil {
		fs, err := tokens.NewFileStore(appCfg.TokenPath, []byte(appCfg.TokenHashKey), []byte(appCfg.TokenBlockKey))
		if err != nil {
			return nil, fmt.Errorf("token store: %w", err)
		}
		store = fs
	}
	notes := deps.Notes
	if notes == nil {
		notes = notify.Discard{}
	}

	api, err := apiclient.New(apiclient.Options{
		BaseURL:      appCfg.APIBaseURL,
		HTTPClient:   deps.HTTPClient,
		Log:          logger,
		FeedbackAuth: appCfg.FeedbackAuth,
	})
	if err != nil {
		return nil, err
	}

	sm := auth.NewSessionManager(api, store, logger)
	a := &App{
		Session: sm,
		Nav:     navigation.New(navigation.Login),
		Notes:   notes,
		Log:     logger,
	}
	a.Login = login.NewHandler(sm, a, logger)
	a.Register = register.NewHandler(sm, a, notes, logger)
	a.Profile = profile.NewHandler(sm, logger)
	a.Dashboard = dashboard.NewHandler(api, sm, notes, logger)
	a.Group = groups.NewHandler(api, notes, logger, groups.Options{RefreshHistoryOnCreate: appCfg.RefreshHistoryOnCreate})
	a.Group.Changed = a.notifyChanged
	a.Feedback = feedback.NewModal(api, logger)
	return a, nil
}
