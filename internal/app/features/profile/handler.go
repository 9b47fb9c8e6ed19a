// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/dalemusser/dojo/internal/app/system/auth"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// SuccessMessage is shown once after a successful update.
const SuccessMessage = "Profile updated successfully!"

// Input is the profile form and its rule table.
type Input struct {
	GithubUsername string `form:"githubUsername" validate:"required"`
}

// Handler drives the profile form. Server failures are shown on the
// githubUsername field rather than as a banner.
type Handler struct {
	Session *auth.SessionManager
	Log     *zap.Logger

	form    formpipe.Form
	success atomic.Bool
}

func NewHandler(sm *auth.SessionManager, logger *zap.Logger) *Handler {
	h := &Handler{Session: sm, Log: logger}
	h.form.ErrorField = "githubUsername"
	return h
}

// View is what the profile screen shows.
type View struct {
	Username       string
	Email          string
	GithubUsername string
}

// Load returns the signed-in user's details, with the form prefilled from
// the stored GitHub username.
func (h *Handler) Load() (View, bool) {
	u, ok := h.Session.User()
	if !ok {
		return View{}, false
	}
	return View{Username: u.Username, Email: u.Email, GithubUsername: u.GithubUsername}, true
}

func (h *Handler) Status() formpipe.Status { return h.form.Status() }

// TakeSuccess reports whether an update succeeded since the last call.
func (h *Handler) TakeSuccess() bool {
	return h.success.Swap(false)
}

// Submit validates and saves the GitHub username. The session's user is
// replaced by the server's copy.
func (h *Handler) Submit(ctx context.Context, in Input) error {
	h.success.Store(false)
	in.GithubUsername = strings.TrimSpace(in.GithubUsername)
	return formpipe.Submit(ctx, &h.form, in,
		func(ctx context.Context, in Input) (models.User, error) {
			return h.Session.UpdateProfile(ctx, in.GithubUsername)
		},
		func(u models.User) {
			h.Log.Info("profile updated", zap.String("user_id", u.ID))
			h.success.Store(true)
		},
	)
}
