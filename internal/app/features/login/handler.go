// internal/app/features/login/handler.go
package login

import (
	"context"
	"strings"

	"github.com/dalemusser/dojo/internal/app/system/auth"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// Navigator switches the active view.
type Navigator interface {
	Navigate(target string) error
}

// Input is the login form and its rule table.
type Input struct {
	Email    string `form:"email" validate:"required,emailaddr"`
	Password string `form:"password" validate:"required,min=4"`
}

// Handler drives the login form.
type Handler struct {
	Session *auth.SessionManager
	Nav     Navigator
	Log     *zap.Logger

	form formpipe.Form
}

func NewHandler(sm *auth.SessionManager, nav Navigator, logger *zap.Logger) *Handler {
	return &Handler{Session: sm, Nav: nav, Log: logger}
}

// Status returns the form's error slots. Credential failures land in
// General, never on a field.
func (h *Handler) Status() formpipe.Status { return h.form.Status() }

// Submit validates the input, signs in, and opens the dashboard.
func (h *Handler) Submit(ctx context.Context, in Input) error {
	in.Email = strings.TrimSpace(in.Email)
	return formpipe.Submit(ctx, &h.form, in,
		func(ctx context.Context, in Input) (models.User, error) {
			return h.Session.Login(ctx, in.Email, in.Password)
		},
		func(models.User) {
			if err := h.Nav.Navigate(string(navigation.Dashboard)); err != nil {
				h.Log.Error("navigate after login", zap.Error(err))
			}
		},
	)
}
