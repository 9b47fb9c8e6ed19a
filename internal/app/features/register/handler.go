// internal/app/features/register/handler.go
package register

import (
	"context"
	"strings"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/auth"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"go.uber.org/zap"
)

// SuccessMessage is the toast shown after an account is created.
const SuccessMessage = "Registered successfully! Please log in."

// Navigator switches the active view.
type Navigator interface {
	Navigate(target string) error
}

// Input is the registration form and its rule table.
type Input struct {
	Username string `form:"username" validate:"required,min=3" msg:"min=Minimum 3 letters"`
	Email    string `form:"email" validate:"required,emailaddr"`
	Password string `form:"password" validate:"required,min=4"`
}

// Handler drives the registration form. Registering does not sign in.
type Handler struct {
	Session *auth.SessionManager
	Nav     Navigator
	Notes   notify.Notifier
	Log     *zap.Logger

	form formpipe.Form
}

func NewHandler(sm *auth.SessionManager, nav Navigator, notes notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{Session: sm, Nav: nav, Notes: notes, Log: logger}
}

func (h *Handler) Status() formpipe.Status { return h.form.Status() }

// Submit validates the input and creates the account. On success the user
// is sent to the login view with a confirmation toast.
func (h *Handler) Submit(ctx context.Context, in Input) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return formpipe.Submit(ctx, &h.form, in,
		func(ctx context.Context, in Input) (struct{}, error) {
			return struct{}{}, h.Session.Register(ctx, apiclient.RegisterRequest{
				Username: in.Username,
				Email:    in.Email,
				Password: in.Password,
			})
		},
		func(struct{}) {
			h.Notes.Notify(notify.Success, SuccessMessage)
			if err := h.Nav.Navigate(string(navigation.Login)); err != nil {
				h.Log.Error("navigate after register", zap.Error(err))
			}
		},
	)
}
