package dashboard

import (
	"context"

	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// CreateInput is the create-group dialog and its rule table.
type CreateInput struct {
	Name        string `form:"name" validate:"required,min=2" msg:"min=Too short"`
	Description string `form:"description" validate:"required,min=2" msg:"min=Too short"`
}

// OpenCreate shows the create-group dialog.
func (h *Handler) OpenCreate() {
	h.mu.Lock()
	h.vm.createOpen = true
	h.mu.Unlock()
}

// CancelCreate hides the dialog and clears its fields and errors.
func (h *Handler) CancelCreate() {
	h.createForm.Reset()
	h.mu.Lock()
	h.vm.createOpen = false
	h.vm.createIn = CreateInput{}
	h.mu.Unlock()
}

// CreateGroup submits the dialog. On success the dialog closes, its fields
// clear, and the list reloads; the new group is never inserted locally.
func (h *Handler) CreateGroup(ctx context.Context, in CreateInput) error {
	h.mu.Lock()
	h.vm.createOpen = true
	h.vm.createIn = in
	h.mu.Unlock()

	return formpipe.Submit(ctx, &h.createForm, in,
		func(ctx context.Context, in CreateInput) (models.Group, error) {
			return h.API.CreateGroup(ctx, in.Name, in.Description)
		},
		func(g models.Group) {
			h.Log.Info("group created", zap.String("group_id", g.ID))
			h.mu.Lock()
			h.vm.createOpen = false
			h.vm.createIn = CreateInput{}
			h.mu.Unlock()
			_ = h.Load(ctx)
		},
	)
}
