// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"sync"

	"github.com/dalemusser/dojo/internal/app/system/auth"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/generation"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the subset of the api client the dashboard uses.
type Gateway interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name, description string) (models.Group, error)
	JoinGroup(ctx context.Context, groupID string) error
}

// Handler is the group list orchestrator. It owns the dashboard view-model;
// nothing is cached across mounts.
type Handler struct {
	API     Gateway
	Session *auth.SessionManager
	Notes   notify.Notifier
	Log     *zap.Logger

	gen        generation.Counter
	createForm formpipe.Form

	mu sync.Mutex
	vm viewModel
}

type viewModel struct {
	loading bool
	err     string
	mine    []models.Group
	others  []models.Group
	joining map[string]bool

	createOpen bool
	createIn   CreateInput
}

func NewHandler(api Gateway, sm *auth.SessionManager, notes notify.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		API:     api,
		Session: sm,
		Notes:   notes,
		Log:     logger,
		vm:      viewModel{joining: map[string]bool{}},
	}
}

// View is a snapshot of the dashboard.
type View struct {
	Username string
	Loading  bool
	// Error is the page-level failure of the last load; Retry re-runs it.
	Error       string
	MyGroups    []models.Group
	OtherGroups []models.Group
	// Joining holds the ids of groups with a join still pending.
	Joining map[string]bool

	CreateOpen   bool
	CreateInput  CreateInput
	CreateStatus formpipe.Status
}

// View returns a copy of the current view-model.
func (h *Handler) View() View {
	u, _ := h.Session.User()
	h.mu.Lock()
	defer h.mu.Unlock()

	joining := make(map[string]bool, len(h.vm.joining))
	for id := range h.vm.joining {
		joining[id] = true
	}
	return View{
		Username:     u.Username,
		Loading:      h.vm.loading,
		Error:        h.vm.err,
		MyGroups:     append([]models.Group(nil), h.vm.mine...),
		OtherGroups:  append([]models.Group(nil), h.vm.others...),
		Joining:      joining,
		CreateOpen:   h.vm.createOpen,
		CreateInput:  h.vm.createIn,
		CreateStatus: h.createForm.Status(),
	}
}

// Reset discards the view-model and drops any load still in flight.
func (h *Handler) Reset() {
	h.gen.Invalidate()
	h.createForm.Reset()
	h.mu.Lock()
	h.vm = viewModel{joining: map[string]bool{}}
	h.mu.Unlock()
}
