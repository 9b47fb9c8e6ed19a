package dashboard

import (
	"context"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"go.uber.org/zap"
)

// Join toasts.
const (
	JoinSuccessMessage = "Successfully joined group!"
	joinFailurePrefix  = "Could not join group: "
)

// JoinGroup joins a group and then reloads the list. Membership is shown
// only once the reload resolves; until then the group is marked joining.
// A second join for the same group while one is pending returns
// formpipe.ErrInFlight.
func (h *Handler) JoinGroup(ctx context.Context, groupID string) error {
	h.mu.Lock()
	if h.vm.joining[groupID] {
		h.mu.Unlock()
		return formpipe.ErrInFlight
	}
	h.vm.joining[groupID] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.vm.joining, groupID)
		h.mu.Unlock()
	}()

	if err := h.API.JoinGroup(ctx, groupID); err != nil {
		h.Log.Warn("join group failed", zap.String("group_id", groupID), zap.Error(err))
		h.Notes.Notify(notify.Error, joinFailurePrefix+apiclient.Message(err))
		return err
	}

	h.Notes.Notify(notify.Success, JoinSuccessMessage)
	// The reload's own failure is shown as the page error.
	_ = h.Load(ctx)
	return nil
}
