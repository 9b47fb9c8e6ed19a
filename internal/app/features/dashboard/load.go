package dashboard

import (
	"context"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// Load fetches every group and splits them by the current user's
// membership. A failure becomes the page-level error. Responses to an
// older Load are discarded.
func (h *Handler) Load(ctx context.Context) error {
	return h.fetch(ctx, h.begin())
}

// LoadAsync marks the view loading and fetches in the background. The
// channel receives the load's result once it has been applied.
func (h *Handler) LoadAsync(ctx context.Context) <-chan error {
	gen := h.begin()
	done := make(chan error, 1)
	go func() { done <- h.fetch(ctx, gen) }()
	return done
}

func (h *Handler) begin() uint64 {
	gen := h.gen.Next()
	h.mu.Lock()
	h.vm.loading = true
	h.vm.err = ""
	h.mu.Unlock()
	return gen
}

func (h *Handler) fetch(ctx context.Context, gen uint64) error {
	groups, err := h.API.ListGroups(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.gen.Current(gen) {
		h.Log.Debug("discarding stale group list", zap.Uint64("generation", gen))
		return nil
	}
	h.vm.loading = false
	if err != nil {
		h.vm.err = apiclient.Message(err)
		h.Log.Error("group list load failed", zap.Error(err))
		return err
	}
	h.vm.mine, h.vm.others = models.PartitionByMember(groups, h.Session.UserID())
	return nil
}

// Retry re-runs the last load.
func (h *Handler) Retry(ctx context.Context) error {
	return h.Load(ctx)
}
