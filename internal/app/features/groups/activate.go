package groups

import (
	"context"
	"sync"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// Notifications raised while loading the group view.
const (
	LeaderboardFailedMessage = "Failed to load leaderboard"
	LeaderboardEmptyMessage  = "No leaderboard yet"
	HistoryFailedMessage     = "Failed to load challenge history"
	HistoryEmptyMessage      = "No challenge history found"
)

// Activate opens the view for groupID and starts three independent loads:
// group metadata, leaderboard and challenge history. Each applies its own
// result as soon as it resolves. Only a missing or unloadable group is
// fatal; the other two degrade to empty lists with a notification.
//
// Activate returns once all three have resolved, with the metadata error
// (a *NotFoundError or the request error) if there was one. Results of an
// older activation are discarded.
func (h *Handler) Activate(ctx context.Context, groupID string) error {
	return h.start(ctx, groupID)()
}

// ActivateAsync opens the view for groupID and returns at once; the loads
// run in the background. The channel receives what Activate would return.
func (h *Handler) ActivateAsync(ctx context.Context, groupID string) <-chan error {
	wait := h.start(ctx, groupID)
	done := make(chan error, 1)
	go func() { done <- wait() }()
	return done
}

// start resets the view-model under a new generation, launches the three
// loads, and returns a function that waits for them.
func (h *Handler) start(ctx context.Context, groupID string) func() error {
	gen := h.gen.Next()

	h.mu.Lock()
	h.vm = viewModel{
		groupID:            groupID,
		loading:            true,
		leaderboardLoading: true,
		historyLoading:     true,
		challengeIn:        ChallengeInput{Difficulty: string(models.DifficultyEasy)},
	}
	h.mu.Unlock()
	h.challengeForm.Reset()

	var (
		wg      sync.WaitGroup
		metaErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		metaErr = h.loadGroup(ctx, gen, groupID)
	}()
	go func() {
		defer wg.Done()
		h.loadLeaderboard(ctx, gen, groupID)
	}()
	go func() {
		defer wg.Done()
		h.loadHistory(ctx, gen, groupID)
	}()

	return func() error {
		wg.Wait()
		return metaErr
	}
}

// Retry re-activates the same group after a retryable failure.
func (h *Handler) Retry(ctx context.Context) error {
	h.mu.Lock()
	id, ok := h.vm.groupID, h.vm.retryable
	h.mu.Unlock()
	if !ok {
		return ErrNotRetryable
	}
	return h.Activate(ctx, id)
}

// apply runs fn under the view lock if gen is still current, then reports
// the change.
func (h *Handler) apply(gen uint64, what string, fn func(vm *viewModel)) bool {
	h.mu.Lock()
	if !h.gen.Current(gen) {
		h.mu.Unlock()
		h.Log.Debug("discarding stale response", zap.String("load", what), zap.Uint64("generation", gen))
		return false
	}
	fn(&h.vm)
	h.mu.Unlock()

	if h.Changed != nil {
		h.Changed()
	}
	return true
}

func (h *Handler) loadGroup(ctx context.Context, gen uint64, groupID string) error {
	groups, err := h.API.ListGroups(ctx)
	if err != nil {
		h.apply(gen, "group", func(vm *viewModel) {
			vm.loading = false
			vm.fatal = apiclient.Message(err)
			vm.retryable = true
		})
		h.Log.Error("group metadata load failed", zap.String("group_id", groupID), zap.Error(err))
		return err
	}

	g, found := models.FindGroup(groups, groupID)
	if !found {
		nf := &NotFoundError{GroupID: groupID}
		h.apply(gen, "group", func(vm *viewModel) {
			vm.loading = false
			vm.fatal = nf.Error()
			vm.retryable = false
		})
		h.Log.Warn("group not found", zap.String("group_id", groupID))
		return nf
	}

	h.apply(gen, "group", func(vm *viewModel) {
		vm.loading = false
		vm.group = &g
	})
	return nil
}

func (h *Handler) loadLeaderboard(ctx context.Context, gen uint64, groupID string) {
	entries, err := h.API.GroupLeaderboard(ctx, groupID)
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	if !h.apply(gen, "leaderboard", func(vm *viewModel) {
		vm.leaderboardLoading = false
		vm.leaderboard = entries
	}) {
		return
	}

	switch {
	case err != nil:
		h.Log.Warn("leaderboard load failed", zap.String("group_id", groupID), zap.Error(err))
		h.Notes.Notify(notify.Error, LeaderboardFailedMessage)
	case len(entries) == 0:
		h.Notes.Notify(notify.Info, LeaderboardEmptyMessage)
	}
}

func (h *Handler) loadHistory(ctx context.Context, gen uint64, groupID string) {
	all, err := h.API.PreviousChallenges(ctx, groupID)
	recent := models.RecentChallenges(all, models.HistoryLimit)
	if !h.apply(gen, "history", func(vm *viewModel) {
		vm.historyLoading = false
		vm.history = recent
	}) {
		return
	}

	switch {
	case err != nil:
		h.Log.Warn("challenge history load failed", zap.String("group_id", groupID), zap.Error(err))
		h.Notes.Notify(notify.Error, HistoryFailedMessage)
	case len(recent) == 0:
		h.Notes.Notify(notify.Info, HistoryEmptyMessage)
	}
}
