// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/generation"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// Gateway is the subset of the api client the group view uses.
type Gateway interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	GroupLeaderboard(ctx context.Context, groupID string) ([]models.LeaderboardEntry, error)
	PreviousChallenges(ctx context.Context, groupID string) ([]models.Challenge, error)
	CreateChallenge(ctx context.Context, groupID, topic string, difficulty models.Difficulty) (models.Challenge, error)
}

// NotFoundError means the requested group is not in the fetched list.
// It is fatal for the view and cannot be retried.
type NotFoundError struct {
	GroupID string
}

func (e *NotFoundError) Error() string { return NotFoundMessage }

// NotFoundMessage is the blocking error shown for an unknown group.
const NotFoundMessage = "Group not found"

// ErrNotRetryable is returned by Retry when the view has no retryable failure.
var ErrNotRetryable = errors.New("groups: nothing to retry")

// Options tune behavior that differs between deployments.
type Options struct {
	// RefreshHistoryOnCreate reloads challenge history after a challenge is
	// created. Off by default: history lags until the view is re-entered.
	RefreshHistoryOnCreate bool
}

// Handler is the group detail orchestrator, including challenge creation.
type Handler struct {
	API   Gateway
	Notes notify.Notifier
	Log   *zap.Logger
	Opts  Options
	// Changed, when set, is called after a load applies its result. It runs
	// on the loading goroutine without the view lock held.
	Changed func()

	gen           generation.Counter
	challengeForm formpipe.Form

	mu sync.Mutex
	vm viewModel
}

type viewModel struct {
	groupID string

	loading   bool
	fatal     string
	retryable bool
	group     *models.Group

	leaderboardLoading bool
	leaderboard        []models.LeaderboardEntry

	historyLoading bool
	history        []models.Challenge

	challengeOpen bool
	challengeIn   ChallengeInput
}

func NewHandler(api Gateway, notes notify.Notifier, logger *zap.Logger, opts Options) *Handler {
	return &Handler{API: api, Notes: notes, Log: logger, Opts: opts}
}

// View is a snapshot of the group screen.
type View struct {
	GroupID string
	Loading bool
	// Fatal blocks the whole view. Retryable says whether Retry applies.
	Fatal     string
	Retryable bool
	Group     models.Group

	LeaderboardLoading bool
	Leaderboard        []models.LeaderboardEntry

	HistoryLoading bool
	// History is at most models.HistoryLimit challenges, newest first.
	History []models.Challenge

	ChallengeOpen   bool
	ChallengeInput  ChallengeInput
	ChallengeStatus formpipe.Status
}

func (h *Handler) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := View{
		GroupID:            h.vm.groupID,
		Loading:            h.vm.loading,
		Fatal:              h.vm.fatal,
		Retryable:          h.vm.retryable,
		LeaderboardLoading: h.vm.leaderboardLoading,
		Leaderboard:        append([]models.LeaderboardEntry{}, h.vm.leaderboard...),
		HistoryLoading:     h.vm.historyLoading,
		History:            append([]models.Challenge{}, h.vm.history...),
		ChallengeOpen:      h.vm.challengeOpen,
		ChallengeInput:     h.vm.challengeIn,
		ChallengeStatus:    h.challengeForm.Status(),
	}
	if h.vm.group != nil {
		v.Group = *h.vm.group
	}
	return v
}

// Reset discards the view-model and drops any load still in flight.
func (h *Handler) Reset() {
	h.gen.Invalidate()
	h.challengeForm.Reset()
	h.mu.Lock()
	h.vm = viewModel{}
	h.mu.Unlock()
}
