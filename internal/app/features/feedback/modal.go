// Package feedback is the modal that shows a user's most recent graded
// submissions.
package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/dojo/internal/app/system/generation"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// EmptyMessage is shown when the modal has nothing to list.
const EmptyMessage = "No feedback data found."

// Gateway is the subset of the api client the modal uses.
type Gateway interface {
	Feedback(ctx context.Context, userID string) ([]models.FeedbackItem, error)
}

// Modal is the feedback modal orchestrator.
type Modal struct {
	API Gateway
	Log *zap.Logger

	gen generation.Counter

	mu      sync.Mutex
	open    bool
	userID  string
	loading bool
	items   []models.FeedbackItem
}

func NewModal(api Gateway, logger *zap.Logger) *Modal {
	return &Modal{API: api, Log: logger}
}

// View is a snapshot of the modal.
type View struct {
	Open    bool
	UserID  string
	Loading bool
	Items   []models.FeedbackItem
}

// Empty reports whether the modal has finished loading with nothing to show.
func (v View) Empty() bool {
	return v.Open && !v.Loading && len(v.Items) == 0
}

func (m *Modal) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{
		Open:    m.open,
		UserID:  m.userID,
		Loading: m.loading,
		Items:   append([]models.FeedbackItem{}, m.items...),
	}
}

// Open shows the modal for userID immediately and loads its feedback.
// A failed load is logged and leaves the list empty; no toast is raised.
func (m *Modal) Open(ctx context.Context, userID string) {
	m.fetch(ctx, m.begin(userID), userID)
}

// OpenAsync shows the modal and loads in the background. The channel is
// closed once the load has resolved.
func (m *Modal) OpenAsync(ctx context.Context, userID string) <-chan struct{} {
	gen := m.begin(userID)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.fetch(ctx, gen, userID)
	}()
	return done
}

func (m *Modal) begin(userID string) uint64 {
	gen := m.gen.Next()
	m.mu.Lock()
	m.open = true
	m.userID = userID
	m.loading = true
	m.items = nil
	m.mu.Unlock()
	return gen
}

func (m *Modal) fetch(ctx context.Context, gen uint64, userID string) {
	items, err := m.API.Feedback(ctx, userID)
	if err != nil {
		m.Log.Warn("feedback load failed", zap.String("user_id", userID), zap.Error(err))
		items = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.gen.Current(gen) {
		m.Log.Debug("discarding stale feedback", zap.String("user_id", userID))
		return
	}
	m.loading = false
	m.items = items
}

// Close hides the modal. A load still in flight is dropped.
func (m *Modal) Close() {
	m.gen.Invalidate()
	m.mu.Lock()
	m.open = false
	m.loading = false
	m.userID = ""
	m.items = nil
	m.mu.Unlock()
}

// ScoreLabel formats a score the way the modal lists it.
func ScoreLabel(score float64) string {
	return fmt.Sprintf("Score: %g / 100", score)
}

// TimeLabel formats a processed-at time in the viewer's location.
// The zero time renders as an empty string.
func TimeLabel(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}
