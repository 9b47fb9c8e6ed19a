package fakeapi

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// feedbackLimit is how many graded submissions the feedback endpoint returns.
const feedbackLimit = 2

type challengeOut struct {
	ID               string  `json:"id"`
	Topic            string  `json:"Topic"`
	Difficulty       string  `json:"difficulty"`
	GroupID          string  `json:"group_id"`
	CreatedBy        string  `json:"created_by"`
	ProblemStatement *string `json:"problem_statement"`
}

func toChallengeOut(c *challenge) challengeOut {
	out := challengeOut{
		ID:         c.ID,
		Topic:      c.Topic,
		Difficulty: c.Difficulty,
		GroupID:    c.GroupID,
		CreatedBy:  c.CreatedBy,
	}
	if c.ProblemStatement != "" {
		ps := c.ProblemStatement
		out.ProblemStatement = &ps
	}
	return out
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Topic      *string `json:"Topic"`
		Difficulty *string `json:"difficulty"`
		GroupID    *string `json:"group_id"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	var issues []issue
	if in.Topic == nil {
		issues = append(issues, missing("body", "Topic"))
	}
	if in.Difficulty == nil {
		issues = append(issues, missing("body", "difficulty"))
	}
	if in.GroupID == nil {
		issues = append(issues, missing("body", "group_id"))
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	me, _ := currentUser(r)
	s.mu.Lock()
	c := s.addChallengeLocked(*in.GroupID, strings.TrimSpace(*in.Topic), *in.Difficulty, me.ID)
	out := toChallengeOut(c)
	s.mu.Unlock()

	s.Log.Info("challenge created", zap.String("challenge_id", out.ID), zap.String("group_id", out.GroupID))
	writeJSON(w, http.StatusAccepted, out)
}

func (s *Server) handlePreviousChallenges(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	out := []challengeOut{}
	for _, c := range s.challenges {
		if c.GroupID == id {
			out = append(out, toChallengeOut(c))
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

type feedbackOut struct {
	ChallengeID string   `json:"challenge_id"`
	Score       *float64 `json:"score"`
	Feedback    string   `json:"feedback"`
	ProcessedAt string   `json:"processed_at"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	var done []submission
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.Status == "completed" {
			done = append(done, sub)
		}
	}
	s.mu.Unlock()

	slices.SortStableFunc(done, func(a, b submission) int {
		return cmp.Compare(b.ProcessedAt.UnixNano(), a.ProcessedAt.UnixNano())
	})
	if len(done) > feedbackLimit {
		done = done[:feedbackLimit]
	}

	out := make([]feedbackOut, 0, len(done))
	for _, sub := range done {
		out = append(out, feedbackOut{
			ChallengeID: sub.ChallengeID,
			Score:       sub.Score,
			Feedback:    sub.Feedback,
			// Stored without an offset, as the grading worker writes it.
			ProcessedAt: sub.ProcessedAt.Format("2006-01-02T15:04:05.000000"),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
