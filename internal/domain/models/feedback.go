// internal/domain/models/feedback.go
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// FeedbackItem is the graded result of one of a user's recent submissions.
type FeedbackItem struct {
	ChallengeID string    `json:"challenge_id"`
	Score       float64   `json:"score"` // 0-100
	Text        string    `json:"feedback"`
	ProcessedAt time.Time `json:"processed_at"`
}

type feedbackWire struct {
	ChallengeID string   `json:"challenge_id"`
	Score       *float64 `json:"score"`
	Feedback    string   `json:"feedback"`
	ProcessedAt string   `json:"processed_at"`
}

// processedAtLayouts covers RFC 3339 and naive ISO-8601 timestamps
// (the server stores UTC without an offset).
var processedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses a server timestamp. Offset-less values are UTC.
// An unparseable value yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range processedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DecodeFeedback normalizes a feedback payload.
func DecodeFeedback(data []byte) ([]FeedbackItem, error) {
	var ws []feedbackWire
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	out := make([]FeedbackItem, 0, len(ws))
	for _, w := range ws {
		item := FeedbackItem{
			ChallengeID: w.ChallengeID,
			Text:        CleanText(w.Feedback),
			ProcessedAt: ParseTimestamp(w.ProcessedAt),
		}
		if w.Score != nil {
			item.Score = *w.Score
		}
		out = append(out, item)
	}
	return out, nil
}
