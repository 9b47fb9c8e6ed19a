// internal/domain/models/leaderboard.go
package models

import "encoding/json"

// LeaderboardEntry is one ranked row of a group leaderboard. Entries keep the
// order the server sent; the client never re-sorts them.
type LeaderboardEntry struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type leaderboardWire struct {
	UserID   string   `json:"user_id"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	XP       *float64 `json:"xp"`
	Points   *float64 `json:"points"`
	Score    *float64 `json:"score"`
}

// DecodeLeaderboard normalizes a leaderboard payload. The display name is the
// email when present, otherwise the username; the score is the first of
// xp, points, score that the server populated.
func DecodeLeaderboard(data []byte) ([]LeaderboardEntry, error) {
	var ws []leaderboardWire
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(ws))
	for _, w := range ws {
		e := LeaderboardEntry{
			UserID:      firstNonEmpty(w.UserID, w.ID),
			DisplayName: CleanText(firstNonEmpty(w.Email, w.Username)),
		}
		switch {
		case w.XP != nil:
			e.Score = *w.XP
		case w.Points != nil:
			e.Score = *w.Points
		case w.Score != nil:
			e.Score = *w.Score
		}
		out = append(out, e)
	}
	return out, nil
}
