// internal/domain/models/challenge.go
package models

import (
	"encoding/json"
	"slices"
)

// Difficulty is the enumerated challenge difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists the allowed values in display order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid reports whether d is one of Difficulties.
func (d Difficulty) Valid() bool {
	return slices.Contains(Difficulties, d)
}

// HistoryLimit is how many past challenges the group view shows.
const HistoryLimit = 5

// Challenge is a coding challenge posted to a group. The server returns
// challenges in creation order, so a challenge's position is its age.
type Challenge struct {
	ID               string     `json:"id"`
	GroupID          string     `json:"group_id"`
	Topic            string     `json:"topic"`
	Difficulty       Difficulty `json:"difficulty"`
	CreatedBy        string     `json:"created_by,omitempty"`
	ProblemStatement string     `json:"problem_statement,omitempty"`
}

type challengeWire struct {
	ID               string `json:"id"`
	ChallengeID      string `json:"challenge_id"`
	GroupID          string `json:"group_id"`
	Topic            string `json:"topic"`
	TopicUpper       string `json:"Topic"`
	Difficulty       string `json:"difficulty"`
	CreatedBy        string `json:"created_by"`
	ProblemStatement string `json:"problem_statement"`
}

func (w challengeWire) normalize() Challenge {
	return Challenge{
		ID:               firstNonEmpty(w.ID, w.ChallengeID),
		GroupID:          w.GroupID,
		Topic:            CleanText(firstNonEmpty(w.Topic, w.TopicUpper)),
		Difficulty:       Difficulty(w.Difficulty),
		CreatedBy:        w.CreatedBy,
		ProblemStatement: CleanText(w.ProblemStatement),
	}
}

// DecodeChallenges normalizes a challenge list payload.
func DecodeChallenges(data []byte) ([]Challenge, error) {
	var ws []challengeWire
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	out := make([]Challenge, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.normalize())
	}
	return out, nil
}

// DecodeChallenge normalizes a single challenge payload.
func DecodeChallenge(data []byte) (Challenge, error) {
	var w challengeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Challenge{}, err
	}
	return w.normalize(), nil
}

// RecentChallenges returns the last n challenges of an oldest-first sequence,
// newest first. The input is not modified.
func RecentChallenges(all []Challenge, n int) []Challenge {
	if n < 0 {
		n = 0
	}
	start := len(all) - n
	if start < 0 {
		start = 0
	}
	out := slices.Clone(all[start:])
	slices.Reverse(out)
	if out == nil {
		out = []Challenge{}
	}
	return out
}
