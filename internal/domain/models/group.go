// internal/domain/models/group.go
package models

import (
	"encoding/json"
	"slices"
)

// Group is a cohort that users join to compete on shared challenges.
//
// NOTE:
//   - Members holds user ids; it is the only input to the "my groups" /
//     "other groups" split on the dashboard.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"created_by,omitempty"`
	Members     []string `json:"members"`
}

// HasMember reports whether userID is in the group's member list.
func (g Group) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	return slices.Contains(g.Members, userID)
}

// MemberCount is the number of members shown on a group card.
func (g Group) MemberCount() int {
	return len(g.Members)
}

type groupWire struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"group_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"created_by"`
	Members     []string `json:"members"`
}

func (w groupWire) normalize() Group {
	members := w.Members
	if members == nil {
		members = []string{}
	}
	return Group{
		ID:          firstNonEmpty(w.ID, w.GroupID),
		Name:        CleanText(w.Name),
		Description: CleanText(w.Description),
		CreatedBy:   w.CreatedBy,
		Members:     members,
	}
}

// DecodeGroups normalizes a list-groups payload. A null body is an empty list.
func DecodeGroups(data []byte) ([]Group, error) {
	var ws []groupWire
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.normalize())
	}
	return out, nil
}

// DecodeGroup normalizes a single group payload.
func DecodeGroup(data []byte) (Group, error) {
	var w groupWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Group{}, err
	}
	return w.normalize(), nil
}

// FindGroup returns the group with the given id from a fetched list.
func FindGroup(groups []Group, id string) (Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// PartitionByMember splits groups into those userID belongs to and the rest.
// Both results preserve the server order, are disjoint, and together hold
// every input group exactly once.
func PartitionByMember(groups []Group, userID string) (mine, others []Group) {
	mine = []Group{}
	others = []Group{}
	for _, g := range groups {
		if g.HasMember(userID) {
			mine = append(mine, g)
		} else {
			others = append(others, g)
		}
	}
	return mine, others
}
