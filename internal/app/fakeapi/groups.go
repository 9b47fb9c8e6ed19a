package fakeapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type groupOut struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedBy   string   `json:"created_by"`
	Members     []string `json:"members"`
}

func toGroupOut(g *group) groupOut {
	return groupOut{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     slices.Clone(g.Members),
	}
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]groupOut, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, toGroupOut(g))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	var issues []issue
	if in.Name == nil {
		issues = append(issues, missing("body", "name"))
	}
	if in.Description == nil {
		issues = append(issues, missing("body", "description"))
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	me, _ := currentUser(r)
	s.mu.Lock()
	g := s.addGroupLocked(strings.TrimSpace(*in.Name), strings.TrimSpace(*in.Description), me.ID)
	out := toGroupOut(g)
	s.mu.Unlock()

	s.Log.Info("group created", zap.String("group_id", out.ID), zap.String("user_id", me.ID))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	me, _ := currentUser(r)

	s.mu.Lock()
	g := s.findGroupLocked(id)
	if g == nil {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Group not found")
		return
	}
	if !slices.Contains(g.Members, me.ID) {
		g.Members = append(g.Members, me.ID)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully joined group"})
}

func (s *Server) handleGroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rows := s.leaderboardLocked(id)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, rows)
}
