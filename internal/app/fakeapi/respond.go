package fakeapi

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// issue is one entry of a 422 detail list.
type issue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func missing(loc ...string) issue {
	return issue{Loc: loc, Msg: "Field required", Type: "missing"}
}

func writeIssues(w http.ResponseWriter, issues []issue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

// decodeBody decodes a JSON body, answering 422 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeIssues(w, []issue{{Loc: []string{"body"}, Msg: "Invalid JSON body", Type: "json_invalid"}})
		return false
	}
	return true
}
