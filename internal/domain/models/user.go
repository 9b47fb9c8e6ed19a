// internal/domain/models/user.go
package models

import (
	"encoding/json"
	"strings"
)

// User is the signed-in account as returned by /auth/me.
//
// NOTE:
//   - GithubUsername is optional at login but required before the user
//     can take part in challenges; the profile form collects it.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	GithubUsername string `json:"github_username,omitempty"`
}

// userWire accepts every shape the server has used for a user document.
type userWire struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	GithubUsername string `json:"github_username"`
	GithubCamel    string `json:"githubUsername"`
}

// DecodeUser normalizes a user payload into the canonical User shape.
func DecodeUser(data []byte) (User, error) {
	var w userWire
	if err := json.Unmarshal(data, &w); err != nil {
		return User{}, err
	}
	return User{
		ID:             firstNonEmpty(w.ID, w.UserID),
		Username:       strings.TrimSpace(w.Username),
		Email:          strings.TrimSpace(w.Email),
		GithubUsername: strings.TrimSpace(firstNonEmpty(w.GithubCamel, w.GithubUsername)),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
