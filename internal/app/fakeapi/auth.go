package fakeapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/dojo/internal/app/system/inputval"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenName   = "dojo_token"
	errBadCreds = "Could not validate credentials"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// currentUser returns the authenticated user injected by requireUser.
func currentUser(r *http.Request) (user, bool) {
	u, ok := r.Context().Value(currentUserKey).(user)
	return u, ok
}

// requireUser answers 401 unless the request carries a valid bearer token.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		var userID string
		if !ok || s.codec.Decode(tokenName, strings.TrimSpace(raw), &userID) != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, errBadCreds)
			return
		}

		s.mu.Lock()
		u := s.users[userID]
		var snapshot user
		if u != nil {
			snapshot = *u
		}
		s.mu.Unlock()

		if u == nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, errBadCreds)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), currentUserKey, snapshot)))
	})
}

// Token issues a bearer token for userID.
func (s *Server) Token(userID string) (string, error) {
	return s.codec.Encode(tokenName, userID)
}

type userOut struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	GithubUsername *string `json:"github_username"`
}

func toUserOut(u user) userOut {
	out := userOut{ID: u.ID, Username: u.Username, Email: u.Email}
	if u.GithubUsername != "" {
		gh := u.GithubUsername
		out.GithubUsername = &gh
	}
	return out
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeIssues(w, []issue{{Loc: []string{"body"}, Msg: "Invalid form body", Type: "value_error"}})
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	var issues []issue
	if email == "" {
		issues = append(issues, missing("body", "username"))
	}
	if password == "" {
		issues = append(issues, missing("body", "password"))
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	s.mu.Lock()
	u := s.users[s.byEmail[strings.ToLower(email)]]
	var hash []byte
	var id string
	if u != nil {
		hash, id = u.PasswordHash, u.ID
	}
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	access, err := s.Token(id)
	if err != nil {
		s.Log.Error("issue token", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	refresh, _ := s.codec.Encode(tokenName+"_refresh", id)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
	})
}

type registerIn struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerIn
	if !decodeBody(w, r, &in) {
		return
	}
	var issues []issue
	if strings.TrimSpace(in.Username) == "" {
		issues = append(issues, missing("body", "username"))
	}
	if !inputval.IsValidEmail(in.Email) {
		issues = append(issues, issue{Loc: []string{"body", "email"}, Msg: "value is not a valid email address", Type: "value_error"})
	}
	if in.Password == "" {
		issues = append(issues, missing("body", "password"))
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	s.mu.Lock()
	if _, taken := s.byEmail[strings.ToLower(in.Email)]; taken {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "User with this email already exists")
		return
	}
	id := s.addUserLocked(strings.TrimSpace(in.Username), strings.TrimSpace(in.Email), hash, "")
	u := *s.users[id]
	s.mu.Unlock()

	s.Log.Info("user registered", zap.String("user_id", id))
	writeJSON(w, http.StatusCreated, toUserOut(u))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	writeJSON(w, http.StatusOK, toUserOut(u))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GithubUsername *string `json:"github_username"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.GithubUsername == nil {
		writeIssues(w, []issue{missing("body", "github_username")})
		return
	}

	me, _ := currentUser(r)
	s.mu.Lock()
	u := s.users[me.ID]
	if u == nil {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	u.GithubUsername = strings.TrimSpace(*in.GithubUsername)
	out := toUserOut(*u)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}
