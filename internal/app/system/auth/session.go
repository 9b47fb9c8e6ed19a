package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/dojo/internal/app/store/tokens"
	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Collaborators                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Gateway is the subset of the api client the session needs.
type Gateway interface {
	SetToken(token string)
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, in apiclient.RegisterRequest) error
	Me(ctx context.Context) (models.User, error)
	UpdateMe(ctx context.Context, githubUsername string) (models.User, error)
}

// ErrSignedOut is returned by operations that need a signed-in user.
var ErrSignedOut = errors.New("auth: not signed in")

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the token and current user for one client instance.
// A token is held if and only if a user is held.
//
// Restore is the start-up hook and Logout the teardown hook; every other
// component reads the session through User/UserID/SignedIn.
type SessionManager struct {
	api   Gateway
	store tokens.Store
	log   *zap.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

// NewSessionManager returns an empty session.
func NewSessionManager(api Gateway, store tokens.Store, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{api: api, store: store, log: log}
}

// User returns the signed-in user.
func (s *SessionManager) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// UserID returns the signed-in user's id, or "".
func (s *SessionManager) UserID() string {
	u, _ := s.User()
	return u.ID
}

// SignedIn reports whether a user is present.
func (s *SessionManager) SignedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Token returns the current token, or "".
func (s *SessionManager) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *SessionManager) set(token string, user *models.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	s.api.SetToken(token)
}

// Restore loads a persisted token and resolves its user. Any failure
// (unreadable file, rejected token, network error) clears the persisted
// token and leaves the session empty. Nothing is surfaced to the user.
func (s *SessionManager) Restore(ctx context.Context) bool {
	token, err := s.store.Load()
	if err != nil {
		s.log.Warn("stored token unreadable; clearing", zap.Error(err))
		s.demote()
		return false
	}
	if token == "" {
		s.set("", nil)
		return false
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn("session restore failed; signing out", zap.Error(err))
		s.demote()
		return false
	}

	s.set(token, &user)
	s.log.Info("session restored", zap.String("user_id", user.ID))
	return true
}

func (s *SessionManager) demote() {
	s.set("", nil)
	if err := s.store.Clear(); err != nil {
		s.log.Warn("could not clear stored token", zap.Error(err))
	}
}

// Login exchanges credentials for a token, persists it, and fetches the
// user. A failure at either step is returned as an *apiclient.AuthError
// and leaves the session empty.
func (s *SessionManager) Login(ctx context.Context, email, password string) (models.User, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Info("login rejected", zap.String("email", email), zap.Error(err))
		return models.User{}, asAuthError(err)
	}

	if err := s.store.Save(token); err != nil {
		s.log.Warn("could not persist token", zap.Error(err))
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		s.log.Warn("login succeeded but profile fetch failed", zap.Error(err))
		s.demote()
		return models.User{}, asAuthError(err)
	}

	s.set(token, &user)
	s.log.Info("signed in", zap.String("user_id", user.ID))
	return user, nil
}

// Register creates an account. It does not sign the user in. Server-side
// field rejections are returned as *apiclient.ValidationError; everything
// else as *apiclient.AuthError.
func (s *SessionManager) Register(ctx context.Context, in apiclient.RegisterRequest) error {
	err := s.api.Register(ctx, in)
	if err == nil {
		s.log.Info("registered", zap.String("email", in.Email))
		return nil
	}
	var ve *apiclient.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return asAuthError(err)
}

// UpdateProfile sets the GitHub username and replaces the stored user with
// the server's copy.
func (s *SessionManager) UpdateProfile(ctx context.Context, githubUsername string) (models.User, error) {
	if !s.SignedIn() {
		return models.User{}, ErrSignedOut
	}
	user, err := s.api.UpdateMe(ctx, githubUsername)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	if s.user != nil {
		s.user = &user
	}
	s.mu.Unlock()
	return user, nil
}

// Logout clears the persisted token and the in-memory session. It always
// succeeds.
func (s *SessionManager) Logout() {
	id := s.UserID()
	s.demote()
	s.log.Info("signed out", zap.String("user_id", id))
}

func asAuthError(err error) error {
	var ae *apiclient.AuthError
	if errors.As(err, &ae) {
		return err
	}
	return &apiclient.AuthError{Message: apiclient.Message(err), Err: err}
}
