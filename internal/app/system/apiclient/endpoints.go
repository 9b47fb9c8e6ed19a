package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/dojo/internal/domain/models"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, in RegisterRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/register", in, true)
	return err
}

// Me fetches the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/me", nil, true)
	if err != nil {
		return models.User{}, err
	}
	return decode(data, models.DecodeUser)
}

// UpdateMe sets the current user's GitHub username and returns the updated user.
func (c *Client) UpdateMe(ctx context.Context, githubUsername string) (models.User, error) {
	body := map[string]string{"github_username": githubUsername}
	data, err := c.do(ctx, http.MethodPut, "/auth/me", body, true)
	if err != nil {
		return models.User{}, err
	}
	return decode(data, models.DecodeUser)
}

// ListGroups fetches every group. There is no pagination.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	data, err := c.do(ctx, http.MethodGet, "/groups/", nil, true)
	if err != nil {
		return nil, err
	}
	return decode(data, models.DecodeGroups)
}

// CreateGroup creates a group owned by the current user.
func (c *Client) CreateGroup(ctx context.Context, name, description string) (models.Group, error) {
	body := map[string]string{"name": name, "description": description}
	data, err := c.do(ctx, http.MethodPost, "/groups/", body, true)
	if err != nil {
		return models.Group{}, err
	}
	return decode(data, models.DecodeGroup)
}

// JoinGroup adds the current user to a group. Joining twice is not an error.
func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	_, err := c.do(ctx, http.MethodPost, "/groups/"+url.PathEscape(groupID)+"/join", nil, true)
	return err
}

// GroupLeaderboard fetches a group's ranked entries in server order.
func (c *Client) GroupLeaderboard(ctx context.Context, groupID string) ([]models.LeaderboardEntry, error) {
	data, err := c.do(ctx, http.MethodGet, "/leaderboard/group/"+url.PathEscape(groupID), nil, true)
	if err != nil {
		return nil, err
	}
	return decode(data, models.DecodeLeaderboard)
}

// challengeBody is the wire body of POST /challenges/. The topic key is
// capitalized on the wire.
type challengeBody struct {
	GroupID    string            `json:"group_id"`
	Topic      string            `json:"Topic"`
	Difficulty models.Difficulty `json:"difficulty"`
}

// CreateChallenge posts a new challenge to a group.
func (c *Client) CreateChallenge(ctx context.Context, groupID, topic string, difficulty models.Difficulty) (models.Challenge, error) {
	body := challengeBody{GroupID: groupID, Topic: topic, Difficulty: difficulty}
	data, err := c.do(ctx, http.MethodPost, "/challenges/", body, true)
	if err != nil {
		return models.Challenge{}, err
	}
	ch, err := decode(data, models.DecodeChallenge)
	if err != nil {
		return models.Challenge{}, err
	}
	if ch.GroupID == "" {
		ch.GroupID = groupID
	}
	return ch, nil
}

// PreviousChallenges fetches a group's challenges, oldest first.
func (c *Client) PreviousChallenges(ctx context.Context, groupID string) ([]models.Challenge, error) {
	data, err := c.do(ctx, http.MethodGet, "/challenges/group/"+url.PathEscape(groupID)+"/previous", nil, true)
	if err != nil {
		return nil, err
	}
	return decode(data, models.DecodeChallenges)
}

// Feedback fetches a user's most recent graded submissions. The bearer
// token is only sent when the client was built with FeedbackAuth.
func (c *Client) Feedback(ctx context.Context, userID string) ([]models.FeedbackItem, error) {
	data, err := c.do(ctx, http.MethodGet, "/challenges/feedback/"+url.PathEscape(userID), nil, c.feedbackAuth)
	if err != nil {
		return nil, err
	}
	return decode(data, models.DecodeFeedback)
}

func decode[T any](data []byte, fn func([]byte) (T, error)) (T, error) {
	v, err := fn(data)
	if err != nil {
		var zero T
		return zero, &RequestError{Message: FallbackMessage, Err: fmt.Errorf("decode response: %w", err)}
	}
	return v, nil
}
