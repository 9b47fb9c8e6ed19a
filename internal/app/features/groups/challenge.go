package groups

import (
	"context"
	"errors"

	"github.com/dalemusser/dojo/internal/app/system/apiclient"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/notify"
	"github.com/dalemusser/dojo/internal/domain/models"
	"go.uber.org/zap"
)

// Challenge creation toasts.
const (
	ChallengeCreatedMessage = "Challenge created successfully!"
	ChallengeFailedMessage  = "Failed to create challenge"
)

// ChallengeInput is the create-challenge dialog and its rule table.
type ChallengeInput struct {
	Topic      string `form:"topic" validate:"required,min=3" msg:"min=Too short"`
	Difficulty string `form:"difficulty" validate:"required,oneof=Easy Medium Hard"`
}

// OpenChallenge shows the create-challenge dialog.
func (h *Handler) OpenChallenge() {
	h.mu.Lock()
	h.vm.challengeOpen = true
	if h.vm.challengeIn.Difficulty == "" {
		h.vm.challengeIn.Difficulty = string(models.DifficultyEasy)
	}
	h.mu.Unlock()
}

// CancelChallenge hides the dialog without clearing what was typed.
func (h *Handler) CancelChallenge() {
	h.mu.Lock()
	h.vm.challengeOpen = false
	h.mu.Unlock()
}

// CreateChallenge validates and posts a challenge to the active group.
// Challenge history is not reloaded unless RefreshHistoryOnCreate is set.
func (h *Handler) CreateChallenge(ctx context.Context, in ChallengeInput) error {
	h.mu.Lock()
	groupID := h.vm.groupID
	h.vm.challengeOpen = true
	h.vm.challengeIn = in
	h.mu.Unlock()

	err := formpipe.Submit(ctx, &h.challengeForm, in,
		func(ctx context.Context, in ChallengeInput) (models.Challenge, error) {
			return h.API.CreateChallenge(ctx, groupID, in.Topic, models.Difficulty(in.Difficulty))
		},
		func(ch models.Challenge) {
			h.Log.Info("challenge created", zap.String("challenge_id", ch.ID), zap.String("group_id", groupID))
			h.Notes.Notify(notify.Success, ChallengeCreatedMessage)
			h.mu.Lock()
			h.vm.challengeOpen = false
			h.vm.challengeIn = ChallengeInput{Difficulty: string(models.DifficultyEasy)}
			h.mu.Unlock()
		},
	)

	switch {
	case err == nil:
		if h.Opts.RefreshHistoryOnCreate {
			h.loadHistory(ctx, h.gen.Latest(), groupID)
		}
	case !errors.Is(err, formpipe.ErrInvalid) && !errors.Is(err, formpipe.ErrInFlight):
		msg := apiclient.Message(err)
		if msg == apiclient.FallbackMessage {
			msg = ChallengeFailedMessage
		}
		h.Notes.Notify(notify.Error, msg)
	}
	return err
}
