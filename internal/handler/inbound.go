// Package handler routes free-text inbound replies to the right planning
// engine operation based on the sender's current collection state.
package handler

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"group-planner/internal/models"
	"group-planner/internal/planner"
)

// Inbound turns an incoming message from a known contact into an engine
// transition: a communication preference, a question answer, a continuation
// decision, or plan feedback.
type Inbound struct {
	engine *planner.Engine
	log    zerolog.Logger
}

// NewInbound creates an inbound reply router
func NewInbound(engine *planner.Engine, log zerolog.Logger) *Inbound {
	return &Inbound{
		engine: engine,
		log:    log.With().Str("component", "inbound").Logger(),
	}
}

// HandleMessage processes one incoming message. Messages from unknown
// contacts are ignored; only invited participants get replies routed.
func (h *Inbound) HandleMessage(ctx context.Context, sender, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	participant, err := h.engine.ParticipantByContact(ctx, sender)
	if err != nil {
		// Unknown sender, might be a new conversation - ignore
		return nil
	}

	switch participant.State {
	case models.StateAwaitingMethod:
		return h.engine.SetPreferredMethod(ctx, participant.ID, text)

	case models.StateAwaitingContinuation:
		return h.engine.RecordContinuationDecision(ctx, participant.ID, text)

	case models.StateCollecting:
		// The reply answers the first unanswered canonical question; past
		// the list it answers the advisory follow-up
		questionID := "follow-up"
		if q, ok := h.engine.Questions().Next(len(participant.Responses)); ok {
			questionID = q.ID
		}
		return h.engine.RecordResponse(ctx, participant.ID, questionID, text)

	case models.StateComplete:
		return h.handlePlanReply(ctx, participant, text)
	}

	h.log.Debug().
		Str("participant", participant.ID).
		Str("state", string(participant.State)).
		Msg("Ignoring message in current state")
	return nil
}

// handlePlanReply interprets a reply from a participant whose collection is
// done as acceptance or rejection of the distributed plan
func (h *Inbound) handlePlanReply(ctx context.Context, participant models.Participant, text string) error {
	status, err := h.engine.Status(ctx, participant.SessionID)
	if err != nil {
		return err
	}
	if !status.Plan.HasPlan || status.Plan.Latest.Status != models.PlanDistributed {
		return nil
	}
	planID := status.Plan.Latest.ID

	lower := strings.ToLower(text)
	if containsAny(lower, "yes", "yep", "yeah", "accept", "accepting", "works for me", "sounds good", "✅") {
		return h.engine.RecordParticipantFeedback(ctx, planID, participant.ID, true, "")
	}
	if containsAny(lower, "no", "nope", "decline", "declining", "doesn't work", "can't make it", "❌") {
		return h.engine.RecordParticipantFeedback(ctx, planID, participant.ID, false, text)
	}

	// Not a clear plan response, ignore
	return nil
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
