package planner

import (
	"context"
	"fmt"
	"strings"

	"group-planner/internal/models"
	"group-planner/internal/oracle"
)

var methodAliases = map[string]models.Channel{
	"1": models.ChannelSMS, "text": models.ChannelSMS, "sms": models.ChannelSMS, "txt": models.ChannelSMS,
	"2": models.ChannelEmail, "email": models.ChannelEmail, "e-mail": models.ChannelEmail, "mail": models.ChannelEmail,
	"3": models.ChannelVoice, "phone": models.ChannelVoice, "call": models.ChannelVoice, "voice": models.ChannelVoice,
}

var affirmatives = map[string]bool{
	"yes": true, "y": true, "sure": true, "ok": true, "okay": true, "continue": true,
}

// StartOutreach begins outreach to every participant of a session that has
// not been contacted yet.
func (e *Engine) StartOutreach(ctx context.Context, sessionID string) error {
	session, err := e.store.Session(ctx, sessionID)
	if err != nil {
		return translateNotFound(err, "session", sessionID)
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	participants, err := e.store.SessionParticipants(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}

	e.log.Info().Str("session", sessionID).Int("participants", len(participants)).Msg("Starting outreach")

	for _, p := range participants {
		if err := e.beginOutreachLocked(ctx, session, p); err != nil {
			return err
		}
	}
	return nil
}

// BeginOutreach sends the introduction message to one participant and moves
// them to awaiting_method. Calling it again once the participant is past
// not_contacted is a no-op, so retried triggers never duplicate outreach.
func (e *Engine) BeginOutreach(ctx context.Context, participantID string) error {
	participant, err := e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}

	unlock := e.lockSession(participant.SessionID)
	defer unlock()

	// Re-read under the lock; a concurrent trigger may have advanced state
	participant, err = e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}
	session, err := e.store.Session(ctx, participant.SessionID)
	if err != nil {
		return translateNotFound(err, "session", participant.SessionID)
	}

	return e.beginOutreachLocked(ctx, session, participant)
}

func (e *Engine) beginOutreachLocked(ctx context.Context, session models.Session, participant models.Participant) error {
	if participant.State != models.StateNotContacted {
		return nil
	}

	participant.State = models.StateAwaitingMethod
	if err := e.store.UpdateParticipant(ctx, participant); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}

	e.deliver(ctx, participant.Contact, channelFor(participant),
		introMessage(participant.Name, session.OrganizerName, session.EventName))
	return nil
}

// SetPreferredMethod records how a participant wants to be contacted. An
// unrecognized response falls back to inferring the channel from the
// contact format instead of failing. From awaiting_method this also moves
// the participant to collecting and sends the first question.
func (e *Engine) SetPreferredMethod(ctx context.Context, participantID, rawResponse string) error {
	participant, err := e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}

	unlock := e.lockSession(participant.SessionID)
	defer unlock()

	participant, err = e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}
	if participant.State == models.StateNotContacted {
		return &StateError{Op: "set preferred method", Entity: "participant", State: string(participant.State)}
	}

	normalized := strings.ToLower(strings.TrimSpace(rawResponse))
	method, ok := methodAliases[normalized]
	if !ok {
		method = channelFor(models.Participant{Contact: participant.Contact})
		e.log.Info().
			Str("participant", participantID).
			Str("method", string(method)).
			Msg("Unclear communication preference, defaulting from contact format")
	}

	participant.PreferredMethod = method
	startCollecting := participant.State == models.StateAwaitingMethod
	if startCollecting {
		participant.State = models.StateCollecting
	}
	if err := e.store.UpdateParticipant(ctx, participant); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}

	if startCollecting {
		e.sendNextQuestion(ctx, participant)
	}
	return nil
}

// RecordResponse appends one question/response pair. Past the continuation
// threshold the participant is asked whether to keep going instead of
// receiving the next question.
func (e *Engine) RecordResponse(ctx context.Context, participantID, questionID, text string) error {
	if strings.TrimSpace(questionID) == "" {
		return &ValidationError{Reason: "question id is required"}
	}
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Reason: "response text is required"}
	}

	participant, err := e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}

	unlock := e.lockSession(participant.SessionID)
	defer unlock()

	participant, err = e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}
	if participant.State != models.StateCollecting {
		return &StateError{Op: "record response", Entity: "participant", State: string(participant.State)}
	}

	// Canonical ids resolve to their question text; anything else is a
	// dynamic follow-up carrying its own text
	questionText := questionID
	if q, ok := e.questions.ByID(questionID); ok {
		questionText = q.Text
	}

	qr := models.QuestionResponse{
		QuestionID: questionID,
		Question:   questionText,
		Response:   text,
		Position:   len(participant.Responses) + 1,
	}
	if err := e.store.AppendResponse(ctx, participantID, qr); err != nil {
		return fmt.Errorf("append response: %w", err)
	}
	participant.Responses = append(participant.Responses, qr)

	count := len(participant.Responses)
	if count >= e.threshold || count >= e.questions.Len() {
		participant.State = models.StateAwaitingContinuation
		participant.AwaitingContinuation = true
		if err := e.store.UpdateParticipant(ctx, participant); err != nil {
			return fmt.Errorf("update participant: %w", err)
		}
		e.deliver(ctx, participant.Contact, channelFor(participant), continuationPrompt())
		return nil
	}

	e.sendNextQuestion(ctx, participant)
	return nil
}

// RecordContinuationDecision resumes collection on an affirmative response
// and completes it otherwise.
func (e *Engine) RecordContinuationDecision(ctx context.Context, participantID, rawResponse string) error {
	participant, err := e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}

	unlock := e.lockSession(participant.SessionID)
	defer unlock()

	participant, err = e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}
	if participant.State != models.StateAwaitingContinuation {
		return &StateError{Op: "record continuation decision", Entity: "participant", State: string(participant.State)}
	}

	participant.AwaitingContinuation = false

	if affirmatives[strings.ToLower(strings.TrimSpace(rawResponse))] {
		participant.State = models.StateCollecting
		if err := e.store.UpdateParticipant(ctx, participant); err != nil {
			return fmt.Errorf("update participant: %w", err)
		}
		e.sendNextQuestion(ctx, participant)
		return nil
	}

	return e.completeLocked(ctx, participant)
}

// MarkComplete finishes collection directly, used when preferences arrive
// from a one-shot form instead of a dialogue. Idempotent: a second call
// changes nothing and sends no second thank-you.
func (e *Engine) MarkComplete(ctx context.Context, participantID string) error {
	participant, err := e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}

	unlock := e.lockSession(participant.SessionID)
	defer unlock()

	participant, err = e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}
	if participant.State == models.StateComplete {
		return nil
	}

	participant.AwaitingContinuation = false
	return e.completeLocked(ctx, participant)
}

func (e *Engine) completeLocked(ctx context.Context, participant models.Participant) error {
	participant.State = models.StateComplete
	participant.Completed = true
	if err := e.store.UpdateParticipant(ctx, participant); err != nil {
		return fmt.Errorf("update participant: %w", err)
	}

	e.log.Info().Str("participant", participant.ID).Msg("Preference collection complete")
	e.deliver(ctx, participant.Contact, channelFor(participant), thankYouMessage())
	return nil
}

// sendNextQuestion sends the first unanswered canonical question, or an
// advisory follow-up from the oracle once the list is exhausted.
func (e *Engine) sendNextQuestion(ctx context.Context, participant models.Participant) {
	answered := len(participant.Responses)
	if q, ok := e.questions.Next(answered); ok {
		e.deliver(ctx, participant.Contact, channelFor(participant), questionMessage(q.Text))
		return
	}

	session, err := e.store.Session(ctx, participant.SessionID)
	if err != nil {
		e.log.Warn().Err(err).Str("participant", participant.ID).Msg("Session lookup for follow-up failed")
		return
	}
	event := oracle.EventContext{
		SessionID:     session.ID,
		EventName:     session.EventName,
		OrganizerName: session.OrganizerName,
	}
	followUp, err := e.oracle.FollowUp(ctx, event, participant.Responses)
	if err != nil {
		// Follow-ups are advisory; a failed oracle call only skips the send
		e.log.Warn().Err(err).Str("participant", participant.ID).Msg("Follow-up question generation failed")
		return
	}
	e.deliver(ctx, participant.Contact, channelFor(participant), questionMessage(followUp))
}
