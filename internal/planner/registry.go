package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"group-planner/internal/models"
)

// NewParticipant is one invitee in a session create request.
type NewParticipant struct {
	Name    string
	Contact string
}

// CreateSessionRequest carries everything needed to start a planning session.
type CreateSessionRequest struct {
	OrganizerName    string
	OrganizerContact string
	EventName        string
	Participants     []NewParticipant
}

// CreateSession validates the request and persists the session together
// with all its participants atomically. It returns the new session id.
func (e *Engine) CreateSession(ctx context.Context, req CreateSessionRequest) (string, error) {
	if strings.TrimSpace(req.OrganizerName) == "" {
		return "", &ValidationError{Reason: "organizer name is required"}
	}
	if strings.TrimSpace(req.OrganizerContact) == "" {
		return "", &ValidationError{Reason: "organizer contact is required"}
	}
	if strings.TrimSpace(req.EventName) == "" {
		return "", &ValidationError{Reason: "event name is required"}
	}
	if len(req.Participants) == 0 {
		return "", &ValidationError{Reason: "at least one participant is required"}
	}
	for i, p := range req.Participants {
		if strings.TrimSpace(p.Contact) == "" {
			return "", &ValidationError{Reason: fmt.Sprintf("participant %d has no contact", i+1)}
		}
	}

	session := models.Session{
		ID:               uuid.NewString(),
		OrganizerName:    req.OrganizerName,
		OrganizerContact: req.OrganizerContact,
		EventName:        req.EventName,
		CreatedAt:        time.Now().UTC(),
	}

	participants := make([]models.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, models.Participant{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Name:      p.Name,
			Contact:   p.Contact,
			State:     models.StateNotContacted,
		})
	}

	if err := e.store.CreateSession(ctx, session, participants); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	e.log.Info().
		Str("session", session.ID).
		Str("event", session.EventName).
		Int("participants", len(participants)).
		Msg("Planning session created")
	return session.ID, nil
}

// Session retrieves a session by id.
func (e *Engine) Session(ctx context.Context, id string) (models.Session, error) {
	session, err := e.store.Session(ctx, id)
	if err != nil {
		return models.Session{}, translateNotFound(err, "session", id)
	}
	return session, nil
}

// Participant retrieves a participant by id.
func (e *Engine) Participant(ctx context.Context, id string) (models.Participant, error) {
	participant, err := e.store.Participant(ctx, id)
	if err != nil {
		return models.Participant{}, translateNotFound(err, "participant", id)
	}
	return participant, nil
}

// Participants lists a session's participants.
func (e *Engine) Participants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	if _, err := e.store.Session(ctx, sessionID); err != nil {
		return nil, translateNotFound(err, "session", sessionID)
	}
	return e.store.SessionParticipants(ctx, sessionID)
}

// ParticipantByContact finds the participant whose contact matches, used by
// inbound reply routing.
func (e *Engine) ParticipantByContact(ctx context.Context, contact string) (models.Participant, error) {
	participant, err := e.store.ParticipantByContact(ctx, contact)
	if err != nil {
		return models.Participant{}, translateNotFound(err, "participant", contact)
	}
	return participant, nil
}
