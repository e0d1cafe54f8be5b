package storage

import (
	"context"
	"errors"
	"strings"

	"group-planner/internal/models"
)

// ErrNotFound is returned when a session, participant, or plan id is unknown.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface consumed by the planning engine.
//
// CreateSession must persist the session and all participants atomically.
// Responses and plan versions are append-only: AppendResponse and SavePlan
// add records, UpdateParticipant and UpdatePlan only advance mutable fields
// (state tags, flags, status, organizer feedback) and never touch recorded
// responses or plan content.
type Store interface {
	CreateSession(ctx context.Context, session models.Session, participants []models.Participant) error
	Session(ctx context.Context, id string) (models.Session, error)
	Participant(ctx context.Context, id string) (models.Participant, error)
	ParticipantByContact(ctx context.Context, contact string) (models.Participant, error)
	SessionParticipants(ctx context.Context, sessionID string) ([]models.Participant, error)
	UpdateParticipant(ctx context.Context, participant models.Participant) error
	AppendResponse(ctx context.Context, participantID string, qr models.QuestionResponse) error

	SavePlan(ctx context.Context, plan models.Plan) error
	UpdatePlan(ctx context.Context, plan models.Plan) error
	Plan(ctx context.Context, id string) (models.Plan, error)
	SessionPlans(ctx context.Context, sessionID string) ([]models.Plan, error)

	UpsertPlanFeedback(ctx context.Context, fb models.PlanFeedback) error
	PlanFeedback(ctx context.Context, planID string) ([]models.PlanFeedback, error)

	Close() error
}

// ContactKey normalizes a contact string for matching inbound senders
// against stored contacts: lowercased, with phone formatting characters
// stripped.
func ContactKey(contact string) string {
	replacer := strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(strings.ToLower(contact))
}
