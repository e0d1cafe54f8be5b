// Package oracle authors and revises plan content from aggregated
// preferences. The engine treats its output as opaque.
package oracle

import (
	"context"

	"group-planner/internal/models"
)

// EventContext describes the session a plan is being authored for.
type EventContext struct {
	SessionID        string
	EventName        string
	OrganizerName    string
	ParticipantCount int
}

// ParticipantPreferences is one participant's collected material.
type ParticipantPreferences struct {
	Responses       []models.QuestionResponse
	PreferredMethod models.Channel
}

// PreferenceSet aggregates preferences keyed by participant name.
type PreferenceSet map[string]ParticipantPreferences

// PlanDraft is the content of a proposed plan before it is versioned and
// persisted.
type PlanDraft struct {
	Date           string
	Time           string
	Location       string
	Activities     []string
	Accommodations map[string]string
	Notes          string
	Reasoning      string
}

// PlanOracle proposes plans, revises them from feedback, and suggests
// dynamic follow-up questions once the canonical list is exhausted.
type PlanOracle interface {
	Propose(ctx context.Context, event EventContext, prefs PreferenceSet) (PlanDraft, error)
	Revise(ctx context.Context, prior PlanDraft, feedback, participantName string) (PlanDraft, error)
	FollowUp(ctx context.Context, event EventContext, history []models.QuestionResponse) (string, error)
}
