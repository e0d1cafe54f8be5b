package planner

import (
	"context"
	"fmt"

	"group-planner/internal/models"
)

// ParticipantStatus is the per-participant projection in a status view.
type ParticipantStatus struct {
	Name            string                 `json:"name"`
	Status          models.CollectionState `json:"status"`
	PreferredMethod models.Channel         `json:"preferred_method,omitempty"`
}

// PlanStatusView summarizes the plan side of a session.
type PlanStatusView struct {
	HasPlan    bool         `json:"has_plan"`
	IsApproved bool         `json:"is_approved"`
	Latest     *models.Plan `json:"latest,omitempty"`
}

// SessionStatus is the consolidated read-only view of a session.
type SessionStatus struct {
	SessionID          string              `json:"session_id"`
	EventName          string              `json:"event_name"`
	OrganizerName      string              `json:"organizer_name"`
	Total              int                 `json:"total_participants"`
	Completed          int                 `json:"completed"`
	Pending            int                 `json:"pending"`
	CompletePercentage float64             `json:"complete_percentage"`
	Participants       []ParticipantStatus `json:"participant_status"`
	Plan               PlanStatusView      `json:"plan_status"`
}

// Status derives the consolidated session view. It is a pure read: no
// state changes, no notifications.
func (e *Engine) Status(ctx context.Context, sessionID string) (SessionStatus, error) {
	session, err := e.store.Session(ctx, sessionID)
	if err != nil {
		return SessionStatus{}, translateNotFound(err, "session", sessionID)
	}
	participants, err := e.store.SessionParticipants(ctx, sessionID)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("list participants: %w", err)
	}

	status := SessionStatus{
		SessionID:     session.ID,
		EventName:     session.EventName,
		OrganizerName: session.OrganizerName,
		Total:         len(participants),
	}
	for _, p := range participants {
		if p.State == models.StateComplete {
			status.Completed++
		}
		status.Participants = append(status.Participants, ParticipantStatus{
			Name:            p.Name,
			Status:          p.State,
			PreferredMethod: p.PreferredMethod,
		})
	}
	status.Pending = status.Total - status.Completed
	if status.Total > 0 {
		status.CompletePercentage = float64(status.Completed) / float64(status.Total) * 100
	}

	plans, err := e.store.SessionPlans(ctx, sessionID)
	if err != nil {
		return SessionStatus{}, fmt.Errorf("list plans: %w", err)
	}
	if len(plans) > 0 {
		latest := plans[len(plans)-1]
		status.Plan.HasPlan = true
		status.Plan.Latest = &latest
		for _, plan := range plans {
			if reachedDistribution(plan.Status) {
				status.Plan.IsApproved = true
				break
			}
		}
	}
	return status, nil
}

// reachedDistribution reports whether a plan version made it to
// distribution or beyond.
func reachedDistribution(status models.PlanStatus) bool {
	switch status {
	case models.PlanDistributed, models.PlanFinalized, models.PlanRevisionRequested:
		return true
	}
	return false
}
