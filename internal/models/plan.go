package models

import "time"

// PlanStatus represents the lifecycle state of one plan version
type PlanStatus string

const (
	PlanDrafting          PlanStatus = "drafting"
	PlanPendingDecision   PlanStatus = "pending_organizer_decision"
	PlanApproved          PlanStatus = "approved"
	PlanRejected          PlanStatus = "rejected"
	PlanDistributed       PlanStatus = "distributed"
	PlanFinalized         PlanStatus = "finalized"
	PlanRevisionRequested PlanStatus = "revision_requested"
)

// Plan is one immutable snapshot of a proposed event plan, numbered per
// session. Content never changes after creation; only Status and
// OrganizerFeedback advance.
type Plan struct {
	ID                string            `json:"id"`
	SessionID         string            `json:"session_id"`
	Version           int               `json:"version"`
	EventName         string            `json:"event_name"`
	Date              string            `json:"date"`
	Time              string            `json:"time"`
	Location          string            `json:"location"`
	Activities        []string          `json:"activities"`
	Accommodations    map[string]string `json:"accommodations,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	Reasoning         string            `json:"reasoning,omitempty"`
	RevisionReason    string            `json:"revision_reason,omitempty"`
	Status            PlanStatus        `json:"status"`
	OrganizerFeedback string            `json:"organizer_feedback,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// PlanFeedback is a participant's acceptance record for one plan version.
// At most one record exists per (plan, participant) pair; a resubmission
// replaces the prior record.
type PlanFeedback struct {
	PlanID          string    `json:"plan_id"`
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Accepted        bool      `json:"accepted"`
	Feedback        string    `json:"feedback,omitempty"`
	ReceivedAt      time.Time `json:"received_at"`
}
