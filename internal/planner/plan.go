package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"group-planner/internal/models"
	"group-planner/internal/notify"
	"group-planner/internal/oracle"
)

// Generate proposes a new plan version from the preferences collected so
// far. Partial data is accepted with a logged warning. The new version
// supersedes any version still pending an organizer decision.
func (e *Engine) Generate(ctx context.Context, sessionID string) (models.Plan, error) {
	session, err := e.store.Session(ctx, sessionID)
	if err != nil {
		return models.Plan{}, translateNotFound(err, "session", sessionID)
	}

	unlock := e.lockSession(sessionID)
	defer unlock()

	participants, err := e.store.SessionParticipants(ctx, sessionID)
	if err != nil {
		return models.Plan{}, fmt.Errorf("list participants: %w", err)
	}

	pending := 0
	prefs := make(oracle.PreferenceSet, len(participants))
	for _, p := range participants {
		if p.State != models.StateComplete {
			pending++
		}
		prefs[p.Name] = oracle.ParticipantPreferences{
			Responses:       p.Responses,
			PreferredMethod: p.PreferredMethod,
		}
	}
	if pending > 0 {
		e.log.Warn().
			Str("session", sessionID).
			Int("pending", pending).
			Msg("Not all preferences collected, generating with available data")
	}

	event := oracle.EventContext{
		SessionID:        session.ID,
		EventName:        session.EventName,
		OrganizerName:    session.OrganizerName,
		ParticipantCount: len(participants),
	}
	draft, err := e.oracle.Propose(ctx, event, prefs)
	if err != nil {
		return models.Plan{}, &OracleError{Op: "propose", Err: err}
	}

	plan, err := e.persistDraftLocked(ctx, session, draft, "")
	if err != nil {
		return models.Plan{}, err
	}

	e.log.Info().Str("session", sessionID).Str("plan", plan.ID).Int("version", plan.Version).Msg("Plan generated")
	e.deliver(ctx, session.OrganizerContact, notify.InferChannel(session.OrganizerContact),
		planForOrganizer(session.OrganizerName, session.EventName, plan))
	return plan, nil
}

// persistDraftLocked stores a draft as the session's next plan version and
// advances it to pending_organizer_decision.
func (e *Engine) persistDraftLocked(ctx context.Context, session models.Session, draft oracle.PlanDraft, revisionReason string) (models.Plan, error) {
	existing, err := e.store.SessionPlans(ctx, session.ID)
	if err != nil {
		return models.Plan{}, fmt.Errorf("list plans: %w", err)
	}
	version := 1
	if n := len(existing); n > 0 {
		version = existing[n-1].Version + 1
	}

	plan := models.Plan{
		ID:             uuid.NewString(),
		SessionID:      session.ID,
		Version:        version,
		EventName:      session.EventName,
		Date:           draft.Date,
		Time:           draft.Time,
		Location:       draft.Location,
		Activities:     draft.Activities,
		Accommodations: draft.Accommodations,
		Notes:          draft.Notes,
		Reasoning:      draft.Reasoning,
		RevisionReason: revisionReason,
		Status:         models.PlanDrafting,
		CreatedAt:      time.Now().UTC(),
	}
	if revisionReason != "" {
		// Revisions skip drafting and go straight to the organizer
		plan.Status = models.PlanPendingDecision
	}
	if err := e.store.SavePlan(ctx, plan); err != nil {
		return models.Plan{}, fmt.Errorf("save plan: %w", err)
	}
	if plan.Status == models.PlanDrafting {
		plan.Status = models.PlanPendingDecision
		if err := e.store.UpdatePlan(ctx, plan); err != nil {
			return models.Plan{}, fmt.Errorf("update plan: %w", err)
		}
	}
	return plan, nil
}

// RecordOrganizerDecision applies the organizer's approval or rejection to
// a plan still pending their decision. Approval distributes the plan to
// every participant; rejection distributes nothing and creates no revision.
func (e *Engine) RecordOrganizerDecision(ctx context.Context, planID string, approved bool, feedback string) error {
	plan, err := e.store.Plan(ctx, planID)
	if err != nil {
		return translateNotFound(err, "plan", planID)
	}

	unlock := e.lockSession(plan.SessionID)
	defer unlock()

	plan, err = e.store.Plan(ctx, planID)
	if err != nil {
		return translateNotFound(err, "plan", planID)
	}
	if plan.Status != models.PlanPendingDecision {
		return &StateError{Op: "record organizer decision", Entity: "plan", State: string(plan.Status)}
	}
	latest, err := e.latestVersionLocked(ctx, plan.SessionID)
	if err != nil {
		return err
	}
	if plan.Version != latest {
		// A newer version superseded this one while it sat undecided
		return &StateError{Op: "record organizer decision", Entity: "plan", State: "superseded"}
	}

	if !approved {
		plan.Status = models.PlanRejected
		plan.OrganizerFeedback = feedback
		if err := e.store.UpdatePlan(ctx, plan); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		e.log.Info().Str("plan", planID).Str("feedback", feedback).Msg("Organizer rejected plan")
		return nil
	}

	plan.Status = models.PlanApproved
	plan.OrganizerFeedback = feedback
	if err := e.store.UpdatePlan(ctx, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	session, err := e.store.Session(ctx, plan.SessionID)
	if err != nil {
		return translateNotFound(err, "session", plan.SessionID)
	}
	participants, err := e.store.SessionParticipants(ctx, plan.SessionID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	for _, p := range participants {
		e.deliver(ctx, p.Contact, channelFor(p),
			planForParticipant(p.Name, session.OrganizerName, session.EventName, plan))
	}

	plan.Status = models.PlanDistributed
	if err := e.store.UpdatePlan(ctx, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	e.log.Info().Str("plan", planID).Int("participants", len(participants)).Msg("Plan approved and distributed")
	return nil
}

// RecordParticipantFeedback upserts a participant's acceptance of a
// distributed plan. A rejection with feedback notifies the organizer, who
// chooses between revising and keeping the plan; the plan itself stays
// distributed.
func (e *Engine) RecordParticipantFeedback(ctx context.Context, planID, participantID string, accepted bool, feedback string) error {
	plan, err := e.store.Plan(ctx, planID)
	if err != nil {
		return translateNotFound(err, "plan", planID)
	}

	unlock := e.lockSession(plan.SessionID)
	defer unlock()

	plan, err = e.store.Plan(ctx, planID)
	if err != nil {
		return translateNotFound(err, "plan", planID)
	}
	if plan.Status != models.PlanDistributed {
		return &StateError{Op: "record participant feedback", Entity: "plan", State: string(plan.Status)}
	}

	participant, err := e.store.Participant(ctx, participantID)
	if err != nil {
		return translateNotFound(err, "participant", participantID)
	}
	if participant.SessionID != plan.SessionID {
		return &ValidationError{Reason: "participant does not belong to the plan's session"}
	}

	fb := models.PlanFeedback{
		PlanID:          planID,
		ParticipantID:   participantID,
		ParticipantName: participant.Name,
		Accepted:        accepted,
		Feedback:        feedback,
		ReceivedAt:      time.Now().UTC(),
	}
	if err := e.store.UpsertPlanFeedback(ctx, fb); err != nil {
		return fmt.Errorf("upsert feedback: %w", err)
	}

	if !accepted && strings.TrimSpace(feedback) != "" {
		session, err := e.store.Session(ctx, plan.SessionID)
		if err != nil {
			return translateNotFound(err, "session", plan.SessionID)
		}
		e.log.Info().
			Str("plan", planID).
			Str("participant", participantID).
			Str("feedback", feedback).
			Msg("Participant rejected plan")
		e.deliver(ctx, session.OrganizerContact, notify.InferChannel(session.OrganizerContact),
			rejectionNotice(session.OrganizerName, participant.Name, session.EventName, feedback))
	}
	return nil
}

// Revise creates a new plan version from an existing distributed plan and
// the given feedback. The prior version moves to revision_requested and
// the new version enters pending_organizer_decision directly.
func (e *Engine) Revise(ctx context.Context, planID, feedback, participantID string) (models.Plan, error) {
	plan, err := e.store.Plan(ctx, planID)
	if err != nil {
		return models.Plan{}, translateNotFound(err, "plan", planID)
	}

	unlock := e.lockSession(plan.SessionID)
	defer unlock()

	plan, err = e.store.Plan(ctx, planID)
	if err != nil {
		return models.Plan{}, translateNotFound(err, "plan", planID)
	}
	if plan.Status != models.PlanDistributed {
		return models.Plan{}, &StateError{Op: "revise plan", Entity: "plan", State: string(plan.Status)}
	}

	participantName := ""
	if participantID != "" {
		participant, err := e.store.Participant(ctx, participantID)
		if err != nil {
			return models.Plan{}, translateNotFound(err, "participant", participantID)
		}
		participantName = participant.Name
	}

	prior := oracle.PlanDraft{
		Date:           plan.Date,
		Time:           plan.Time,
		Location:       plan.Location,
		Activities:     plan.Activities,
		Accommodations: plan.Accommodations,
		Notes:          plan.Notes,
		Reasoning:      plan.Reasoning,
	}
	draft, err := e.oracle.Revise(ctx, prior, feedback, participantName)
	if err != nil {
		// Nothing is persisted on oracle failure; the prior plan stands
		return models.Plan{}, &OracleError{Op: "revise", Err: err}
	}

	plan.Status = models.PlanRevisionRequested
	if err := e.store.UpdatePlan(ctx, plan); err != nil {
		return models.Plan{}, fmt.Errorf("update plan: %w", err)
	}

	session, err := e.store.Session(ctx, plan.SessionID)
	if err != nil {
		return models.Plan{}, translateNotFound(err, "session", plan.SessionID)
	}

	reason := fmt.Sprintf("Plan revised based on feedback: %s", feedback)
	if participantName != "" {
		reason = fmt.Sprintf("Plan revised based on feedback from %s: %s", participantName, feedback)
	}
	revised, err := e.persistDraftLocked(ctx, session, draft, reason)
	if err != nil {
		return models.Plan{}, err
	}

	e.log.Info().Str("session", session.ID).Str("plan", revised.ID).Int("version", revised.Version).Msg("Plan revised")
	e.deliver(ctx, session.OrganizerContact, notify.InferChannel(session.OrganizerContact),
		planForOrganizer(session.OrganizerName, session.EventName, revised))
	return revised, nil
}

// Finalize records the organizer's choice to keep a distributed plan as-is.
// Finalizing an already finalized plan is a no-op.
func (e *Engine) Finalize(ctx context.Context, planID string) error {
	plan, err := e.store.Plan(ctx, planID)
	if err != nil {
		return translateNotFound(err, "plan", planID)
	}

	unlock := e.lockSession(plan.SessionID)
	defer unlock()

	plan, err = e.store.Plan(ctx, planID)
	if err != nil {
		return translateNotFound(err, "plan", planID)
	}
	if plan.Status == models.PlanFinalized {
		return nil
	}
	if plan.Status != models.PlanDistributed {
		return &StateError{Op: "finalize plan", Entity: "plan", State: string(plan.Status)}
	}

	plan.Status = models.PlanFinalized
	if err := e.store.UpdatePlan(ctx, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	e.log.Info().Str("plan", planID).Msg("Plan finalized")
	return nil
}

func (e *Engine) latestVersionLocked(ctx context.Context, sessionID string) (int, error) {
	plans, err := e.store.SessionPlans(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("list plans: %w", err)
	}
	if len(plans) == 0 {
		return 0, nil
	}
	return plans[len(plans)-1].Version, nil
}
