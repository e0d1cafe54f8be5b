package planner_test

import (
	"context"
	"testing"

	"group-planner/internal/models"
)

func TestStatusCountsProgress(t *testing.T) {
	f := newFixture(t)
	sessionID, participants := f.newSession(t)
	amy, ben := participants[0], participants[1]
	ctx := context.Background()

	f.startCollecting(t, amy.ID, "1")
	f.answer(t, amy.ID, 5)
	if err := f.engine.RecordContinuationDecision(ctx, amy.ID, "no"); err != nil {
		t.Fatalf("complete amy: %v", err)
	}
	if err := f.engine.BeginOutreach(ctx, ben.ID); err != nil {
		t.Fatalf("begin outreach ben: %v", err)
	}

	status, err := f.engine.Status(ctx, sessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Total != 3 || status.Completed != 1 || status.Pending != 2 {
		t.Fatalf("expected 3/1/2, got %d/%d/%d", status.Total, status.Completed, status.Pending)
	}
	if status.CompletePercentage < 33.2 || status.CompletePercentage > 33.4 {
		t.Fatalf("expected ~33.3%%, got %f", status.CompletePercentage)
	}

	byName := map[string]models.CollectionState{}
	for _, p := range status.Participants {
		byName[p.Name] = p.Status
	}
	if byName["Amy"] != models.StateComplete {
		t.Fatalf("expected Amy complete, got %s", byName["Amy"])
	}
	if byName["Ben"] != models.StateAwaitingMethod {
		t.Fatalf("expected Ben awaiting_method, got %s", byName["Ben"])
	}
	if byName["Cal"] != models.StateNotContacted {
		t.Fatalf("expected Cal not_contacted, got %s", byName["Cal"])
	}
}

func TestStatusWithoutPlan(t *testing.T) {
	f := newFixture(t)
	sessionID, _ := f.newSession(t)

	status, err := f.engine.Status(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Plan.HasPlan || status.Plan.IsApproved || status.Plan.Latest != nil {
		t.Fatalf("expected empty plan view, got %+v", status.Plan)
	}
}

func TestStatusPlanViewTracksLatestVersion(t *testing.T) {
	f := newFixture(t)
	sessionID, _ := f.newSession(t)
	ctx := context.Background()

	v1, err := f.engine.Generate(ctx, sessionID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	status, err := f.engine.Status(ctx, sessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Plan.HasPlan || status.Plan.IsApproved {
		t.Fatalf("expected pending plan view, got %+v", status.Plan)
	}
	if status.Plan.Latest.ID != v1.ID {
		t.Fatalf("expected latest v1, got %s", status.Plan.Latest.ID)
	}

	if err := f.engine.RecordOrganizerDecision(ctx, v1.ID, true, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	v2, err := f.engine.Revise(ctx, v1.ID, "push it later", "")
	if err != nil {
		t.Fatalf("revise: %v", err)
	}

	status, err = f.engine.Status(ctx, sessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Plan.Latest.ID != v2.ID {
		t.Fatalf("expected latest v2, got %s", status.Plan.Latest.ID)
	}
	// A prior version reached distribution, so approval sticks even while
	// the revision awaits a decision
	if !status.Plan.IsApproved {
		t.Fatal("expected is_approved true after distribution")
	}
}

func TestStatusIsPureRead(t *testing.T) {
	f := newFixture(t)
	sessionID, _ := f.newSession(t)
	ctx := context.Background()

	if _, err := f.engine.Status(ctx, sessionID); err != nil {
		t.Fatalf("status: %v", err)
	}
	if _, err := f.engine.Status(ctx, sessionID); err != nil {
		t.Fatalf("second status: %v", err)
	}
	if all := f.notifier.bySubject(""); len(all) != 0 {
		t.Fatalf("expected no notifications from status, got %d", len(all))
	}
}
