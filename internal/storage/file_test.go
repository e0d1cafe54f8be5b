package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"group-planner/internal/models"
	"group-planner/internal/storage"
)

func newStore(t *testing.T) (*storage.FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.json")
	store, err := storage.NewFileStore(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return store, path
}

func seedSession(t *testing.T, store *storage.FileStore) (models.Session, []models.Participant) {
	t.Helper()
	session := models.Session{
		ID:               "s1",
		OrganizerName:    "Dana",
		OrganizerContact: "dana@example.com",
		EventName:        "Picnic",
		CreatedAt:        time.Now().UTC(),
	}
	participants := []models.Participant{
		{ID: "p1", SessionID: "s1", Name: "Amy", Contact: "+1 555-000-1", State: models.StateNotContacted},
		{ID: "p2", SessionID: "s1", Name: "Ben", Contact: "ben@example.com", State: models.StateNotContacted},
	}
	if err := store.CreateSession(context.Background(), session, participants); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session, participants
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, path := newStore(t)
	session, _ := seedSession(t, store)
	ctx := context.Background()

	if err := store.AppendResponse(ctx, "p1", models.QuestionResponse{
		QuestionID: "q1", Question: "When?", Response: "weekends", Position: 1,
	}); err != nil {
		t.Fatalf("append response: %v", err)
	}

	// Reopen from disk and verify everything survived
	reopened, err := storage.NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Session(ctx, session.ID)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if got.EventName != "Picnic" {
		t.Fatalf("expected Picnic, got %s", got.EventName)
	}
	p, err := reopened.Participant(ctx, "p1")
	if err != nil {
		t.Fatalf("participant: %v", err)
	}
	if len(p.Responses) != 1 || p.Responses[0].Response != "weekends" {
		t.Fatalf("expected persisted response, got %+v", p.Responses)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	if _, err := store.Session(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Participant(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Plan(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateParticipant(ctx, models.Participant{ID: "nope"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.UpdatePlan(ctx, models.Plan{ID: "nope"}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipantByContactMatching(t *testing.T) {
	store, _ := newStore(t)
	seedSession(t, store)
	ctx := context.Background()

	p, err := store.ParticipantByContact(ctx, "15550001")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "Amy" {
		t.Fatalf("expected Amy, got %s", p.Name)
	}
	p, err = store.ParticipantByContact(ctx, "BEN@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if p.Name != "Ben" {
		t.Fatalf("expected Ben, got %s", p.Name)
	}
	if _, err := store.ParticipantByContact(ctx, "unknown"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateParticipantDoesNotTouchResponses(t *testing.T) {
	store, _ := newStore(t)
	seedSession(t, store)
	ctx := context.Background()

	if err := store.AppendResponse(ctx, "p1", models.QuestionResponse{
		QuestionID: "q1", Question: "When?", Response: "weekends", Position: 1,
	}); err != nil {
		t.Fatalf("append response: %v", err)
	}

	// An update carrying no responses must not clear the stored ones
	if err := store.UpdateParticipant(ctx, models.Participant{
		ID:    "p1",
		State: models.StateCollecting,
	}); err != nil {
		t.Fatalf("update participant: %v", err)
	}

	p, err := store.Participant(ctx, "p1")
	if err != nil {
		t.Fatalf("participant: %v", err)
	}
	if p.State != models.StateCollecting {
		t.Fatalf("expected collecting, got %s", p.State)
	}
	if len(p.Responses) != 1 {
		t.Fatalf("expected 1 response preserved, got %d", len(p.Responses))
	}
}

func TestSessionPlansOrderedByVersion(t *testing.T) {
	store, _ := newStore(t)
	seedSession(t, store)
	ctx := context.Background()

	for _, plan := range []models.Plan{
		{ID: "pl2", SessionID: "s1", Version: 2, Status: models.PlanPendingDecision},
		{ID: "pl1", SessionID: "s1", Version: 1, Status: models.PlanRejected},
	} {
		if err := store.SavePlan(ctx, plan); err != nil {
			t.Fatalf("save plan: %v", err)
		}
	}

	plans, err := store.SessionPlans(ctx, "s1")
	if err != nil {
		t.Fatalf("session plans: %v", err)
	}
	if len(plans) != 2 || plans[0].Version != 1 || plans[1].Version != 2 {
		t.Fatalf("expected version order 1,2, got %+v", plans)
	}
}

func TestSavePlanRejectsDuplicateID(t *testing.T) {
	store, _ := newStore(t)
	seedSession(t, store)
	ctx := context.Background()

	plan := models.Plan{ID: "pl1", SessionID: "s1", Version: 1}
	if err := store.SavePlan(ctx, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	if err := store.SavePlan(ctx, plan); err == nil {
		t.Fatal("expected duplicate plan id to be rejected")
	}
}

func TestUpsertPlanFeedbackReplaces(t *testing.T) {
	store, _ := newStore(t)
	seedSession(t, store)
	ctx := context.Background()

	if err := store.SavePlan(ctx, models.Plan{ID: "pl1", SessionID: "s1", Version: 1}); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	first := models.PlanFeedback{PlanID: "pl1", ParticipantID: "p1", Accepted: false, Feedback: "too early"}
	second := models.PlanFeedback{PlanID: "pl1", ParticipantID: "p1", Accepted: true}
	if err := store.UpsertPlanFeedback(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertPlanFeedback(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	records, err := store.PlanFeedback(ctx, "pl1")
	if err != nil {
		t.Fatalf("plan feedback: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Accepted || records[0].Feedback != "" {
		t.Fatalf("expected latest submission, got %+v", records[0])
	}
}

func TestContactKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 123-4567", "15551234567"},
		{"Ben@Example.COM", "ben@example.com"},
		{"15551234567", "15551234567"},
	}
	for _, tc := range tests {
		if got := storage.ContactKey(tc.in); got != tc.want {
			t.Fatalf("ContactKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
