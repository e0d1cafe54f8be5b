package planner_test

import (
	"context"
	"errors"
	"testing"

	"group-planner/internal/models"
	"group-planner/internal/planner"
)

func TestCreateSessionValidation(t *testing.T) {
	valid := planner.CreateSessionRequest{
		OrganizerName:    "Dana",
		OrganizerContact: "dana@example.com",
		EventName:        "Picnic",
		Participants:     []planner.NewParticipant{{Name: "Amy", Contact: "15550001"}},
	}

	tests := []struct {
		name   string
		mutate func(*planner.CreateSessionRequest)
	}{
		{"missing organizer name", func(r *planner.CreateSessionRequest) { r.OrganizerName = "  " }},
		{"missing organizer contact", func(r *planner.CreateSessionRequest) { r.OrganizerContact = "" }},
		{"missing event name", func(r *planner.CreateSessionRequest) { r.EventName = "" }},
		{"no participants", func(r *planner.CreateSessionRequest) { r.Participants = nil }},
		{"participant without contact", func(r *planner.CreateSessionRequest) {
			r.Participants = []planner.NewParticipant{{Name: "Amy", Contact: " "}}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := valid
			req.Participants = append([]planner.NewParticipant(nil), valid.Participants...)
			tc.mutate(&req)

			_, err := f.engine.CreateSession(context.Background(), req)
			var valErr *planner.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateSessionInitialState(t *testing.T) {
	f := newFixture(t)
	sessionID, participants := f.newSession(t)

	session, err := f.engine.Session(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.EventName != "Team Offsite" || session.OrganizerName != "Dana" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	if len(participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(participants))
	}
	for _, p := range participants {
		if p.State != models.StateNotContacted {
			t.Fatalf("expected not_contacted, got %s", p.State)
		}
		if p.PreferredMethod != "" {
			t.Fatalf("expected no preferred method, got %s", p.PreferredMethod)
		}
		if p.SessionID != sessionID {
			t.Fatalf("expected session %s, got %s", sessionID, p.SessionID)
		}
	}
}

func TestLookupUnknownIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var notFound *planner.NotFoundError
	if _, err := f.engine.Session(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := f.engine.Participant(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := f.engine.Participants(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := f.engine.Status(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestParticipantByContactNormalizes(t *testing.T) {
	f := newFixture(t)
	f.newSession(t)
	ctx := context.Background()

	tests := []struct {
		contact string
		want    string
	}{
		{"15550001", "Amy"},
		{"+1 (555) 000-1", "Amy"},
		{"Ben@Example.com", "Ben"},
	}
	for _, tc := range tests {
		p, err := f.engine.ParticipantByContact(ctx, tc.contact)
		if err != nil {
			t.Fatalf("lookup %q: %v", tc.contact, err)
		}
		if p.Name != tc.want {
			t.Fatalf("lookup %q: expected %s, got %s", tc.contact, tc.want, p.Name)
		}
	}

	var notFound *planner.NotFoundError
	if _, err := f.engine.ParticipantByContact(ctx, "15559999"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
