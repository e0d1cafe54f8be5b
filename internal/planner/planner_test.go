package planner_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"group-planner/internal/models"
	"group-planner/internal/notify"
	"group-planner/internal/oracle"
	"group-planner/internal/planner"
	"group-planner/internal/storage"
)

type delivery struct {
	contact string
	channel models.Channel
	msg     notify.Message
}

type fakeNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	fail       bool
}

func (f *fakeNotifier) Deliver(_ context.Context, contact string, channel models.Channel, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.deliveries = append(f.deliveries, delivery{contact: contact, channel: channel, msg: msg})
	return nil
}

func (f *fakeNotifier) bySubject(substr string) []delivery {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []delivery
	for _, d := range f.deliveries {
		if strings.Contains(d.msg.Subject, substr) {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeNotifier) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = nil
}

type fakeOracle struct {
	proposeErr error
	reviseErr  error
	proposals  int
	revisions  int
}

func (f *fakeOracle) Propose(context.Context, oracle.EventContext, oracle.PreferenceSet) (oracle.PlanDraft, error) {
	if f.proposeErr != nil {
		return oracle.PlanDraft{}, f.proposeErr
	}
	f.proposals++
	return oracle.PlanDraft{
		Date:       "2026-09-05",
		Time:       "2:00 PM - 5:00 PM",
		Location:   "Central Park",
		Activities: []string{"Picnic"},
	}, nil
}

func (f *fakeOracle) Revise(_ context.Context, prior oracle.PlanDraft, _, _ string) (oracle.PlanDraft, error) {
	if f.reviseErr != nil {
		return oracle.PlanDraft{}, f.reviseErr
	}
	f.revisions++
	revised := prior
	revised.Time = "3:00 PM - 6:00 PM"
	return revised, nil
}

func (f *fakeOracle) FollowUp(context.Context, oracle.EventContext, []models.QuestionResponse) (string, error) {
	return "Anything else that would make this event perfect for you?", nil
}

type fixture struct {
	engine   *planner.Engine
	store    storage.Store
	notifier *fakeNotifier
	oracle   *fakeOracle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "planner.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	notifier := &fakeNotifier{}
	planOracle := &fakeOracle{}
	engine := planner.New(store, notifier, planOracle, planner.Config{Logger: zerolog.Nop()})
	return &fixture{engine: engine, store: store, notifier: notifier, oracle: planOracle}
}

// newSession creates a session with three participants: two phone contacts
// and one email contact.
func (f *fixture) newSession(t *testing.T) (string, []models.Participant) {
	t.Helper()
	id, err := f.engine.CreateSession(context.Background(), planner.CreateSessionRequest{
		OrganizerName:    "Dana",
		OrganizerContact: "dana@example.com",
		EventName:        "Team Offsite",
		Participants: []planner.NewParticipant{
			{Name: "Amy", Contact: "15550001"},
			{Name: "Ben", Contact: "ben@example.com"},
			{Name: "Cal", Contact: "15550003"},
		},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	participants, err := f.engine.Participants(context.Background(), id)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	return id, participants
}

// startCollecting advances a participant to the collecting state.
func (f *fixture) startCollecting(t *testing.T, participantID, methodReply string) {
	t.Helper()
	ctx := context.Background()
	if err := f.engine.BeginOutreach(ctx, participantID); err != nil {
		t.Fatalf("begin outreach: %v", err)
	}
	if err := f.engine.SetPreferredMethod(ctx, participantID, methodReply); err != nil {
		t.Fatalf("set preferred method: %v", err)
	}
}

// answer records n canonical responses starting from the first question.
func (f *fixture) answer(t *testing.T, participantID string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		questionID := f.engine.Questions().All()[i].ID
		if err := f.engine.RecordResponse(ctx, participantID, questionID, "whatever works"); err != nil {
			t.Fatalf("record response %d: %v", i+1, err)
		}
	}
}

func (f *fixture) participant(t *testing.T, id string) models.Participant {
	t.Helper()
	p, err := f.engine.Participant(context.Background(), id)
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	return p
}
