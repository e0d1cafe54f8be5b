package notify_test

import (
	"context"
	"errors"
	"testing"

	"group-planner/internal/models"
	"group-planner/internal/notify"
)

type recordingSender struct {
	contacts []string
	err      error
}

func (s *recordingSender) Send(_ context.Context, contact string, _ notify.Message) error {
	if s.err != nil {
		return s.err
	}
	s.contacts = append(s.contacts, contact)
	return nil
}

func TestInferChannel(t *testing.T) {
	tests := []struct {
		contact string
		want    models.Channel
	}{
		{"amy@example.com", models.ChannelEmail},
		{"15551234567", models.ChannelSMS},
		{"+1 (555) 123-4567", models.ChannelSMS},
	}
	for _, tc := range tests {
		if got := notify.InferChannel(tc.contact); got != tc.want {
			t.Fatalf("InferChannel(%q) = %s, want %s", tc.contact, got, tc.want)
		}
	}
}

func TestRouterDispatchesByChannel(t *testing.T) {
	sms := &recordingSender{}
	email := &recordingSender{}
	router := notify.NewRouter()
	router.Register(models.ChannelSMS, sms)
	router.Register(models.ChannelEmail, email)
	ctx := context.Background()

	msg := notify.Message{Body: "hello"}
	if err := router.Deliver(ctx, "15550001", models.ChannelSMS, msg); err != nil {
		t.Fatalf("deliver sms: %v", err)
	}
	if err := router.Deliver(ctx, "amy@example.com", models.ChannelEmail, msg); err != nil {
		t.Fatalf("deliver email: %v", err)
	}

	if len(sms.contacts) != 1 || sms.contacts[0] != "15550001" {
		t.Fatalf("expected sms delivery, got %v", sms.contacts)
	}
	if len(email.contacts) != 1 || email.contacts[0] != "amy@example.com" {
		t.Fatalf("expected email delivery, got %v", email.contacts)
	}
}

func TestRouterChannelNoneIsNoOp(t *testing.T) {
	sms := &recordingSender{}
	router := notify.NewRouter()
	router.Register(models.ChannelSMS, sms)

	if err := router.Deliver(context.Background(), "15550001", models.ChannelNone, notify.Message{Body: "x"}); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if len(sms.contacts) != 0 {
		t.Fatalf("expected no delivery, got %v", sms.contacts)
	}
}

func TestRouterMissingSenderFails(t *testing.T) {
	router := notify.NewRouter()
	err := router.Deliver(context.Background(), "15550001", models.ChannelVoice, notify.Message{Body: "x"})
	if err == nil {
		t.Fatal("expected error for unregistered channel")
	}
}

func TestRouterWrapsSenderError(t *testing.T) {
	sentinel := errors.New("line busy")
	router := notify.NewRouter()
	router.Register(models.ChannelVoice, &recordingSender{err: sentinel})

	err := router.Deliver(context.Background(), "15550001", models.ChannelVoice, notify.Message{Body: "x"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sender error, got %v", err)
	}
}
