package models

import "time"

// Session represents one organizer-initiated planning effort for a single event
type Session struct {
	ID               string    `json:"id"`
	OrganizerName    string    `json:"organizer_name"`
	OrganizerContact string    `json:"organizer_contact"`
	EventName        string    `json:"event_name"`
	CreatedAt        time.Time `json:"created_at"`
}

// CollectionState represents where a participant is in preference collection
type CollectionState string

const (
	StateNotContacted         CollectionState = "not_contacted"
	StateAwaitingMethod       CollectionState = "awaiting_method"
	StateCollecting           CollectionState = "collecting"
	StateAwaitingContinuation CollectionState = "awaiting_continuation"
	StateComplete             CollectionState = "complete"
)

// Channel represents a communication channel for outbound messages
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
	ChannelVoice Channel = "voice"
	ChannelNone  Channel = "none"
)

// Participant represents an invitee whose preferences are solicited
type Participant struct {
	ID                   string             `json:"id"`
	SessionID            string             `json:"session_id"`
	Name                 string             `json:"name"`
	Contact              string             `json:"contact"`
	PreferredMethod      Channel            `json:"preferred_method,omitempty"`
	State                CollectionState    `json:"state"`
	Responses            []QuestionResponse `json:"responses,omitempty"`
	AwaitingContinuation bool               `json:"awaiting_continuation"`
	Completed            bool               `json:"completed"`
}

// QuestionResponse is one question/answer pair, append-only once recorded
type QuestionResponse struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Response   string `json:"response"`
	Position   int    `json:"position"`
}
