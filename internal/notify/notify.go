// Package notify delivers outbound messages to participants and organizers.
// The engine decides the channel; senders only carry the message.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"group-planner/internal/models"
)

// Message is one outbound message. Subject is used by channels that have
// one (email); text channels send only the body.
type Message struct {
	Subject string
	Body    string
}

// Notifier delivers a message to a contact over a channel.
type Notifier interface {
	Deliver(ctx context.Context, contact string, channel models.Channel, msg Message) error
}

// Sender carries a message over a single channel.
type Sender interface {
	Send(ctx context.Context, contact string, msg Message) error
}

// InferChannel guesses a channel from the contact string format. The guess
// is made at every send, never cached, so a corrected contact string takes
// effect immediately.
func InferChannel(contact string) models.Channel {
	if strings.Contains(contact, "@") {
		return models.ChannelEmail
	}
	return models.ChannelSMS
}

// Router dispatches messages to per-channel senders.
type Router struct {
	senders map[models.Channel]Sender
}

// NewRouter creates a router with no senders registered.
func NewRouter() *Router {
	return &Router{senders: make(map[models.Channel]Sender)}
}

// Register installs the sender for a channel, replacing any existing one.
func (r *Router) Register(channel models.Channel, sender Sender) {
	r.senders[channel] = sender
}

// Deliver sends the message over the requested channel. ChannelNone is a
// silent no-op; a channel with no registered sender is a delivery failure.
func (r *Router) Deliver(ctx context.Context, contact string, channel models.Channel, msg Message) error {
	if channel == models.ChannelNone {
		return nil
	}
	sender, ok := r.senders[channel]
	if !ok {
		return fmt.Errorf("no sender registered for channel %s", channel)
	}
	if err := sender.Send(ctx, contact, msg); err != nil {
		return fmt.Errorf("deliver via %s: %w", channel, err)
	}
	return nil
}

// Console logs messages instead of sending them. It stands in for channels
// without a wired transport (email, voice) and for development runs.
type Console struct {
	channel models.Channel
	log     zerolog.Logger
}

// NewConsole creates a console sender labeled with the channel it stands in for.
func NewConsole(channel models.Channel, log zerolog.Logger) *Console {
	return &Console{channel: channel, log: log.With().Str("component", "notify").Logger()}
}

// Send logs the message and reports success.
func (c *Console) Send(_ context.Context, contact string, msg Message) error {
	evt := c.log.Info().Str("channel", string(c.channel)).Str("to", contact)
	if msg.Subject != "" {
		evt = evt.Str("subject", msg.Subject)
	}
	evt.Str("body", msg.Body).Msg("Message delivered to console")
	return nil
}
