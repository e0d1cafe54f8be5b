package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"group-planner/internal/notify"
)

// MessageHandler is a callback for incoming text messages, keyed by the
// sender's phone number
type MessageHandler func(ctx context.Context, sender, text string) error

type Config struct {
	DataDir string
}

// Service sends plain-text messages over WhatsApp. It implements
// notify.Sender and backs the sms channel when enabled.
type Service struct {
	client         *whatsmeow.Client
	cfg            *Config
	log            zerolog.Logger
	messageHandler MessageHandler
}

// NewService creates a new WhatsApp service
func NewService(cfg *Config) (*Service, error) {
	ctx := context.Background()
	logger := zerolog.New(os.Stdout).With().Str("component", "whatsapp").Logger()

	// Use nil logger - sqlstore will use a no-op logger by default
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s/whatsmeow.db?_foreign_keys=on", cfg.DataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	// Use nil logger - whatsmeow will use a no-op logger by default
	client := whatsmeow.NewClient(deviceStore, nil)

	service := &Service{
		client: client,
		cfg:    cfg,
		log:    logger,
	}

	client.AddEventHandler(func(evt interface{}) {
		service.eventHandler(evt)
	})

	return service, nil
}

// NormalizePhoneNumber strips formatting characters so numbers match the
// JID format WhatsApp expects
func NormalizePhoneNumber(phoneNumber string) string {
	replacer := strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(phoneNumber)
}

// Connect connects to WhatsApp, showing a pairing QR code on first login
func (s *Service) Connect() error {
	if s.client.Store.ID == nil {
		qrChan, _ := s.client.GetQRChannel(context.Background())
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				q, err := qrcode.New(evt.Code, qrcode.Medium)
				if err != nil {
					fmt.Printf("QR Code: %s\n", evt.Code)
					fmt.Println("Please scan this QR code with WhatsApp to connect.")
				} else {
					fmt.Println("\n" + q.ToSmallString(false))
					fmt.Println("📱 Please scan the QR code above with WhatsApp (Settings > Linked Devices > Link a Device).")
				}
			} else {
				s.log.Info().Str("event", evt.Event).Msg("Login event")
			}
		}
		return nil
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// Send delivers a plain-text message to the given phone number. The subject,
// when present, becomes the first line of the message.
func (s *Service) Send(ctx context.Context, contact string, msg notify.Message) error {
	text := msg.Body
	if msg.Subject != "" {
		text = msg.Subject + "\n\n" + msg.Body
	}

	phoneNumber := NormalizePhoneNumber(contact)

	// Verify the number is on WhatsApp before sending
	resp, err := s.client.IsOnWhatsApp(ctx, []string{phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}

	// Use the verified JID from WhatsApp
	jid := resp[0].JID
	if jid.IsEmpty() {
		jid = types.NewJID(phoneNumber, types.DefaultUserServer)
	}

	s.log.Debug().Str("jid", jid.String()).Str("phone", phoneNumber).Msg("Attempting to send message")

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.log.Info().Str("id", string(sent.ID)).Str("to", jid.String()).Msg("Message sent")
	return nil
}

// SetMessageHandler sets a custom handler for incoming messages
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}

// eventHandler handles incoming WhatsApp events
func (s *Service) eventHandler(evt interface{}) {
	if evt == nil {
		return
	}
	switch evt := evt.(type) {
	case *events.Message:
		s.handleMessage(evt)
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Info().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Info().Msg("Logged out from WhatsApp")
	}
}

// handleMessage processes incoming messages
func (s *Service) handleMessage(msg *events.Message) {
	// Skip messages from self
	if msg.Info.IsFromMe || msg.Message == nil {
		return
	}

	text := msg.Message.GetConversation()
	if text == "" {
		return
	}

	sender := strings.Split(msg.Info.Sender.String(), "@")[0]

	if s.messageHandler == nil {
		s.log.Info().Str("sender", sender).Str("message", text).Msg("Received message")
		return
	}
	if err := s.messageHandler(context.Background(), sender, text); err != nil {
		s.log.Error().Err(err).Msg("Error handling message")
	}
}
