package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-quotes/internal/common"
	"github.com/noah-isme/backend-quotes/internal/events"
)

// LogSender writes outbound mail to the application log. It stands in for a
// real relay in environments without SMTP credentials.
type LogSender struct {
	Logger zerolog.Logger
}

// Send implements common.EmailSender.
func (s LogSender) Send(to, subject, body string) error {
	s.Logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("outbound email")
	return nil
}

// EmailNotifier mails the customer when a quote is marked as sent.
type EmailNotifier struct {
	Mail    common.EmailSender
	Enabled bool
	Logger  zerolog.Logger
}

// Notify implements the events.Notifier interface.
func (n EmailNotifier) Notify(_ context.Context, event events.Event) error {
	if !n.Enabled || n.Mail == nil {
		return nil
	}
	if event.Topic != events.TopicQuoteSent {
		return nil
	}
	payload := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("email notify: decode payload: %w", err)
		}
	}
	to := extractRecipient(payload)
	if to == "" {
		n.Logger.Debug().Str("quote_id", event.AggregateID).Msg("quote sent without recipient email")
		return nil
	}
	subject := "Your quote is ready"
	body := fmt.Sprintf("<p>Quote %s has been sent to you. Total: %v</p>", event.AggregateID, payload["total"])
	if err := n.Mail.Send(to, subject, body); err != nil {
		return fmt.Errorf("email notify: send: %w", err)
	}
	n.Logger.Info().Str("quote_id", event.AggregateID).Str("to", to).Msg("quote email queued")
	return nil
}

func extractRecipient(payload map[string]any) string {
	for _, key := range []string{"email", "customerEmail", "recipient"} {
		if val, ok := payload[key]; ok {
			if s, ok := val.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					return s
				}
			}
		}
	}
	return ""
}
