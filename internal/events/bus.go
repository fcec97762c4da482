package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Topics emitted by the quote editor.
const (
	TopicQuoteSaved = "quote.saved"
	TopicQuoteSent  = "quote.sent"
)

// Event is a recorded domain event.
type Event struct {
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
}

// Store defines the persistence operation required by the bus.
type Store interface {
	InsertQuoteEvent(ctx context.Context, topic, aggregateID string, payload []byte) error
}

// Notifier reacts to emitted events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus persists domain events and fans them out to downstream handlers.
type Bus struct {
	Store     Store
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured notifiers.
// Notifier failures are joined but do not undo persistence.
func (b *Bus) Emit(ctx context.Context, topic, aggregateID string, payload any) error {
	if b == nil || b.Store == nil {
		return errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	if aggregateID == "" {
		return errors.New("events: aggregate id is required")
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("events: encode payload: %w", err)
	}
	if err := b.Store.InsertQuoteEvent(ctx, topic, aggregateID, encoded); err != nil {
		return fmt.Errorf("events: persist event: %w", err)
	}

	ev := Event{Topic: topic, AggregateID: aggregateID, Payload: encoded}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ctx, ev); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return joined
}

func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	if raw, ok := payload.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(payload)
}
