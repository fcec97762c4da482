package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-quotes/internal/events"
)

type memStore struct {
	inserted []events.Event
	err      error
}

func (m *memStore) InsertQuoteEvent(ctx context.Context, topic, aggregateID string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, events.Event{Topic: topic, AggregateID: aggregateID, Payload: payload})
	return nil
}

type recordingNotifier struct {
	seen []events.Event
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, event events.Event) error {
	r.seen = append(r.seen, event)
	return r.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &memStore{}
	n := &recordingNotifier{}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{n}}

	err := bus.Emit(context.Background(), events.TopicQuoteSaved, "q1", map[string]any{"total": 121.0})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	require.Equal(t, events.TopicQuoteSaved, store.inserted[0].Topic)
	require.Equal(t, "q1", store.inserted[0].AggregateID)

	require.Len(t, n.seen, 1)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(n.seen[0].Payload, &payload))
	require.InDelta(t, 121.0, payload["total"].(float64), 1e-9)
}

func TestEmitValidation(t *testing.T) {
	bus := &events.Bus{Store: &memStore{}}
	ctx := context.Background()

	require.Error(t, bus.Emit(ctx, "", "q1", nil))
	require.Error(t, bus.Emit(ctx, "  ", "q1", nil))
	require.Error(t, bus.Emit(ctx, events.TopicQuoteSaved, "", nil))

	var nilBus *events.Bus
	require.Error(t, nilBus.Emit(ctx, events.TopicQuoteSaved, "q1", nil))
}

func TestEmitStoreFailureSkipsNotifiers(t *testing.T) {
	n := &recordingNotifier{}
	bus := &events.Bus{Store: &memStore{err: errors.New("insert failed")}, Notifiers: []events.Notifier{n}}

	err := bus.Emit(context.Background(), events.TopicQuoteSaved, "q1", nil)
	require.Error(t, err)
	require.Empty(t, n.seen)
}

func TestEmitNotifierFailureAfterPersist(t *testing.T) {
	store := &memStore{}
	failing := &recordingNotifier{err: errors.New("smtp down")}
	ok := &recordingNotifier{}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{failing, nil, ok}}

	err := bus.Emit(context.Background(), events.TopicQuoteSent, "q1", nil)
	require.Error(t, err)
	// The event is durable and every notifier still ran.
	require.Len(t, store.inserted, 1)
	require.Len(t, ok.seen, 1)
}

func TestEmitNilPayload(t *testing.T) {
	store := &memStore{}
	bus := &events.Bus{Store: store}

	require.NoError(t, bus.Emit(context.Background(), events.TopicQuoteSaved, "q1", nil))
	require.JSONEq(t, "{}", string(store.inserted[0].Payload))
}
