package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasarpush/internal/dispatch"
	"pasarpush/internal/event"
	"pasarpush/internal/notify"
)

type stubResolver struct {
	ids   []string
	calls int
}

func (s *stubResolver) Resolve(_ context.Context, _ event.Event) ([]string, error) {
	s.calls++
	return s.ids, nil
}

type stubTokens struct {
	sets map[string][]string
}

func (s *stubTokens) TokensFor(_ context.Context, userID string) ([]string, error) {
	return s.sets[userID], nil
}

type okMessenger struct {
	mu    sync.Mutex
	calls int
}

func (m *okMessenger) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	resp := &messaging.BatchResponse{SuccessCount: len(msg.Tokens)}
	for range msg.Tokens {
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true})
	}
	return resp, nil
}

func newTestWorker(resolver *stubResolver, source *stubTokens, messenger dispatch.Messenger) *Worker {
	engine := dispatch.NewEngine(messenger, dispatch.DefaultBatchSize, time.Second)
	return &Worker{notify: notify.NewService(resolver, source, engine, nil, nil)}
}

func TestHandleStockChangedMalformedPayloadIsDropped(t *testing.T) {
	w := newTestWorker(&stubResolver{}, &stubTokens{}, &okMessenger{})

	task := asynq.NewTask("notify:stock", []byte("not json"))
	err := w.handleStockChanged(context.Background(), task)

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry, "malformed tasks must not be retried")
}

func TestHandleStockChangedUnchangedIsNoOp(t *testing.T) {
	resolver := &stubResolver{ids: []string{"w1"}}
	messenger := &okMessenger{}
	w := newTestWorker(resolver, &stubTokens{}, messenger)

	payload, err := json.Marshal(event.StockChanged{
		ProductID: "P1",
		Before:    event.ProductSnapshot{Stock: 5},
		After:     event.ProductSnapshot{Stock: 5},
	})
	require.NoError(t, err)

	err = w.handleStockChanged(context.Background(), asynq.NewTask("notify:stock", payload))

	require.NoError(t, err)
	assert.Zero(t, resolver.calls)
	assert.Zero(t, messenger.calls)
}

func TestHandleOrderCreatedDispatches(t *testing.T) {
	resolver := &stubResolver{ids: []string{"S1"}}
	source := &stubTokens{sets: map[string][]string{"S1": {"t1", "t2"}}}
	messenger := &okMessenger{}
	w := newTestWorker(resolver, source, messenger)

	payload, err := json.Marshal(event.OrderCreated{OrderID: "O1", SellerID: "S1", CustomerID: "C1"})
	require.NoError(t, err)

	err = w.handleOrderCreated(context.Background(), asynq.NewTask("notify:order", payload))

	require.NoError(t, err)
	assert.Equal(t, 1, messenger.calls)
}

func TestHandleOrderCreatedInvalidEventIsDropped(t *testing.T) {
	w := newTestWorker(&stubResolver{}, &stubTokens{}, &okMessenger{})

	payload, err := json.Marshal(event.OrderCreated{CustomerID: "C1"})
	require.NoError(t, err)

	err = w.handleOrderCreated(context.Background(), asynq.NewTask("notify:order", payload))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
