package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
)

// DefaultBatchSize is the FCM cap on tokens per multicast call.
const DefaultBatchSize = 500

const defaultSendTimeout = 10 * time.Second

// ErrInvalidPayload marks a payload the composer should never have produced.
var ErrInvalidPayload = errors.New("invalid payload")

// Messenger is the outbound multicast send capability. *messaging.Client
// satisfies it; tests substitute fakes.
type Messenger interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Payload is a composed push notification.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// Outcome aggregates per-batch send results. Attempted == 0 is a valid,
// non-error outcome meaning there was nothing to send.
type Outcome struct {
	Attempted    int      `json:"attempted"`
	Delivered    int      `json:"delivered"`
	FailedTokens []string `json:"failed_tokens,omitempty"`
}

// Engine partitions a token set into provider-sized batches and fans the
// payload out over the injected Messenger. Partial and whole-batch failures
// are folded into the Outcome, never raised.
type Engine struct {
	messenger   Messenger
	batchSize   int
	sendTimeout time.Duration
}

func NewEngine(messenger Messenger, batchSize int, sendTimeout time.Duration) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Engine{
		messenger:   messenger,
		batchSize:   batchSize,
		sendTimeout: sendTimeout,
	}
}

// Dispatch sends payload to every token and returns the merged outcome.
// Batches run concurrently; the merge is order-independent. A batch whose
// whole call errors counts all of its tokens as failed and never blocks the
// remaining batches.
func (e *Engine) Dispatch(ctx context.Context, payload Payload, tokens []string) (Outcome, error) {
	if payload.Title == "" || payload.Body == "" {
		return Outcome{}, fmt.Errorf("%w: title and body must be set", ErrInvalidPayload)
	}

	if len(tokens) == 0 {
		return Outcome{}, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		outcome Outcome
	)

	for _, batch := range partition(tokens, e.batchSize) {
		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()

			delivered, failed := e.sendBatch(ctx, payload, batch)

			mu.Lock()
			outcome.Attempted += len(batch)
			outcome.Delivered += delivered
			outcome.FailedTokens = append(outcome.FailedTokens, failed...)
			mu.Unlock()
		}(batch)
	}
	wg.Wait()

	// Batch completion order is not guaranteed.
	sort.Strings(outcome.FailedTokens)

	return outcome, nil
}

func (e *Engine) sendBatch(ctx context.Context, payload Payload, batch []string) (delivered int, failed []string) {
	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	resp, err := e.messenger.SendEachForMulticast(sendCtx, &messaging.MulticastMessage{
		Tokens: batch,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	})
	if err != nil {
		slog.Warn("multicast batch failed", "tokens", len(batch), "error", err)
		return 0, append([]string(nil), batch...)
	}

	for i, token := range batch {
		if i < len(resp.Responses) && resp.Responses[i].Success {
			delivered++
			continue
		}
		failed = append(failed, token)
	}
	return delivered, failed
}

func partition(tokens []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(tokens); start += size {
		end := min(start+size, len(tokens))
		batches = append(batches, tokens[start:end])
	}
	return batches
}
