package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu    sync.Mutex
	calls [][]string

	// failBatchWith makes the whole call error when the batch starts with
	// this token; failTokens fails individual tokens within a response.
	failBatchWith string
	failTokens    map[string]bool
}

func (f *fakeMessenger) SendEachForMulticast(_ context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, msg.Tokens)
	f.mu.Unlock()

	if f.failBatchWith != "" && msg.Tokens[0] == f.failBatchWith {
		return nil, errors.New("transport failure")
	}

	resp := &messaging.BatchResponse{}
	for _, token := range msg.Tokens {
		if f.failTokens[token] {
			resp.FailureCount++
			resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: false, Error: errors.New("unregistered token")})
			continue
		}
		resp.SuccessCount++
		resp.Responses = append(resp.Responses, &messaging.SendResponse{Success: true, MessageID: "msg-" + token})
	}
	return resp, nil
}

func (f *fakeMessenger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDispatchEmptyTokenSet(t *testing.T) {
	messenger := &fakeMessenger{}
	engine := NewEngine(messenger, 3, time.Second)

	outcome, err := engine.Dispatch(context.Background(), Payload{Title: "t", Body: "b"}, nil)

	require.NoError(t, err)
	assert.Equal(t, Outcome{}, outcome)
	assert.Zero(t, messenger.callCount(), "send capability must not be invoked")
}

func TestDispatchInvalidPayload(t *testing.T) {
	messenger := &fakeMessenger{}
	engine := NewEngine(messenger, 3, time.Second)

	_, err := engine.Dispatch(context.Background(), Payload{}, []string{"t1"})

	require.ErrorIs(t, err, ErrInvalidPayload)
	assert.Zero(t, messenger.callCount())
}

func TestDispatchBatchPartitioning(t *testing.T) {
	messenger := &fakeMessenger{}
	engine := NewEngine(messenger, 3, time.Second)

	tokens := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7"}
	outcome, err := engine.Dispatch(context.Background(), Payload{Title: "t", Body: "b"}, tokens)

	require.NoError(t, err)
	// ceil(7/3) calls, attempted sums to the token count.
	assert.Equal(t, 3, messenger.callCount())
	assert.Equal(t, 7, outcome.Attempted)
	assert.Equal(t, 7, outcome.Delivered)
	assert.Empty(t, outcome.FailedTokens)

	total := 0
	for _, call := range messenger.calls {
		assert.LessOrEqual(t, len(call), 3)
		total += len(call)
	}
	assert.Equal(t, 7, total)
}

func TestDispatchFailedBatchIsIsolated(t *testing.T) {
	// Batch 2 of 3 fails entirely; batches 1 and 3 still deliver.
	messenger := &fakeMessenger{failBatchWith: "t4"}
	engine := NewEngine(messenger, 3, time.Second)

	tokens := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9"}
	outcome, err := engine.Dispatch(context.Background(), Payload{Title: "t", Body: "b"}, tokens)

	require.NoError(t, err, "transport failure must not escalate to the caller")
	assert.Equal(t, 9, outcome.Attempted)
	assert.Equal(t, 6, outcome.Delivered)
	assert.Equal(t, []string{"t4", "t5", "t6"}, outcome.FailedTokens)
	assert.Equal(t, 3, messenger.callCount())
}

func TestDispatchPartialTokenFailure(t *testing.T) {
	messenger := &fakeMessenger{failTokens: map[string]bool{"t2": true}}
	engine := NewEngine(messenger, 10, time.Second)

	outcome, err := engine.Dispatch(context.Background(), Payload{Title: "t", Body: "b"}, []string{"t1", "t2", "t3"})

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Attempted)
	assert.Equal(t, 2, outcome.Delivered)
	assert.Equal(t, []string{"t2"}, outcome.FailedTokens)
}

func TestDispatchSingleBatchUnderLimit(t *testing.T) {
	messenger := &fakeMessenger{}
	engine := NewEngine(messenger, DefaultBatchSize, time.Second)

	outcome, err := engine.Dispatch(context.Background(), Payload{Title: "t", Body: "b"}, []string{"t1", "t2"})

	require.NoError(t, err)
	assert.Equal(t, 1, messenger.callCount())
	assert.Equal(t, 2, outcome.Attempted)
	assert.Equal(t, 2, outcome.Delivered)
}

func TestPartition(t *testing.T) {
	batches := partition([]string{"a", "b", "c", "d", "e"}, 2)
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"a", "b"}, batches[0])
	assert.Equal(t, []string{"c", "d"}, batches[1])
	assert.Equal(t, []string{"e"}, batches[2])
}
