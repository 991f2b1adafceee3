package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasarpush/internal/event"
)

// A nil Firestore client proves these paths never touch the store.

func TestResolveManualNotify(t *testing.T) {
	r := NewResolver(nil)

	ids, err := r.Resolve(context.Background(), event.ManualNotify{UserID: "u1", Title: "t", Body: "b"})

	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestResolveOrderCreated(t *testing.T) {
	r := NewResolver(nil)

	ids, err := r.Resolve(context.Background(), event.OrderCreated{OrderID: "O1", SellerID: "S1"})

	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, ids)
}

func TestResolveStockUnchangedShortCircuits(t *testing.T) {
	r := NewResolver(nil)

	ids, err := r.Resolve(context.Background(), event.StockChanged{
		ProductID: "P1",
		Before:    event.ProductSnapshot{Stock: 5},
		After:     event.ProductSnapshot{Stock: 5},
	})

	require.NoError(t, err)
	assert.Empty(t, ids, "equal stock values must not resolve any watcher")
}
