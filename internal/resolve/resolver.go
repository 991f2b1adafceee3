package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"pasarpush/internal/event"
)

const (
	productsCollection    = "products"
	watchersSubcollection = "watchers"
)

// Resolver computes the recipient identities for an event.
type Resolver struct {
	db *firestore.Client
}

func NewResolver(db *firestore.Client) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the recipient user IDs for ev. An empty result is a valid
// short-circuit (nothing to notify), not an error. Recipient lists are not
// deduplicated; each identity resolves to tokens independently.
func (r *Resolver) Resolve(ctx context.Context, ev event.Event) ([]string, error) {
	switch ev := ev.(type) {
	case event.ManualNotify:
		return []string{ev.UserID}, nil
	case event.OrderCreated:
		return []string{ev.SellerID}, nil
	case event.StockChanged:
		if ev.Unchanged() {
			return nil, nil
		}
		return r.watchers(ctx, ev.ProductID)
	default:
		return nil, fmt.Errorf("%w: unknown event kind %q", event.ErrInvalidArgument, ev.Kind())
	}
}

// watchers lists the identities subscribed to a product. Watcher documents
// are keyed by user ID.
func (r *Resolver) watchers(ctx context.Context, productID string) ([]string, error) {
	iter := r.db.Collection(productsCollection).Doc(productID).Collection(watchersSubcollection).Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list watchers for product %s: %w", productID, err)
		}
		ids = append(ids, doc.Ref.ID)
	}

	if len(ids) == 0 {
		slog.Info("no watchers for product", "product_id", productID)
	}
	return ids, nil
}
