package db

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"pasarpush/internal/dispatch"
)

// Delivery is one row of the dispatch audit log.
type Delivery struct {
	ID           int64          `db:"id" json:"id"`
	EventKind    string         `db:"event_kind" json:"event_kind"`
	Title        string         `db:"title" json:"title"`
	Attempted    int            `db:"attempted" json:"attempted"`
	Delivered    int            `db:"delivered" json:"delivered"`
	FailedTokens pq.StringArray `db:"failed_tokens" json:"failed_tokens"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// RecordDelivery appends a dispatch outcome to the audit log. Skipped
// dispatches (attempted == 0) are recorded too; the log is how operators
// tell a quiet period from a broken feed.
func RecordDelivery(eventKind, title string, outcome dispatch.Outcome) error {
	_, err := DB.Exec(
		`INSERT INTO deliveries (event_kind, title, attempted, delivered, failed_tokens)
		 VALUES ($1, $2, $3, $4, $5)`,
		eventKind, title, outcome.Attempted, outcome.Delivered, pq.Array(outcome.FailedTokens),
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

// RecentDeliveries returns the newest audit rows, newest first.
func RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 50
	}

	var deliveries []Delivery
	err := DB.SelectContext(ctx, &deliveries,
		`SELECT id, event_kind, title, attempted, delivered, failed_tokens, created_at
		 FROM deliveries ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deliveries: %w", err)
	}
	return deliveries, nil
}
