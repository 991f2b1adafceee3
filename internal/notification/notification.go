package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"pasarpush/internal/config"
	"pasarpush/internal/dispatch"
	"pasarpush/internal/event"
)

const (
	recordsCollection   = "notifications"
	userStatsCollection = "user_stats"
)

type Store struct {
	db *firestore.Client
}

var store *Store

func NewStore(firestoreDB *firestore.Client) *Store {
	return &Store{db: firestoreDB}
}

func InitStore() error {
	if config.FirebaseConnection == nil || config.FirebaseConnection.Firestore == nil {
		return errors.New("firebase connection not initialized. Call config.InitFirebase() first")
	}

	store = NewStore(config.FirebaseConnection.Firestore)
	slog.Info("Notification record store initialized successfully")
	return nil
}

func GetStore() *Store {
	if store == nil {
		slog.Error("Notification record store not initialized. Call InitStore() first.")
		return nil
	}
	return store
}

// RecordDispatch writes one inbox record per recipient for a dispatched
// payload. Failures here never fail the dispatch itself.
func (s *Store) RecordDispatch(ctx context.Context, userIDs []string, kind event.Kind, payload dispatch.Payload) error {
	bulkWriter := s.db.BulkWriter(ctx)
	defer bulkWriter.End()

	now := time.Now()
	for _, userID := range userIDs {
		record := &Record{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      string(kind),
			Title:     payload.Title,
			Body:      payload.Body,
			Data:      payload.Data,
			Read:      false,
			CreatedAt: now,
		}

		ref := s.db.Collection(recordsCollection).Doc(record.ID)
		if _, err := bulkWriter.Set(ref, record); err != nil {
			return fmt.Errorf("failed to queue notification record: %w", err)
		}
	}
	bulkWriter.Flush()

	for _, userID := range userIDs {
		if err := s.updateUnreadCount(ctx, userID); err != nil {
			slog.Warn("failed to update notification count", "user_id", userID, "error", err)
		}
	}

	return nil
}

// List returns a user's inbox records, newest first.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]*Record, error) {
	query := s.db.Collection(recordsCollection).Where("user_id", "==", userID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var result []*Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}

		var record Record
		if err := doc.DataTo(&record); err != nil {
			return nil, fmt.Errorf("failed to parse notification: %w", err)
		}
		result = append(result, &record)
	}

	return result, nil
}

func (s *Store) MarkAsRead(ctx context.Context, userID, recordID string) error {
	_, err := s.db.Collection(recordsCollection).Doc(recordID).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	if err := s.updateUnreadCount(ctx, userID); err != nil {
		slog.Warn("failed to update notification count", "user_id", userID, "error", err)
	}

	return nil
}

func (s *Store) GetStats(ctx context.Context, userID string) (*Stats, error) {
	iter := s.db.Collection(recordsCollection).Where("user_id", "==", userID).Documents(ctx)
	defer iter.Stop()

	stats := &Stats{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error occurred fetching notification stats: %w", err)
		}

		var record Record
		if err := doc.DataTo(&record); err != nil {
			slog.Warn("failed to parse notification in stats", "doc_id", doc.Ref.ID, "error", err)
			continue
		}

		stats.Total++
		if !record.Read {
			stats.Unread++
		}
	}

	return stats, nil
}

func (s *Store) updateUnreadCount(ctx context.Context, userID string) error {
	stats, err := s.GetStats(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get notification stats: %w", err)
	}

	_, err = s.db.Collection(userStatsCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"notifications": stats,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}

	return nil
}
