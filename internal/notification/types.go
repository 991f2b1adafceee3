package notification

import "time"

// Record is one delivered notification in a user's in-app inbox. Records are
// written after dispatch so the client can show history even when the push
// itself was missed.
type Record struct {
	ID        string            `firestore:"id" json:"id"`
	UserID    string            `firestore:"user_id" json:"user_id"`
	Type      string            `firestore:"type" json:"type"`
	Title     string            `firestore:"title" json:"title"`
	Body      string            `firestore:"body" json:"body"`
	Data      map[string]string `firestore:"data" json:"data,omitempty"`
	Read      bool              `firestore:"read" json:"read"`
	CreatedAt time.Time         `firestore:"created_at" json:"created_at"`
}

type Stats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
