package tokens

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// Store reads device tokens from the document store. Token sets are read
// fresh on every dispatch; nothing is cached across invocations.
type Store struct {
	db *firestore.Client
}

func NewStore(db *firestore.Client) *Store {
	return &Store{db: db}
}

// TokensFor returns the recipient's registered device tokens. A missing user
// document or an absent/empty fcmTokens field yields an empty set, not an
// error.
func (s *Store) TokensFor(ctx context.Context, userID string) ([]string, error) {
	doc, err := s.db.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}

	var record struct {
		Tokens []string `firestore:"fcmTokens"`
	}
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to parse user %s: %w", userID, err)
	}
	return record.Tokens, nil
}

// Union flattens token sets from many recipients into one deduplicated set.
// Order of the inputs is irrelevant to the resulting set.
func Union(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var union []string
	for _, set := range sets {
		for _, token := range set {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			union = append(union, token)
		}
	}
	return union
}
