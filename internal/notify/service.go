// Package notify runs the fan-out pipeline: validate the event, resolve
// recipients, union their device tokens, compose the payload, dispatch it,
// and record the outcome.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"pasarpush/internal/compose"
	"pasarpush/internal/dispatch"
	"pasarpush/internal/event"
	"pasarpush/internal/tokens"
)

// Resolver yields the recipient identities for an event.
type Resolver interface {
	Resolve(ctx context.Context, ev event.Event) ([]string, error)
}

// TokenSource yields the device tokens registered to one recipient.
type TokenSource interface {
	TokensFor(ctx context.Context, userID string) ([]string, error)
}

// Recorder persists an in-app notification record per recipient.
type Recorder interface {
	RecordDispatch(ctx context.Context, userIDs []string, kind event.Kind, payload dispatch.Payload) error
}

// AuditFunc records a dispatch outcome in the delivery log.
type AuditFunc func(eventKind, title string, outcome dispatch.Outcome) error

type Service struct {
	resolver Resolver
	tokens   TokenSource
	engine   *dispatch.Engine
	recorder Recorder
	audit    AuditFunc
}

var service *Service

// NewService wires the pipeline. recorder and audit may be nil; both are
// observational and never fail a dispatch.
func NewService(resolver Resolver, source TokenSource, engine *dispatch.Engine, recorder Recorder, audit AuditFunc) *Service {
	return &Service{
		resolver: resolver,
		tokens:   source,
		engine:   engine,
		recorder: recorder,
		audit:    audit,
	}
}

func Init(s *Service) {
	service = s
	slog.Info("Notify service initialized successfully")
}

func GetService() *Service {
	if service == nil {
		slog.Error("Notify service not initialized. Call Init() first.")
		return nil
	}
	return service
}

// Notify runs one event through the pipeline and returns the dispatch
// outcome. Only ErrInvalidArgument surfaces before any store read; every
// delivery failure is absorbed into the outcome.
func (s *Service) Notify(ctx context.Context, ev event.Event) (dispatch.Outcome, error) {
	if err := ev.Validate(); err != nil {
		return dispatch.Outcome{}, err
	}

	recipients, err := s.resolver.Resolve(ctx, ev)
	if err != nil {
		return dispatch.Outcome{}, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		slog.Info("no recipients for event", "kind", ev.Kind())
		return dispatch.Outcome{}, nil
	}

	sets := make([][]string, 0, len(recipients))
	for _, userID := range recipients {
		set, err := s.tokens.TokensFor(ctx, userID)
		if err != nil {
			return dispatch.Outcome{}, fmt.Errorf("failed to load tokens for %s: %w", userID, err)
		}
		if len(set) == 0 {
			slog.Warn("recipient has no device tokens", "user_id", userID, "kind", ev.Kind())
		}
		sets = append(sets, set)
	}
	tokenSet := tokens.Union(sets...)

	payload := compose.Compose(ev)

	outcome, err := s.engine.Dispatch(ctx, payload, tokenSet)
	if err != nil {
		return dispatch.Outcome{}, err
	}

	if s.recorder != nil {
		if err := s.recorder.RecordDispatch(ctx, recipients, ev.Kind(), payload); err != nil {
			slog.Warn("failed to record in-app notifications", "kind", ev.Kind(), "error", err)
		}
	}
	if s.audit != nil {
		if err := s.audit(string(ev.Kind()), payload.Title, outcome); err != nil {
			slog.Warn("failed to record delivery audit", "kind", ev.Kind(), "error", err)
		}
	}

	return outcome, nil
}
