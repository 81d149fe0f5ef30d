// Package actions implements the server-side operations invoked from the UI.
//
// Every action follows the same composition: resolve the caller's identity
// and active family, validate input, call the backend API, invalidate the
// affected views, and wrap the outcome in an action.Result. Errors never
// escape an action; the boundary converts them.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"famiglia/internal/action"
	"famiglia/internal/backend"
	"famiglia/internal/core"
	"famiglia/internal/events"
)

// Views that actions invalidate after writes. The web layer maps these to
// client refresh triggers; tests assert the exact set.
const (
	ViewRoot          = "/"
	ViewExpenses      = "/expenses"
	ViewIncomes       = "/incomes"
	ViewCategories    = "/categories"
	ViewFamilies      = "/families"
	ViewMembers       = "/members"
	ViewNotifications = "/notifications"
)

// ViewInvalidator marks rendered views as stale after a write.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, paths ...string)
}

// EventPublisher forwards family events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Service holds the collaborators every action composes. Construct one per
// process; each invocation derives its context fresh, so the service itself
// carries no per-request state.
type Service struct {
	api      *backend.Client
	resolver *action.Resolver
	views    ViewInvalidator
	events   EventPublisher
	now      func() time.Time
}

// New wires a Service. events may be nil when AMQP is not configured; view
// invalidation and context resolution are mandatory.
func New(api *backend.Client, resolver *action.Resolver, views ViewInvalidator, events EventPublisher) *Service {
	return &Service{
		api:      api,
		resolver: resolver,
		views:    views,
		events:   events,
		now:      time.Now,
	}
}

// publish sends a family event if a publisher is configured. A failed publish
// never fails the action; the write already happened.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "Failed to publish family event",
			"type", e.Type,
			"family_uuid", e.FamilyUUID,
			"error", err)
	}
}

// Directory adapts the backend API to action.FamilyDirectory for the
// first-family fallback during context resolution.
type Directory struct {
	API *backend.Client
}

func (d *Directory) FamilyUUIDs(ctx context.Context, token string) ([]string, error) {
	var fams []core.Family
	if err := d.API.Get(ctx, token, "/users/me/families", &fams); err != nil {
		return nil, fmt.Errorf("fetch my families: %w", err)
	}
	uuids := make([]string, len(fams))
	for i, f := range fams {
		uuids[i] = f.UUID
	}
	return uuids, nil
}

// offendingAmount picks the value echoed back on an amount rejection: the
// submitted text when the caller kept it, the coerced cents otherwise.
func offendingAmount(raw string, cents int64) string {
	if raw != "" {
		return raw
	}
	return fmt.Sprintf("%d", cents)
}
