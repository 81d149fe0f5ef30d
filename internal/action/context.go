package action

import (
	"context"
	"fmt"
	"strings"
)

// Identity is the authenticated caller: their profile fields plus the bearer
// token forwarded to the backend.
type Identity struct {
	ID    string
	Name  string
	Email string
	Token string
}

// SessionReader answers who the caller is. A nil identity with a nil error
// means "signed out"; resolution turns that into UNAUTHORIZED.
type SessionReader interface {
	Identity(ctx context.Context) (*Identity, error)
}

// SelectionStore persists the active-family choice per identity. The web
// layer implements it on a one-year cookie; tests use a map.
type SelectionStore interface {
	Selected(ctx context.Context, userID string) (string, bool)
	Select(ctx context.Context, userID, familyUUID string) error
}

// FamilyDirectory lists the caller's family UUIDs for the first-family
// fallback. Backed by the backend API client.
type FamilyDirectory interface {
	FamilyUUIDs(ctx context.Context, token string) ([]string, error)
}

// Resolver answers "who is calling, and for which family" with a fixed
// precedence: explicit argument, then persisted selection, then the first
// family the backend returns.
type Resolver struct {
	Sessions  SessionReader
	Selection SelectionStore
	Families  FamilyDirectory
}

// Identity resolves the caller or fails with UNAUTHORIZED. Call sites that
// must navigate instead of producing a Result use the web layer's redirecting
// variant.
func (r *Resolver) Identity(ctx context.Context) (Identity, error) {
	id, err := r.Sessions.Identity(ctx)
	if err != nil {
		return Identity{}, fmt.Errorf("session lookup: %w", err)
	}
	if id == nil {
		return Identity{}, Unauthorized()
	}
	return *id, nil
}

// FamilyStrict resolves the active family from the explicit argument or the
// persisted selection only. Mutating actions use it: when neither is set they
// fail with FAMILY_NOT_SELECTED before any backend call is made, instead of
// silently operating on an arbitrary family.
func (r *Resolver) FamilyStrict(ctx context.Context, id Identity, explicit string) (string, error) {
	if u := strings.TrimSpace(explicit); u != "" {
		return u, nil
	}
	if u, ok := r.Selection.Selected(ctx, id.ID); ok && u != "" {
		return u, nil
	}
	return "", FamilyNotSelected()
}

// Family resolves the active family and persists a first-family fallback, so
// the choice survives subsequent requests. Used by flows where the user is
// deliberately entering a family scope.
func (r *Resolver) Family(ctx context.Context, id Identity, explicit string) (string, error) {
	return r.resolveFamily(ctx, id, explicit, true)
}

// FamilyReadOnly resolves the active family without persisting a fallback.
// Read-only listings use it so a choice the user never made is not silently
// pinned.
func (r *Resolver) FamilyReadOnly(ctx context.Context, id Identity, explicit string) (string, error) {
	return r.resolveFamily(ctx, id, explicit, false)
}

func (r *Resolver) resolveFamily(ctx context.Context, id Identity, explicit string, persist bool) (string, error) {
	if u := strings.TrimSpace(explicit); u != "" {
		return u, nil
	}

	if u, ok := r.Selection.Selected(ctx, id.ID); ok && u != "" {
		return u, nil
	}

	uuids, err := r.Families.FamilyUUIDs(ctx, id.Token)
	if err != nil {
		return "", fmt.Errorf("list families: %w", err)
	}
	if len(uuids) == 0 {
		return "", FamilyNotSelected()
	}

	first := uuids[0]
	if persist {
		if err := r.Selection.Select(ctx, id.ID, first); err != nil {
			return "", fmt.Errorf("persist family selection: %w", err)
		}
	}
	return first, nil
}
