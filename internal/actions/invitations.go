package actions

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"famiglia/internal/action"
	"famiglia/internal/core"
	"famiglia/internal/events"
)

// InvitationValidity is the answer to "can this invitation still be used".
// Message is user-facing and explains why not.
type InvitationValidity struct {
	Valid      bool            `json:"valid"`
	Message    string          `json:"message,omitempty"`
	Invitation core.Invitation `json:"invitation"`
}

// CreateInvitation issues a new invitation for the active family.
func (s *Service) CreateInvitation(ctx context.Context, familyUUID string) action.Result[core.Invitation] {
	inv, err := s.createInvitation(ctx, familyUUID)
	if err != nil {
		return action.Fail[core.Invitation](err, "초대장을 만들지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewMembers)
	return action.OK(inv)
}

func (s *Service) createInvitation(ctx context.Context, familyUUID string) (core.Invitation, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Invitation{}, err
	}
	family, err := s.resolver.FamilyStrict(ctx, id, familyUUID)
	if err != nil {
		return core.Invitation{}, err
	}

	var inv core.Invitation
	if err := s.api.Post(ctx, id.Token, "/families/"+family+"/invitations", nil, &inv); err != nil {
		return core.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeInvitationCreated, family, id.ID, id.Name, inv.UUID))
	return inv, nil
}

// ResolveInvitation fetches an invitation by its token without credentials,
// so an invited person who is not signed in yet can see what they were
// invited to.
func (s *Service) ResolveInvitation(ctx context.Context, token string) action.Result[InvitationValidity] {
	v, err := s.resolveInvitation(ctx, token)
	if err != nil {
		return action.Fail[InvitationValidity](err, "초대장을 확인하지 못했습니다")
	}
	return action.OK(v)
}

func (s *Service) resolveInvitation(ctx context.Context, token string) (InvitationValidity, error) {
	if strings.TrimSpace(token) == "" {
		return InvitationValidity{}, action.InvalidInput("token", token, "초대장 토큰이 올바르지 않습니다")
	}

	var inv core.Invitation
	path := "/invitations/resolve?token=" + url.QueryEscape(token)
	if err := s.api.GetPublic(ctx, path, &inv); err != nil {
		return InvitationValidity{}, fmt.Errorf("resolve invitation: %w", err)
	}
	return s.checkValidity(inv), nil
}

// checkValidity combines the backend-reported status with a local expiry
// check; the stricter (earlier) failure wins when the two disagree
// transiently.
func (s *Service) checkValidity(inv core.Invitation) InvitationValidity {
	switch inv.Status {
	case core.InvitationAccepted:
		return InvitationValidity{Valid: false, Message: "이미 사용된 초대장입니다", Invitation: inv}
	case core.InvitationCancelled:
		return InvitationValidity{Valid: false, Message: "취소된 초대장입니다", Invitation: inv}
	case core.InvitationExpired:
		return InvitationValidity{Valid: false, Message: "만료된 초대장입니다", Invitation: inv}
	}
	if !inv.Usable(s.now()) {
		return InvitationValidity{Valid: false, Message: "만료된 초대장입니다", Invitation: inv}
	}
	return InvitationValidity{Valid: true, Invitation: inv}
}

// AcceptInvitation joins the caller to the inviting family. The invitation
// must still be valid by both the backend's and the local clock's reckoning.
func (s *Service) AcceptInvitation(ctx context.Context, token string) action.Result[core.Family] {
	fam, err := s.acceptInvitation(ctx, token)
	if err != nil {
		return action.Fail[core.Family](err, "초대를 수락하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewFamilies, ViewMembers)
	return action.OK(fam)
}

func (s *Service) acceptInvitation(ctx context.Context, token string) (core.Family, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Family{}, err
	}

	v, err := s.resolveInvitation(ctx, token)
	if err != nil {
		return core.Family{}, err
	}
	if !v.Valid {
		return core.Family{}, action.InvalidInput("token", token, v.Message)
	}

	var fam core.Family
	body := map[string]any{"token": token}
	if err := s.api.Post(ctx, id.Token, "/invitations/accept", body, &fam); err != nil {
		return core.Family{}, fmt.Errorf("accept invitation: %w", err)
	}

	// Joining a family is an explicit scope change: persist it.
	if err := s.resolver.Selection.Select(ctx, id.ID, fam.UUID); err != nil {
		return core.Family{}, fmt.Errorf("persist family selection: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeInvitationAccepted, fam.UUID, id.ID, id.Name, v.Invitation.UUID))
	return fam, nil
}

// CancelInvitation revokes a pending invitation.
func (s *Service) CancelInvitation(ctx context.Context, invitationUUID string) action.Result[struct{}] {
	if err := s.cancelInvitation(ctx, invitationUUID); err != nil {
		return action.Fail[struct{}](err, "초대장을 취소하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewMembers)
	return action.OK(struct{}{})
}

func (s *Service) cancelInvitation(ctx context.Context, invitationUUID string) error {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(invitationUUID) == "" {
		return action.InvalidInput("invitationUuid", invitationUUID, "초대장을 찾을 수 없습니다")
	}
	if err := s.api.Delete(ctx, id.Token, "/invitations/"+invitationUUID); err != nil {
		return fmt.Errorf("cancel invitation: %w", err)
	}
	return nil
}
