package actions

import (
	"context"
	"fmt"
	"strings"

	"famiglia/internal/action"
	"famiglia/internal/core"
)

// CreateFamily creates a family owned by the caller and makes it the active
// selection.
func (s *Service) CreateFamily(ctx context.Context, name string) action.Result[core.Family] {
	fam, err := s.createFamily(ctx, name)
	if err != nil {
		return action.Fail[core.Family](err, "가족을 만들지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewFamilies)
	return action.OK(fam)
}

func (s *Service) createFamily(ctx context.Context, name string) (core.Family, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Family{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return core.Family{}, action.InvalidInput("name", name, "가족 이름을 입력해주세요")
	}
	if len(name) > 50 {
		return core.Family{}, action.InvalidInput("name", name, "이름이 너무 깁니다")
	}

	var fam core.Family
	if err := s.api.Post(ctx, id.Token, "/families", map[string]any{"name": name}, &fam); err != nil {
		return core.Family{}, fmt.Errorf("create family: %w", err)
	}

	// Creating a family is an explicit scope change: persist it.
	if err := s.resolver.Selection.Select(ctx, id.ID, fam.UUID); err != nil {
		return core.Family{}, fmt.Errorf("persist family selection: %w", err)
	}
	return fam, nil
}

// MyFamilies lists the families the caller belongs to.
func (s *Service) MyFamilies(ctx context.Context) action.Result[[]core.Family] {
	fams, err := s.myFamilies(ctx)
	if err != nil {
		return action.Fail[[]core.Family](err, "가족 목록을 불러오지 못했습니다")
	}
	return action.OK(fams)
}

func (s *Service) myFamilies(ctx context.Context) ([]core.Family, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return nil, err
	}
	var fams []core.Family
	if err := s.api.Get(ctx, id.Token, "/users/me/families", &fams); err != nil {
		return nil, fmt.Errorf("list my families: %w", err)
	}
	return fams, nil
}

// SelectFamily makes the given family the caller's active selection. With an
// empty argument the first-family fallback applies and the result is
// persisted, because selecting is exactly the flow where pinning a default is
// wanted.
func (s *Service) SelectFamily(ctx context.Context, familyUUID string) action.Result[string] {
	selected, err := s.selectFamily(ctx, familyUUID)
	if err != nil {
		return action.Fail[string](err, "가족을 선택하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewFamilies)
	return action.OK(selected)
}

func (s *Service) selectFamily(ctx context.Context, familyUUID string) (string, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return "", err
	}
	selected, err := s.resolver.Family(ctx, id, familyUUID)
	if err != nil {
		return "", err
	}
	if familyUUID != "" {
		// Explicit choice: the resolver short-circuits before persisting, so
		// store it here.
		if err := s.resolver.Selection.Select(ctx, id.ID, selected); err != nil {
			return "", fmt.Errorf("persist family selection: %w", err)
		}
	}
	return selected, nil
}

// FamilyMembers lists the members of the active family.
func (s *Service) FamilyMembers(ctx context.Context, familyUUID string) action.Result[[]core.Member] {
	members, err := s.familyMembers(ctx, familyUUID)
	if err != nil {
		return action.Fail[[]core.Member](err, "가족 구성원을 불러오지 못했습니다")
	}
	return action.OK(members)
}

func (s *Service) familyMembers(ctx context.Context, familyUUID string) ([]core.Member, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return nil, err
	}
	family, err := s.resolver.FamilyReadOnly(ctx, id, familyUUID)
	if err != nil {
		return nil, err
	}
	var members []core.Member
	if err := s.api.Get(ctx, id.Token, "/families/"+family+"/members", &members); err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	return members, nil
}
