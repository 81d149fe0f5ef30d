package actions

import (
	"context"
	"fmt"
	"strings"

	"famiglia/internal/action"
	"famiglia/internal/core"
)

type CreateCategoryInput struct {
	FamilyUUID string
	Name       string
	Icon       string
}

type UpdateCategoryInput struct {
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

func (in UpdateCategoryInput) empty() bool {
	return in.Name == nil && in.Icon == nil
}

// CreateCategory adds a category to the active family. On success the
// dashboard, expense and category views are invalidated.
func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) action.Result[core.Category] {
	cat, err := s.createCategory(ctx, in)
	if err != nil {
		return action.Fail[core.Category](err, "카테고리를 저장하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewExpenses, ViewCategories)
	return action.OK(cat)
}

func (s *Service) createCategory(ctx context.Context, in CreateCategoryInput) (core.Category, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Category{}, err
	}
	familyUUID, err := s.resolver.FamilyStrict(ctx, id, in.FamilyUUID)
	if err != nil {
		return core.Category{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.Category{}, action.InvalidInput("name", in.Name, "이름을 입력해주세요")
	}
	if len(name) > 50 {
		return core.Category{}, action.InvalidInput("name", name, "이름이 너무 깁니다")
	}

	body := map[string]any{"name": name}
	if in.Icon != "" {
		body["icon"] = in.Icon
	}
	var cat core.Category
	if err := s.api.Post(ctx, id.Token, "/families/"+familyUUID+"/categories", body, &cat); err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

// UpdateCategory applies a partial patch. A patch with no fields set is
// rejected with INVALID_INPUT before any network call.
func (s *Service) UpdateCategory(ctx context.Context, categoryUUID string, in UpdateCategoryInput) action.Result[core.Category] {
	cat, err := s.updateCategory(ctx, categoryUUID, in)
	if err != nil {
		return action.Fail[core.Category](err, "카테고리를 수정하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewExpenses, ViewCategories)
	return action.OK(cat)
}

func (s *Service) updateCategory(ctx context.Context, categoryUUID string, in UpdateCategoryInput) (core.Category, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Category{}, err
	}
	if strings.TrimSpace(categoryUUID) == "" {
		return core.Category{}, action.InvalidInput("categoryUuid", categoryUUID, "카테고리를 찾을 수 없습니다")
	}
	if in.empty() {
		return core.Category{}, action.InvalidInput("body", "", "수정할 내용이 없습니다")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return core.Category{}, action.InvalidInput("name", *in.Name, "이름을 입력해주세요")
	}

	var cat core.Category
	if err := s.api.Patch(ctx, id.Token, "/categories/"+categoryUUID, in, &cat); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *Service) DeleteCategory(ctx context.Context, categoryUUID string) action.Result[struct{}] {
	if err := s.deleteCategory(ctx, categoryUUID); err != nil {
		return action.Fail[struct{}](err, "카테고리를 삭제하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewExpenses, ViewCategories)
	return action.OK(struct{}{})
}

func (s *Service) deleteCategory(ctx context.Context, categoryUUID string) error {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(categoryUUID) == "" {
		return action.InvalidInput("categoryUuid", categoryUUID, "카테고리를 찾을 수 없습니다")
	}
	if err := s.api.Delete(ctx, id.Token, "/categories/"+categoryUUID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context, familyUUID string) action.Result[[]core.Category] {
	cats, err := s.listCategories(ctx, familyUUID)
	if err != nil {
		return action.Fail[[]core.Category](err, "카테고리 목록을 불러오지 못했습니다")
	}
	return action.OK(cats)
}

func (s *Service) listCategories(ctx context.Context, familyUUID string) ([]core.Category, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return nil, err
	}
	family, err := s.resolver.FamilyReadOnly(ctx, id, familyUUID)
	if err != nil {
		return nil, err
	}

	var cats []core.Category
	if err := s.api.Get(ctx, id.Token, "/families/"+family+"/categories", &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
