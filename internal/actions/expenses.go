package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"famiglia/internal/action"
	"famiglia/internal/backend"
	"famiglia/internal/core"
	"famiglia/internal/events"
)

// CreateExpenseInput carries the already-coerced form fields for a new
// expense. FamilyUUID may be empty; resolution falls back to the persisted
// selection. Amount keeps the text the user submitted so a rejection can
// echo it back; AmountCents is the coerced value (zero when coercion
// failed).
type CreateExpenseInput struct {
	FamilyUUID   string
	Description  string
	Amount       string
	AmountCents  int64
	CategoryUUID string
	SpentAt      time.Time
}

// UpdateExpenseInput is a partial patch; nil fields are left untouched.
type UpdateExpenseInput struct {
	Description  *string `json:"description,omitempty"`
	AmountCents  *int64  `json:"amountCents,omitempty"`
	CategoryUUID *string `json:"categoryUuid,omitempty"`
	SpentAt      *string `json:"spentAt,omitempty"`
}

func (in UpdateExpenseInput) empty() bool {
	return in.Description == nil && in.AmountCents == nil && in.CategoryUUID == nil && in.SpentAt == nil
}

func (s *Service) CreateExpense(ctx context.Context, in CreateExpenseInput) action.Result[core.Expense] {
	exp, err := s.createExpense(ctx, in)
	if err != nil {
		return action.Fail[core.Expense](err, "지출을 저장하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewExpenses)
	return action.OK(exp)
}

func (s *Service) createExpense(ctx context.Context, in CreateExpenseInput) (core.Expense, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	familyUUID, err := s.resolver.FamilyStrict(ctx, id, in.FamilyUUID)
	if err != nil {
		return core.Expense{}, err
	}

	if strings.TrimSpace(in.Description) == "" {
		return core.Expense{}, action.InvalidInput("description", in.Description, "내용을 입력해주세요")
	}
	if in.AmountCents <= 0 {
		return core.Expense{}, action.InvalidInput("amount", offendingAmount(in.Amount, in.AmountCents), "금액은 0보다 커야 합니다")
	}
	if strings.TrimSpace(in.CategoryUUID) == "" {
		return core.Expense{}, action.InvalidInput("categoryUuid", "", "카테고리를 선택해주세요")
	}
	spentAt := in.SpentAt
	if spentAt.IsZero() {
		spentAt = s.now()
	}

	body := map[string]any{
		"description":  strings.TrimSpace(in.Description),
		"amountCents":  in.AmountCents,
		"categoryUuid": in.CategoryUUID,
		"spentAt":      spentAt.Format(time.RFC3339),
	}
	var exp core.Expense
	if err := s.api.Post(ctx, id.Token, "/families/"+familyUUID+"/expenses", body, &exp); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeExpenseCreated, familyUUID, id.ID, id.Name, exp.UUID))
	return exp, nil
}

func (s *Service) UpdateExpense(ctx context.Context, expenseUUID string, in UpdateExpenseInput) action.Result[core.Expense] {
	exp, err := s.updateExpense(ctx, expenseUUID, in)
	if err != nil {
		return action.Fail[core.Expense](err, "지출을 수정하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewExpenses)
	return action.OK(exp)
}

func (s *Service) updateExpense(ctx context.Context, expenseUUID string, in UpdateExpenseInput) (core.Expense, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	if strings.TrimSpace(expenseUUID) == "" {
		return core.Expense{}, action.InvalidInput("expenseUuid", expenseUUID, "지출을 찾을 수 없습니다")
	}
	if in.empty() {
		return core.Expense{}, action.InvalidInput("body", "", "수정할 내용이 없습니다")
	}
	if in.AmountCents != nil && *in.AmountCents <= 0 {
		return core.Expense{}, action.InvalidInput("amount", fmt.Sprintf("%d", *in.AmountCents), "금액은 0보다 커야 합니다")
	}

	var exp core.Expense
	if err := s.api.Patch(ctx, id.Token, "/expenses/"+expenseUUID, in, &exp); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, expenseUUID string) action.Result[struct{}] {
	if err := s.deleteExpense(ctx, expenseUUID); err != nil {
		return action.Fail[struct{}](err, "지출을 삭제하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewExpenses)
	return action.OK(struct{}{})
}

func (s *Service) deleteExpense(ctx context.Context, expenseUUID string) error {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(expenseUUID) == "" {
		return action.InvalidInput("expenseUuid", expenseUUID, "지출을 찾을 수 없습니다")
	}
	if err := s.api.Delete(ctx, id.Token, "/expenses/"+expenseUUID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListExpenses returns one caller-facing page (1-based) of the family's
// expenses. Page size is bounded before any network call.
func (s *Service) ListExpenses(ctx context.Context, familyUUID string, page, size int) action.Result[backend.Page[core.Expense]] {
	p, err := s.listExpenses(ctx, familyUUID, page, size)
	if err != nil {
		return action.Fail[backend.Page[core.Expense]](err, "지출 목록을 불러오지 못했습니다")
	}
	return action.OK(p)
}

func (s *Service) listExpenses(ctx context.Context, familyUUID string, page, size int) (backend.Page[core.Expense], error) {
	var zero backend.Page[core.Expense]
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return zero, err
	}
	// Bounds first: the read-only family fallback may hit the backend, and
	// an out-of-range page must fail before any network call.
	query, err := backend.PageQuery(page, size)
	if err != nil {
		return zero, action.InvalidInput("page", fmt.Sprintf("%d/%d", page, size), "페이지 범위가 올바르지 않습니다")
	}
	family, err := s.resolver.FamilyReadOnly(ctx, id, familyUUID)
	if err != nil {
		return zero, err
	}

	var p backend.Page[core.Expense]
	if err := s.api.Get(ctx, id.Token, "/families/"+family+"/expenses?"+query, &p); err != nil {
		return zero, fmt.Errorf("list expenses: %w", err)
	}
	return p, nil
}
