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

// CreateIncomeInput mirrors CreateExpenseInput: Amount is the submitted
// text, AmountCents the coerced value.
type CreateIncomeInput struct {
	FamilyUUID  string
	Description string
	Amount      string
	AmountCents int64
	ReceivedAt  time.Time
}

type UpdateIncomeInput struct {
	Description *string `json:"description,omitempty"`
	AmountCents *int64  `json:"amountCents,omitempty"`
	ReceivedAt  *string `json:"receivedAt,omitempty"`
}

func (in UpdateIncomeInput) empty() bool {
	return in.Description == nil && in.AmountCents == nil && in.ReceivedAt == nil
}

func (s *Service) CreateIncome(ctx context.Context, in CreateIncomeInput) action.Result[core.Income] {
	inc, err := s.createIncome(ctx, in)
	if err != nil {
		return action.Fail[core.Income](err, "수입을 저장하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewIncomes)
	return action.OK(inc)
}

func (s *Service) createIncome(ctx context.Context, in CreateIncomeInput) (core.Income, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Income{}, err
	}
	familyUUID, err := s.resolver.FamilyStrict(ctx, id, in.FamilyUUID)
	if err != nil {
		return core.Income{}, err
	}

	if strings.TrimSpace(in.Description) == "" {
		return core.Income{}, action.InvalidInput("description", in.Description, "내용을 입력해주세요")
	}
	if in.AmountCents <= 0 {
		return core.Income{}, action.InvalidInput("amount", offendingAmount(in.Amount, in.AmountCents), "금액은 0보다 커야 합니다")
	}
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = s.now()
	}

	body := map[string]any{
		"description": strings.TrimSpace(in.Description),
		"amountCents": in.AmountCents,
		"receivedAt":  receivedAt.Format(time.RFC3339),
	}
	var inc core.Income
	if err := s.api.Post(ctx, id.Token, "/families/"+familyUUID+"/incomes", body, &inc); err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeIncomeCreated, familyUUID, id.ID, id.Name, inc.UUID))
	return inc, nil
}

func (s *Service) UpdateIncome(ctx context.Context, incomeUUID string, in UpdateIncomeInput) action.Result[core.Income] {
	inc, err := s.updateIncome(ctx, incomeUUID, in)
	if err != nil {
		return action.Fail[core.Income](err, "수입을 수정하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewIncomes)
	return action.OK(inc)
}

func (s *Service) updateIncome(ctx context.Context, incomeUUID string, in UpdateIncomeInput) (core.Income, error) {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return core.Income{}, err
	}
	if strings.TrimSpace(incomeUUID) == "" {
		return core.Income{}, action.InvalidInput("incomeUuid", incomeUUID, "수입을 찾을 수 없습니다")
	}
	if in.empty() {
		return core.Income{}, action.InvalidInput("body", "", "수정할 내용이 없습니다")
	}
	if in.AmountCents != nil && *in.AmountCents <= 0 {
		return core.Income{}, action.InvalidInput("amount", fmt.Sprintf("%d", *in.AmountCents), "금액은 0보다 커야 합니다")
	}

	var inc core.Income
	if err := s.api.Patch(ctx, id.Token, "/incomes/"+incomeUUID, in, &inc); err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	return inc, nil
}

func (s *Service) DeleteIncome(ctx context.Context, incomeUUID string) action.Result[struct{}] {
	if err := s.deleteIncome(ctx, incomeUUID); err != nil {
		return action.Fail[struct{}](err, "수입을 삭제하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewRoot, ViewIncomes)
	return action.OK(struct{}{})
}

func (s *Service) deleteIncome(ctx context.Context, incomeUUID string) error {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(incomeUUID) == "" {
		return action.InvalidInput("incomeUuid", incomeUUID, "수입을 찾을 수 없습니다")
	}
	if err := s.api.Delete(ctx, id.Token, "/incomes/"+incomeUUID); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return nil
}

func (s *Service) ListIncomes(ctx context.Context, familyUUID string, page, size int) action.Result[backend.Page[core.Income]] {
	p, err := s.listIncomes(ctx, familyUUID, page, size)
	if err != nil {
		return action.Fail[backend.Page[core.Income]](err, "수입 목록을 불러오지 못했습니다")
	}
	return action.OK(p)
}

func (s *Service) listIncomes(ctx context.Context, familyUUID string, page, size int) (backend.Page[core.Income], error) {
	var zero backend.Page[core.Income]
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return zero, err
	}
	query, err := backend.PageQuery(page, size)
	if err != nil {
		return zero, action.InvalidInput("page", fmt.Sprintf("%d/%d", page, size), "페이지 범위가 올바르지 않습니다")
	}
	family, err := s.resolver.FamilyReadOnly(ctx, id, familyUUID)
	if err != nil {
		return zero, err
	}

	var p backend.Page[core.Income]
	if err := s.api.Get(ctx, id.Token, "/families/"+family+"/incomes?"+query, &p); err != nil {
		return zero, fmt.Errorf("list incomes: %w", err)
	}
	return p, nil
}
