package actions

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"famiglia/internal/action"
	"famiglia/internal/core"
)

// CategoryAmount is an amount aggregated under one category.
type CategoryAmount struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

// ExpenseSummary is the backend's monthly expense aggregate.
type ExpenseSummary struct {
	Total      core.Money       `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// IncomeSummary is the backend's monthly income aggregate.
type IncomeSummary struct {
	Total core.Money `json:"total"`
}

// DashboardStats joins the month's expense and income aggregates.
type DashboardStats struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Expenses   core.Money       `json:"expenses"`
	Incomes    core.Money       `json:"incomes"`
	Balance    core.Money       `json:"balance"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// DashboardStats fetches the month's expense and income summaries. The two
// calls target disjoint resources, so they run concurrently and join before
// the balance is computed.
func (s *Service) DashboardStats(ctx context.Context, familyUUID string, year, month int) action.Result[DashboardStats] {
	stats, err := s.dashboardStats(ctx, familyUUID, year, month)
	if err != nil {
		return action.Fail[DashboardStats](err, "대시보드를 불러오지 못했습니다")
	}
	return action.OK(stats)
}

func (s *Service) dashboardStats(ctx context.Context, familyUUID string, year, month int) (DashboardStats, error) {
	var zero DashboardStats
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return zero, err
	}
	family, err := s.resolver.FamilyReadOnly(ctx, id, familyUUID)
	if err != nil {
		return zero, err
	}
	if month < 1 || month > 12 {
		return zero, action.InvalidInput("month", fmt.Sprintf("%d", month), "월이 올바르지 않습니다")
	}

	period := fmt.Sprintf("?year=%d&month=%d", year, month)

	var (
		expenses ExpenseSummary
		incomes  IncomeSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.api.Get(gctx, id.Token, "/families/"+family+"/expenses/summary"+period, &expenses); err != nil {
			return fmt.Errorf("expense summary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.api.Get(gctx, id.Token, "/families/"+family+"/incomes/summary"+period, &incomes); err != nil {
			return fmt.Errorf("income summary: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return zero, err
	}

	return DashboardStats{
		Year:       year,
		Month:      month,
		Expenses:   expenses.Total,
		Incomes:    incomes.Total,
		Balance:    core.Money{Cents: incomes.Total.Cents - expenses.Total.Cents},
		ByCategory: expenses.ByCategory,
	}, nil
}
