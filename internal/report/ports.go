package report

import (
	"context"

	"famiglia/internal/actions"
)

// MonthReport is one exported month for one family.
type MonthReport struct {
	FamilyName string
	Stats      actions.DashboardStats
}

// Writer appends a month report to an external destination.
type Writer interface {
	Append(ctx context.Context, r MonthReport) (ref string, err error)
}
