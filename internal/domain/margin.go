package domain

import "github.com/shopspring/decimal"

// MarginRow is the derived per-project margin. When Budget is zero the
// margin is undefined; GrossMarginPercentage then carries the zero sentinel
// and MarginDefined is false so callers can tell the two apart.
type MarginRow struct {
	ProjectName           string
	TotalHours            decimal.Decimal
	Budget                decimal.Decimal
	GrossMarginPercentage decimal.Decimal
	MarginDefined         bool
}

// MarginSummary aggregates all margin rows. AverageMarginPercentage is the
// mean over rows with a defined margin only.
type MarginSummary struct {
	TotalProjects           int
	TotalHours              decimal.Decimal
	TotalBudget             decimal.Decimal
	AverageMarginPercentage decimal.Decimal
}
