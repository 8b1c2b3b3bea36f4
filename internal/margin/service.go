package margin

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpattn/grosscalc/internal/domain"
	"github.com/rpattn/grosscalc/internal/secure"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is a consistent read of everything margin computation needs. The
// source must take all three slices from the same storage snapshot.
type Snapshot struct {
	Employees []domain.StoredEmployee
	Projects  []domain.Project
	Timecards []domain.TimeCard
}

// SnapshotSource loads a consistent snapshot from storage.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Service derives per-project gross margins from ingested data.
type Service struct {
	source SnapshotSource
	rates  *secure.RateResolver
	logger *log.Logger
}

func NewService(source SnapshotSource, rates *secure.RateResolver, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{source: source, rates: rates, logger: logger}
}

// ComputeMargins returns one row per ingested project, sorted by project
// name. Projects without timecards appear with zero hours and cost. Timecards
// referring to an unknown project or employee contribute nothing; they are
// logged and skipped rather than failing the whole computation.
func (s *Service) ComputeMargins(ctx context.Context) ([]domain.MarginRow, error) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	rates := make(map[string]decimal.Decimal, len(snap.Employees))
	for _, emp := range snap.Employees {
		rate, rateErr := s.rates.HourlyRate(emp)
		if rateErr != nil {
			return nil, fmt.Errorf("failed to resolve hourly rate: %w", rateErr)
		}
		rates[emp.EmployeeID] = rate
	}

	budgets := make(map[string]decimal.Decimal, len(snap.Projects))
	for _, project := range snap.Projects {
		budgets[project.ProjectName] = project.SOW
	}

	hours := map[string]decimal.Decimal{}
	costs := map[string]decimal.Decimal{}
	for _, card := range snap.Timecards {
		if _, known := budgets[card.ProjectName]; !known {
			s.logger.Printf("skipping timecard for unknown project %q", card.ProjectName)
			continue
		}
		rate, known := rates[card.EmployeeID]
		if !known {
			s.logger.Printf("skipping timecard for unknown employee %q on project %q", card.EmployeeID, card.ProjectName)
			continue
		}
		hours[card.ProjectName] = hours[card.ProjectName].Add(card.HoursWorked)
		costs[card.ProjectName] = costs[card.ProjectName].Add(card.HoursWorked.Mul(rate))
	}

	rows := make([]domain.MarginRow, 0, len(snap.Projects))
	for _, project := range snap.Projects {
		row := domain.MarginRow{
			ProjectName: project.ProjectName,
			TotalHours:  hours[project.ProjectName],
			Budget:      project.SOW,
		}
		if project.SOW.IsPositive() {
			cost := costs[project.ProjectName]
			row.GrossMarginPercentage = project.SOW.Sub(cost).Div(project.SOW).Mul(hundred)
			row.MarginDefined = true
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(a, b int) bool { return rows[a].ProjectName < rows[b].ProjectName })
	return rows, nil
}

// Summarize aggregates margin rows. The average counts only rows whose margin
// is defined; with none defined the average is zero.
func Summarize(rows []domain.MarginRow) domain.MarginSummary {
	summary := domain.MarginSummary{TotalProjects: len(rows)}
	defined := 0
	var marginSum decimal.Decimal
	for _, row := range rows {
		summary.TotalHours = summary.TotalHours.Add(row.TotalHours)
		summary.TotalBudget = summary.TotalBudget.Add(row.Budget)
		if row.MarginDefined {
			marginSum = marginSum.Add(row.GrossMarginPercentage)
			defined++
		}
	}
	if defined > 0 {
		summary.AverageMarginPercentage = marginSum.Div(decimal.NewFromInt(int64(defined)))
	}
	return summary
}
