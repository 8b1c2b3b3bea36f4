package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rpattn/grosscalc/internal/domain"
)

type timecardRepository struct {
	db Querier
}

// NewTimeCardRepository wires a timecard repository backed by the given
// querier (pool or transaction).
func NewTimeCardRepository(db Querier) TimeCardRepository {
	return &timecardRepository{db: db}
}

func (r *timecardRepository) ReplaceAll(ctx context.Context, rows []domain.TimeCard) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM timecards`); err != nil {
		return fmt.Errorf("failed to clear timecards: %w", err)
	}

	for _, row := range rows {
		_, err := r.db.Exec(
			ctx,
			`INSERT INTO timecards (id, employee_id, employee_name, work_date, hours_worked, project_name, state, task_type)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(),
			row.EmployeeID,
			row.EmployeeName,
			row.Date,
			row.HoursWorked,
			row.ProjectName,
			nullableString(row.State),
			nullableString(row.TaskType),
		)
		if err != nil {
			return fmt.Errorf("failed to insert timecard for %s: %w", row.EmployeeID, err)
		}
	}

	return nil
}

func (r *timecardRepository) List(ctx context.Context) ([]domain.TimeCard, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT employee_id, employee_name, work_date, hours_worked, project_name,
		        COALESCE(state, ''), COALESCE(task_type, '')
		 FROM timecards
		 ORDER BY work_date, employee_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list timecards: %w", err)
	}
	defer rows.Close()

	cards := []domain.TimeCard{}
	for rows.Next() {
		var card domain.TimeCard
		if scanErr := rows.Scan(
			&card.EmployeeID,
			&card.EmployeeName,
			&card.Date,
			&card.HoursWorked,
			&card.ProjectName,
			&card.State,
			&card.TaskType,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan timecard: %w", scanErr)
		}
		cards = append(cards, card)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate timecards: %w", rowsErr)
	}

	return cards, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
