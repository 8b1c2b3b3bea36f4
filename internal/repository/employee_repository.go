package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/grosscalc/internal/domain"
)

type employeeRepository struct {
	db Querier
}

// NewEmployeeRepository wires an employee repository backed by the given
// querier (pool or transaction).
func NewEmployeeRepository(db Querier) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) ReplaceAll(ctx context.Context, rows []domain.StoredEmployee) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM employees`); err != nil {
		return fmt.Errorf("failed to clear employees: %w", err)
	}

	for _, row := range rows {
		_, err := r.db.Exec(
			ctx,
			`INSERT INTO employees (employee_id, employee_name, ctc_encrypted, ctc_per_hour_encrypted)
			 VALUES ($1, $2, $3, $4)`,
			row.EmployeeID,
			row.EmployeeName,
			row.CTCEncrypted,
			nullableBytes(row.CTCPerHourEncrypted),
		)
		if err != nil {
			return fmt.Errorf("failed to insert employee %s: %w", row.EmployeeID, err)
		}
	}

	return nil
}

func (r *employeeRepository) ListStored(ctx context.Context) ([]domain.StoredEmployee, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT employee_id, employee_name, ctc_encrypted, ctc_per_hour_encrypted
		 FROM employees
		 ORDER BY employee_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []domain.StoredEmployee{}
	for rows.Next() {
		var emp domain.StoredEmployee
		if scanErr := rows.Scan(&emp.EmployeeID, &emp.EmployeeName, &emp.CTCEncrypted, &emp.CTCPerHourEncrypted); scanErr != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", scanErr)
		}
		employees = append(employees, emp)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", rowsErr)
	}

	return employees, nil
}

func (r *employeeRepository) IDSet(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT employee_id FROM employees`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", scanErr)
		}
		ids[id] = struct{}{}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate employee ids: %w", rowsErr)
	}

	return ids, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
