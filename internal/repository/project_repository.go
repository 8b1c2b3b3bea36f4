package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/grosscalc/internal/domain"
)

type projectRepository struct {
	db Querier
}

// NewProjectRepository wires a project repository backed by the given
// querier (pool or transaction).
func NewProjectRepository(db Querier) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) ReplaceAll(ctx context.Context, rows []domain.Project) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w", err)
	}

	for _, row := range rows {
		var projectID any
		if row.ProjectID != nil {
			projectID = *row.ProjectID
		}
		_, err := r.db.Exec(
			ctx,
			`INSERT INTO projects (project_name, project_id, sow)
			 VALUES ($1, $2, $3)`,
			row.ProjectName,
			projectID,
			row.SOW,
		)
		if err != nil {
			return fmt.Errorf("failed to insert project %s: %w", row.ProjectName, err)
		}
	}

	return nil
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT project_name, project_id, sow FROM projects ORDER BY project_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		var project domain.Project
		if scanErr := rows.Scan(&project.ProjectName, &project.ProjectID, &project.SOW); scanErr != nil {
			return nil, fmt.Errorf("failed to scan project: %w", scanErr)
		}
		projects = append(projects, project)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", rowsErr)
	}

	return projects, nil
}

func (r *projectRepository) NameSet(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT project_name FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("failed to list project names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]struct{})
	for rows.Next() {
		var name string
		if scanErr := rows.Scan(&name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan project name: %w", scanErr)
		}
		names[name] = struct{}{}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate project names: %w", rowsErr)
	}

	return names, nil
}
