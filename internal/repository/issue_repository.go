package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/grosscalc/internal/domain"
)

type issueRepository struct {
	db Querier
}

// NewIssueRepository wires an issue repository backed by the given querier.
func NewIssueRepository(db Querier) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Record(ctx context.Context, issues []domain.IngestionIssue) error {
	for _, issue := range issues {
		id := issue.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		var rowNumber any
		if issue.RowNumber != nil {
			rowNumber = *issue.RowNumber
		}
		_, err := r.db.Exec(
			ctx,
			`INSERT INTO ingestion_issues (id, batch_id, file_type, file_name, row_number, column_name, cell_value, error_message)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id,
			issue.BatchID,
			string(issue.FileType),
			issue.FileName,
			rowNumber,
			nullableString(issue.Column),
			nullableString(issue.Value),
			issue.ErrorMessage,
		)
		if err != nil {
			return fmt.Errorf("failed to record ingestion issue: %w", err)
		}
	}

	return nil
}

func (r *issueRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.IngestionIssue, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT id, batch_id, file_type, file_name, row_number, COALESCE(column_name, ''), COALESCE(cell_value, ''), error_message, created_at
		 FROM ingestion_issues
		 WHERE batch_id = $1
		 ORDER BY created_at, row_number`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingestion issues: %w", err)
	}
	defer rows.Close()

	issues := []domain.IngestionIssue{}
	for rows.Next() {
		var (
			issue     domain.IngestionIssue
			fileType  string
			rowNumber pgtype.Int4
			createdAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&issue.ID,
			&issue.BatchID,
			&fileType,
			&issue.FileName,
			&rowNumber,
			&issue.Column,
			&issue.Value,
			&issue.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ingestion issue: %w", scanErr)
		}

		issue.FileType = domain.FileType(fileType)
		if rowNumber.Valid {
			value := int(rowNumber.Int32)
			issue.RowNumber = &value
		}
		if createdAt.Valid {
			issue.CreatedAt = createdAt.Time
		}

		issues = append(issues, issue)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate ingestion issues: %w", rowsErr)
	}

	return issues, nil
}
