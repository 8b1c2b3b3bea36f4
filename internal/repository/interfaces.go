package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/grosscalc/internal/domain"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so repositories can be bound to the pool for plain reads or to a
// transaction for atomic batch writes.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EmployeeRepository defines the interface for employee storage operations.
type EmployeeRepository interface {
	ReplaceAll(ctx context.Context, rows []domain.StoredEmployee) error
	ListStored(ctx context.Context) ([]domain.StoredEmployee, error)
	IDSet(ctx context.Context) (map[string]struct{}, error)
}

// ProjectRepository defines the interface for project storage operations.
type ProjectRepository interface {
	ReplaceAll(ctx context.Context, rows []domain.Project) error
	List(ctx context.Context) ([]domain.Project, error)
	NameSet(ctx context.Context) (map[string]struct{}, error)
}

// TimeCardRepository defines the interface for timecard storage operations.
type TimeCardRepository interface {
	ReplaceAll(ctx context.Context, rows []domain.TimeCard) error
	List(ctx context.Context) ([]domain.TimeCard, error)
}

// IssueRepository persists validation issues per batch for audit.
type IssueRepository interface {
	Record(ctx context.Context, issues []domain.IngestionIssue) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.IngestionIssue, error)
}
