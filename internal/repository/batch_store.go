package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/grosscalc/internal/db"
	"github.com/rpattn/grosscalc/internal/domain"
	"github.com/rpattn/grosscalc/internal/ingestion"
	"github.com/rpattn/grosscalc/internal/secure"
)

// BatchStore persists validated batches. Each file type present in a batch
// replaces the stored rows of that type wholesale, all inside one
// transaction, so a failed ingest leaves the previous data intact.
type BatchStore struct {
	conn  *db.Connection
	rates *secure.RateResolver
}

func NewBatchStore(conn *db.Connection, rates *secure.RateResolver) *BatchStore {
	return &BatchStore{conn: conn, rates: rates}
}

// PersistBatch writes the batch atomically. Employee compensation is sealed
// before it touches the transaction.
func (s *BatchStore) PersistBatch(ctx context.Context, data ingestion.BatchData) error {
	var stored []domain.StoredEmployee
	if data.HasEmployees {
		stored = make([]domain.StoredEmployee, 0, len(data.Employees))
		for _, emp := range data.Employees {
			sealed, err := s.rates.SealEmployee(emp)
			if err != nil {
				return &domain.StorageError{Op: "seal employee", Err: err}
			}
			stored = append(stored, sealed)
		}
	}

	err := s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if data.HasEmployees {
			if err := NewEmployeeRepository(tx).ReplaceAll(ctx, stored); err != nil {
				return err
			}
		}
		if data.HasProjects {
			if err := NewProjectRepository(tx).ReplaceAll(ctx, data.Projects); err != nil {
				return err
			}
		}
		if data.HasTimecards {
			if err := NewTimeCardRepository(tx).ReplaceAll(ctx, data.Timecards); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.StorageError{Op: "persist batch", Err: err}
	}

	return nil
}

// ReferenceKeys loads the persisted employee ids and project names used to
// cross-check timecard references when a batch does not carry its own.
func (s *BatchStore) ReferenceKeys(ctx context.Context) (ingestion.ReferenceKeys, error) {
	var keys ingestion.ReferenceKeys
	err := s.conn.WithReadTx(ctx, func(tx pgx.Tx) error {
		employeeIDs, err := NewEmployeeRepository(tx).IDSet(ctx)
		if err != nil {
			return err
		}
		projectNames, err := NewProjectRepository(tx).NameSet(ctx)
		if err != nil {
			return err
		}
		keys = ingestion.ReferenceKeys{EmployeeIDs: employeeIDs, ProjectNames: projectNames}
		return nil
	})
	if err != nil {
		return ingestion.ReferenceKeys{}, err
	}
	return keys, nil
}
