package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/grosscalc/internal/db"
	"github.com/rpattn/grosscalc/internal/margin"
)

// SnapshotSource reads employees, projects and timecards inside a single
// repeatable-read transaction, so margin computation never mixes data from
// before and after a concurrent ingest.
type SnapshotSource struct {
	conn *db.Connection
}

func NewSnapshotSource(conn *db.Connection) *SnapshotSource {
	return &SnapshotSource{conn: conn}
}

func (s *SnapshotSource) Snapshot(ctx context.Context) (margin.Snapshot, error) {
	var snap margin.Snapshot
	err := s.conn.WithReadTx(ctx, func(tx pgx.Tx) error {
		employees, err := NewEmployeeRepository(tx).ListStored(ctx)
		if err != nil {
			return err
		}
		projects, err := NewProjectRepository(tx).List(ctx)
		if err != nil {
			return err
		}
		timecards, err := NewTimeCardRepository(tx).List(ctx)
		if err != nil {
			return err
		}
		snap = margin.Snapshot{Employees: employees, Projects: projects, Timecards: timecards}
		return nil
	})
	if err != nil {
		return margin.Snapshot{}, err
	}
	return snap, nil
}
