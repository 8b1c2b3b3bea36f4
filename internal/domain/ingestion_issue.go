package domain

import (
	"time"

	"github.com/google/uuid"
)

// IngestionIssue is the persisted copy of a validation issue, kept per batch
// so rejected uploads stay auditable after the transient report is gone.
type IngestionIssue struct {
	ID           uuid.UUID `json:"id"`
	BatchID      uuid.UUID `json:"batch_id"`
	FileType     FileType  `json:"file_type"`
	FileName     string    `json:"file_name"`
	RowNumber    *int      `json:"row_number,omitempty"`
	Column       string    `json:"column,omitempty"`
	Value        string    `json:"value,omitempty"`
	ErrorMessage string    `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}
