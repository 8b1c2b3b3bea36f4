package ingestion

import (
	"github.com/google/uuid"

	"github.com/rpattn/grosscalc/internal/domain"
	"github.com/rpattn/grosscalc/internal/schema"
)

// State tracks where a batch sits in its upload lifecycle.
type State string

const (
	StateEmpty               State = "empty"
	StateFilesAttached       State = "files_attached"
	StateValidating          State = "validating"
	StateValidatedClean      State = "validated_clean"
	StateValidatedWithErrors State = "validated_with_errors"
	StateIngesting           State = "ingesting"
	StateIngested            State = "ingested"
	StateFailed              State = "failed"
)

// Batch holds one upload cycle: the attached files, the validation
// outcome per file, and the lifecycle state deciding which operations
// are currently allowed.
type Batch struct {
	ID          uuid.UUID
	state       State
	submissions []domain.FileSubmission
	outcomes    []schema.Outcome
	report      *domain.ValidationReport
}

// NewBatch returns a fresh batch with no files attached.
func NewBatch() *Batch {
	return &Batch{ID: uuid.New(), state: StateEmpty}
}

func (b *Batch) State() State {
	return b.state
}

func (b *Batch) Submissions() []domain.FileSubmission {
	return b.submissions
}

func (b *Batch) Report() *domain.ValidationReport {
	return b.report
}

// Attach adds files to the batch, replacing any previously attached file of
// the same type so a caller can swap a rejected file and revalidate. Any
// previous validation outcome is reset. Attaching is allowed until the batch
// starts ingesting.
func (b *Batch) Attach(files []domain.FileSubmission) error {
	switch b.state {
	case StateEmpty, StateFilesAttached, StateValidatedClean, StateValidatedWithErrors, StateIngested:
	default:
		return &domain.PreconditionError{Op: "attach", Current: string(b.state), Required: "not mid-validation or mid-ingest"}
	}

	for _, file := range files {
		replaced := false
		for i, existing := range b.submissions {
			if existing.FileType == file.FileType {
				b.submissions[i] = file
				replaced = true
				break
			}
		}
		if !replaced {
			b.submissions = append(b.submissions, file)
		}
	}
	b.outcomes = nil
	b.report = nil
	b.state = StateFilesAttached
	return nil
}

func (b *Batch) beginValidate() error {
	if b.state != StateFilesAttached && b.state != StateValidatedClean && b.state != StateValidatedWithErrors {
		return &domain.PreconditionError{Op: "validate", Current: string(b.state), Required: string(StateFilesAttached)}
	}
	if len(b.submissions) == 0 {
		return &domain.PreconditionError{Op: "validate", Current: string(b.state), Required: "at least one attached file"}
	}
	b.state = StateValidating
	return nil
}

// abortValidate returns the batch to its attached state after a recoverable
// failure during validation, so the caller may retry.
func (b *Batch) abortValidate() {
	b.state = StateFilesAttached
}

func (b *Batch) finishValidate(outcomes []schema.Outcome, report *domain.ValidationReport) {
	b.outcomes = outcomes
	b.report = report
	if report.HasErrors {
		b.state = StateValidatedWithErrors
		return
	}
	b.state = StateValidatedClean
}

func (b *Batch) beginIngest() error {
	// Re-ingesting an already ingested batch is a no-op in effect
	// because persistence replaces rows wholesale, so it stays legal.
	if b.state != StateValidatedClean && b.state != StateIngested {
		return &domain.PreconditionError{Op: "ingest", Current: string(b.state), Required: string(StateValidatedClean)}
	}
	b.state = StateIngesting
	return nil
}

func (b *Batch) finishIngest(err error) {
	if err == nil {
		b.state = StateIngested
		return
	}
	// A storage failure leaves the database untouched (the transaction
	// rolled back), so the batch returns to its validated state and the
	// caller may retry.
	b.state = StateValidatedClean
}

func (b *Batch) fail() {
	b.state = StateFailed
}
