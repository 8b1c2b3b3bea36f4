package ingestion

import (
	"errors"
	"testing"

	"github.com/rpattn/grosscalc/internal/domain"
	"github.com/rpattn/grosscalc/internal/schema"
)

func attachedBatch(t *testing.T) *Batch {
	t.Helper()
	b := NewBatch()
	err := b.Attach([]domain.FileSubmission{{
		FileType: domain.FileTypeEmployee,
		Filename: "emp.csv",
		Raw:      []byte("EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,96000\n"),
	}})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	return b
}

func TestBatchStartsEmpty(t *testing.T) {
	b := NewBatch()
	if b.State() != StateEmpty {
		t.Fatalf("expected empty state, got %s", b.State())
	}
	if err := b.beginValidate(); err == nil {
		t.Fatal("expected validate to be rejected with no files")
	}
}

func TestBatchIngestRequiresCleanValidation(t *testing.T) {
	b := attachedBatch(t)

	err := b.beginIngest()
	var precondition *domain.PreconditionError
	if !errors.As(err, &precondition) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
	if precondition.Current != string(StateFilesAttached) {
		t.Errorf("expected error to name the current state, got %+v", precondition)
	}
}

func TestBatchIngestRejectedAfterValidationErrors(t *testing.T) {
	b := attachedBatch(t)
	if err := b.beginValidate(); err != nil {
		t.Fatalf("beginValidate failed: %v", err)
	}
	b.finishValidate(nil, &domain.ValidationReport{HasErrors: true})

	if b.State() != StateValidatedWithErrors {
		t.Fatalf("expected validated_with_errors, got %s", b.State())
	}
	if err := b.beginIngest(); err == nil {
		t.Fatal("expected ingest rejected after validation errors")
	}
}

func TestBatchCleanValidationAllowsIngest(t *testing.T) {
	b := attachedBatch(t)
	if err := b.beginValidate(); err != nil {
		t.Fatalf("beginValidate failed: %v", err)
	}
	b.finishValidate([]schema.Outcome{}, &domain.ValidationReport{})

	if b.State() != StateValidatedClean {
		t.Fatalf("expected validated_clean, got %s", b.State())
	}
	if err := b.beginIngest(); err != nil {
		t.Fatalf("expected ingest allowed, got %v", err)
	}
	b.finishIngest(nil)
	if b.State() != StateIngested {
		t.Fatalf("expected ingested, got %s", b.State())
	}
}

func TestBatchReingestAllowed(t *testing.T) {
	b := attachedBatch(t)
	_ = b.beginValidate()
	b.finishValidate([]schema.Outcome{}, &domain.ValidationReport{})
	_ = b.beginIngest()
	b.finishIngest(nil)

	if err := b.beginIngest(); err != nil {
		t.Fatalf("expected re-ingest allowed from ingested state, got %v", err)
	}
}

func TestBatchStorageFailureReturnsToValidated(t *testing.T) {
	b := attachedBatch(t)
	_ = b.beginValidate()
	b.finishValidate([]schema.Outcome{}, &domain.ValidationReport{})
	_ = b.beginIngest()
	b.finishIngest(&domain.StorageError{Op: "persist batch", Err: errors.New("connection reset")})

	if b.State() != StateValidatedClean {
		t.Fatalf("expected batch back in validated_clean after storage failure, got %s", b.State())
	}
}

func TestBatchAttachResetsValidation(t *testing.T) {
	b := attachedBatch(t)
	_ = b.beginValidate()
	b.finishValidate([]schema.Outcome{}, &domain.ValidationReport{})

	err := b.Attach([]domain.FileSubmission{{
		FileType: domain.FileTypeProject,
		Filename: "proj.csv",
		Raw:      []byte("PROJECT_NAME,SOW\nApollo,1000\n"),
	}})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if b.State() != StateFilesAttached {
		t.Fatalf("expected files_attached after new attach, got %s", b.State())
	}
	if b.Report() != nil {
		t.Error("expected stale report discarded on attach")
	}
}

func TestBatchAttachReplacesSameFileType(t *testing.T) {
	b := attachedBatch(t)

	corrected := domain.FileSubmission{
		FileType: domain.FileTypeEmployee,
		Filename: "emp_fixed.csv",
		Raw:      []byte("EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,98000\n"),
	}
	if err := b.Attach([]domain.FileSubmission{corrected}); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	subs := b.Submissions()
	if len(subs) != 1 {
		t.Fatalf("expected the corrected file to replace the old one, got %d submissions", len(subs))
	}
	if subs[0].Filename != "emp_fixed.csv" {
		t.Errorf("expected the newer file kept, got %q", subs[0].Filename)
	}
}

func TestBatchAttachRejectedMidIngest(t *testing.T) {
	b := attachedBatch(t)
	_ = b.beginValidate()
	b.finishValidate([]schema.Outcome{}, &domain.ValidationReport{})
	_ = b.beginIngest()

	err := b.Attach([]domain.FileSubmission{{FileType: domain.FileTypeProject, Filename: "p.csv"}})
	if err == nil {
		t.Fatal("expected attach rejected while ingesting")
	}
}
