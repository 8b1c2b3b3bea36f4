package ingestion

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rpattn/grosscalc/internal/domain"
	"github.com/rpattn/grosscalc/internal/schema"
)

// BatchData is everything one ingest writes: the typed rows that passed
// validation, grouped by file type. A nil slice means the batch carried no
// file of that type and the stored rows of that type are left untouched.
type BatchData struct {
	BatchID      uuid.UUID
	Timecards    []domain.TimeCard
	Employees    []domain.Employee
	Projects     []domain.Project
	HasTimecards bool
	HasEmployees bool
	HasProjects  bool
}

// ReferenceKeys are the persisted identifiers timecard rows may refer to.
type ReferenceKeys struct {
	EmployeeIDs  map[string]struct{}
	ProjectNames map[string]struct{}
}

// Persister writes a validated batch to durable storage. PersistBatch must be
// atomic: either every row lands or none does.
type Persister interface {
	PersistBatch(ctx context.Context, data BatchData) error
	ReferenceKeys(ctx context.Context) (ReferenceKeys, error)
}

// IssueRecorder keeps a durable log of validation issues per batch.
type IssueRecorder interface {
	Record(ctx context.Context, issues []domain.IngestionIssue) error
}

// Service owns the current upload batch and drives it through validation and
// ingest. All operations are safe for concurrent use; ingest is serialized.
type Service struct {
	mu     sync.Mutex
	batch  *Batch
	store  Persister
	issues IssueRecorder
	logger *log.Logger
}

// NewService returns a service with an empty batch. The issue recorder may be
// nil, in which case issues are only reported inline.
func NewService(store Persister, issues IssueRecorder, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{batch: NewBatch(), store: store, issues: issues, logger: logger}
}

// Attach adds files to the current batch. A file of an already-attached type
// replaces the earlier one, so re-submitting a corrected file discards the
// rejected version instead of accumulating next to it.
func (s *Service) Attach(files []domain.FileSubmission) error {
	if len(files) == 0 {
		return fmt.Errorf("no files submitted")
	}
	for _, file := range files {
		if !file.FileType.Known() {
			return fmt.Errorf("unsupported file type %q", file.FileType)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Attach(files)
}

// State reports the current batch's lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.State()
}

// Report returns the last validation report, or nil when the batch has not
// been validated yet.
func (s *Service) Report() *domain.ValidationReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Report()
}

// Abandon discards the current batch and starts an empty one.
func (s *Service) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = NewBatch()
}

// Validate runs every attached file through schema validation concurrently,
// then cross-checks timecard references against the employees and projects
// either attached in the same batch or already persisted. The report lists
// files in attachment order regardless of which finished first.
func (s *Service) Validate(ctx context.Context) (*domain.ValidationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.batch.beginValidate(); err != nil {
		return nil, err
	}

	submissions := s.batch.Submissions()
	outcomes := make([]schema.Outcome, len(submissions))

	var wg sync.WaitGroup
	for i, sub := range submissions {
		wg.Add(1)
		go func(i int, sub domain.FileSubmission) {
			defer wg.Done()
			outcomes[i] = schema.ValidateSubmission(sub)
		}(i, sub)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		s.batch.fail()
		return nil, err
	}

	if err := s.checkReferences(ctx, outcomes); err != nil {
		if ctx.Err() != nil {
			s.batch.fail()
		} else {
			s.batch.abortValidate()
		}
		return nil, err
	}

	uploads := make([]domain.UploadResult, len(outcomes))
	for i, outcome := range outcomes {
		uploads[i] = outcome.Result
	}
	report := BuildReport(uploads)
	s.batch.finishValidate(outcomes, report)

	s.recordIssues(ctx, submissions, outcomes)

	s.logger.Printf("validated batch %s: %d files, %d valid rows, %d invalid rows",
		s.batch.ID, report.TotalFiles, report.TotalValidRows, report.TotalInvalidRows)
	return report, nil
}

// Ingest persists every valid row of the batch in one transaction. Allowed
// only once the batch validated clean; repeating it is harmless because
// persistence replaces rows wholesale.
func (s *Service) Ingest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.batch.beginIngest(); err != nil {
		return err
	}

	data := BatchData{BatchID: s.batch.ID}
	for _, outcome := range s.batch.outcomes {
		switch outcome.Result.FileType {
		case domain.FileTypeTimecard:
			data.HasTimecards = true
			for _, row := range outcome.Timecards {
				data.Timecards = append(data.Timecards, row.Record)
			}
		case domain.FileTypeEmployee:
			data.HasEmployees = true
			for _, row := range outcome.Employees {
				data.Employees = append(data.Employees, row.Record)
			}
		case domain.FileTypeProject:
			data.HasProjects = true
			for _, row := range outcome.Projects {
				data.Projects = append(data.Projects, row.Record)
			}
		}
	}

	err := s.store.PersistBatch(ctx, data)
	if err != nil && ctx.Err() != nil {
		s.batch.fail()
		return err
	}
	s.batch.finishIngest(err)
	if err != nil {
		return err
	}

	s.logger.Printf("ingested batch %s: %d timecards, %d employees, %d projects",
		s.batch.ID, len(data.Timecards), len(data.Employees), len(data.Projects))
	return nil
}

// checkReferences demotes timecard rows whose employee id or project name is
// neither attached in this batch nor already persisted. Lookups against
// storage happen only when the batch itself does not carry the file type.
func (s *Service) checkReferences(ctx context.Context, outcomes []schema.Outcome) error {
	var timecardIdx []int
	attachedEmployees := map[string]struct{}{}
	attachedProjects := map[string]struct{}{}
	hasEmployees, hasProjects := false, false

	for i, outcome := range outcomes {
		switch outcome.Result.FileType {
		case domain.FileTypeTimecard:
			timecardIdx = append(timecardIdx, i)
		case domain.FileTypeEmployee:
			hasEmployees = true
			for _, row := range outcome.Employees {
				attachedEmployees[row.Record.EmployeeID] = struct{}{}
			}
		case domain.FileTypeProject:
			hasProjects = true
			for _, row := range outcome.Projects {
				attachedProjects[row.Record.ProjectName] = struct{}{}
			}
		}
	}

	if len(timecardIdx) == 0 {
		return nil
	}

	employees, projects := attachedEmployees, attachedProjects
	if !hasEmployees || !hasProjects {
		keys, err := s.store.ReferenceKeys(ctx)
		if err != nil {
			return &domain.StorageError{Op: "load reference keys", Err: err}
		}
		if !hasEmployees {
			employees = keys.EmployeeIDs
		}
		if !hasProjects {
			projects = keys.ProjectNames
		}
	}

	for _, i := range timecardIdx {
		outcome := &outcomes[i]
		kept := outcome.Timecards[:0]
		for _, row := range outcome.Timecards {
			var issues []domain.ValidationIssue
			if _, ok := employees[row.Record.EmployeeID]; !ok {
				issues = append(issues, domain.ValidationIssue{
					Row:    row.Row,
					Column: schema.ColEmployeeID,
					Value:  row.Record.EmployeeID,
					Error:  "unknown employee id",
				})
			}
			if _, ok := projects[row.Record.ProjectName]; !ok {
				issues = append(issues, domain.ValidationIssue{
					Row:    row.Row,
					Column: schema.ColProjectName,
					Value:  row.Record.ProjectName,
					Error:  "unknown project name",
				})
			}
			if len(issues) == 0 {
				kept = append(kept, row)
				continue
			}
			outcome.Result.ValidRows--
			outcome.Result.InvalidRows++
			outcome.Result.Issues = append(outcome.Result.Issues, issues...)
		}
		outcome.Timecards = kept
		sort.SliceStable(outcome.Result.Issues, func(a, b int) bool {
			return outcome.Result.Issues[a].Row < outcome.Result.Issues[b].Row
		})
	}

	return nil
}

// recordIssues writes the batch's issues to the durable log. Failures are
// logged and swallowed: the inline report already carries every issue.
func (s *Service) recordIssues(ctx context.Context, submissions []domain.FileSubmission, outcomes []schema.Outcome) {
	if s.issues == nil {
		return
	}

	var entries []domain.IngestionIssue
	for i, outcome := range outcomes {
		for _, iss := range outcome.Result.Issues {
			entry := domain.IngestionIssue{
				BatchID:      s.batch.ID,
				FileType:     outcome.Result.FileType,
				FileName:     submissions[i].Filename,
				Column:       iss.Column,
				Value:        iss.Value,
				ErrorMessage: iss.Error,
			}
			if iss.Row > 0 {
				row := iss.Row
				entry.RowNumber = &row
			}
			entries = append(entries, entry)
		}
	}
	if len(entries) == 0 {
		return
	}
	if err := s.issues.Record(ctx, entries); err != nil {
		s.logger.Printf("failed to record ingestion issues for batch %s: %v", s.batch.ID, err)
	}
}
