package ingestion

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/rpattn/grosscalc/internal/api"
	"github.com/rpattn/grosscalc/internal/domain"
)

// maxUploadBytes bounds one multipart request; spreadsheets past this size
// are rejected rather than buffered.
const maxUploadBytes = 32 << 20

// formFields maps the multipart field name to the schema each file is
// validated against. Fields are read in this fixed order so the report is
// deterministic regardless of multipart part order.
var formFields = []struct {
	field    string
	fileType domain.FileType
}{
	{"timecard_file", domain.FileTypeTimecard},
	{"employee_file", domain.FileTypeEmployee},
	{"project_file", domain.FileTypeProject},
}

// IssueLister reads the persisted issue log for one batch.
type IssueLister interface {
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.IngestionIssue, error)
}

// Handler exposes the upload lifecycle over HTTP.
type Handler struct {
	service *Service
	issues  IssueLister
}

// NewHandler wires the upload handlers. issues may be nil, in which case the
// issue log endpoint answers 404.
func NewHandler(service *Service, issues IssueLister) *Handler {
	return &Handler{service: service, issues: issues}
}

// Upload accepts up to one file per type, attaches them as a batch and runs
// validation, answering with the full validation report.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	var files []domain.FileSubmission
	for _, ff := range formFields {
		file, header, err := r.FormFile(ff.field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "failed to read "+ff.field+": "+err.Error())
			return
		}
		payload, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			api.WriteError(w, http.StatusBadRequest, "failed to read "+ff.field+": "+readErr.Error())
			return
		}
		files = append(files, domain.FileSubmission{
			FileType: ff.fileType,
			Filename: header.Filename,
			Raw:      payload,
		})
	}

	if len(files) == 0 {
		api.WriteError(w, http.StatusBadRequest, "at least one of timecard_file, employee_file, project_file is required")
		return
	}

	if err := h.service.Attach(files); err != nil {
		writeOperationError(w, err)
		return
	}

	report, err := h.service.Validate(r.Context())
	if err != nil {
		writeOperationError(w, err)
		return
	}

	api.WriteSuccess(w, report)
}

// Ingest persists the current batch. Answers 409 when the batch has not
// validated clean.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := h.service.Ingest(r.Context()); err != nil {
		writeOperationError(w, err)
		return
	}

	api.WriteSuccess(w, struct{}{})
}

// Abandon discards the current batch and starts an empty one. Persisted data
// is untouched.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.service.Abandon()
	api.WriteSuccess(w, struct{}{})
}

// Issues answers GET /issues?batch_id=<uuid> with the persisted issue log
// for that batch.
func (h *Handler) Issues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.issues == nil {
		api.WriteError(w, http.StatusNotFound, "issue log not available")
		return
	}

	batchID, err := uuid.Parse(r.URL.Query().Get("batch_id"))
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "batch_id must be a valid uuid")
		return
	}

	issues, err := h.issues.ListByBatch(r.Context(), batchID)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.WriteSuccess(w, issues)
}

func writeOperationError(w http.ResponseWriter, err error) {
	var precondition *domain.PreconditionError
	if errors.As(err, &precondition) {
		api.WriteError(w, http.StatusConflict, precondition.Error())
		return
	}
	var storage *domain.StorageError
	if errors.As(err, &storage) {
		api.WriteError(w, http.StatusInternalServerError, storage.Error())
		return
	}
	api.WriteError(w, http.StatusBadRequest, err.Error())
}
