package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/grosscalc/internal/domain"
)

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, content := range files {
		part, err := writer.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newTestHandler() (*Handler, *stubStore) {
	store := &stubStore{}
	return NewHandler(NewService(store, nil, nil), nil), store
}

func TestUploadHandlerReturnsReport(t *testing.T) {
	handler, _ := newTestHandler()

	body, contentType := multipartBody(t, map[string]string{
		"employee_file": "EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,96000\n",
		"project_file":  "PROJECT_NAME,SOW\nApollo,1000\n",
	})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool                    `json:"success"`
		Data    domain.ValidationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, 2, envelope.Data.TotalFiles)
	assert.Equal(t, 2, envelope.Data.TotalValidRows)
	assert.False(t, envelope.Data.HasErrors)
}

func TestUploadHandlerRequiresAtLeastOneFile(t *testing.T) {
	handler, _ := newTestHandler()

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Error, "at least one")
}

func TestUploadHandlerRejectsGet(t *testing.T) {
	handler, _ := newTestHandler()

	rec := httptest.NewRecorder()
	handler.Upload(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestHandlerGate(t *testing.T) {
	handler, store := newTestHandler()

	// No validation has happened, so ingest must answer 409.
	rec := httptest.NewRecorder()
	handler.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	body, contentType := multipartBody(t, map[string]string{
		"employee_file": "EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,96000\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	handler.Upload(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.persisted, 1)
}

func TestUploadHandlerCorrectedFileUnblocksIngest(t *testing.T) {
	handler, store := newTestHandler()

	post := func(csv string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, map[string]string{"employee_file": csv})
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.Upload(rec, req)
		return rec
	}

	rec := post("EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,notanumber\n")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data domain.ValidationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Data.HasErrors)

	rec = httptest.NewRecorder()
	handler.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = post("EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,96000\n")
	require.Equal(t, http.StatusOK, rec.Code)
	envelope.Data = domain.ValidationReport{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.HasErrors)
	assert.Equal(t, 1, envelope.Data.TotalFiles)

	rec = httptest.NewRecorder()
	handler.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.persisted, 1)
	assert.Len(t, store.persisted[0].Employees, 1)
}

func TestAbandonHandlerResetsBatch(t *testing.T) {
	handler, store := newTestHandler()

	body, contentType := multipartBody(t, map[string]string{
		"employee_file": "EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,96000\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Abandon(rec, httptest.NewRequest(http.MethodPost, "/abandon", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, store.persisted)
}

type stubIssueLister struct {
	issues []domain.IngestionIssue
}

func (s *stubIssueLister) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.IngestionIssue, error) {
	return s.issues, nil
}

func TestIssuesHandler(t *testing.T) {
	batchID := uuid.New()
	lister := &stubIssueLister{issues: []domain.IngestionIssue{{
		BatchID:      batchID,
		FileType:     domain.FileTypeTimecard,
		FileName:     "tc.csv",
		ErrorMessage: "unknown project name",
	}}}
	handler := NewHandler(NewService(&stubStore{}, nil, nil), lister)

	rec := httptest.NewRecorder()
	handler.Issues(rec, httptest.NewRequest(http.MethodGet, "/issues?batch_id="+batchID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []domain.IngestionIssue `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "unknown project name", envelope.Data[0].ErrorMessage)
}

func TestIssuesHandlerRequiresValidBatchID(t *testing.T) {
	handler := NewHandler(NewService(&stubStore{}, nil, nil), &stubIssueLister{})

	rec := httptest.NewRecorder()
	handler.Issues(rec, httptest.NewRequest(http.MethodGet, "/issues?batch_id=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestHandlerRejectedWithValidationErrors(t *testing.T) {
	handler, store := newTestHandler()

	body, contentType := multipartBody(t, map[string]string{
		"employee_file": "EMPLOYEE_ID,EMPLOYEE_NAME,CTC\nE001,Alice,-5\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Upload(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.Ingest(rec, httptest.NewRequest(http.MethodPost, "/ingest", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, store.persisted)
}
