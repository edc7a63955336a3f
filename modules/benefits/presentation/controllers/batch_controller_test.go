package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/modules/benefits/services"
	"github.com/vantagehr/benefits/pkg/composables"
	"github.com/vantagehr/benefits/pkg/configuration"
)

type stubTx struct{}

func (stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (stubTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

type memBatchRepo struct {
	batches map[uuid.UUID]*batch.BatchAction
}

func (m *memBatchRepo) Create(_ context.Context, ba *batch.BatchAction) error {
	m.batches[ba.ID] = ba
	return nil
}

func (m *memBatchRepo) GetByID(_ context.Context, id uuid.UUID) (*batch.BatchAction, error) {
	ba, ok := m.batches[id]
	if !ok {
		return nil, batch.ErrNotFound
	}
	return ba, nil
}

func (m *memBatchRepo) SetStatus(context.Context, uuid.UUID, batch.Status) error { return nil }

func (m *memBatchRepo) Finalize(_ context.Context, ba *batch.BatchAction) error {
	m.batches[ba.ID] = ba
	return nil
}

type memQueue struct{ jobs []any }

func (m *memQueue) Enqueue(_ context.Context, job any) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func newTestRouter(t *testing.T) (*mux.Router, *memBatchRepo, *memQueue) {
	t.Helper()
	repo := &memBatchRepo{batches: map[uuid.UUID]*batch.BatchAction{}}
	q := &memQueue{}
	conf := &configuration.Configuration{
		UploadsPath:   t.TempDir(),
		MaxUploadSize: 1 << 20,
		Origin:        "http://localhost:3200",
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(composables.WithTx(req.Context(), stubTx{})))
		})
	})
	NewBatchController(services.NewBatchService(repo, q), conf, log).Register(r)
	return r, repo, q
}

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestSubmitBatch(t *testing.T) {
	fields := map[string]string{
		"flow":           "endorsement",
		"action_type":    "add",
		"company_id":     "1",
		"policy_id":      "2",
		"endorsement_id": "10",
	}

	t.Run("accepts a csv upload", func(t *testing.T) {
		r, repo, q := newTestRouter(t)
		body, contentType := multipartUpload(t, fields, "upload.csv", "Employee Code\nE1\n")

		req := httptest.NewRequest(http.MethodPost, "/benefits/batches", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "pending", resp["status"])

		id := uuid.MustParse(resp["id"].(string))
		require.Contains(t, repo.batches, id)
		require.Len(t, q.jobs, 1)
	})

	t.Run("rejects unexpected file types", func(t *testing.T) {
		r, _, q := newTestRouter(t)
		body, contentType := multipartUpload(t, fields, "upload.exe", "nope")

		req := httptest.NewRequest(http.MethodPost, "/benefits/batches", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, q.jobs)
	})

	t.Run("endorsement flow without endorsement id", func(t *testing.T) {
		r, _, _ := newTestRouter(t)
		partial := map[string]string{
			"flow":        "endorsement",
			"action_type": "add",
			"company_id":  "1",
			"policy_id":   "2",
		}
		body, contentType := multipartUpload(t, partial, "upload.csv", "x\n")

		req := httptest.NewRequest(http.MethodPost, "/benefits/batches", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid flow", func(t *testing.T) {
		r, _, _ := newTestRouter(t)
		bad := map[string]string{"flow": "payroll", "action_type": "add", "company_id": "1", "policy_id": "2"}
		body, contentType := multipartUpload(t, bad, "upload.csv", "x\n")

		req := httptest.NewRequest(http.MethodPost, "/benefits/batches", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBatchStatus(t *testing.T) {
	t.Run("returns report urls for a completed batch", func(t *testing.T) {
		r, repo, _ := newTestRouter(t)
		accepted := "static/reports/a.csv"
		ba := &batch.BatchAction{
			ID:                 uuid.New(),
			Flow:               batch.FlowEndorsement,
			ActionType:         batch.ActionAdd,
			Status:             batch.StatusCompleted,
			TotalRecords:       3,
			InsertedCount:      2,
			FailedCount:        1,
			AcceptedReportPath: &accepted,
		}
		repo.batches[ba.ID] = ba

		req := httptest.NewRequest(http.MethodGet, "/benefits/batches/"+ba.ID.String(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "completed", resp["status"])
		require.Equal(t, float64(3), resp["total_records"])
		require.Equal(t, "http://localhost:3200/static/reports/a.csv", resp["accepted_report_url"])
		_, hasRejected := resp["rejected_report_url"]
		require.False(t, hasRejected)
	})

	t.Run("unknown batch is 404", func(t *testing.T) {
		r, _, _ := newTestRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/benefits/batches/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		r, _, _ := newTestRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/benefits/batches/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
