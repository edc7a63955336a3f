package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/vantagehr/benefits/modules/benefits/domain/batch"
	"github.com/vantagehr/benefits/modules/benefits/services"
	"github.com/vantagehr/benefits/pkg/configuration"
	"github.com/vantagehr/benefits/pkg/serrors"
)

var allowedUploadExts = map[string]struct{}{
	".csv":  {},
	".xlsx": {},
}

type BatchController struct {
	svc  *services.BatchService
	conf *configuration.Configuration
	log  *logrus.Logger
}

func NewBatchController(svc *services.BatchService, conf *configuration.Configuration, log *logrus.Logger) *BatchController {
	return &BatchController{svc: svc, conf: conf, log: log}
}

func (c *BatchController) Register(r *mux.Router) {
	r.HandleFunc("/benefits/batches", c.submit).Methods(http.MethodPost)
	r.HandleFunc("/benefits/batches/{id}", c.status).Methods(http.MethodGet)
}

type batchResponse struct {
	ID            string  `json:"id"`
	Flow          string  `json:"flow"`
	ActionType    string  `json:"action_type"`
	Status        string  `json:"status"`
	TotalRecords  int     `json:"total_records"`
	InsertedCount int     `json:"inserted_count"`
	FailedCount   int     `json:"failed_count"`
	AcceptedFile  *string `json:"accepted_report_url,omitempty"`
	RejectedFile  *string `json:"rejected_report_url,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func (c *BatchController) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(c.conf.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_UPLOAD", "could not parse upload", "upload a multipart form with a file field"))
		return
	}

	flow := batch.Flow(r.FormValue("flow"))
	if flow != batch.FlowEmployee && flow != batch.FlowEndorsement {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_FLOW", "flow must be employee or endorsement", ""))
		return
	}
	action := batch.ActionType(r.FormValue("action_type"))
	if action != batch.ActionAdd && action != batch.ActionRemove {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_ACTION", "action_type must be add or remove", ""))
		return
	}

	companyID, err := strconv.ParseInt(r.FormValue("company_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_COMPANY", "company_id must be an integer", ""))
		return
	}
	policyID, err := strconv.ParseInt(r.FormValue("policy_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_POLICY", "policy_id must be an integer", ""))
		return
	}
	var endorsementID *int64
	if raw := r.FormValue("endorsement_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_ENDORSEMENT", "endorsement_id must be an integer", ""))
			return
		}
		endorsementID = &id
	}
	if flow == batch.FlowEndorsement && endorsementID == nil {
		writeError(w, http.StatusBadRequest, serrors.NewError("MISSING_ENDORSEMENT", "endorsement batches require endorsement_id", ""))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, serrors.NewError("MISSING_FILE", "file field is required", ""))
		return
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedUploadExts[ext]; !ok {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_FILE_TYPE", "only .csv and .xlsx uploads are accepted", ""))
		return
	}

	path, err := c.saveUpload(file, ext)
	if err != nil {
		c.log.WithError(err).Error("could not save upload")
		writeError(w, http.StatusInternalServerError, serrors.NewError("UPLOAD_FAILED", "could not store uploaded file", ""))
		return
	}

	ba, err := c.svc.Submit(r.Context(), services.SubmitParams{
		CompanyID:     companyID,
		PolicyID:      policyID,
		EndorsementID: endorsementID,
		Flow:          flow,
		ActionType:    action,
		UploadedFile:  path,
	})
	if err != nil {
		c.log.WithError(err).Error("could not submit batch")
		writeError(w, http.StatusInternalServerError, serrors.NewError("SUBMIT_FAILED", "could not submit batch", ""))
		return
	}

	writeJSON(w, http.StatusAccepted, c.toResponse(ba))
}

func (c *BatchController) status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, serrors.NewError("INVALID_ID", "batch id must be a UUID", ""))
		return
	}
	ba, err := c.svc.GetByID(r.Context(), id)
	if err != nil {
		if err == batch.ErrNotFound {
			writeError(w, http.StatusNotFound, serrors.NewError("NOT_FOUND", "batch not found", ""))
			return
		}
		c.log.WithError(err).Error("could not load batch")
		writeError(w, http.StatusInternalServerError, serrors.NewError("LOAD_FAILED", "could not load batch", ""))
		return
	}
	writeJSON(w, http.StatusOK, c.toResponse(ba))
}

func (c *BatchController) toResponse(ba *batch.BatchAction) batchResponse {
	return batchResponse{
		ID:            ba.ID.String(),
		Flow:          string(ba.Flow),
		ActionType:    string(ba.ActionType),
		Status:        string(ba.Status),
		TotalRecords:  ba.TotalRecords,
		InsertedCount: ba.InsertedCount,
		FailedCount:   ba.FailedCount,
		AcceptedFile:  c.reportURL(ba.AcceptedReportPath),
		RejectedFile:  c.reportURL(ba.RejectedReportPath),
		CreatedAt:     ba.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     ba.UpdatedAt.Format(time.RFC3339),
	}
}

func (c *BatchController) reportURL(path *string) *string {
	if path == nil {
		return nil
	}
	u := c.conf.Origin + "/" + filepath.ToSlash(*path)
	return &u
}

func (c *BatchController) saveUpload(src io.Reader, ext string) (string, error) {
	dir := filepath.Join(c.conf.UploadsPath, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%s", uuid.NewString(), ext))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	return path, dst.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, e *serrors.Base) {
	writeJSON(w, status, map[string]string{
		"code":    e.Code,
		"message": e.Message,
		"hint":    e.Hint,
	})
}
