package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/watheeq/watheeq-backend/internal/request/domain"
	"github.com/watheeq/watheeq-backend/internal/request/service"
	vdomain "github.com/watheeq/watheeq-backend/internal/verification/domain"
	"github.com/watheeq/watheeq-backend/pkg/errors"
	"github.com/watheeq/watheeq-backend/pkg/httputil"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

const (
	maxReportSize = 20 << 20  // 20 MB
	maxVideoSize  = 512 << 20 // 512 MB
)

// RequestHandler exposes the footage request API
type RequestHandler struct {
	service *service.RequestService
	logger  *logger.Logger
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(svc *service.RequestService, log *logger.Logger) *RequestHandler {
	return &RequestHandler{service: svc, logger: log}
}

// Routes registers the handler's routes on the router
func (h *RequestHandler) Routes(r chi.Router) {
	r.Post("/api/requests", h.Submit)
	r.Get("/api/requests/{id}", h.Status)
	r.Get("/api/requests/{id}/info", h.Info)
	r.Get("/api/requests/{id}/download", h.Download)

	r.Get("/api/admin/requests/{id}/meta", h.AdminMeta)
	r.Post("/api/admin/upload", h.UploadVideo)

	r.Post("/api/mock/moi/approve/{id}", h.MockApprove)
}

type submitForm struct {
	NationalAddress string `validate:"required"`
	IncidentDate    string `validate:"required,datetime=2006-01-02"`
	IncidentStart   string `validate:"required,datetime=15:04"`
	IncidentEnd     string `validate:"required,datetime=15:04"`
}

type verificationInfo struct {
	Confidence    int               `json:"confidence"`
	Message       string            `json:"message"`
	IsValidSource bool              `json:"is_valid_source"`
	SourceName    string            `json:"source_name"`
	DateMatch     bool              `json:"date_match"`
	TimeMatch     bool              `json:"time_match"`
	LocationMatch bool              `json:"location_match"`
	Matches       map[string]string `json:"matches"`
}

type submitResponse struct {
	RequestID    int64             `json:"request_id"`
	UploadToken  string            `json:"upload_token"`
	AdminLink    string            `json:"admin_link"`
	Status       string            `json:"status"`
	Verification *verificationInfo `json:"verification,omitempty"`
}

// Submit handles POST /api/requests
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReportSize)
	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		httputil.Error(w, errors.BadRequest("invalid multipart form"))
		return
	}

	form := submitForm{
		NationalAddress: r.FormValue("national_address"),
		IncidentDate:    r.FormValue("incident_date"),
		IncidentStart:   r.FormValue("incident_start"),
		IncidentEnd:     r.FormValue("incident_end"),
	}
	if err := httputil.Validate(form); err != nil {
		httputil.Error(w, err)
		return
	}

	var streetName *string
	if s := r.FormValue("street_name"); s != "" {
		streetName = &s
	}

	filename, content, err := readUpload(r, "report")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Submit(r.Context(), service.SubmitInput{
		NationalAddress: form.NationalAddress,
		StreetName:      streetName,
		IncidentDate:    form.IncidentDate,
		IncidentStart:   form.IncidentStart,
		IncidentEnd:     form.IncidentEnd,
		ReportFilename:  filename,
		ReportContent:   content,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, submitResponse{
		RequestID:    result.Request.ID,
		UploadToken:  result.UploadToken,
		AdminLink:    result.AdminLink,
		Status:       result.Request.Status,
		Verification: toVerificationInfo(result.Verification),
	})
}

type statusResponse struct {
	RequestID         int64      `json:"request_id"`
	Status            string     `json:"status"`
	DownloadToken     *string    `json:"download_token,omitempty"`
	DownloadExpiresAt *time.Time `json:"download_expires_at,omitempty"`
}

// Status handles GET /api/requests/{id}
func (h *RequestHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, statusResponse{
		RequestID:         req.ID,
		Status:            req.Status,
		DownloadToken:     req.DownloadToken,
		DownloadExpiresAt: req.DownloadExpires,
	})
}

type requestInfo struct {
	RequestID       int64  `json:"request_id"`
	NationalAddress string `json:"national_address"`
	IncidentDate    string `json:"incident_date"`
	IncidentStart   string `json:"incident_start"`
	IncidentEnd     string `json:"incident_end"`
	Status          string `json:"status"`
}

// Info handles GET /api/requests/{id}/info. Public tracking endpoint,
// no token required.
func (h *RequestHandler) Info(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requestInfo{
		RequestID:       req.ID,
		NationalAddress: req.NationalAddress,
		IncidentDate:    req.IncidentDate,
		IncidentStart:   req.IncidentStart,
		IncidentEnd:     req.IncidentEnd,
		Status:          req.Status,
	})
}

type adminMetaResponse struct {
	RequestID       int64   `json:"request_id"`
	NationalAddress string  `json:"national_address"`
	StreetName      *string `json:"street_name"`
	IncidentDate    string  `json:"incident_date"`
	IncidentStart   string  `json:"incident_start"`
	IncidentEnd     string  `json:"incident_end"`
	Status          string  `json:"status"`
}

// AdminMeta handles GET /api/admin/requests/{id}/meta?token=
func (h *RequestHandler) AdminMeta(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.AdminMeta(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, adminMetaResponse{
		RequestID:       req.ID,
		NationalAddress: req.NationalAddress,
		StreetName:      req.StreetName,
		IncidentDate:    req.IncidentDate,
		IncidentStart:   req.IncidentStart,
		IncidentEnd:     req.IncidentEnd,
		Status:          req.Status,
	})
}

type uploadResponse struct {
	Message           string    `json:"message"`
	DownloadToken     string    `json:"download_token"`
	DownloadExpiresAt time.Time `json:"download_expires_at"`
}

// UploadVideo handles POST /api/admin/upload?token=&request_id=
func (h *RequestHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("request_id"), 10, 64)
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid request_id"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxVideoSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.Error(w, errors.BadRequest("invalid multipart form"))
		return
	}

	filename, content, err := readUpload(r, "video")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	token, expiresAt, err := h.service.UploadVideo(r.Context(), id, r.URL.Query().Get("token"), filename, content)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, uploadResponse{
		Message:           "upload received",
		DownloadToken:     token,
		DownloadExpiresAt: expiresAt,
	})
}

// Download handles GET /api/requests/{id}/download?token=
func (h *RequestHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	path, err := h.service.Download(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(path)+"\"")
	http.ServeFile(w, r, path)
}

// MockApprove handles POST /api/mock/moi/approve/{id}. Stands in for the
// ministry approval flow during demos.
func (h *RequestHandler) MockApprove(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	previous, err := h.service.Approve(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	message := "approved"
	if previous != domain.StatusPending && previous != domain.StatusRejected {
		message = "already " + previous
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"message": message})
}

func requestID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("invalid request id")
	}
	return id, nil
}

func readUpload(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, errors.BadRequest(field + " file is required")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, errors.BadRequest("failed to read " + field + " file")
	}
	return header.Filename, content, nil
}

func toVerificationInfo(result *vdomain.Result) *verificationInfo {
	if result == nil {
		return nil
	}
	return &verificationInfo{
		Confidence:    result.Confidence,
		Message:       result.Message,
		IsValidSource: result.IsValidSource,
		SourceName:    result.SourceName,
		DateMatch:     result.DateMatch,
		TimeMatch:     result.TimeMatch,
		LocationMatch: result.LocationMatch,
		Matches:       result.Matches,
	}
}
