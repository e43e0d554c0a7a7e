package service

import (
	"context"
	"fmt"
	"time"

	"github.com/watheeq/watheeq-backend/internal/request/domain"
	"github.com/watheeq/watheeq-backend/internal/request/events"
	"github.com/watheeq/watheeq-backend/internal/request/token"
	vdomain "github.com/watheeq/watheeq-backend/internal/verification/domain"
	"github.com/watheeq/watheeq-backend/pkg/errors"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

// Repository is the persistence surface the service needs
type Repository interface {
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
	UpdateReportPath(ctx context.Context, id int64, path string) error
	SetStatus(ctx context.Context, id int64, status string) error
	SetDownloadToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	GetUploadToken(ctx context.Context, id int64) (string, error)
}

// FileStore persists uploaded reports and videos
type FileStore interface {
	SaveReport(requestID int64, filename string, content []byte) (string, error)
	SaveVideo(requestID int64, filename string, content []byte) (string, error)
	FindVideo(requestID int64) (string, bool)
}

// Verifier checks the uploaded report against the claim
type Verifier interface {
	Verify(ctx context.Context, claim vdomain.Claim) *vdomain.Result
}

// DownloadTokens issues and verifies signed download tokens
type DownloadTokens interface {
	Issue(requestID int64) (string, time.Time, error)
	Verify(tokenString string, requestID int64) error
}

// Notifier sends out-of-band notifications. Implementations must not
// fail the request flow; delivery problems are logged, not returned.
type Notifier interface {
	NotifyAdminNewRequest(requestID int64, adminLink, incidentDate, incidentTime string)
	NotifyVideoReady(requestID int64, downloadURL string, req *domain.Request)
}

// SubmitInput carries one footage request submission
type SubmitInput struct {
	NationalAddress string
	StreetName      *string
	IncidentDate    string
	IncidentStart   string
	IncidentEnd     string
	ReportFilename  string
	ReportContent   []byte
}

// SubmitResult is the outcome of a submission: the stored request, the
// operator-facing upload link and the full verification breakdown.
type SubmitResult struct {
	Request      *domain.Request
	UploadToken  string
	AdminLink    string
	Verification *vdomain.Result
}

// RequestService implements the footage request lifecycle
type RequestService struct {
	repo      Repository
	files     FileStore
	verifier  Verifier
	tokens    DownloadTokens
	publisher *events.RequestEventPublisher
	notifier  Notifier
	frontend  string
	logger    *logger.Logger
}

// NewRequestService creates a new request service
func NewRequestService(
	repo Repository,
	files FileStore,
	verifier Verifier,
	tokens DownloadTokens,
	publisher *events.RequestEventPublisher,
	notifier Notifier,
	frontendBaseURL string,
	log *logger.Logger,
) *RequestService {
	return &RequestService{
		repo:      repo,
		files:     files,
		verifier:  verifier,
		tokens:    tokens,
		publisher: publisher,
		notifier:  notifier,
		frontend:  frontendBaseURL,
		logger:    log,
	}
}

// Submit stores the request and its report, verifies the report against
// the declared incident details and decides the initial status from the
// verification confidence.
func (s *RequestService) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	uploadToken, err := token.NewUploadToken()
	if err != nil {
		return nil, err
	}

	req := &domain.Request{
		UserID:          "user",
		NationalAddress: input.NationalAddress,
		StreetName:      input.StreetName,
		IncidentDate:    input.IncidentDate,
		IncidentStart:   input.IncidentStart,
		IncidentEnd:     input.IncidentEnd,
		ReportPath:      input.ReportFilename,
		Status:          domain.StatusPending,
		UploadToken:     uploadToken,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	savedPath, err := s.files.SaveReport(req.ID, input.ReportFilename, input.ReportContent)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateReportPath(ctx, req.ID, savedPath); err != nil {
		return nil, err
	}
	req.ReportPath = savedPath

	verification := s.verifier.Verify(ctx, vdomain.Claim{
		ReportPath: savedPath,
		Date:       input.IncidentDate,
		StartTime:  input.IncidentStart,
		EndTime:    input.IncidentEnd,
		Address:    input.NationalAddress,
	})

	status := domain.DecideStatus(verification.Confidence)
	if status != domain.StatusPending {
		if err := s.repo.SetStatus(ctx, req.ID, status); err != nil {
			return nil, err
		}
	}
	req.Status = status

	s.logger.Info().
		Int64("request_id", req.ID).
		Int("confidence", verification.Confidence).
		Str("status", status).
		Msg("request submitted")

	s.publisher.PublishCreated(ctx, req, verification.Confidence)
	switch status {
	case domain.StatusApproved:
		s.publisher.PublishApproved(ctx, req.ID, true)
	case domain.StatusRejected:
		s.publisher.PublishRejected(ctx, req.ID, verification.Confidence, verification.Message)
	}

	adminLink := fmt.Sprintf("%s/admin.html?request_id=%d&token=%s", s.frontend, req.ID, uploadToken)
	if s.notifier != nil {
		incidentTime := fmt.Sprintf("%s - %s", input.IncidentStart, input.IncidentEnd)
		s.notifier.NotifyAdminNewRequest(req.ID, adminLink, input.IncidentDate, incidentTime)
	}

	return &SubmitResult{
		Request:      req,
		UploadToken:  uploadToken,
		AdminLink:    adminLink,
		Verification: verification,
	}, nil
}

// Get returns one request by ID
func (s *RequestService) Get(ctx context.Context, id int64) (*domain.Request, error) {
	return s.repo.GetByID(ctx, id)
}

// AdminMeta returns the request details for the operator view after
// validating the upload token.
func (s *RequestService) AdminMeta(ctx context.Context, id int64, uploadToken string) (*domain.Request, error) {
	if err := s.checkUploadToken(ctx, id, uploadToken); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// UploadVideo stores the operator's footage for an approved request and
// issues the download token. Returns the token and its expiry.
func (s *RequestService) UploadVideo(ctx context.Context, id int64, uploadToken, filename string, content []byte) (string, time.Time, error) {
	if err := s.checkUploadToken(ctx, id, uploadToken); err != nil {
		return "", time.Time{}, err
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if req.Status != domain.StatusApproved {
		return "", time.Time{}, errors.BadRequest("request not approved yet")
	}

	savedPath, err := s.files.SaveVideo(id, filename, content)
	if err != nil {
		return "", time.Time{}, err
	}
	s.logger.Info().Int64("request_id", id).Str("path", savedPath).Msg("video stored")

	downloadToken, expiresAt, err := s.tokens.Issue(id)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.repo.SetDownloadToken(ctx, id, downloadToken, expiresAt); err != nil {
		return "", time.Time{}, err
	}

	s.publisher.PublishVideoReady(ctx, id, expiresAt)
	if s.notifier != nil {
		downloadURL := fmt.Sprintf("%s/download.html?request_id=%d&token=%s", s.frontend, id, downloadToken)
		s.notifier.NotifyVideoReady(id, downloadURL, req)
	}

	return downloadToken, expiresAt, nil
}

// Download validates the download token and returns the path of the
// stored video.
func (s *RequestService) Download(ctx context.Context, id int64, downloadToken string) (string, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if req.Status != domain.StatusReady {
		return "", errors.Forbidden("video not ready")
	}
	if req.DownloadToken == nil || *req.DownloadToken != downloadToken {
		return "", errors.TokenInvalid()
	}
	if req.DownloadExpires != nil && time.Now().UTC().After(*req.DownloadExpires) {
		return "", errors.TokenExpired()
	}
	if err := s.tokens.Verify(downloadToken, id); err != nil {
		return "", err
	}

	path, found := s.files.FindVideo(id)
	if !found {
		return "", errors.NotFound("video")
	}
	return path, nil
}

// Approve forces a pending or rejected request to APPROVED. Used by the
// mock ministry endpoint. Returns the previous status.
func (s *RequestService) Approve(ctx context.Context, id int64) (string, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if req.Status != domain.StatusPending && req.Status != domain.StatusRejected {
		return req.Status, nil
	}
	if err := s.repo.SetStatus(ctx, id, domain.StatusApproved); err != nil {
		return "", err
	}
	s.publisher.PublishApproved(ctx, id, false)
	return req.Status, nil
}

func (s *RequestService) checkUploadToken(ctx context.Context, id int64, uploadToken string) error {
	expected, err := s.repo.GetUploadToken(ctx, id)
	if err != nil {
		return err
	}
	if expected == "" || uploadToken != expected {
		return errors.Forbidden("invalid upload token")
	}
	return nil
}
