package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/watheeq/watheeq-backend/internal/request/domain"
	"github.com/watheeq/watheeq-backend/pkg/database"
	"github.com/watheeq/watheeq-backend/pkg/errors"
)

// Schema creates the requests table. Executed at startup; safe to re-run.
const Schema = `
CREATE TABLE IF NOT EXISTS requests (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	national_address TEXT NOT NULL,
	street_name TEXT,
	incident_date TEXT NOT NULL,
	incident_start TEXT NOT NULL,
	incident_end TEXT NOT NULL,
	report_path TEXT NOT NULL,
	status TEXT NOT NULL,
	upload_token TEXT NOT NULL,
	download_token TEXT,
	download_expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// RequestRepository handles camera-footage request persistence
type RequestRepository struct {
	db *database.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *database.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Migrate ensures the requests table exists
func (r *RequestRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return errors.InternalWrap(err, "failed to migrate requests table")
	}
	return nil
}

// Create inserts a new request and returns its generated ID
func (r *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	query := `
		INSERT INTO requests (
			user_id, national_address, street_name,
			incident_date, incident_start, incident_end,
			report_path, status, upload_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id`

	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	err := r.db.QueryRowxContext(ctx, query,
		req.UserID,
		req.NationalAddress,
		req.StreetName,
		req.IncidentDate,
		req.IncidentStart,
		req.IncidentEnd,
		req.ReportPath,
		req.Status,
		req.UploadToken,
		now,
	).Scan(&req.ID)
	if err != nil {
		return errors.InternalWrap(err, "failed to create request")
	}
	return nil
}

// GetByID fetches one request by its ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	var req domain.Request
	err := r.db.GetContext(ctx, &req, `SELECT * FROM requests WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("request")
	}
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to fetch request")
	}
	return &req, nil
}

// UpdateReportPath points the request at its stored report file
func (r *RequestRepository) UpdateReportPath(ctx context.Context, id int64, path string) error {
	query := `UPDATE requests SET report_path = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, path, time.Now().UTC(), id); err != nil {
		return errors.InternalWrap(err, "failed to update report path")
	}
	return nil
}

// SetStatus transitions the request to the given status
func (r *RequestRepository) SetStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE requests SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return errors.InternalWrap(err, "failed to update request status")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("request")
	}
	return nil
}

// SetDownloadToken stores the download token and marks the request READY
func (r *RequestRepository) SetDownloadToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE requests
		SET download_token = $1, download_expires_at = $2, status = $3, updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, token, expiresAt, domain.StatusReady, time.Now().UTC(), id)
	if err != nil {
		return errors.InternalWrap(err, "failed to store download token")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFound("request")
	}
	return nil
}

// GetUploadToken returns the upload token for the request, or "" when the
// request does not exist.
func (r *RequestRepository) GetUploadToken(ctx context.Context, id int64) (string, error) {
	var token string
	err := r.db.GetContext(ctx, &token, `SELECT upload_token FROM requests WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.InternalWrap(err, "failed to fetch upload token")
	}
	return token, nil
}
