package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watheeq/watheeq-backend/internal/request/domain"
	"github.com/watheeq/watheeq-backend/internal/request/repository"
	"github.com/watheeq/watheeq-backend/pkg/database"
	"github.com/watheeq/watheeq-backend/pkg/errors"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

func newMockRepo(t *testing.T) (*repository.RequestRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewWithDB(sqlx.NewDb(mockDB, "postgres"), logger.Nop())
	return repository.NewRequestRepository(db), mock
}

func TestCreateRequest(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO requests`).
		WithArgs("user", "RRQD2929", nil, "2025-09-02", "17:00", "18:00",
			"report.pdf", domain.StatusPending, "tok", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	req := &domain.Request{
		UserID:          "user",
		NationalAddress: "RRQD2929",
		IncidentDate:    "2025-09-02",
		IncidentStart:   "17:00",
		IncidentEnd:     "18:00",
		ReportPath:      "report.pdf",
		Status:          domain.StatusPending,
		UploadToken:     "tok",
	}
	err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), req.ID)
	assert.False(t, req.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT \* FROM requests WHERE id`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "national_address", "street_name",
		"incident_date", "incident_start", "incident_end",
		"report_path", "status", "upload_token",
		"download_token", "download_expires_at", "created_at", "updated_at",
	}).AddRow(
		int64(7), "user", "RRQD2929", nil,
		"2025-09-02", "17:00", "18:00",
		"data/reports/request_7_report.pdf", domain.StatusApproved, "tok",
		nil, nil, now, now,
	)

	mock.ExpectQuery(`SELECT \* FROM requests WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	req, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, req.Status)
	assert.Equal(t, "RRQD2929", req.NationalAddress)
	assert.Nil(t, req.DownloadToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE requests SET status`).
		WithArgs(domain.StatusApproved, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), 7, domain.StatusApproved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusMissingRequest(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE requests SET status`).
		WithArgs(domain.StatusApproved, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetStatus(context.Background(), 99, domain.StatusApproved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestSetDownloadToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	expiry := time.Now().UTC().Add(24 * time.Hour)
	mock.ExpectExec(`UPDATE requests`).
		WithArgs("dl-token", expiry, domain.StatusReady, sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetDownloadToken(context.Background(), 7, "dl-token", expiry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUploadToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT upload_token FROM requests`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"upload_token"}).AddRow("tok"))

	token, err := repo.GetUploadToken(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestGetUploadTokenMissingRequest(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT upload_token FROM requests`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"upload_token"}))

	token, err := repo.GetUploadToken(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, token)
}
