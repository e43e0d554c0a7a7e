package domain

import "time"

// Request statuses. A request moves PENDING_APPROVAL -> APPROVED -> READY,
// or straight to REJECTED/APPROVED at submission depending on the
// verification confidence.
const (
	StatusPending  = "PENDING_APPROVAL"
	StatusApproved = "APPROVED"
	StatusReady    = "READY"
	StatusRejected = "REJECTED"
)

// Confidence thresholds driving the submission decision.
const (
	autoRejectBelow = 80
	autoApproveFrom = 95
)

// Request is a citizen's camera-footage request tied to one accident report.
type Request struct {
	ID              int64      `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	NationalAddress string     `db:"national_address" json:"national_address"`
	StreetName      *string    `db:"street_name" json:"street_name,omitempty"`
	IncidentDate    string     `db:"incident_date" json:"incident_date"`
	IncidentStart   string     `db:"incident_start" json:"incident_start"`
	IncidentEnd     string     `db:"incident_end" json:"incident_end"`
	ReportPath      string     `db:"report_path" json:"-"`
	Status          string     `db:"status" json:"status"`
	UploadToken     string     `db:"upload_token" json:"-"`
	DownloadToken   *string    `db:"download_token" json:"download_token,omitempty"`
	DownloadExpires *time.Time `db:"download_expires_at" json:"download_expires_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// DecideStatus maps a verification confidence score to the request's
// initial status: below 80 is rejected outright, 95 and above is approved
// without review, anything in between waits for a human.
func DecideStatus(confidence int) string {
	switch {
	case confidence < autoRejectBelow:
		return StatusRejected
	case confidence >= autoApproveFrom:
		return StatusApproved
	default:
		return StatusPending
	}
}
