package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventRequestCreated    = "request.created"
	EventRequestApproved   = "request.approved"
	EventRequestRejected   = "request.rejected"
	EventRequestVideoReady = "request.video.ready"
)

// Exchange names
const (
	ExchangeRequestEvents = "request.events"
)

// Event is the base event structure
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

// RequestCreatedEvent is published when a footage request is submitted
type RequestCreatedEvent struct {
	RequestID       string `json:"request_id"`
	NationalAddress string `json:"national_address"`
	IncidentDate    string `json:"incident_date"`
	IncidentStart   string `json:"incident_start"`
	IncidentEnd     string `json:"incident_end"`
	Status          string `json:"status"`
	Confidence      int    `json:"confidence"`
}

// RequestApprovedEvent is published when a request is approved
type RequestApprovedEvent struct {
	RequestID    string `json:"request_id"`
	AutoApproved bool   `json:"auto_approved"`
}

// RequestRejectedEvent is published when a request is rejected
type RequestRejectedEvent struct {
	RequestID  string `json:"request_id"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

// RequestVideoReadyEvent is published when the footage upload completes
type RequestVideoReadyEvent struct {
	RequestID         string    `json:"request_id"`
	DownloadExpiresAt time.Time `json:"download_expires_at"`
}
