package events

import (
	"context"
	"strconv"
	"time"

	"github.com/watheeq/watheeq-backend/internal/request/domain"
	"github.com/watheeq/watheeq-backend/pkg/logger"
	"github.com/watheeq/watheeq-backend/pkg/messaging"
)

// RequestEventPublisher publishes request lifecycle events. A nil
// publisher is valid and drops all events, so the service keeps working
// when RabbitMQ is unavailable.
type RequestEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewRequestEventPublisher creates a new request event publisher
func NewRequestEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*RequestEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeRequestEvents, "request-service", log)
	if err != nil {
		return nil, err
	}

	return &RequestEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishCreated publishes a request created event
func (p *RequestEventPublisher) PublishCreated(ctx context.Context, req *domain.Request, confidence int) {
	if p == nil {
		return
	}

	data := messaging.RequestCreatedEvent{
		RequestID:       strconv.FormatInt(req.ID, 10),
		NationalAddress: req.NationalAddress,
		IncidentDate:    req.IncidentDate,
		IncidentStart:   req.IncidentStart,
		IncidentEnd:     req.IncidentEnd,
		Status:          req.Status,
		Confidence:      confidence,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRequestCreated, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", req.ID).Msg("failed to publish request created event")
	}
}

// PublishApproved publishes a request approved event
func (p *RequestEventPublisher) PublishApproved(ctx context.Context, requestID int64, autoApproved bool) {
	if p == nil {
		return
	}

	data := messaging.RequestApprovedEvent{
		RequestID:    strconv.FormatInt(requestID, 10),
		AutoApproved: autoApproved,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRequestApproved, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", requestID).Msg("failed to publish request approved event")
	}
}

// PublishRejected publishes a request rejected event
func (p *RequestEventPublisher) PublishRejected(ctx context.Context, requestID int64, confidence int, reason string) {
	if p == nil {
		return
	}

	data := messaging.RequestRejectedEvent{
		RequestID:  strconv.FormatInt(requestID, 10),
		Confidence: confidence,
		Reason:     reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRequestRejected, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", requestID).Msg("failed to publish request rejected event")
	}
}

// PublishVideoReady publishes a video ready event
func (p *RequestEventPublisher) PublishVideoReady(ctx context.Context, requestID int64, expiresAt time.Time) {
	if p == nil {
		return
	}

	data := messaging.RequestVideoReadyEvent{
		RequestID:         strconv.FormatInt(requestID, 10),
		DownloadExpiresAt: expiresAt,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRequestVideoReady, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", requestID).Msg("failed to publish video ready event")
	}
}
