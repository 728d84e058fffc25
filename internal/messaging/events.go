package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/broker"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/logging"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/models"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/retry"
)

const eventSource = "messaging-service"

// BroadcastEventProducer publishes lifecycle events to the events
// topic. Publishing is best effort: failures are retried, then logged
// and counted, never surfaced to the dispatch path.
type BroadcastEventProducer struct {
	producer broker.Producer
	topic    string
	policy   retry.Policy
	logger   logger.Logger
}

func NewBroadcastEventProducer(producer broker.Producer, cfg config.EventsConfig, log logger.Logger) *BroadcastEventProducer {
	topic := cfg.Topic
	if topic == "" {
		topic = constants.DefaultEventsTopic
	}

	policy := retry.DefaultPolicy()
	if cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialInterval > 0 {
		policy.InitialInterval = cfg.Retry.InitialInterval
	}
	if cfg.Retry.MaxInterval > 0 {
		policy.MaxInterval = cfg.Retry.MaxInterval
	}
	if cfg.Retry.Multiplier > 0 {
		policy.Multiplier = cfg.Retry.Multiplier
	}
	if cfg.Retry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = cfg.Retry.MaxElapsedTime
	}

	return &BroadcastEventProducer{
		producer: producer,
		topic:    topic,
		policy:   policy,
		logger:   log,
	}
}

func (p *BroadcastEventProducer) PublishBroadcastStarted(ctx context.Context, record *BroadcastRecord) {
	p.publish(ctx, models.EventTypeBroadcastStarted, models.BroadcastStartedPayload{
		BroadcastID:    record.ID,
		TemplateName:   record.TemplateName,
		RecipientCount: record.RecipientCount,
		DispatchedBy:   logging.GetSubject(ctx),
		StartedAt:      record.StartedAt,
	})
}

func (p *BroadcastEventProducer) PublishBroadcastCompleted(ctx context.Context, record *BroadcastRecord, completedAt time.Time) {
	sent, failed := record.Counts()
	p.publish(ctx, models.EventTypeBroadcastCompleted, models.BroadcastCompletedPayload{
		BroadcastID:    record.ID,
		TemplateName:   record.TemplateName,
		RecipientCount: record.RecipientCount,
		SentCount:      sent,
		FailedCount:    failed,
		DispatchedBy:   logging.GetSubject(ctx),
		StartedAt:      record.StartedAt,
		CompletedAt:    completedAt,
	})
}

func (p *BroadcastEventProducer) PublishMessageSent(ctx context.Context, recipient, messageType, status string) {
	p.publish(ctx, models.EventTypeMessageSent, models.MessageSentPayload{
		Recipient:   recipient,
		MessageType: messageType,
		Status:      status,
	})
}

func (p *BroadcastEventProducer) publish(ctx context.Context, eventType string, payload interface{}) {
	if p == nil || p.producer == nil || p.topic == "" {
		return
	}

	env := models.NewEventEnvelope(uuid.New().String(), eventSource, eventType, payload)

	err := retry.RetryWithCallback(ctx, p.policy, func() error {
		return p.producer.Publish(ctx, p.topic, env)
	}, func(attempt int, retryErr error, nextDelay time.Duration) {
		metrics.IncRetryAttempt("events")
		p.logger.WarnwCtx(ctx, "Retrying event publish",
			"event_type", eventType,
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", retryErr,
		)
	})
	if err != nil {
		metrics.IncEventPublished(eventType, "error")
		p.logger.ErrorwCtx(ctx, "Failed to publish event",
			"event_type", eventType,
			"topic", p.topic,
			"error", err,
		)
		return
	}

	metrics.IncEventPublished(eventType, "success")
}
