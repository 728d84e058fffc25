package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/provider"
	pkgerrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/logging"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/tracing"
)

type service struct {
	gateway       provider.Gateway
	ledger        Ledger
	phoneNumberID string
	newID         func() string
	now           func() time.Time
	events        *BroadcastEventProducer
	logger        logger.Logger
}

type ServiceOption func(*service)

// WithIDGenerator overrides broadcast id generation.
func WithIDGenerator(gen func() string) ServiceOption {
	return func(s *service) {
		s.newID = gen
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		s.now = now
	}
}

// WithEvents enables lifecycle event publishing.
func WithEvents(events *BroadcastEventProducer) ServiceOption {
	return func(s *service) {
		s.events = events
	}
}

func NewService(gateway provider.Gateway, ledger Ledger, cfg config.ProviderConfig, log logger.Logger, opts ...ServiceOption) Service {
	s := &service{
		gateway:       gateway,
		ledger:        ledger,
		phoneNumberID: cfg.PhoneNumberID,
		newID:         uuid.NewString,
		now:           time.Now,
		logger:        log,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DispatchBroadcast sends one template message per recipient, strictly
// in request order. The broadcast is registered in the ledger before
// the first send so it is observable while still in flight. A failed
// recipient never aborts the run: the failure is recorded and dispatch
// moves on.
func (s *service) DispatchBroadcast(ctx context.Context, req BroadcastRequest) (*BroadcastRecord, error) {
	if err := validateBroadcastRequest(req); err != nil {
		return nil, err
	}

	tracer := tracing.GetTracer("messaging-service")
	ctx, span := tracer.Start(ctx, "messaging.dispatch_broadcast")
	defer span.End()

	tpl := templateSpecFromRequest(req.TemplateName, req.LanguageCode, req.Components)

	record := NewBroadcastRecord(s.newID(), tpl.Name, len(req.To), s.now().UTC())
	s.ledger.Append(record)

	ctx = logging.WithBroadcastID(ctx, record.ID)
	s.logger.InfowCtx(ctx, "Broadcast started",
		"template_name", record.TemplateName,
		"recipient_count", record.RecipientCount,
	)
	s.events.PublishBroadcastStarted(ctx, record)

	for _, recipient := range req.To {
		envelope := ComposeEnvelope(recipient, tpl)

		raw, err := s.gateway.Send(ctx, http.MethodPost, s.messagesPath(), envelope)
		if err != nil {
			record.AppendResult(DeliveryResult{
				Recipient: recipient,
				Status:    DeliveryFailed,
				Error:     pkgerrors.MessageOf(err),
			})
			metrics.IncDeliveryOutcome(DeliveryFailed)
			s.logger.WarnwCtx(ctx, "Delivery failed",
				"recipient", recipient,
				"error", err,
			)
			continue
		}

		record.AppendResult(DeliveryResult{
			Recipient: recipient,
			Status:    DeliverySent,
			Response:  raw,
		})
		metrics.IncDeliveryOutcome(DeliverySent)
	}

	sent, failed := record.Counts()
	completedAt := s.now().UTC()

	status := "completed"
	switch {
	case failed > 0 && sent == 0:
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	metrics.ObserveBroadcast(status, record.RecipientCount, completedAt.Sub(record.StartedAt))

	s.logger.InfowCtx(ctx, "Broadcast completed",
		"sent", sent,
		"failed", failed,
	)
	s.events.PublishBroadcastCompleted(ctx, record, completedAt)

	return record, nil
}

// ListBroadcasts returns every registered broadcast, oldest first,
// including any still in flight.
func (s *service) ListBroadcasts(ctx context.Context) []*BroadcastRecord {
	return s.ledger.List()
}

func (s *service) SendTemplateMessage(ctx context.Context, req TemplateMessageRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, pkgerrors.ErrValidation.WithMessage("to is required")
	}
	if strings.TrimSpace(req.TemplateName) == "" {
		return nil, pkgerrors.ErrValidation.WithMessage("template_name is required")
	}

	tpl := templateSpecFromRequest(req.TemplateName, req.LanguageCode, req.Components)
	envelope := ComposeEnvelope(req.To, tpl)

	raw, err := s.gateway.Send(ctx, http.MethodPost, s.messagesPath(), envelope)
	if err != nil {
		s.events.PublishMessageSent(ctx, req.To, typeTemplate, DeliveryFailed)
		return nil, err
	}

	s.events.PublishMessageSent(ctx, req.To, typeTemplate, DeliverySent)
	return raw, nil
}

func (s *service) SendTextMessage(ctx context.Context, req TextMessageRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, pkgerrors.ErrValidation.WithMessage("to is required")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, pkgerrors.ErrValidation.WithMessage("body is required")
	}

	envelope := ComposeTextEnvelope(req.To, req.Body)

	raw, err := s.gateway.Send(ctx, http.MethodPost, s.messagesPath(), envelope)
	if err != nil {
		s.events.PublishMessageSent(ctx, req.To, typeText, DeliveryFailed)
		return nil, err
	}

	s.events.PublishMessageSent(ctx, req.To, typeText, DeliverySent)
	return raw, nil
}

func (s *service) messagesPath() string {
	return "/" + s.phoneNumberID + "/messages"
}

func validateBroadcastRequest(req BroadcastRequest) error {
	if len(req.To) == 0 {
		return pkgerrors.ErrValidation.WithMessage("recipient list must not be empty")
	}
	for i, recipient := range req.To {
		if strings.TrimSpace(recipient) == "" {
			return pkgerrors.ErrValidation.WithMessage("recipient must not be blank").WithDetail("index", i)
		}
	}
	if strings.TrimSpace(req.TemplateName) == "" {
		return pkgerrors.ErrValidation.WithMessage("template_name is required")
	}
	return nil
}

func templateSpecFromRequest(name, languageCode string, components []interface{}) TemplateSpec {
	if languageCode == "" {
		languageCode = constants.DefaultLanguageCode
	}
	return TemplateSpec{
		Name:         name,
		LanguageCode: languageCode,
		Components:   components,
	}
}
