package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/models"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/tracing"
)

type KafkaProducer struct {
	writer      *kafka.Writer
	logger      logger.Logger
	serviceName string
}

func NewKafkaProducer(cfg config.EventsConfig, log logger.Logger) *KafkaProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaProducer{writer: w, logger: log, serviceName: "unknown"}
}

func (p *KafkaProducer) SetServiceName(name string) {
	p.serviceName = name
}

func (p *KafkaProducer) Publish(ctx context.Context, topic string, env *models.EventEnvelope) error {
	if err := models.ValidateEventEnvelope(env); err != nil {
		return fmt.Errorf("invalid event envelope: %w", err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	headers := tracing.InjectTraceContext(ctx, []kafka.Header{})

	start := time.Now()
	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Topic:   topic,
			Key:     []byte(env.ID),
			Value:   body,
			Headers: headers,
			Time:    time.Now(),
		},
	)
	metrics.ObserveKafkaWriteDuration(p.serviceName, topic, time.Since(start))

	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	metrics.IncKafkaMessagesWritten(p.serviceName, topic)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
