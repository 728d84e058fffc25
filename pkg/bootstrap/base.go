package bootstrap

import (
	"fmt"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/broker"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
)

type Base struct {
	Config   *config.Config
	Logger   logger.Logger
	Producer broker.Producer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// InitBroker creates the event producer. Callers should skip it when
// event publishing is disabled in configuration.
func (b *Base) InitBroker(serviceName string) error {
	producer, err := broker.NewProducer(b.Config.Events, b.Logger)
	if err != nil {
		return fmt.Errorf("failed to create producer: %w", err)
	}

	if serviceName != "" {
		producer.SetServiceName(serviceName)
	}

	b.Producer = producer
	return nil
}

func (b *Base) ShutdownBroker() []error {
	var errs []error

	if b.Producer != nil {
		if err := b.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("producer close error: %w", err))
		}
	}

	return errs
}
