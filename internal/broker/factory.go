package broker

import (
	"fmt"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
)

func NewProducer(cfg config.EventsConfig, log logger.Logger) (Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("events enabled but no kafka brokers configured")
	}
	return NewKafkaProducer(cfg, log), nil
}
