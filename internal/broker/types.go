package broker

import (
	"context"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/models"
)

type Producer interface {
	Publish(ctx context.Context, topic string, env *models.EventEnvelope) error
	SetServiceName(name string)
	Close() error
}
