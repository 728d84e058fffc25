package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/models"
)

const (
	messageWaitTimeout = 30 * time.Second
)

func createTestLogger() logger.Logger {
	return logger.NopLogger()
}

func createTestEventsConfig(brokers []string, topic string) config.EventsConfig {
	return config.EventsConfig{
		Enabled: true,
		Brokers: brokers,
		Topic:   topic,
	}
}

// newTopicName keeps topics unique per test so partition reads never pick up
// another test's messages.
func newTopicName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}

func consumeEnvelopes(t *testing.T, brokers []string, topic string, count int) []*models.EventEnvelope {
	t.Helper()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), messageWaitTimeout)
	defer cancel()

	envelopes := make([]*models.EventEnvelope, 0, count)
	for len(envelopes) < count {
		msg, err := reader.ReadMessage(ctx)
		require.NoError(t, err, "timed out waiting for kafka message")

		var env models.EventEnvelope
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		envelopes = append(envelopes, &env)
	}

	return envelopes
}
