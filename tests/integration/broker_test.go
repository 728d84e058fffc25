package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/broker"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/messaging"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/models"
)

func TestKafkaProducerPublishesEnvelope(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true)
	ctx := context.Background()

	topic := newTopicName("messaging_events")
	producer := broker.NewKafkaProducer(createTestEventsConfig(infra.KafkaBrokers, topic), createTestLogger())
	producer.SetServiceName("integration-test")
	t.Cleanup(func() {
		producer.Close()
	})

	env := models.NewEventEnvelope(uuid.NewString(), "integration-test", models.EventTypeBroadcastStarted, models.BroadcastStartedPayload{
		BroadcastID:    "bc-1",
		TemplateName:   "welcome",
		RecipientCount: 3,
		StartedAt:      time.Now().UTC(),
	})

	require.NoError(t, producer.Publish(ctx, topic, env))

	got := consumeEnvelopes(t, infra.KafkaBrokers, topic, 1)[0]
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, "integration-test", got.Source)
	assert.Equal(t, models.EventTypeBroadcastStarted, got.EventType)
	assert.False(t, got.Timestamp.IsZero())
}

func TestKafkaProducerRejectsInvalidEnvelope(t *testing.T) {
	producer := broker.NewKafkaProducer(createTestEventsConfig([]string{"localhost:1"}, "unused"), createTestLogger())
	t.Cleanup(func() {
		producer.Close()
	})

	err := producer.Publish(context.Background(), "unused", &models.EventEnvelope{Source: "integration-test"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid event envelope")
}

func TestBroadcastEventProducerPublishesLifecycle(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true)
	ctx := context.Background()

	topic := newTopicName("broadcast_lifecycle")
	kafkaProducer := broker.NewKafkaProducer(createTestEventsConfig(infra.KafkaBrokers, topic), createTestLogger())
	kafkaProducer.SetServiceName("integration-test")
	t.Cleanup(func() {
		kafkaProducer.Close()
	})

	events := messaging.NewBroadcastEventProducer(kafkaProducer, createTestEventsConfig(infra.KafkaBrokers, topic), createTestLogger())

	record := messaging.NewBroadcastRecord("bc-9", "welcome", 2, time.Now().UTC())
	events.PublishBroadcastStarted(ctx, record)

	record.AppendResult(messaging.DeliveryResult{Recipient: "15550000001", Status: messaging.DeliverySent})
	events.PublishMessageSent(ctx, "15550000001", "template", messaging.DeliverySent)

	record.AppendResult(messaging.DeliveryResult{Recipient: "15550000002", Status: messaging.DeliveryFailed, Error: "boom"})
	events.PublishBroadcastCompleted(ctx, record, time.Now().UTC())

	envs := consumeEnvelopes(t, infra.KafkaBrokers, topic, 3)

	types := make([]string, 0, len(envs))
	for _, env := range envs {
		types = append(types, env.EventType)
		assert.Equal(t, "messaging-service", env.Source)
	}
	assert.Equal(t, []string{
		models.EventTypeBroadcastStarted,
		models.EventTypeMessageSent,
		models.EventTypeBroadcastCompleted,
	}, types)

	var completed models.BroadcastCompletedPayload
	remarshal(t, envs[2].Payload, &completed)
	assert.Equal(t, "bc-9", completed.BroadcastID)
	assert.Equal(t, 1, completed.SentCount)
	assert.Equal(t, 1, completed.FailedCount)
}

// remarshal converts the generic decoded payload back into its typed form.
func remarshal(t *testing.T, payload interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
