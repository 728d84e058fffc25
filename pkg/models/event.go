package models

import "time"

// EventEnvelope is the wire format for messaging lifecycle events
// published to the events topic.
type EventEnvelope struct {
	ID        string      `json:"id"`
	Source    string      `json:"source"`
	EventType string      `json:"event_type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

const (
	EventTypeBroadcastStarted   = "broadcast_started"
	EventTypeBroadcastCompleted = "broadcast_completed"
	EventTypeMessageSent        = "message_sent"
)

// NewEventEnvelope builds an envelope stamped with the current time.
func NewEventEnvelope(id, source, eventType string, payload interface{}) *EventEnvelope {
	return &EventEnvelope{
		ID:        id,
		Source:    source,
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// BroadcastStartedPayload announces a broadcast that has been accepted
// and registered, before any deliveries were attempted. DispatchedBy is
// the authenticated subject that requested the run, when known.
type BroadcastStartedPayload struct {
	BroadcastID    string    `json:"broadcast_id"`
	TemplateName   string    `json:"template_name"`
	RecipientCount int       `json:"recipient_count"`
	DispatchedBy   string    `json:"dispatched_by,omitempty"`
	StartedAt      time.Time `json:"started_at"`
}

// BroadcastCompletedPayload summarizes a finished broadcast run.
type BroadcastCompletedPayload struct {
	BroadcastID    string    `json:"broadcast_id"`
	TemplateName   string    `json:"template_name"`
	RecipientCount int       `json:"recipient_count"`
	SentCount      int       `json:"sent_count"`
	FailedCount    int       `json:"failed_count"`
	DispatchedBy   string    `json:"dispatched_by,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// MessageSentPayload describes a single outbound message attempt.
type MessageSentPayload struct {
	Recipient   string `json:"recipient"`
	MessageType string `json:"message_type"`
	Status      string `json:"status"`
}
