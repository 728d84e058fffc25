package messaging

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	productWhatsApp = "whatsapp"
	typeTemplate    = "template"
	typeText        = "text"
)

// Delivery statuses recorded per recipient.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// TemplateSpec identifies a template and its rendering inputs. The
// components are opaque to this service and forwarded verbatim.
type TemplateSpec struct {
	Name         string
	LanguageCode string
	Components   []interface{}
}

// Envelope is the wire payload posted to the provider's messages edge.
type Envelope struct {
	Product  string           `json:"product"`
	To       string           `json:"to"`
	Type     string           `json:"type"`
	Template *TemplatePayload `json:"template,omitempty"`
	Text     *TextPayload     `json:"text,omitempty"`
}

type TemplatePayload struct {
	Name       string        `json:"name"`
	Language   LanguageCode  `json:"language"`
	Components []interface{} `json:"components,omitempty"`
}

type LanguageCode struct {
	Code string `json:"code"`
}

type TextPayload struct {
	Body string `json:"body"`
}

// DeliveryResult is the recorded outcome of one recipient's dispatch.
// Response holds the provider's raw reply on success; Error holds the
// failure message otherwise.
type DeliveryResult struct {
	Recipient string          `json:"recipient"`
	Status    string          `json:"status"`
	Response  json.RawMessage `json:"response,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// BroadcastRecord tracks one broadcast from registration to completion.
// Identity fields are fixed at creation. Results grow as deliveries
// complete; the mutex keeps them consistent for readers observing a
// broadcast still in flight.
type BroadcastRecord struct {
	ID             string
	TemplateName   string
	RecipientCount int
	StartedAt      time.Time

	mu      sync.Mutex
	results []DeliveryResult
}

func NewBroadcastRecord(id, templateName string, recipientCount int, startedAt time.Time) *BroadcastRecord {
	return &BroadcastRecord{
		ID:             id,
		TemplateName:   templateName,
		RecipientCount: recipientCount,
		StartedAt:      startedAt,
	}
}

func (r *BroadcastRecord) AppendResult(res DeliveryResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns a snapshot of the outcomes recorded so far, in
// dispatch order.
func (r *BroadcastRecord) Results() []DeliveryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DeliveryResult, len(r.results))
	copy(out, r.results)
	return out
}

// Counts reports sent and failed totals recorded so far.
func (r *BroadcastRecord) Counts() (sent, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		if res.Status == DeliverySent {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

type broadcastRecordJSON struct {
	ID             string           `json:"id"`
	TemplateName   string           `json:"template_name"`
	RecipientCount int              `json:"recipient_count"`
	StartedAt      time.Time        `json:"started_at"`
	Sent           int              `json:"sent"`
	Failed         int              `json:"failed"`
	Results        []DeliveryResult `json:"results"`
}

// MarshalJSON serializes a consistent snapshot of the record, safe to
// call while deliveries are still appending. Counts are derived from
// the same snapshot as the results.
func (r *BroadcastRecord) MarshalJSON() ([]byte, error) {
	results := r.Results()
	sent, failed := 0, 0
	for _, res := range results {
		if res.Status == DeliverySent {
			sent++
		} else {
			failed++
		}
	}
	return json.Marshal(broadcastRecordJSON{
		ID:             r.ID,
		TemplateName:   r.TemplateName,
		RecipientCount: r.RecipientCount,
		StartedAt:      r.StartedAt,
		Sent:           sent,
		Failed:         failed,
		Results:        results,
	})
}

type BroadcastRequest struct {
	To           []string      `json:"to" binding:"required"`
	TemplateName string        `json:"template_name" binding:"required"`
	LanguageCode string        `json:"language_code"`
	Components   []interface{} `json:"components"`
}

type TemplateMessageRequest struct {
	To           string        `json:"to" binding:"required"`
	TemplateName string        `json:"template_name" binding:"required"`
	LanguageCode string        `json:"language_code"`
	Components   []interface{} `json:"components"`
}

type TextMessageRequest struct {
	To   string `json:"to" binding:"required"`
	Body string `json:"body" binding:"required"`
}

// BroadcastList wraps the registry listing, oldest first.
type BroadcastList struct {
	Items []*BroadcastRecord `json:"items"`
}
