package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served (count)",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"method", "path"},
	)

	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcasts_total",
			Help: "Total number of broadcasts dispatched (count)",
		},
		[]string{"status"},
	)

	BroadcastRecipientsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_recipients_total",
			Help: "Total number of recipients attempted across all broadcasts (count)",
		},
	)

	BroadcastDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "broadcast_duration_ms",
			Help:    "End-to-end broadcast dispatch duration in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"status"},
	)

	DeliveryOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_outcomes_total",
			Help: "Total number of per-recipient delivery outcomes (count)",
		},
		[]string{"outcome"},
	)

	LedgerSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_ledger_size",
			Help: "Number of broadcast records held in the in-memory ledger (count)",
		},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of outbound Graph API requests (count)",
		},
		[]string{"method", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_ms",
			Help:    "Duration of outbound Graph API requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"method"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of lifecycle events published to Kafka (count)",
		},
		[]string{"event_type", "status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"component"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"service", "topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "topic"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)
)

func RegisterHTTPMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(RateLimitRequestsTotal)
}

func RegisterMessagingMetrics() {
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(BroadcastRecipientsTotal)
	prometheus.MustRegister(BroadcastDuration)
	prometheus.MustRegister(DeliveryOutcomesTotal)
	prometheus.MustRegister(LedgerSize)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
}

func RegisterEventMetrics() {
	prometheus.MustRegister(EventsPublishedTotal)
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaWriteDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(float64(duration.Milliseconds()))
}

func ObserveBroadcast(status string, recipients int, duration time.Duration) {
	BroadcastsTotal.WithLabelValues(status).Inc()
	BroadcastRecipientsTotal.Add(float64(recipients))
	BroadcastDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncDeliveryOutcome(outcome string) {
	DeliveryOutcomesTotal.WithLabelValues(outcome).Inc()
}

func SetLedgerSize(size int) {
	LedgerSize.Set(float64(size))
}

func ObserveProviderRequest(method, status string, duration time.Duration) {
	ProviderRequestsTotal.WithLabelValues(method, status).Inc()
	ProviderRequestDuration.WithLabelValues(method).Observe(float64(duration.Milliseconds()))
}

func IncEventPublished(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

func IncRetryAttempt(component string) {
	RetryAttemptsTotal.WithLabelValues(component).Inc()
}

func IncKafkaMessagesWritten(service, topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(service, topic).Inc()
}

func ObserveKafkaWriteDuration(service, topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(service, topic).Observe(float64(duration.Milliseconds()))
}

func IncRateLimitRequest(status string) {
	RateLimitRequestsTotal.WithLabelValues(status).Inc()
}
