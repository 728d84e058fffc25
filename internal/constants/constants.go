package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultProviderTimeout = 30 * time.Second
	DefaultGraphAPIVersion = "v17.0"
	DefaultLanguageCode    = "en"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	DefaultEventsTopic = "messaging_events"
)

const (
	RateLimitKeyPrefix = "ratelimit:"
)

const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

const (
	ContextKeySubject   = "auth_subject"
	ContextKeyRequestID = "request_id"
)
