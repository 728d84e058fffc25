package config

import (
	"fmt"
	"strings"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateProvider(cfg.Provider); err != nil {
		errors = append(errors, err)
	}

	if err := validateAuth(cfg.Auth); err != nil {
		errors = append(errors, err)
	}

	if err := validateRateLimit(cfg.RateLimit, cfg.Redis); err != nil {
		errors = append(errors, err)
	}

	if err := validateEvents(cfg.Events); err != nil {
		errors = append(errors, err)
	}

	if err := validateTracing(cfg.Tracing); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout < 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be non-negative",
		}
	}

	if cfg.WriteTimeout < 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be non-negative",
		}
	}

	return nil
}

func validateProvider(cfg ProviderConfig) error {
	if cfg.BaseURL == "" {
		return &ValidationError{
			Field:   "provider.base_url",
			Message: "provider base URL is required",
		}
	}

	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return &ValidationError{
			Field:   "provider.base_url",
			Message: "provider base URL must start with http:// or https://",
		}
	}

	if cfg.AccessToken == "" {
		return &ValidationError{
			Field:   "provider.access_token",
			Message: "provider access token is required",
		}
	}

	if cfg.PhoneNumberID == "" {
		return &ValidationError{
			Field:   "provider.phone_number_id",
			Message: "provider phone number id is required",
		}
	}

	if cfg.BusinessAccountID == "" {
		return &ValidationError{
			Field:   "provider.business_account_id",
			Message: "provider business account id is required",
		}
	}

	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   "provider.timeout",
			Message: "provider timeout must be non-negative",
		}
	}

	return nil
}

func validateAuth(cfg AuthConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.JWTSecret == "" {
		return &ValidationError{
			Field:   "auth.jwt_secret",
			Message: "JWT secret is required when auth is enabled",
		}
	}

	if len(cfg.JWTSecret) < 16 {
		return &ValidationError{
			Field:   "auth.jwt_secret",
			Message: "JWT secret must be at least 16 characters",
		}
	}

	return nil
}

func validateRateLimit(cfg RateLimitConfig, redis RedisConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.RPS <= 0 {
		return &ValidationError{
			Field:   "rate_limit.rps",
			Message: "rps must be positive when rate limiting is enabled",
		}
	}

	if cfg.Burst < 1 {
		return &ValidationError{
			Field:   "rate_limit.burst",
			Message: "burst must be at least 1",
		}
	}

	switch cfg.Store {
	case "", constants.RateLimitStoreMemory:
	case constants.RateLimitStoreRedis:
		if err := validateRedis(redis); err != nil {
			return err
		}
	default:
		return &ValidationError{
			Field:   "rate_limit.store",
			Message: fmt.Sprintf("unknown rate limit store: %s (supported: memory, redis)", cfg.Store),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateEvents(cfg EventsConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if len(cfg.Brokers) == 0 {
		return &ValidationError{
			Field:   "events.brokers",
			Message: "at least one Kafka broker is required when events are enabled",
		}
	}

	for i, broker := range cfg.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("events.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Topic == "" {
		return &ValidationError{
			Field:   "events.topic",
			Message: "events topic is required when events are enabled",
		}
	}

	if cfg.Retry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "events.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.Retry.InitialInterval < 0 {
		return &ValidationError{
			Field:   "events.retry.initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.Retry.MaxInterval > 0 && cfg.Retry.InitialInterval > 0 && cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return &ValidationError{
			Field:   "events.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	return nil
}

func validateTracing(cfg TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.OTLP.Endpoint == "" {
		return &ValidationError{
			Field:   "tracing.otlp.endpoint",
			Message: "OTLP endpoint is required when tracing is enabled",
		}
	}

	return nil
}
