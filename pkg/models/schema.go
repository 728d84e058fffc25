package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateEventEnvelope(env *EventEnvelope) error {
	if env == nil {
		return &ValidationError{
			Field:   "envelope",
			Message: "event envelope cannot be nil",
		}
	}

	if env.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "event ID is required",
		}
	}

	if env.Source == "" {
		return &ValidationError{
			Field:   "source",
			Message: "event source is required",
		}
	}

	if env.EventType == "" {
		return &ValidationError{
			Field:   "event_type",
			Message: "event type is required",
		}
	}

	if env.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "event timestamp is required",
		}
	}

	return nil
}
