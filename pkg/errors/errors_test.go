package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsStayImmutable(t *testing.T) {
	derived := ErrGateway.
		WithMessage("(#131026) Message undeliverable").
		WithDetail("status_code", 400).
		WithCause(errors.New("boom"))

	assert.Equal(t, "(#131026) Message undeliverable", derived.Message)
	assert.Equal(t, 400, derived.Details["status_code"])

	assert.Equal(t, "Graph API error", ErrGateway.Message)
	assert.Empty(t, ErrGateway.Details)
	assert.Nil(t, ErrGateway.Cause)
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := ErrValidation.WithCause(errors.New("to is required"))
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.Contains(t, err.Error(), "to is required")
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("dispatch: %w", ErrGateway.WithCause(cause))

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrGateway.Code, appErr.Code)
	assert.True(t, errors.Is(err, cause))
}

func TestTaxonomyPredicates(t *testing.T) {
	assert.True(t, IsValidation(ErrValidation.WithMessage("bad")))
	assert.True(t, IsUnauthorized(ErrUnauthorized))
	assert.True(t, IsGateway(ErrGateway.WithMessage("x")))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsUnavailable(ErrServiceUnavailable))

	assert.False(t, IsValidation(ErrGateway))
	assert.False(t, IsUnavailable(ErrGateway))
	assert.False(t, IsGateway(errors.New("plain")))
}

func TestRetryClassification(t *testing.T) {
	assert.False(t, ErrValidation.IsRetryable())
	assert.False(t, ErrUnauthorized.IsRetryable())
	assert.False(t, ErrForbidden.IsRetryable())
	assert.True(t, ErrGateway.IsRetryable())
	assert.True(t, ErrServiceUnavailable.IsRetryable())
	assert.True(t, ErrValidation.IsFatal())
	assert.False(t, ErrGateway.IsFatal())

	assert.False(t, ErrGateway.AsFatal().IsRetryable())
	assert.True(t, ErrValidation.AsRetryable().IsRetryable())
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "validation failed", MessageOf(ErrValidation))
	assert.Equal(t, "custom", MessageOf(ErrGateway.WithMessage("custom")))
	assert.Equal(t, "plain failure", MessageOf(errors.New("plain failure")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ToHTTPStatus(ErrValidation))
	assert.Equal(t, http.StatusUnauthorized, ToHTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusForbidden, ToHTTPStatus(ErrForbidden))
	assert.Equal(t, http.StatusBadGateway, ToHTTPStatus(ErrGateway))
	assert.Equal(t, http.StatusServiceUnavailable, ToHTTPStatus(ErrServiceUnavailable))
	assert.Equal(t, http.StatusTooManyRequests, ToHTTPStatus(ErrRateLimited))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrValidation.WithMessage("recipient list must not be empty"))
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
	assert.Equal(t, "recipient list must not be empty", resp.Error)
	assert.Nil(t, resp.Details)

	resp = ToErrorResponse(ErrGateway.WithDetail("status_code", 503))
	assert.Equal(t, "GATEWAY_ERROR", resp.ErrorCode)
	assert.Equal(t, 503, resp.Details["status_code"])

	resp = ToErrorResponse(errors.New("plain failure"))
	assert.Equal(t, "INTERNAL_ERROR", resp.ErrorCode)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal))
	wrapped := Wrap(errors.New("boom"), ErrInternal)
	require.NotNil(t, wrapped)
	assert.Equal(t, "INTERNAL_ERROR", wrapped.Code)
}

func TestRecoverPanic(t *testing.T) {
	assert.NoError(t, RecoverPanic(nil))

	err := RecoverPanic("something broke")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	assert.True(t, appErr.IsFatal())
	assert.Contains(t, appErr.Details, "stack_trace")

	err = RecoverPanic(errors.New("typed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typed")
}
