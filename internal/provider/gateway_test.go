package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/circuitbreaker"
	apperrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

func newTestGateway(t *testing.T, baseURL string, opts ...Option) *HTTPGateway {
	t.Helper()
	cfg := config.ProviderConfig{
		BaseURL:     baseURL,
		APIVersion:  "v17.0",
		AccessToken: "test-token",
		Timeout:     2 * time.Second,
	}
	return NewHTTPGateway(cfg, logger.NopLogger(), opts...)
}

func TestSendForwardsRequestAndReturnsRawResponse(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	}))
	defer srv.Close()

	gw := newTestGateway(t, srv.URL)

	payload := map[string]interface{}{"product": "whatsapp", "to": "15551234567"}
	raw, err := gw.Send(context.Background(), http.MethodPost, "/12345/messages", payload)

	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[{"id":"wamid.ABC"}]}`, string(raw))
	assert.Equal(t, "/v17.0/12345/messages", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"product":"whatsapp","to":"15551234567"}`, string(gotBody))
}

func TestSendTrimsTrailingSlashFromBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	gw := newTestGateway(t, srv.URL+"/")

	_, err := gw.Send(context.Background(), http.MethodGet, "/12345/messages", nil)

	require.NoError(t, err)
	assert.Equal(t, "/v17.0/12345/messages", gotPath)
}

func TestSendMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "graph error message surfaced",
			status:      http.StatusBadRequest,
			body:        `{"error":{"message":"(#131030) Recipient phone number not in allowed list"}}`,
			wantMessage: "(#131030) Recipient phone number not in allowed list",
		},
		{
			name:        "non-json body falls back to generic message",
			status:      http.StatusInternalServerError,
			body:        "upstream exploded",
			wantMessage: "Graph API error",
		},
		{
			name:        "json without message falls back to generic message",
			status:      http.StatusForbidden,
			body:        `{"error":{"code":10}}`,
			wantMessage: "Graph API error",
		},
		{
			name:        "empty body falls back to generic message",
			status:      http.StatusBadGateway,
			body:        "",
			wantMessage: "Graph API error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			gw := newTestGateway(t, srv.URL)

			raw, err := gw.Send(context.Background(), http.MethodPost, "/12345/messages", map[string]string{"to": "1"})

			require.Error(t, err)
			assert.Nil(t, raw)
			assert.True(t, apperrors.IsGateway(err))
			assert.Equal(t, tt.wantMessage, apperrors.MessageOf(err))

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.status, appErr.Details["status_code"])
		})
	}
}

func TestSendTransportErrorSurfacesUnderlyingMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	gw := newTestGateway(t, srv.URL)

	raw, err := gw.Send(context.Background(), http.MethodPost, "/12345/messages", nil)

	require.Error(t, err)
	assert.Nil(t, raw)
	assert.True(t, apperrors.IsGateway(err))
	assert.NotEqual(t, "Graph API error", apperrors.MessageOf(err))
}

func TestSendMakesExactlyOneRequest(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gw := newTestGateway(t, srv.URL)

	_, err := gw.Send(context.Background(), http.MethodPost, "/12345/messages", map[string]string{"to": "1"})

	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestSendNilPayloadOmitsRequestBody(t *testing.T) {
	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotLen = len(b)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	gw := newTestGateway(t, srv.URL)

	raw, err := gw.Send(context.Background(), http.MethodGet, "/999/message_templates", nil)

	require.NoError(t, err)
	assert.Zero(t, gotLen)
	assert.JSONEq(t, `{"data":[]}`, string(raw))
}

func TestSendOpenCircuitFailsFastWithoutRequest(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cbCfg := circuitbreaker.FromConfig("provider-test-open", config.CircuitBreakerConfig{
		MinRequests:  1,
		FailureRatio: 0.1,
		Timeout:      time.Minute,
	})
	gw := newTestGateway(t, srv.URL, WithCircuitBreaker(circuitbreaker.NewWrapper(cbCfg)))

	_, err := gw.Send(context.Background(), http.MethodPost, "/12345/messages", nil)
	require.Error(t, err)
	require.Equal(t, int64(1), calls.Load())

	_, err = gw.Send(context.Background(), http.MethodPost, "/12345/messages", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err), "fail-fast must map to service unavailable, got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.ToHTTPStatus(err))
	assert.Equal(t, int64(1), calls.Load(), "open breaker must not reach the provider")
}

func TestSendClosedCircuitPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.XYZ"}]}`))
	}))
	defer srv.Close()

	cbCfg := circuitbreaker.DefaultConfig("provider-test-closed")
	gw := newTestGateway(t, srv.URL, WithCircuitBreaker(circuitbreaker.NewWrapper(cbCfg)))

	raw, err := gw.Send(context.Background(), http.MethodPost, "/12345/messages", map[string]string{"to": "1"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[{"id":"wamid.XYZ"}]}`, string(raw))
}
