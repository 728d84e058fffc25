package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/circuitbreaker"
	apperrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/tracing"
)

// Gateway is the outbound path to the Graph API. A call to Send performs
// at most one HTTP request; callers own any retry decision.
type Gateway interface {
	Send(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error)
}

type HTTPGateway struct {
	client      *http.Client
	baseURL     string
	apiVersion  string
	accessToken string
	logger      logger.Logger
	breaker     *circuitbreaker.Wrapper
}

type Option func(*HTTPGateway)

// WithHTTPClient overrides the default client, mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(g *HTTPGateway) {
		g.client = client
	}
}

// WithCircuitBreaker shields the provider behind a breaker. When the
// breaker is open Send fails fast without issuing a request.
func WithCircuitBreaker(w *circuitbreaker.Wrapper) Option {
	return func(g *HTTPGateway) {
		g.breaker = w
	}
}

func NewHTTPGateway(cfg config.ProviderConfig, log logger.Logger, opts ...Option) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultProviderTimeout
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = constants.DefaultGraphAPIVersion
	}

	g := &HTTPGateway{
		client:      &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion:  apiVersion,
		accessToken: cfg.AccessToken,
		logger:      log,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// graphErrorBody mirrors the error envelope the Graph API returns.
type graphErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpResult struct {
	status int
	body   []byte
}

func (g *HTTPGateway) Send(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error) {
	tracer := tracing.GetTracer("provider-gateway")
	ctx, span := tracer.Start(ctx, "provider.request")
	defer span.End()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, apperrors.ErrInternal.WithCause(err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := g.baseURL + "/" + g.apiVersion + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, apperrors.ErrInternal.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.accessToken)

	start := time.Now()
	res, err := g.roundTrip(ctx, req)
	duration := time.Since(start)

	if err != nil {
		if circuitbreaker.IsOpenError(err) {
			metrics.ObserveProviderRequest(method, "breaker_open", duration)
			g.logger.WarnwCtx(ctx, "Provider call rejected by open breaker",
				"method", method,
				"path", path,
			)
			return nil, apperrors.ErrServiceUnavailable.WithCause(err)
		}
		metrics.ObserveProviderRequest(method, "transport_error", duration)
		g.logger.ErrorwCtx(ctx, "Provider request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, apperrors.ErrGateway.WithMessage(err.Error()).WithCause(err)
	}

	metrics.ObserveProviderRequest(method, strconv.Itoa(res.status), duration)

	if res.status < constants.HTTPStatusOKMin || res.status >= constants.HTTPStatusOKMax {
		g.logger.ErrorwCtx(ctx, "Provider returned error response",
			"method", method,
			"path", path,
			"status", res.status,
			"body", string(res.body),
		)
		return nil, gatewayError(res)
	}

	return json.RawMessage(res.body), nil
}

// roundTrip issues the request, optionally under the circuit breaker.
// A returned *httpResult always wins over the error: provider-level
// failures are mapped by the caller from the response itself.
func (g *HTTPGateway) roundTrip(ctx context.Context, req *http.Request) (*httpResult, error) {
	if g.breaker == nil {
		return g.do(req)
	}

	out, err := g.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		res, doErr := g.do(req)
		if doErr != nil {
			return nil, doErr
		}
		// Only infrastructure failures trip the breaker. Client-level
		// provider rejections (4xx) are normal operation.
		if res.status >= http.StatusInternalServerError {
			return res, fmt.Errorf("provider returned status %d", res.status)
		}
		return res, nil
	})
	g.breaker.RecordRequest(err == nil)

	if res, ok := out.(*httpResult); ok {
		return res, nil
	}
	return nil, err
}

func (g *HTTPGateway) do(req *http.Request) (*httpResult, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	return &httpResult{status: resp.StatusCode, body: body}, nil
}

// gatewayError maps a non-2xx provider response to a typed error. The
// provider's own message is surfaced when the body parses as a Graph
// error envelope; otherwise the generic message stands.
func gatewayError(res *httpResult) *apperrors.Error {
	out := apperrors.ErrGateway
	var parsed graphErrorBody
	if err := json.Unmarshal(res.body, &parsed); err == nil && parsed.Error.Message != "" {
		out = out.WithMessage(parsed.Error.Message)
	}
	return out.WithDetail("status_code", res.status)
}
