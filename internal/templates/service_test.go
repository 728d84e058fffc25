package templates

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	pkgerrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

type stubCall struct {
	Method  string
	Path    string
	Payload interface{}
}

type stubGateway struct {
	calls []stubCall
	send  func(call stubCall) (json.RawMessage, error)
}

func (g *stubGateway) Send(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error) {
	call := stubCall{Method: method, Path: path, Payload: payload}
	g.calls = append(g.calls, call)
	if g.send != nil {
		return g.send(call)
	}
	return json.RawMessage(`{"success":true}`), nil
}

func newTestService(gw *stubGateway) Service {
	cfg := config.ProviderConfig{BusinessAccountID: "biz-9000"}
	return NewService(gw, cfg, logger.NopLogger())
}

func TestListTemplatesForwardsToBusinessAccountPath(t *testing.T) {
	gw := &stubGateway{
		send: func(call stubCall) (json.RawMessage, error) {
			return json.RawMessage(`{"data":[{"name":"welcome","status":"APPROVED"}]}`), nil
		},
	}
	svc := newTestService(gw)

	raw, err := svc.ListTemplates(context.Background())

	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, http.MethodGet, gw.calls[0].Method)
	assert.Equal(t, "/biz-9000/message_templates", gw.calls[0].Path)
	assert.Nil(t, gw.calls[0].Payload)
	assert.JSONEq(t, `{"data":[{"name":"welcome","status":"APPROVED"}]}`, string(raw))
}

func TestCreateTemplateForwardsBodyVerbatim(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)

	body := json.RawMessage(`{"name":"order_update","category":"UTILITY","language":"en","components":[{"type":"BODY","text":"Your order {{1}} shipped."}]}`)

	_, err := svc.CreateTemplate(context.Background(), body)

	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, http.MethodPost, gw.calls[0].Method)
	assert.Equal(t, "/biz-9000/message_templates", gw.calls[0].Path)

	forwarded, ok := gw.calls[0].Payload.(json.RawMessage)
	require.True(t, ok)
	assert.Equal(t, body, forwarded)
}

func TestCreateTemplateRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body json.RawMessage
	}{
		{name: "empty body", body: nil},
		{name: "invalid json", body: json.RawMessage(`{"name":`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{}
			svc := newTestService(gw)

			_, err := svc.CreateTemplate(context.Background(), tt.body)

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Empty(t, gw.calls)
		})
	}
}

func TestDeleteTemplateBuildsQuery(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)

	_, err := svc.DeleteTemplate(context.Background(), "order_update")

	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, http.MethodDelete, gw.calls[0].Method)
	assert.Equal(t, "/biz-9000/message_templates?name=order_update", gw.calls[0].Path)
	assert.Nil(t, gw.calls[0].Payload)
}

func TestDeleteTemplateEscapesName(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)

	_, err := svc.DeleteTemplate(context.Background(), "summer sale & promo")

	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "/biz-9000/message_templates?name=summer+sale+%26+promo", gw.calls[0].Path)
}

func TestDeleteTemplateRequiresName(t *testing.T) {
	gw := &stubGateway{}
	svc := newTestService(gw)

	_, err := svc.DeleteTemplate(context.Background(), "   ")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, gw.calls)
}

func TestTemplateGatewayErrorsPropagate(t *testing.T) {
	gw := &stubGateway{
		send: func(call stubCall) (json.RawMessage, error) {
			return nil, pkgerrors.ErrGateway.WithMessage("(#100) Invalid parameter")
		},
	}
	svc := newTestService(gw)

	_, err := svc.ListTemplates(context.Background())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsGateway(err))
	assert.Equal(t, "(#100) Invalid parameter", pkgerrors.MessageOf(err))
}
