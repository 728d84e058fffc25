package templates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/config"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/provider"
	pkgerrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

// Service relays template administration calls to the provider. Templates
// live on the provider side; nothing is stored locally.
type Service interface {
	ListTemplates(ctx context.Context) (json.RawMessage, error)
	CreateTemplate(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	DeleteTemplate(ctx context.Context, name string) (json.RawMessage, error)
}

type service struct {
	gateway           provider.Gateway
	businessAccountID string
	logger            logger.Logger
}

func NewService(gateway provider.Gateway, cfg config.ProviderConfig, log logger.Logger) Service {
	return &service{
		gateway:           gateway,
		businessAccountID: cfg.BusinessAccountID,
		logger:            log,
	}
}

func (s *service) ListTemplates(ctx context.Context) (json.RawMessage, error) {
	return s.gateway.Send(ctx, http.MethodGet, s.templatesPath(), nil)
}

// CreateTemplate forwards the template definition verbatim. The provider
// owns the schema, so the body is only checked for being well-formed JSON.
func (s *service) CreateTemplate(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	if len(body) == 0 {
		return nil, pkgerrors.ErrValidation.WithMessage("request body must not be empty")
	}
	if !json.Valid(body) {
		return nil, pkgerrors.ErrValidation.WithMessage("request body must be valid JSON")
	}

	raw, err := s.gateway.Send(ctx, http.MethodPost, s.templatesPath(), body)
	if err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Template submitted")
	return raw, nil
}

func (s *service) DeleteTemplate(ctx context.Context, name string) (json.RawMessage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, pkgerrors.ErrValidation.WithMessage("template name is required")
	}

	path := s.templatesPath() + "?name=" + url.QueryEscape(name)
	raw, err := s.gateway.Send(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}

	s.logger.InfowCtx(ctx, "Template deleted", "name", name)
	return raw, nil
}

func (s *service) templatesPath() string {
	return "/" + s.businessAccountID + "/message_templates"
}
