package templates

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

type Handler struct {
	service Service
	logger  logger.Logger
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	tpl := rg.Group("/templates")
	{
		tpl.GET("", h.List)
		tpl.POST("", h.Create)
		tpl.DELETE("/:name", h.Delete)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// List godoc
// @Summary      List message templates
// @Description  Relay the provider's template list for the configured business account
// @Tags         templates
// @Accept       json
// @Produce      json
// @Success      200  {object}  object
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      502  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /templates [get]
func (h *Handler) List(c *gin.Context) {
	raw, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// Create godoc
// @Summary      Create a message template
// @Description  Forward a template definition to the provider for review
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        template  body      object  true  "Template definition"
// @Success      200  {object}  object
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      502  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /templates [post]
func (h *Handler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	raw, err := h.service.CreateTemplate(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// Delete godoc
// @Summary      Delete a message template
// @Description  Delete a template by name through the provider
// @Tags         templates
// @Accept       json
// @Produce      json
// @Param        name  path      string  true  "Template name"
// @Success      200  {object}  object
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      502  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /templates/{name} [delete]
func (h *Handler) Delete(c *gin.Context) {
	raw, err := h.service.DeleteTemplate(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
