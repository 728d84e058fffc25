package messaging

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

type BaseHandler struct {
	Service Service
	Logger  logger.Logger
}

func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.Logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)

	status := errors.ToHTTPStatus(err)
	response := errors.ToErrorResponse(err)

	c.JSON(status, response)
}

type Handler struct {
	BaseHandler
}

func NewHandler(service Service, log logger.Logger) *Handler {
	return &Handler{
		BaseHandler: BaseHandler{
			Service: service,
			Logger:  log,
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	messages := rg.Group("/messages")
	{
		messages.POST("/broadcast", h.Broadcast)
		messages.POST("/template", h.SendTemplateMessage)
		messages.POST("/text", h.SendTextMessage)
	}

	rg.GET("/broadcasts", h.ListBroadcasts)
}

// Broadcast godoc
// @Summary      Dispatch a template broadcast
// @Description  Send a template message to every recipient in order, recording a per-recipient outcome
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        broadcast  body      BroadcastRequest  true  "Broadcast data"
// @Success      200  {object}  BroadcastRecord
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      429  {object}  errors.ErrorResponse
// @Failure      500  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /messages/broadcast [post]
func (h *Handler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	record, err := h.Service.DispatchBroadcast(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListBroadcasts godoc
// @Summary      List all broadcasts
// @Description  Get every registered broadcast, oldest first, including runs still in flight
// @Tags         messages
// @Accept       json
// @Produce      json
// @Success      200  {object}  BroadcastList
// @Failure      401  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /broadcasts [get]
func (h *Handler) ListBroadcasts(c *gin.Context) {
	records := h.Service.ListBroadcasts(c.Request.Context())
	c.JSON(http.StatusOK, BroadcastList{Items: records})
}

// SendTemplateMessage godoc
// @Summary      Send a single template message
// @Description  Send one template message and relay the provider's raw response
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message  body      TemplateMessageRequest  true  "Template message data"
// @Success      200  {object}  object
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      502  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /messages/template [post]
func (h *Handler) SendTemplateMessage(c *gin.Context) {
	var req TemplateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	raw, err := h.Service.SendTemplateMessage(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// SendTextMessage godoc
// @Summary      Send a single text message
// @Description  Send one plain text message and relay the provider's raw response
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message  body      TextMessageRequest  true  "Text message data"
// @Success      200  {object}  object
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      401  {object}  errors.ErrorResponse
// @Failure      502  {object}  errors.ErrorResponse
// @Security     BearerAuth
// @Router       /messages/text [post]
func (h *Handler) SendTextMessage(c *gin.Context) {
	var req TextMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	raw, err := h.Service.SendTextMessage(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
