package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	apperrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/metrics"
)

// Middleware checks each request's client IP against the store. Store errors
// fail open: a broken Redis must not take the API down with it.
func Middleware(store Store, cfg Config, log logger.Logger) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	limitHeader := strconv.Itoa(int(cfg.RPS))

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = c.RemoteIP()
		}

		decision, err := store.Allow(c.Request.Context(), clientIP)
		if err != nil {
			metrics.IncRateLimitRequest("error")
			log.WarnwCtx(c.Request.Context(), "Rate limit store error, allowing request",
				"error", err,
				"client_ip", clientIP,
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", limitHeader)

		if !decision.Allowed {
			metrics.IncRateLimitRequest("limited")
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.ToErrorResponse(apperrors.ErrRateLimited))
			return
		}

		metrics.IncRateLimitRequest("allowed")
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		c.Next()
	}
}
