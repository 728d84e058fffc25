package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/logger"
	"github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/logging"
)

func setupAuthRouter(handlerCalls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(NewJWTVerifier(testSecret), logger.NopLogger()))
	router.GET("/probe", func(c *gin.Context) {
		if handlerCalls != nil {
			*handlerCalls++
		}
		subject, _ := Subject(c)
		c.JSON(http.StatusOK, gin.H{
			"subject":     subject,
			"ctx_subject": logging.GetSubject(c.Request.Context()),
		})
	})
	return router
}

func TestMiddlewareAllowsValidToken(t *testing.T) {
	router := setupAuthRouter(nil)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"sub": "tenant-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tenant-42", resp["subject"])
	assert.Equal(t, "tenant-42", resp["ctx_subject"])
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	calls := 0
	router := setupAuthRouter(&calls)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, calls)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp["error_code"])
	assert.Equal(t, "missing bearer token", resp["error"])
}

func TestMiddlewareRejectsNonBearerScheme(t *testing.T) {
	calls := 0
	router := setupAuthRouter(&calls)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, calls)
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	calls := 0
	router := setupAuthRouter(&calls)
	token := mintToken(t, "other-secret", jwt.MapClaims{
		"sub": "tenant-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, calls)
	assert.Contains(t, w.Body.String(), "invalid token")
}
