package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/address-extractor/app/controllers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func middlewareRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setupMiddleware(router)
	router.GET("/ping", handler)
	return router
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var ctxID string
	var hasDeadline bool
	router := middlewareRouter(func(c *gin.Context) {
		ctxID = c.GetString(controllers.RequestIDKey)
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, ctxID)
	assert.Equal(t, ctxID, w.Header().Get("X-Request-ID"))
	assert.True(t, hasDeadline)
}

func TestMiddlewareKeepsCallerRequestID(t *testing.T) {
	router := middlewareRouter(func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "caller-id-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "caller-id-1", w.Header().Get("X-Request-ID"))
}
