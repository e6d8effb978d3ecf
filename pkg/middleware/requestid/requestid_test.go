package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var ginID, ctxID string
	r.GET("/", func(c *gin.Context) {
		ginID = Value(c)
		ctxID = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, ginID)
	assert.Equal(t, ginID, ctxID)
	assert.Equal(t, ginID, w.Header().Get(headerKey))
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerKey, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(headerKey))
}
