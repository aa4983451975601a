package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/activity-points-api/pkg/errors"
	"github.com/noah-isme/activity-points-api/pkg/middleware/requestid"
)

func TestErrorEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware())
	r.GET("/certificates/:id", func(c *gin.Context) { Error(c, appErrors.ErrAlreadyProcessed) })

	req := httptest.NewRequest(http.MethodGet, "/certificates/c1", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"requestId":"req-123"`)
	assert.Contains(t, w.Body.String(), appErrors.ErrAlreadyProcessed.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Accepted(c, gin.H{"id": "job-1"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `"data":{"id":"job-1"}`)
	assert.NotContains(t, w.Body.String(), "meta")
}
