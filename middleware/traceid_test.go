package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceOf(t *testing.T, header string) (body, echoed string) {
	t.Helper()
	r := gin.New()
	r.Use(TraceID())
	r.GET("/trace", func(c *gin.Context) {
		// both views of the ID must agree
		require.Equal(t, GetTraceID(c), TraceIDFrom(c.Request.Context()))
		c.String(http.StatusOK, GetTraceID(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/trace", nil)
	if header != "" {
		req.Header.Set(TraceIDHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String(), w.Header().Get(TraceIDHeader)
}

func TestTraceID(t *testing.T) {
	const valid = "0b7e1f64-3b9c-4b8e-9a3e-6f1d2c4a5b60"

	id, echoed := traceOf(t, "")
	assert.Len(t, id, 36)
	assert.Equal(t, id, echoed)

	id, echoed = traceOf(t, valid)
	assert.Equal(t, valid, id)
	assert.Equal(t, valid, echoed)

	id, _ = traceOf(t, "my-custom-trace\nforged")
	assert.Len(t, id, 36)
	assert.NotContains(t, id, "forged")

	a, _ := traceOf(t, "")
	b, _ := traceOf(t, "")
	assert.NotEqual(t, a, b)
}

func TestTraceIDFrom(t *testing.T) {
	assert.Equal(t, "", TraceIDFrom(context.Background()))
	assert.Equal(t, "abc", TraceIDFrom(WithTraceID(context.Background(), "abc")))

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetTraceID(c))
}
