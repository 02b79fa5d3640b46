package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newOverrideHandler() http.Handler {
	r := gin.New()
	echo := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method+" "+c.PostForm("name")) }
	r.POST("/things/:id", echo)
	r.PUT("/things/:id", echo)
	r.DELETE("/things/:id", echo)
	return MethodOverride(r)
}

func TestMethodOverride_Header(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/things/1", nil)
	req.Header.Set(MethodOverrideHeader, "delete")
	w := httptest.NewRecorder()
	newOverrideHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DELETE ", w.Body.String())
}

func TestMethodOverride_Query(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/things/1?_method=PUT", nil)
	w := httptest.NewRecorder()
	newOverrideHandler().ServeHTTP(w, req)
	assert.Equal(t, "PUT ", w.Body.String())
}

func TestMethodOverride_FormFieldKeepsBody(t *testing.T) {
	form := url.Values{"_method": {"PUT"}, "name": {"Hero"}}
	req := httptest.NewRequest(http.MethodPost, "/things/1", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	newOverrideHandler().ServeHTTP(w, req)
	assert.Equal(t, "PUT Hero", w.Body.String())
}

func TestMethodOverride_IgnoresUnsupported(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/things/1", nil)
	req.Header.Set(MethodOverrideHeader, "GET")
	w := httptest.NewRecorder()
	newOverrideHandler().ServeHTTP(w, req)
	assert.Equal(t, "POST ", w.Body.String())
}

func TestMethodOverride_OnlyFromPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/things/1", nil)
	req.Header.Set(MethodOverrideHeader, "DELETE")
	w := httptest.NewRecorder()
	newOverrideHandler().ServeHTTP(w, req)
	assert.Equal(t, "PUT ", w.Body.String())
}
