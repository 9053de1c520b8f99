package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.GET("/open", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/policy", CORSPolicy(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestCORS_PreflightAnyPath(t *testing.T) {
	r := newEngine()

	for _, path := range []string{"/open", "/no/such/path", "/"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, path, nil))

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
		assert.Equal(t, AllowOrigin, w.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, AllowMethods, w.Header().Get("Access-Control-Allow-Methods"), path)
		assert.Equal(t, AllowHeaders, w.Header().Get("Access-Control-Allow-Headers"), path)
	}
}

func TestCORS_OriginOnlyWithoutPolicy(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSPolicy(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/policy", nil))

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, AllowMethods, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, AllowHeaders, w.Header().Get("Access-Control-Allow-Headers"))
}
