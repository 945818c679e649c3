package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GenerateAndEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	// 上游没带 → 生成，并回写响应头
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get(KeyRequestID)
	require.NotEmpty(t, rid)
	require.Equal(t, rid, w.Body.String())

	// 上游带了 → 原样透传
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	r.ServeHTTP(w, req)
	require.Equal(t, "abc-123", w.Header().Get(KeyRequestID))
	require.Equal(t, "abc-123", w.Body.String())
}
