package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serve(h gin.HandlerFunc, req *http.Request, probe func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(h)
	r.GET("/", func(c *gin.Context) {
		probe(c)
		c.Status(http.StatusNoContent)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDKeepsValidInbound(t *testing.T) {
	in := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, in)

	var got string
	rec := serve(RequestIDMiddleware(), req, func(c *gin.Context) { got = c.GetString(CtxRequestID) })
	assert.Equal(t, in, got)
	assert.Equal(t, in, rec.Header().Get(HeaderRequestID))
}

func TestRequestIDReplacesGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")

	var got string
	rec := serve(RequestIDMiddleware(), req, func(c *gin.Context) { got = c.GetString(CtxRequestID) })
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
	assert.Equal(t, got, rec.Header().Get(HeaderRequestID))
}

func TestRealIPPriority(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"bad headers fall back", map[string]string{"CF-Connecting-IP": "nope", "X-Forwarded-For": "nope"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.1:4321"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			var got string
			serve(RealIP(), req, func(c *gin.Context) { got = ClientIP(c) })
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP("198.51.100.0/24", "not-a-cidr")
	for ip, want := range map[string]bool{"10.1.2.3": true, "127.0.0.1": true, "198.51.100.9": true, "203.0.113.7": false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("CF-Connecting-IP", ip)
		var got bool
		serve(RealIP(), req, func(c *gin.Context) { got = allow(c) })
		assert.Equal(t, want, got, ip)
	}
}

func TestRateLimitWithoutRedisIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	called := false
	rec := serve(RateLimit(nil, 1, 0, KeyByIP(), nil), req, func(c *gin.Context) { called = true })
	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
