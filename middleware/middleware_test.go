package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hobbyist/config"
	"hobbyist/utils"

	"github.com/gin-gonic/gin"
)

func newTestEngine(t *testing.T, trusted []string, mw ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if err := r.SetTrustedProxies(trusted); err != nil {
		t.Fatalf("SetTrustedProxies: %v", err)
	}
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(utils.UserIDKey), "ip": clientIP(c)})
	})
	return r
}

func get(r *gin.Engine, remote string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	r := newTestEngine(t, nil, RateLimitMiddleware(2))

	for i, spoof := range []string{"10.0.0.1", "10.0.0.2"} {
		if w := get(r, "192.0.2.7:5000", map[string]string{"X-Forwarded-For": spoof}); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
	if w := get(r, "192.0.2.7:5000", map[string]string{"X-Forwarded-For": "10.0.0.3"}); w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 for a rotated forwarding header", w.Code)
	}
	if w := get(r, "192.0.2.8:5000", nil); w.Code != http.StatusOK {
		t.Errorf("other client: status = %d", w.Code)
	}
}

func TestClientIP_TrustedProxy(t *testing.T) {
	r := newTestEngine(t, []string{"192.0.2.0/24"})
	w := get(r, "192.0.2.1:443", map[string]string{"X-Forwarded-For": "203.0.113.9"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ip":"203.0.113.9"`) {
		t.Errorf("body = %s", w.Body)
	}
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	config.AppConfig.JWTSecret = "middleware-secret"
	r := newTestEngine(t, nil, JWTAuthUserMiddleware())

	token, err := utils.GenerateToken("user-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	w := get(r, "192.0.2.1:1", map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"user":"user-42"`) {
		t.Errorf("valid token: status=%d body=%s", w.Code, w.Body)
	}

	for name, header := range map[string]string{
		"missing":   "",
		"no bearer": token,
		"garbage":   "Bearer not-a-token",
	} {
		h := map[string]string{}
		if header != "" {
			h["Authorization"] = header
		}
		if w := get(r, "192.0.2.1:1", h); w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}
}
