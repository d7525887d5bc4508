package security

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"finviz/internal/log"

	"github.com/stretchr/testify/assert"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(testLogger())

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct", "203.0.113.5:4000", nil, "203.0.113.5"},
		{"untrusted peer ignores xff", "203.0.113.5:4000", map[string]string{"X-Forwarded-For": "1.1.1.1"}, "203.0.113.5"},
		{"trusted proxy xff", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2"}, "198.51.100.7"},
		{"trusted proxy real ip", "127.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
		{"trusted proxy bad xff", "192.168.1.1:80", map[string]string{"X-Forwarded-For": "garbage"}, "192.168.1.1"},
		{"no port", "198.51.100.9", nil, "198.51.100.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/data", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Fatalf("ExtractClientIP = %q, want %q", got, tt.want)
			}
		})
	}
	assert.Equal(t, int64(1), d.GetMetrics().InvalidIPAttempts)
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector(testLogger())

	clean := httptest.NewRequest(http.MethodGet, "/api/charts?range=month&category=Food", nil)
	assert.False(t, d.DetectSuspiciousRequest(clean))

	probe := httptest.NewRequest(http.MethodGet, "/wp-admin/setup.php", nil)
	assert.True(t, d.DetectSuspiciousRequest(probe))

	scanner := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	scanner.Header.Set("User-Agent", "sqlmap/1.7")
	assert.True(t, d.DetectSuspiciousRequest(scanner))

	assert.Equal(t, int64(2), d.GetMetrics().SuspiciousRequests)
}

func TestHeadersAndCORS(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestPreflight(t *testing.T) {
	cfg := DefaultHeadersConfig()
	cfg.AllowedOrigin = "https://charts.example.com"
	called := false
	h := NewHeadersMiddleware(cfg).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	r.Header.Set("Origin", "https://charts.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://charts.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	other := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	other.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
