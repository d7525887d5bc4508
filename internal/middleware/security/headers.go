package security

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	CSP string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string

	// CORS. An empty AllowedOrigin disables the CORS headers.
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultHeadersConfig returns defaults for a JSON API consumed by a
// browser chart client hosted on another origin.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                   "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		CrossOriginResource: "cross-origin",

		AllowedOrigin:  "*",
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         600,
	}
}

// HeadersMiddleware applies security and CORS headers to responses
type HeadersMiddleware struct {
	config HeadersConfig
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

// Middleware sets the headers and answers CORS preflight requests itself.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.applyHeaders(w, r)
		cors := h.applyCORS(w, r)

		if cors && r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *HeadersMiddleware) applyHeaders(w http.ResponseWriter, r *http.Request) {
	headers := w.Header()

	headers.Set("X-Content-Type-Options", h.config.XContentTypeOptions)
	headers.Set("X-Frame-Options", h.config.XFrameOptions)
	if h.config.CSP != "" {
		headers.Set("Content-Security-Policy", h.config.CSP)
	}
	headers.Set("Referrer-Policy", h.config.ReferrerPolicy)
	headers.Set("Cross-Origin-Resource-Policy", h.config.CrossOriginResource)

	// HSTS only makes sense over TLS
	if r.TLS != nil && h.config.HSTSMaxAge > 0 {
		hstsValue := fmt.Sprintf("max-age=%d", h.config.HSTSMaxAge)
		if h.config.HSTSIncludeSubdomains {
			hstsValue += "; includeSubDomains"
		}
		headers.Set("Strict-Transport-Security", hstsValue)
	}
}

// applyCORS reports whether CORS headers were written.
func (h *HeadersMiddleware) applyCORS(w http.ResponseWriter, r *http.Request) bool {
	allowed := h.config.AllowedOrigin
	origin := r.Header.Get("Origin")
	if allowed == "" || origin == "" {
		return false
	}

	headers := w.Header()
	switch {
	case allowed == "*":
		headers.Set("Access-Control-Allow-Origin", "*")
	case strings.EqualFold(allowed, origin):
		headers.Set("Access-Control-Allow-Origin", origin)
		headers.Add("Vary", "Origin")
	default:
		return false
	}

	headers.Set("Access-Control-Allow-Methods", strings.Join(h.config.AllowedMethods, ", "))
	headers.Set("Access-Control-Allow-Headers", strings.Join(h.config.AllowedHeaders, ", "))
	headers.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
	if h.config.MaxAge > 0 {
		headers.Set("Access-Control-Max-Age", strconv.Itoa(h.config.MaxAge))
	}
	return true
}
