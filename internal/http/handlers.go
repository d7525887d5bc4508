package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady verifies the dataset backend answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	} else {
		checks["backend"] = "in_memory"
	}

	if s.importer != nil {
		checks["sheets_import"] = s.importer.Name()
	} else {
		checks["sheets_import"] = "not_configured"
	}

	cacheStats := s.charts.CacheStats()
	checks["chart_cache"] = map[string]any{
		"entries": cacheStats.Size,
		"status":  "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes application and security metrics in the Prometheus
// text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	cacheStats := s.charts.CacheStats()

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_request_duration_average_microseconds", "gauge", "Average request duration", traceMetrics.AverageResponseTime)
	metric("datasets_stored_total", "counter", "Datasets stored by upload or import", s.datasets.Uploads())
	metric("datasets_rejected_total", "counter", "Uploads and imports rejected while decoding", s.datasets.Rejected())
	metric("chart_computations_total", "counter", "Aggregations computed on cache miss", s.charts.Computations())
	metric("cache_hits_total", "counter", "Chart cache hits", cacheStats.Hits)
	metric("cache_misses_total", "counter", "Chart cache misses", cacheStats.Misses)
	metric("cache_evictions_total", "counter", "Chart cache evictions", cacheStats.Evictions)
	metric("cache_entries", "gauge", "Current chart cache entries", cacheStats.Size)
	metric("view_generation", "gauge", "Recompute triggers seen by the displayed view", s.view.Generation())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("invalid_forwarded_ip_total", "counter", "Forwarding headers with an unparseable address", securityMetrics.InvalidIPAttempts)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.startedAt).Seconds()))
}
