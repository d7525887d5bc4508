package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finviz/internal/cache"
	"finviz/internal/log"
	"finviz/internal/middleware/ratelimit"
	"finviz/internal/middleware/security"
	"finviz/internal/middleware/trace"
	"finviz/internal/services"
)

// Options configures the HTTP surface.
type Options struct {
	Addr               string
	MaxUploadBytes     int64
	RateLimitPerMinute int
	CORSOrigin         string
	// CacheCleanupInterval is how often expired chart results are swept.
	CacheCleanupInterval time.Duration
}

// HealthChecker is implemented by backends that can report readiness.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the handlers. Importer and Health may be nil.
type Deps struct {
	Datasets *services.DatasetService
	Charts   *services.ChartService
	View     *services.View
	Importer services.RecordSource
	Health   HealthChecker
	Caches   []cache.Cleaner
}

type Server struct {
	http.Server
	datasets *services.DatasetService
	charts   *services.ChartService
	view     *services.View
	importer services.RecordSource
	health   HealthChecker

	maxUploadBytes int64

	logger           *log.Logger
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	cacheManager     *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, deps Deps, logger *log.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.CacheCleanupInterval <= 0 {
		opts.CacheCleanupInterval = 10 * time.Minute
	}

	logger = logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector(logger)

	s := &Server{
		datasets:         deps.Datasets,
		charts:           deps.Charts,
		view:             deps.View,
		importer:         deps.Importer,
		health:           deps.Health,
		maxUploadBytes:   opts.MaxUploadBytes,
		logger:           logger,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		cacheManager:     cache.NewManager(logger.WithComponent(log.ComponentCache)),
		startedAt:        time.Now(),
	}

	for _, c := range deps.Caches {
		s.cacheManager.Register(c)
	}
	s.cacheManager.StartCleanup(opts.CacheCleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/import/sheets", s.handleImportSheets)
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/charts", s.handleCharts)
	mux.HandleFunc("GET /api/charts/{kind}", s.handleChart)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("PUT /api/view/filter", s.handleSetViewFilter)

	headers := security.DefaultHeadersConfig()
	headers.AllowedOrigin = opts.CORSOrigin

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	}

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, onLimit, http.MethodPost, http.MethodPut)(handler)
	handler = security.NewHeadersMiddleware(headers).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
