// Package web provides the HTTP server and handlers for the data analysis API.
package web

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/samhitalabs/sync/internal/auth"
	"github.com/samhitalabs/sync/internal/config"
	"github.com/samhitalabs/sync/internal/core"
	appmw "github.com/samhitalabs/sync/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the data analysis application.
type Server struct {
	service *core.Service
	users   *auth.Store
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, users *auth.Store, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		users:   users,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Login is the only endpoint reachable without a session.
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(appmw.SessionAuth([]byte(s.cfg.Security.SessionSecret)))

			r.Post("/logout", s.handleLogout)

			// Uploads get their own, stricter rate limit.
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					uploadLimiter := newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
					r.Use(uploadLimiter.middleware)
				}
				r.Post("/upload", s.handleUpload)
			})

			// Dataset inspection
			r.Get("/columns", s.handleColumns)
			r.Get("/overview", s.handleOverview)
			r.Get("/summary", s.handleSummary)
			r.Get("/quality", s.handleQuality)
			r.Get("/insights", s.handleInsights)
			r.Get("/history", s.handleHistory)

			// Hypothesis tests
			r.Post("/tests/normality", s.handleNormality)
			r.Post("/tests/ttest", s.handleTTest)
			r.Post("/tests/chisquare", s.handleChiSquare)
			r.Post("/tests/correlation", s.handleCorrelation)

			// Plot data
			r.Get("/plot/histogram", s.handleHistogram)
			r.Get("/plot/box", s.handleBoxPlot)
			r.Get("/plot/counts", s.handleValueCounts)
			r.Get("/plot/scatter", s.handleScatter)
			r.Get("/plot/timeseries", s.handleTimeSeries)

			// Feature engineering
			r.Post("/features/transform", s.handleTransform)
			r.Post("/features/encode", s.handleEncode)
			r.Post("/features/datetime", s.handleDatetime)
			r.Post("/features/bin", s.handleBin)
			r.Post("/features/drop", s.handleDrop)
			r.Post("/features/reset", s.handleReset)

			// Export
			r.Get("/export/csv", s.handleExportCSV)
			r.Get("/export/report", s.handleExportReport)
			if s.cfg.Upload.AllowSnapshots {
				r.Get("/export/snapshot", s.handleExportSnapshot)
			}
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
// RemoteAddr has already been normalized by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","code":"RATE001"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
