// Package web provides the HTTP server and handlers for the data table UI.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/datagrid/internal/config"
	"github.com/JonMunkholm/datagrid/internal/core"
	"github.com/JonMunkholm/datagrid/internal/metrics"
	mw "github.com/JonMunkholm/datagrid/internal/web/middleware"
	"github.com/JonMunkholm/datagrid/internal/web/templates"
)

// Server is the HTTP server for the data table UI.
type Server struct {
	cfg      *config.Config
	metrics  *metrics.Metrics
	sessions *SessionStore
	exports  *core.ExportLimiter
	limiter  *rateLimiter

	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance. m also tracks the session count.
func NewServer(cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:      cfg,
		metrics:  m,
		sessions: NewSessionStore(cfg.Session, m),
		exports:  core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Get("/", s.handleIndex)

		r.Route("/tables/{tableID}", func(r chi.Router) {
			r.Use(s.tableSession)

			// Rendering
			r.Get("/", s.handleTablePage)
			r.Get("/grid", s.handleGrid)
			r.Get("/window", s.handleWindow)

			// Filtering and sorting
			r.Post("/global", s.handleGlobalFilter)
			r.Post("/filter/{col}", s.handleColumnFilter)
			r.Post("/filter/{col}/clear", s.handleClearColumnFilter)
			r.Post("/filters/clear", s.handleClearFilters)
			r.Post("/sort/{col}", s.handleSort)
			r.Post("/page", s.handlePage)

			// Column layout
			r.Post("/visibility/{col}", s.handleVisibility)
			r.Post("/pin/{col}", s.handlePin)
			r.Post("/move", s.handleMove)
			r.Post("/order", s.handleColumnOrder)

			// Selection
			r.Post("/select/{rowID}", s.handleSelectRow)
			r.Post("/select-page", s.handleSelectPage)
			r.Post("/selection/clear", s.handleClearSelection)
			r.Post("/selection-mode", s.handleSelectionMode)

			// Row actions
			r.Post("/click/{rowID}", s.handleRowClick)
			r.Get("/menu/{rowID}", s.handleMenu)
			r.Post("/action/{rowID}/{name}", s.handleAction)
			r.Post("/delete", s.handleRequestDelete)
			r.Post("/delete/{token}", s.handleConfirmDelete)
			r.Delete("/delete/{token}", s.handleCancelDelete)

			// Forms
			r.Get("/form/add", s.handleAddForm)
			r.Get("/form/edit/{rowID}", s.handleEditForm)
			r.Post("/rows", s.handleSubmitAdd)
			r.Post("/rows/{rowID}", s.handleSubmitEdit)

			// Export
			r.Get("/export", s.handleExport)
			r.Post("/export/columns/{col}", s.handleExportColumn)
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

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown waits for running exports, then gracefully stops the server and
// drops every session.
func (s *Server) Shutdown(ctx context.Context) error {
	if status := s.exports.Status(); status.Active > 0 {
		slog.Info("waiting for exports to complete", "active", status.Active)
		if err := s.exports.WaitForDrain(ctx); err != nil {
			slog.Warn("exports did not complete in time", "error", err)
		}
	}

	defer s.sessions.Close()
	if s.limiter != nil {
		defer s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// tableSession resolves the client's session and the requested table.
// Reads start a session when there is none; state changes need a live one.
func (s *Server) tableSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		create := r.Method == http.MethodGet || r.Method == http.MethodHead
		sess, err := s.sessions.Session(w, r, create)
		if err != nil {
			fail(w, r, err)
			return
		}
		ts, err := sess.table(r.Context(), chi.URLParam(r, "tableID"), r.UserAgent())
		if err != nil {
			fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withTableState(r.Context(), ts)))
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Content Security Policy: inline handlers drive drag and drop,
			// htmx is loaded from its CDN
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline' 'unsafe-eval' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
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
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if rl.now().Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: now,
		}
		return true
	}

	// Reset tokens if window has passed
	if now.Sub(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = now
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
// RemoteAddr is already the client address after TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Tables   int                      `json:"tables"`
	Sessions int                      `json:"sessions"`
	Exports  core.ExportLimiterStatus `json:"exports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Status:   "ok",
		Tables:   core.TableCount(),
		Sessions: s.sessions.Len(),
		Exports:  s.exports.Status(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var groups []templates.TableGroup
	for _, g := range core.Groups() {
		group := templates.TableGroup{Name: g}
		for _, def := range core.ByGroup(g) {
			group.Tables = append(group.Tables, def.Info)
		}
		groups = append(groups, group)
	}
	render(w, r, templates.Index(groups))
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
