// Package http serves the derived expense views to the rendering layer
// and proxies mutations to the remote store.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/cache"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
	"expensetracker/internal/store/memory"
	"expensetracker/internal/view"
)

// ChangePublisher announces successful mutations so other processes can
// refresh. Optional; a nil publisher disables events.
type ChangePublisher interface {
	PublishChange(ctx context.Context, op, recordID string) error
}

type Server struct {
	http.Server

	snapshot *memory.Store
	mutator  store.RecordMutator
	events   ChangePublisher
	onChange func()

	pageSize int

	dailyCache *cache.LRUCache[view.DailyView]
	monthCache *cache.LRUCache[view.MonthView]
	cacheMgr   *cache.Manager

	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// Options collects the optional collaborators of NewServer.
type Options struct {
	// Events is notified after each successful mutation; may be nil.
	Events ChangePublisher
	// OnChange is invoked after each successful mutation to schedule a
	// snapshot refresh; may be nil.
	OnChange func()
	// CacheTTL bounds how stale a cached view may get. The caches are
	// cleared on every change, so the TTL only matters for externally
	// caused staleness (another client mutating the store).
	CacheTTL time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run
// server for the given snapshot and mutator.
func NewServer(addr string, snapshot *memory.Store, mutator store.RecordMutator, pageSize int, opts Options) *Server {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		snapshot:    snapshot,
		mutator:     mutator,
		events:      opts.Events,
		onChange:    opts.OnChange,
		pageSize:    pageSize,
		dailyCache:  cache.NewLRUCache[view.DailyView](200, opts.CacheTTL),
		monthCache:  cache.NewLRUCache[view.MonthView](100, opts.CacheTTL),
		cacheMgr:    cache.NewManager(),
		rateLimiter: newRateLimiter(),
	}

	s.cacheMgr.Register(s.dailyCache)
	s.cacheMgr.Register(s.monthCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/view/daily", s.withMiddleware(s.handleDailyView))
	mux.HandleFunc("/api/view/month", s.withMiddleware(s.handleMonthView))
	mux.HandleFunc("/api/expenses", s.withMiddleware(s.handleExpenses))
	mux.HandleFunc("/api/expenses/", s.withMiddleware(s.handleExpenseByID))

	return s
}

// InvalidateViews drops every cached view. Called by the refresh worker
// after each snapshot swap and by the mutation handlers.
func (s *Server) InvalidateViews() {
	s.dailyCache.Clear()
	s.monthCache.Clear()
}

// Shutdown stops the middleware goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting on mutations, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := clientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the snapshot has been populated at
// least once, so load balancers don't route to a server that would only
// serve empty views.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.snapshot.FetchedAt().IsZero() {
		http.Error(w, "snapshot not yet fetched", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
