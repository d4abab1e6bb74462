package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Charan170903/expense-tracker/internal/middleware/ratelimit"
	"github.com/Charan170903/expense-tracker/internal/middleware/security"
	"github.com/Charan170903/expense-tracker/internal/middleware/trace"
	"github.com/Charan170903/expense-tracker/internal/services"
	"github.com/Charan170903/expense-tracker/internal/source"
)

// Server exposes the insight read model and the subscription decision
// endpoint as a JSON API.
type Server struct {
	http.Server

	insightSvc *services.InsightService
	ledgerSvc  *services.LedgerService
	reader     source.TransactionReader

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware
	securityHeaders *security.HeadersMiddleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, insightSvc *services.InsightService, ledgerSvc *services.LedgerService, reader source.TransactionReader) *Server {
	mux := http.NewServeMux()

	s := &Server{
		insightSvc:      insightSvc,
		ledgerSvc:       ledgerSvc,
		reader:          reader,
		rateLimiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		traceMiddleware: trace.NewMiddleware(extractClientIP),
		securityHeaders: security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		startedAt:       time.Now(),
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/api/transactions/", s.handleTransactionAction)

	// Middleware chain: trace outermost so every request is logged, then
	// security headers, then the rate limiter guarding the handlers.
	rateLimited := s.rateLimiter.Middleware(extractClientIP, nil)
	handler := s.traceMiddleware.Middleware(
		s.securityHeaders.Middleware(
			rateLimited(mux)))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// Shutdown stops the middleware goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// extractClientIP resolves the client address, honoring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			return strings.TrimSpace(ip[:idx])
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
