// Package http serves the JSON API. Requests authenticate with a bearer
// token; the resolved owner travels through the request context and
// scopes every storage call.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"dompet/internal/auth"
	"dompet/internal/middleware/ratelimit"
	"dompet/internal/middleware/trace"
	"dompet/internal/services"
	"dompet/internal/store"
)

type Server struct {
	http.Server

	store         *store.Store
	contributions *services.ContributionService
	dashboard     *services.DashboardService
	registry      *auth.Registry

	rateLimiter  *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, st *store.Store, contributions *services.ContributionService, dashboard *services.DashboardService, registry *auth.Registry) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:         st,
		contributions: contributions,
		dashboard:     dashboard,
		registry:      registry,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:        trace.NewMiddleware(extractClientIP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	api := func(h http.HandlerFunc) http.Handler { return s.protect(h) }

	mux.Handle("GET /api/dashboard", api(s.handleDashboard))

	mux.Handle("GET /api/transactions", api(s.handleListTransactions))
	mux.Handle("POST /api/transactions", api(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/{id}", api(s.handleGetTransaction))
	mux.Handle("PATCH /api/transactions/{id}", api(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", api(s.handleDeleteTransaction))

	mux.Handle("GET /api/goals", api(s.handleListGoals))
	mux.Handle("POST /api/goals", api(s.handleCreateGoal))
	mux.Handle("GET /api/goals/{id}", api(s.handleGetGoal))
	mux.Handle("PATCH /api/goals/{id}", api(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", api(s.handleDeleteGoal))
	mux.Handle("POST /api/goals/{id}/contribute", api(s.handleContributeToGoal))

	mux.Handle("GET /api/wishlist", api(s.handleListWishlist))
	mux.Handle("POST /api/wishlist", api(s.handleCreateWishlistItem))
	mux.Handle("GET /api/wishlist/{id}", api(s.handleGetWishlistItem))
	mux.Handle("PATCH /api/wishlist/{id}", api(s.handleUpdateWishlistItem))
	mux.Handle("DELETE /api/wishlist/{id}", api(s.handleDeleteWishlistItem))
	mux.Handle("POST /api/wishlist/{id}/contribute", api(s.handleContributeToWishlistItem))

	return s
}

// protect chains tracing, rate limiting and bearer auth around a handler.
func (s *Server) protect(h http.HandlerFunc) http.Handler {
	limited := s.rateLimiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: errorDetail{
			Code:    "rate_limited",
			Message: "too many requests",
		}})
	})
	return s.tracer.Middleware(limited(s.authenticate(h)))
}

func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		ownerID, err := s.registry.Resolve(token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r.WithContext(auth.WithOwner(r.Context(), ownerID)))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown gracefully shuts down the server and its cleanup routines.
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
