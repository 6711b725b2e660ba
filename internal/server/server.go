// Package server exposes the expense subsystem as a JSON API.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aroray/settleup/internal/auth"
	"github.com/aroray/settleup/internal/middleware"
	"github.com/aroray/settleup/internal/service"
)

// Server holds the handler dependencies.
type Server struct {
	expenses *service.ExpenseService
	devices  *auth.DeviceAuthenticator
	tokens   *auth.JWTManager
}

// New creates a Server.
func New(expenses *service.ExpenseService, devices *auth.DeviceAuthenticator, tokens *auth.JWTManager) *Server {
	return &Server{expenses: expenses, devices: devices, tokens: tokens}
}

// Routes builds the route table. Everything under /api except auth requires a
// valid session token.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(s.tokens, h)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.Handle("POST /api/split/finalize", authed(s.handleFinalizeSplit))

	mux.Handle("POST /api/expenses", authed(s.handleCreateExpense))
	mux.Handle("GET /api/expenses/{id}", authed(s.handleGetExpense))
	mux.Handle("PUT /api/expenses/{id}", authed(s.handleUpdateExpense))
	mux.Handle("DELETE /api/expenses/{id}", authed(s.handleDeleteExpense))
	mux.Handle("PATCH /api/expenses/{id}/participants/{memberID}", authed(s.handleSetPaymentStatus))

	mux.Handle("GET /api/groups/{id}/expenses", authed(s.handleListExpenses))
	mux.Handle("GET /api/groups/{id}/balance", authed(s.handleBalance))
	mux.Handle("GET /api/groups/{id}/transfers", authed(s.handleTransfers))

	return mux
}

// Handler wraps the routes with the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := s.Routes()
	return middleware.Logging(middleware.Metrics(mux, middleware.CORS(mux)))
}
