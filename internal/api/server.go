package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"quorumkit/internal/contract"
	"quorumkit/internal/models"
	"quorumkit/internal/services"
	"quorumkit/internal/storage"
)

// LoanService is the contract surface the loan endpoints need.
// *services.FiatLoan implements it.
type LoanService interface {
	ListLoans(ctx context.Context) ([]models.Loan, error)
	GetLoan(ctx context.Context, id *big.Int) (*models.Loan, error)
	RequestLoan(ctx context.Context, req models.LoanRequest) (*services.LoanSubmission, error)
	FundLoan(ctx context.Context, id *big.Int, lender common.Address) (*contract.PendingTransaction, error)
	MarkRepaid(ctx context.Context, id *big.Int) (*contract.PendingTransaction, error)
}

// NodeInfo describes the node connection for /health and /
type NodeInfo struct {
	Endpoint string
	Account  string
	Contract string
}

// Server represents the HTTP API server
// Provides the loan endpoints, journal listings, Prometheus metrics and health checks
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	loans      LoanService
	repository storage.Repository
	node       NodeInfo
	port       int
}

// NewServer creates a new API server instance
// The repository backs the journal endpoints and the health check
func NewServer(port int, loans LoanService, repository storage.Repository, node NodeInfo) *Server {
	router := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:     router,
		loans:      loans,
		repository: repository,
		node:       node,
		port:       port,
	}

	// Register all HTTP routes
	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	s.router.Use(requestIDMiddleware, metricsMiddleware)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, "Endpoint not found", "", http.StatusNotFound)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.sendError(w, "Method not allowed", "", http.StatusMethodNotAllowed)
	})

	// Core endpoints
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	// Loan endpoints
	s.router.HandleFunc("/api/loans", s.handleListLoans).Methods(http.MethodGet)
	s.router.HandleFunc("/api/loans", s.handleRequestLoan).Methods(http.MethodPost)
	s.router.HandleFunc("/api/loans/{id}", s.handleGetLoan).Methods(http.MethodGet)
	s.router.HandleFunc("/api/loans/{id}/fund", s.handleFundLoan).Methods(http.MethodPost)
	s.router.HandleFunc("/api/loans/{id}/repay", s.handleRepayLoan).Methods(http.MethodPost)

	// Journal endpoints
	s.router.HandleFunc("/api/deployments", s.handleListDeployments).Methods(http.MethodGet)
	s.router.HandleFunc("/api/submissions", s.handleListSubmissions).Methods(http.MethodGet)
}

// Handler returns the routed handler (for tests and custom listeners)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server in a goroutine
// Returns immediately after starting the server
func (s *Server) Start() error {
	go func() {
		slog.Info("API server starting",
			"port", s.port,
			"endpoints", []string{"/", "/health", "/metrics", "/api/loans"},
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
		}
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	return nil
}

// Shutdown gracefully shuts down the HTTP server
// Waits for active connections to close or context to timeout
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}

// sendJSON writes v with the given status code
func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// sendError sends a JSON error response
func (s *Server) sendError(w http.ResponseWriter, message, detail string, code int) {
	s.sendJSON(w, code, models.ErrorResponse{
		Error:   message,
		Message: detail,
		Code:    code,
	})
}
