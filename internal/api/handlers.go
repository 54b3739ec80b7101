package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quorumkit/internal/metrics"
	"quorumkit/internal/models"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"service":     "Loan Backend",
		"version":     "1.0.0",
		"description": "REST API for the FiatLoanMatcher contract on Quorum",
		"contract":    s.node.Contract,
		"endpoints": map[string]string{
			"GET /":                      "This page - Service information",
			"GET /health":                "Health check endpoint",
			"GET /metrics":               "Prometheus metrics for monitoring",
			"GET /api/loans":             "List all loans",
			"GET /api/loans/{id}":        "Get loan details",
			"POST /api/loans":            "Request a loan (waits for inclusion)",
			"POST /api/loans/{id}/fund":  "Fund a loan (optional lenderAccount)",
			"POST /api/loans/{id}/repay": "Mark a loan as repaid",
			"GET /api/deployments":       "Journaled deployments (supports ?limit=, ?offset=)",
			"GET /api/submissions":       "Journaled transactions (supports ?limit=, ?offset=)",
		},
	}

	s.sendJSON(w, http.StatusOK, info)
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "loan-backend",
		Node:      s.node.Endpoint,
		Account:   s.node.Account,
		Journal:   "ok",
	}

	code := http.StatusOK
	if s.repository != nil {
		if err := s.repository.Ping(r.Context()); err != nil {
			slog.Warn("Journal unhealthy", "error", err)
			health.Status = "degraded"
			health.Journal = err.Error()
			code = http.StatusServiceUnavailable
		}
	} else {
		health.Journal = "disabled"
	}

	s.sendJSON(w, code, health)
}

// handleMetrics returns Prometheus metrics
// GET /metrics - Prometheus scraping endpoint
func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// =============================================================================
// LOAN ENDPOINTS
// =============================================================================

// handleListLoans lists loans 1..loanCounter
// GET /api/loans
func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := s.loans.ListLoans(r.Context())
	if err != nil {
		s.contractError(w, "Failed to fetch loans", err)
		return
	}
	s.sendJSON(w, http.StatusOK, models.LoanListResponse{Loans: loans})
}

// handleGetLoan returns one loan
// GET /api/loans/{id}
func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.loanID(w, r)
	if !ok {
		return
	}
	loan, err := s.loans.GetLoan(r.Context(), id)
	if err != nil {
		s.contractError(w, "Failed to fetch loan", err, "loan_id", id)
		return
	}
	s.sendJSON(w, http.StatusOK, loan)
}

// handleRequestLoan submits requestLoan and waits for the LoanRequested event
// POST /api/loans {currency, amount, interest, duration}
func (s *Server) handleRequestLoan(w http.ResponseWriter, r *http.Request) {
	var req models.LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Valid() {
		s.sendError(w, "Missing required fields", "", http.StatusBadRequest)
		return
	}

	sub, err := s.loans.RequestLoan(r.Context(), req)
	if err != nil {
		s.contractError(w, "Failed to request loan", err)
		return
	}

	slog.Info("Loan requested",
		"loan_id", sub.LoanID,
		"tx_hash", sub.Tx.Hash.Hex(),
		"currency", req.Currency,
		"amount", req.Amount,
	)
	s.sendJSON(w, http.StatusCreated, models.LoanCreatedResponse{
		Message:         "Loan requested successfully",
		LoanID:          sub.LoanID.String(),
		TransactionHash: sub.Tx.Hash.Hex(),
	})
}

// handleFundLoan submits fundLoan without waiting for inclusion
// POST /api/loans/{id}/fund {lenderAccount?}
func (s *Server) handleFundLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.loanID(w, r)
	if !ok {
		return
	}

	var req models.FundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.sendError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	var lender common.Address
	if req.LenderAccount != "" {
		if !common.IsHexAddress(req.LenderAccount) {
			s.sendError(w, "Invalid lenderAccount", req.LenderAccount, http.StatusBadRequest)
			return
		}
		lender = common.HexToAddress(req.LenderAccount)
	}

	tx, err := s.loans.FundLoan(r.Context(), id, lender)
	if err != nil {
		s.contractError(w, "Failed to fund loan", err, "loan_id", id)
		return
	}
	s.sendJSON(w, http.StatusOK, models.TransactionResponse{
		Message:         fmt.Sprintf("Loan %s funded successfully", id),
		TransactionHash: tx.Hash.Hex(),
	})
}

// handleRepayLoan submits markRepaid without waiting for inclusion
// POST /api/loans/{id}/repay
func (s *Server) handleRepayLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.loanID(w, r)
	if !ok {
		return
	}

	tx, err := s.loans.MarkRepaid(r.Context(), id)
	if err != nil {
		s.contractError(w, "Failed to mark loan as repaid", err, "loan_id", id)
		return
	}
	s.sendJSON(w, http.StatusOK, models.TransactionResponse{
		Message:         fmt.Sprintf("Loan %s marked as repaid", id),
		TransactionHash: tx.Hash.Hex(),
	})
}

// =============================================================================
// JOURNAL ENDPOINTS
// =============================================================================

// handleListDeployments lists journaled deployments
// GET /api/deployments?limit=50&offset=0
func (s *Server) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	if s.repository == nil {
		s.sendError(w, "Journal disabled", "", http.StatusNotFound)
		return
	}
	limit, offset := pagination(r)
	deployments, err := s.repository.ListDeployments(r.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list deployments", "error", err)
		metrics.ErrorsTotal.WithLabelValues("api").Inc()
		s.sendError(w, "Internal server error", "", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, models.DeploymentListResponse{
		Deployments: deployments,
		Page:        offset/limit + 1,
		PageSize:    limit,
	})
}

// handleListSubmissions lists journaled transactions
// GET /api/submissions?limit=50&offset=0
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.repository == nil {
		s.sendError(w, "Journal disabled", "", http.StatusNotFound)
		return
	}
	limit, offset := pagination(r)
	submissions, err := s.repository.ListSubmissions(r.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list submissions", "error", err)
		metrics.ErrorsTotal.WithLabelValues("api").Inc()
		s.sendError(w, "Internal server error", "", http.StatusInternalServerError)
		return
	}
	s.sendJSON(w, http.StatusOK, models.SubmissionListResponse{
		Submissions: submissions,
		Page:        offset/limit + 1,
		PageSize:    limit,
	})
}

// contractError logs a failed contract interaction and answers 500
func (s *Server) contractError(w http.ResponseWriter, message string, err error, attrs ...any) {
	slog.Error(message, append(attrs, "error", err)...)
	metrics.ErrorsTotal.WithLabelValues("api").Inc()
	s.sendError(w, message, err.Error(), http.StatusInternalServerError)
}

// pagination reads ?limit= (1..100, default 50) and ?offset= (default 0)
func pagination(r *http.Request) (int, int) {
	query := r.URL.Query()

	limit := 50
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// loanID parses the {id} path variable as a positive integer
func (s *Server) loanID(w http.ResponseWriter, r *http.Request) (*big.Int, bool) {
	raw := mux.Vars(r)["id"]
	id, ok := new(big.Int).SetString(raw, 10)
	if !ok || id.Sign() <= 0 {
		s.sendError(w, "Invalid loan id", raw, http.StatusBadRequest)
		return nil, false
	}
	return id, true
}
