package models

import "time"

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Node      string    `json:"node"`
	Account   string    `json:"account"`
	Journal   string    `json:"journal"`
}

// LoanListResponse is returned by GET /api/loans
type LoanListResponse struct {
	Loans []Loan `json:"loans"`
}

// DeploymentListResponse is returned by GET /api/deployments
type DeploymentListResponse struct {
	Deployments []*Deployment `json:"deployments"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
}

// SubmissionListResponse is returned by GET /api/submissions
type SubmissionListResponse struct {
	Submissions []*Submission `json:"submissions"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
}
