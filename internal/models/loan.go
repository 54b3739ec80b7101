package models

// LoanStatus mirrors the FiatLoanMatcher.LoanStatus enum
type LoanStatus uint8

const (
	LoanRequested LoanStatus = iota
	LoanFunded
	LoanRepaid
)

// String returns the status name
func (s LoanStatus) String() string {
	switch s {
	case LoanRequested:
		return "Requested"
	case LoanFunded:
		return "Funded"
	case LoanRepaid:
		return "Repaid"
	default:
		return "Unknown"
	}
}

// Loan is a loan as stored by the FiatLoanMatcher contract. Amounts are
// decimal strings so that uint256 values survive JSON.
type Loan struct {
	ID        string `json:"id"`
	Borrower  string `json:"borrower"`
	Lender    string `json:"lender"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Interest  string `json:"interest"`
	Duration  string `json:"duration"`
	CreatedAt string `json:"createdAt"`
	Status    string `json:"status"`
}

// LoanRequest is the body of POST /api/loans
type LoanRequest struct {
	Currency string `json:"currency"`
	Amount   uint64 `json:"amount"`
	Interest uint64 `json:"interest"`
	Duration uint64 `json:"duration"`
}

// Valid reports whether every field is set and non-zero
func (r LoanRequest) Valid() bool {
	return r.Currency != "" && r.Amount != 0 && r.Interest != 0 && r.Duration != 0
}

// FundRequest is the optional body of POST /api/loans/{id}/fund
type FundRequest struct {
	LenderAccount string `json:"lenderAccount,omitempty"`
}

// LoanCreatedResponse is returned by POST /api/loans
type LoanCreatedResponse struct {
	Message         string `json:"message"`
	LoanID          string `json:"loanId"`
	TransactionHash string `json:"transactionHash"`
}

// TransactionResponse is returned by the fund and repay endpoints
type TransactionResponse struct {
	Message         string `json:"message"`
	TransactionHash string `json:"transactionHash"`
}
