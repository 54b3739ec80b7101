package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a journaled transaction submission
type Submission struct {
	ID          uuid.UUID `json:"id"`
	TxHash      string    `json:"tx_hash"`
	From        string    `json:"from"`
	To          string    `json:"to,omitempty"` // empty for contract creations
	Method      string    `json:"method"`
	Path        string    `json:"path"` // primary, fallback or direct
	SubmittedAt time.Time `json:"submitted_at"`

	// Inclusion (set once the receipt is observed)
	IncludedAt  *time.Time `json:"included_at,omitempty"`
	BlockNumber *uint64    `json:"block_number,omitempty"`
	Status      *uint64    `json:"status,omitempty"`
	GasUsed     *uint64    `json:"gas_used,omitempty"`
}

// Included reports whether a receipt has been observed
func (s *Submission) Included() bool {
	return s.IncludedAt != nil
}

// Deployment is a journaled, verified contract deployment
type Deployment struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	TxHash      string    `json:"tx_hash"`
	Deployer    string    `json:"deployer"`
	BlockNumber uint64    `json:"block_number"`
	GasUsed     uint64    `json:"gas_used"`
	DeployedAt  time.Time `json:"deployed_at"`
}
