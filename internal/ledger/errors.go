package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrConfirmationTimeout is matched by every *TimeoutError
	ErrConfirmationTimeout = errors.New("confirmation timeout")

	// ErrDeploymentVerificationFailed is matched by every *VerificationError
	ErrDeploymentVerificationFailed = errors.New("deployment verification failed")
)

// TimeoutError is returned when no receipt appeared within the attempt budget
type TimeoutError struct {
	Hash     common.Hash
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s was not included after %d attempts", e.Hash.Hex(), e.Attempts)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrConfirmationTimeout }

// VerificationError is returned when a confirmed deployment does not hold a contract
type VerificationError struct {
	Address string
	Reason  string
}

func (e *VerificationError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("deployment verification failed: %s", e.Reason)
	}
	return fmt.Sprintf("deployment verification failed for %s: %s", e.Address, e.Reason)
}

func (e *VerificationError) Is(target error) bool { return target == ErrDeploymentVerificationFailed }
