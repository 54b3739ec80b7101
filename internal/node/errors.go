package node

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrConnectionFailure is matched by every *ConnectionError
	ErrConnectionFailure = errors.New("connection failure")

	// ErrNoIdentitiesAvailable is returned when the node manages no accounts
	ErrNoIdentitiesAvailable = errors.New("no accounts found on the node")

	// ErrUnknownIdentity is returned when the requested default account is not managed by the node
	ErrUnknownIdentity = errors.New("account is not managed by the node")

	// ErrUnlockFailure is matched by every *UnlockError
	ErrUnlockFailure = errors.New("unlock failure")
)

// ConnectionError is returned when the RPC endpoint cannot be reached or is not listening.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnectionFailure }

// UnlockError is returned when personal_unlockAccount fails or returns false.
// Callers treat it as a warning: the account may already be unlocked.
type UnlockError struct {
	Account common.Address
	Err     error
}

func (e *UnlockError) Error() string {
	return fmt.Sprintf("could not unlock account %s: %v", e.Account.Hex(), e.Err)
}

func (e *UnlockError) Unwrap() error { return e.Err }

func (e *UnlockError) Is(target error) bool { return target == ErrUnlockFailure }
