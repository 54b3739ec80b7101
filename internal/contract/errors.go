package contract

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvocationFailure is matched by every *InvocationError
	ErrInvocationFailure = errors.New("invocation failure")

	// ErrNoBinding is the primary-path failure when the contract has no ABI binding
	ErrNoBinding = errors.New("contract has no ABI binding")

	// ErrMethodNotBound is the primary-path failure when the binding lacks the method
	ErrMethodNotBound = errors.New("method is not part of the ABI binding")

	// ErrUnknownMethod is returned when the contract has no descriptor for the method
	ErrUnknownMethod = errors.New("unknown method")

	// ErrNoSender is returned when a transaction has no From account
	ErrNoSender = errors.New("transaction has no sender")
)

// InvocationError is returned when both invocation paths failed.
// Primary holds the primary-path failure, Err the fallback failure.
type InvocationError struct {
	Contract common.Address
	Method   string
	Primary  error
	Err      error
}

func (e *InvocationError) Error() string {
	if e.Primary == nil {
		return fmt.Sprintf("invocation of %s on %s failed: %v", e.Method, e.Contract.Hex(), e.Err)
	}
	return fmt.Sprintf("invocation of %s on %s failed: %v (primary path: %v)", e.Method, e.Contract.Hex(), e.Err, e.Primary)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Is(target error) bool { return target == ErrInvocationFailure }
