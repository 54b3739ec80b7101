package nodetest

import (
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// StringStore emulates contracts that keep one string: every read-only
// method of the ABI returns it and every state-changing method with a single
// string input replaces it. It stands in for HelloWorld and the version probe.
type StringStore struct {
	mu      sync.Mutex
	binding *abi.ABI
	value   string
}

// NewStringStore creates a store holding initial
func NewStringStore(binding *abi.ABI, initial string) *StringStore {
	return &StringStore{binding: binding, value: initial}
}

func (s *StringStore) Call(from common.Address, input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, ErrReverted
	}
	method, err := s.binding.MethodById(input[:4])
	if err != nil || !method.IsConstant() {
		return nil, ErrReverted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return method.Outputs.Pack(s.value)
}

func (s *StringStore) Transact(from common.Address, input []byte) ([]*types.Log, error) {
	if len(input) < 4 {
		return nil, ErrReverted
	}
	method, err := s.binding.MethodById(input[:4])
	if err != nil || method.IsConstant() || len(method.Inputs) != 1 {
		return nil, ErrReverted
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, ErrReverted
	}
	value, ok := args[0].(string)
	if !ok {
		return nil, ErrReverted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	return nil, nil
}
