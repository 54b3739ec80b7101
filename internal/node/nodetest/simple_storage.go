package nodetest

import (
	"bytes"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	storeSelector    = crypto.Keccak256([]byte("store(uint256)"))[:4]
	retrieveSelector = crypto.Keccak256([]byte("retrieve()"))[:4]
)

// SimpleStorage emulates the SimpleStorage contract: store(uint256) and retrieve()
type SimpleStorage struct {
	mu    sync.Mutex
	value *big.Int
}

// NewSimpleStorage returns a SimpleStorage holding zero
func NewSimpleStorage() *SimpleStorage {
	return &SimpleStorage{value: new(big.Int)}
}

// Value returns the stored number
func (s *SimpleStorage) Value() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.value)
}

func (s *SimpleStorage) Call(from common.Address, input []byte) ([]byte, error) {
	if len(input) < 4 || !bytes.Equal(input[:4], retrieveSelector) {
		return nil, ErrReverted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.LeftPadBytes(s.value.Bytes(), 32), nil
}

func (s *SimpleStorage) Transact(from common.Address, input []byte) ([]*types.Log, error) {
	if len(input) != 4+32 || !bytes.Equal(input[:4], storeSelector) {
		return nil, ErrReverted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = new(big.Int).SetBytes(input[4:])
	return nil, nil
}
