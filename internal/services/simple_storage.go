package services

import (
	"context"
	"math/big"

	"quorumkit/internal/contract"
)

// SimpleStorage wraps a SimpleStorage contract: store(uint256) and retrieve()
type SimpleStorage struct {
	base
}

// NewSimpleStorage wraps a deployed SimpleStorage contract
func NewSimpleStorage(client Client, c *contract.DeployedContract) *SimpleStorage {
	return &SimpleStorage{base{client: client, contract: c}}
}

// Store submits store(value) from the client's sender
func (s *SimpleStorage) Store(ctx context.Context, value *big.Int) (*contract.PendingTransaction, error) {
	return s.send(ctx, s.client.Sender, "store", value)
}

// Retrieve reads the stored value
func (s *SimpleStorage) Retrieve(ctx context.Context) (*big.Int, error) {
	values, err := s.call(ctx, "retrieve")
	if err != nil {
		return nil, err
	}
	v, err := single(values, "retrieve")
	if err != nil {
		return nil, err
	}
	return asBigInt(v)
}
