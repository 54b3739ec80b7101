package node

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

// mockBackend is a mock implementation of Backend for testing
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Listening(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockBackend) NetworkID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if id := args.Get(0); id != nil {
		return id.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if id := args.Get(0); id != nil {
		return id.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) BlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBackend) Accounts(ctx context.Context) ([]common.Address, error) {
	args := m.Called(ctx)
	if accounts := args.Get(0); accounts != nil {
		return accounts.([]common.Address), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	args := m.Called(ctx, account)
	if balance := args.Get(0); balance != nil {
		return balance.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) UnlockAccount(ctx context.Context, account common.Address, password string, duration time.Duration) (bool, error) {
	args := m.Called(ctx, account, password, duration)
	return args.Bool(0), args.Error(1)
}

func (m *mockBackend) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	args := m.Called(ctx, account)
	if code := args.Get(0); code != nil {
		return code.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) CallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	args := m.Called(ctx, call)
	if out := args.Get(0); out != nil {
		return out.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, call)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockBackend) SendTransaction(ctx context.Context, tx TxArgs) (common.Hash, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, hash)
	if receipt := args.Get(0); receipt != nil {
		return receipt.(*types.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) Close() {
	m.Called()
}
