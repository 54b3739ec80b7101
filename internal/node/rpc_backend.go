package node

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// RPCBackend implements Backend using go-ethereum's rpc and ethclient packages.
type RPCBackend struct {
	endpoint Endpoint
	rpc      *rpc.Client
	eth      *ethclient.Client
}

// Ensure RPCBackend implements Backend.
var _ Backend = (*RPCBackend)(nil)

// Dial opens an RPC channel to the endpoint. Over HTTP no request is made
// until the first call, so reachability is established by the session's
// liveness probe.
func Dial(ctx context.Context, endpoint Endpoint) (*RPCBackend, error) {
	client, err := rpc.DialContext(ctx, endpoint.URL())
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint.URL(), Err: err}
	}
	return NewRPCBackend(client, endpoint), nil
}

// NewRPCBackend wraps an existing rpc client
func NewRPCBackend(client *rpc.Client, endpoint Endpoint) *RPCBackend {
	return &RPCBackend{
		endpoint: endpoint,
		rpc:      client,
		eth:      ethclient.NewClient(client),
	}
}

// Listening reports the node's net_listening flag
func (b *RPCBackend) Listening(ctx context.Context) (bool, error) {
	var listening bool
	if err := b.rpc.CallContext(ctx, &listening, "net_listening"); err != nil {
		return false, fmt.Errorf("net_listening: %w", err)
	}
	return listening, nil
}

// NetworkID returns the net_version network identifier
func (b *RPCBackend) NetworkID(ctx context.Context) (*big.Int, error) {
	id, err := b.eth.NetworkID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network ID: %w", err)
	}
	return id, nil
}

// ChainID returns the EIP-155 chain identifier
func (b *RPCBackend) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := b.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return id, nil
}

// BlockNumber returns the latest block height
func (b *RPCBackend) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := b.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get block number: %w", err)
	}
	return n, nil
}

// Accounts lists the accounts managed by the node
func (b *RPCBackend) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := b.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

// BalanceAt returns the latest balance of an account in wei
func (b *RPCBackend) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := b.eth.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// UnlockAccount calls personal_unlockAccount. A zero duration keeps the
// account unlocked until the node restarts.
func (b *RPCBackend) UnlockAccount(ctx context.Context, account common.Address, password string, duration time.Duration) (bool, error) {
	var unlocked bool
	seconds := uint64(duration / time.Second)
	if err := b.rpc.CallContext(ctx, &unlocked, "personal_unlockAccount", account, password, seconds); err != nil {
		return false, fmt.Errorf("personal_unlockAccount: %w", err)
	}
	return unlocked, nil
}

// CodeAt returns the runtime bytecode at an address
func (b *RPCBackend) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	code, err := b.eth.CodeAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get code: %w", err)
	}
	return code, nil
}

// CallContract executes eth_call against the latest block
func (b *RPCBackend) CallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	return b.eth.CallContract(ctx, call, nil)
}

// EstimateGas executes eth_estimateGas
func (b *RPCBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return b.eth.EstimateGas(ctx, call)
}

// SendTransaction submits a node-signed transaction with eth_sendTransaction
func (b *RPCBackend) SendTransaction(ctx context.Context, args TxArgs) (common.Hash, error) {
	var hash common.Hash
	if err := b.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendTransaction: %w", err)
	}
	return hash, nil
}

// TransactionReceipt returns the receipt, or ethereum.NotFound while pending
func (b *RPCBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return b.eth.TransactionReceipt(ctx, hash)
}

// Close closes the RPC connection
func (b *RPCBackend) Close() {
	if b.rpc != nil {
		b.rpc.Close()
	}
}
