// Package node connects to a GoQuorum (or any geth-compatible) node over
// HTTP JSON-RPC and resolves the accounts it manages.
package node

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the subset of the node's RPC surface used by this module.
// TransactionReceipt returns ethereum.NotFound while the transaction is not included.
type Backend interface {
	Listening(ctx context.Context) (bool, error)
	NetworkID(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	UnlockAccount(ctx context.Context, account common.Address, password string, duration time.Duration) (bool, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, args TxArgs) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	Close()
}

// TxArgs are the eth_sendTransaction parameters. The node signs with the
// unlocked From account; a nil To creates a contract.
type TxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      hexutil.Uint64  `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
}

// CallMsg converts the arguments to a call message for eth_call and eth_estimateGas
func (a TxArgs) CallMsg() ethereum.CallMsg {
	msg := ethereum.CallMsg{
		From: a.From,
		To:   a.To,
		Gas:  uint64(a.Gas),
		Data: a.Data,
	}
	if a.GasPrice != nil {
		msg.GasPrice = a.GasPrice.ToInt()
	}
	if a.Value != nil {
		msg.Value = a.Value.ToInt()
	}
	return msg
}
