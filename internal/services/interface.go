// Package services wraps deployed contracts in typed Go APIs.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"quorumkit/internal/contract"
	"quorumkit/internal/ledger"
)

// ErrTransactionReverted is returned when an included transaction has a failed status
var ErrTransactionReverted = errors.New("transaction reverted")

// Service is implemented by every typed contract wrapper
type Service interface {
	// Contract returns the wrapped deployed contract
	Contract() *contract.DeployedContract

	// Name returns the service name for logging
	Name() string
}

// Client bundles what every service needs to talk to the node
type Client struct {
	Dispatcher *contract.Dispatcher
	Poller     *ledger.Poller
	Sender     common.Address
}

// base holds the plumbing shared by the typed services
type base struct {
	client   Client
	contract *contract.DeployedContract
}

// Contract returns the wrapped deployed contract
func (b *base) Contract() *contract.DeployedContract {
	return b.contract
}

// Name returns the contract name
func (b *base) Name() string {
	return b.contract.Name
}

// Confirm waits for a transaction and fails if it reverted
func (b *base) Confirm(ctx context.Context, tx *contract.PendingTransaction) (*types.Receipt, error) {
	receipt, err := b.client.Poller.WaitForReceipt(ctx, tx.Hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%s %s: %w", tx.Method, tx.Hash.Hex(), ErrTransactionReverted)
	}
	return receipt, nil
}

func (b *base) call(ctx context.Context, method string, args ...any) ([]any, error) {
	out, err := b.client.Dispatcher.Invoke(ctx, b.contract, method, contract.CallOpts{From: b.client.Sender}, args...)
	if err != nil {
		return nil, err
	}
	return out.Values, nil
}

func (b *base) send(ctx context.Context, from common.Address, method string, args ...any) (*contract.PendingTransaction, error) {
	if from == (common.Address{}) {
		from = b.client.Sender
	}
	out, err := b.client.Dispatcher.Invoke(ctx, b.contract, method, contract.CallOpts{From: from}, args...)
	if err != nil {
		return nil, err
	}
	if out.Tx == nil {
		return nil, fmt.Errorf("%s is read-only", method)
	}
	return out.Tx, nil
}
