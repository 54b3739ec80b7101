// Package ledger waits for submitted transactions to be included and checks
// that deployments left code behind.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"quorumkit/internal/ledger/retry"
	"quorumkit/internal/metrics"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ReceiptSource is the part of the node the poller talks to.
// TransactionReceipt must return ethereum.NotFound for transactions not yet included.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
}

// InclusionRecorder is notified when a transaction is observed in a block
type InclusionRecorder interface {
	RecordInclusion(ctx context.Context, receipt *types.Receipt) error
}

// Poller blocks until a receipt shows up or the attempt budget runs out
type Poller struct {
	source         ReceiptSource
	strategy       retry.Strategy
	deployStrategy retry.Strategy
	recorder       InclusionRecorder
}

// Option configures a Poller
type Option func(*Poller)

// WithDeploymentStrategy uses a separate poll policy for contract creations
func WithDeploymentStrategy(s retry.Strategy) Option {
	return func(p *Poller) { p.deployStrategy = s }
}

// WithRecorder journals observed inclusions
func WithRecorder(r InclusionRecorder) Option {
	return func(p *Poller) { p.recorder = r }
}

// NewPoller creates a poller using strategy for every wait
func NewPoller(source ReceiptSource, strategy retry.Strategy, opts ...Option) *Poller {
	p := &Poller{
		source:         source,
		strategy:       strategy,
		deployStrategy: strategy,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitForReceipt polls for the receipt of hash. It returns the receipt at the
// first attempt that sees it, a *TimeoutError once the budget is spent, and
// any transport error immediately.
func (p *Poller) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return p.wait(ctx, hash, p.strategy)
}

// WaitForDeployment waits for a contract creation and verifies the resulting contract
func (p *Poller) WaitForDeployment(ctx context.Context, hash common.Hash) (common.Address, *types.Receipt, error) {
	receipt, err := p.wait(ctx, hash, p.deployStrategy)
	if err != nil {
		return common.Address{}, nil, err
	}
	address, err := p.VerifyDeployment(ctx, receipt)
	if err != nil {
		return common.Address{}, receipt, err
	}
	return address, receipt, nil
}

// VerifyDeployment checks that a creation receipt succeeded and that its contract has code
func (p *Poller) VerifyDeployment(ctx context.Context, receipt *types.Receipt) (common.Address, error) {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, &VerificationError{Reason: fmt.Sprintf("transaction %s reverted", receipt.TxHash.Hex())}
	}
	if receipt.ContractAddress == (common.Address{}) {
		return common.Address{}, &VerificationError{Reason: "receipt has no contract address"}
	}
	return p.VerifyAddress(ctx, receipt.ContractAddress.Hex())
}

// VerifyAddress checks the address format and then that code is deployed there.
// A malformed address fails without querying the node.
func (p *Poller) VerifyAddress(ctx context.Context, address string) (common.Address, error) {
	if !addressPattern.MatchString(address) {
		return common.Address{}, &VerificationError{Address: address, Reason: "invalid address format"}
	}

	addr := common.HexToAddress(address)
	code, err := p.source.CodeAt(ctx, addr)
	if err != nil {
		return common.Address{}, fmt.Errorf("eth_getCode %s: %w", address, err)
	}
	if len(code) == 0 {
		return common.Address{}, &VerificationError{Address: address, Reason: "no contract code at address"}
	}

	slog.Debug("Contract code verified", "address", addr.Hex(), "code_size", len(code))
	return addr, nil
}

func (p *Poller) wait(ctx context.Context, hash common.Hash, strategy retry.Strategy) (*types.Receipt, error) {
	slog.Info("Waiting for transaction receipt",
		"tx_hash", hash.Hex(),
		"strategy", strategy.Name(),
		"max_attempts", strategy.MaxAttempts(),
	)

	start := time.Now()
	var receipt *types.Receipt
	attempts := 0

	err := strategy.Execute(ctx, func(attempt int) error {
		attempts = attempt
		metrics.ReceiptPolls.Inc()

		r, err := p.source.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) || (err == nil && r == nil) {
			slog.Debug("Receipt not available yet", "tx_hash", hash.Hex(), "attempt", attempt)
			return retry.ErrPending
		}
		if err != nil {
			return fmt.Errorf("eth_getTransactionReceipt %s: %w", hash.Hex(), err)
		}
		receipt = r
		return nil
	})

	if errors.Is(err, retry.ErrExhausted) {
		metrics.ConfirmationTimeouts.Inc()
		slog.Error("Transaction not included in time", "tx_hash", hash.Hex(), "attempts", attempts)
		return nil, &TimeoutError{Hash: hash, Attempts: attempts}
	}
	if err != nil {
		return nil, err
	}

	metrics.ConfirmationDuration.Observe(time.Since(start).Seconds())
	slog.Info("Transaction included",
		"tx_hash", hash.Hex(),
		"block", receipt.BlockNumber,
		"status", receipt.Status,
		"gas_used", receipt.GasUsed,
		"attempts", attempts,
	)

	if p.recorder != nil {
		if err := p.recorder.RecordInclusion(ctx, receipt); err != nil {
			slog.Warn("Failed to journal inclusion", "tx_hash", hash.Hex(), "error", err)
		}
	}
	return receipt, nil
}
