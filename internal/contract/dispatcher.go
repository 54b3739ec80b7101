package contract

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"quorumkit/internal/metrics"
	"quorumkit/internal/node"
)

const (
	// DefaultGasBufferPercent is added on top of eth_estimateGas
	DefaultGasBufferPercent = 10

	// FallbackGasLimit is used when estimation fails and no limit is configured
	FallbackGasLimit = 4_700_000
)

// Path tells which route produced an invocation result
type Path string

const (
	// PathPrimary means the ABI binding packed the call and decoded the result
	PathPrimary Path = "primary"
	// PathFallback means the selector and arguments were encoded by hand
	PathFallback Path = "fallback"
	// PathDirect marks transactions submitted without method dispatch, such as contract creations
	PathDirect Path = "direct"
)

// PendingTransaction is a submitted transaction that has not been observed in a block yet
type PendingTransaction struct {
	Hash        common.Hash
	From        common.Address
	To          *common.Address
	Method      string
	Path        Path
	SubmittedAt time.Time
}

// Outcome is the result of one invocation. Read-only methods fill Values and
// Raw; state-changing methods fill Tx.
type Outcome struct {
	Path       Path
	Method     MethodDescriptor
	Values     []any
	Raw        []byte
	Tx         *PendingTransaction
	PrimaryErr error
}

// CallOpts are per-invocation transaction parameters. Gas 0 means estimate.
type CallOpts struct {
	From  common.Address
	Gas   uint64
	Value *big.Int
}

// SubmissionRecorder is notified of every submitted transaction
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, tx PendingTransaction) error
}

// Dispatcher invokes contract methods. It holds no per-call state and may be
// shared between goroutines.
type Dispatcher struct {
	backend          node.Backend
	gasLimit         uint64
	gasBufferPercent uint64
	recorder         SubmissionRecorder
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithGasLimit uses a fixed gas limit instead of estimating
func WithGasLimit(limit uint64) Option {
	return func(d *Dispatcher) { d.gasLimit = limit }
}

// WithGasBuffer sets the percentage added to gas estimates
func WithGasBuffer(percent uint64) Option {
	return func(d *Dispatcher) { d.gasBufferPercent = percent }
}

// WithRecorder journals every submission
func WithRecorder(r SubmissionRecorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// NewDispatcher creates a dispatcher on top of a node backend
func NewDispatcher(backend node.Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend:          backend,
		gasBufferPercent: DefaultGasBufferPercent,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke calls a method on a deployed contract. The primary path is tried
// first; on any failure the raw path is tried exactly once.
func (d *Dispatcher) Invoke(ctx context.Context, c *DeployedContract, method string, opts CallOpts, args ...any) (*Outcome, error) {
	desc, ok := c.Method(method)
	if !ok {
		metrics.InvocationFailures.Inc()
		return nil, &InvocationError{Contract: c.Address, Method: method, Err: ErrUnknownMethod}
	}

	outcome, primaryErr := d.invokePrimary(ctx, c, desc, opts, args)
	if primaryErr == nil {
		metrics.InvocationsTotal.WithLabelValues(string(PathPrimary), string(desc.Mutability)).Inc()
		return outcome, nil
	}

	slog.Warn("Primary invocation failed, retrying with raw encoding",
		"contract", c.Address.Hex(),
		"method", desc.Signature(),
		"error", primaryErr,
	)
	metrics.FallbackInvocations.Inc()

	outcome, err := d.invokeFallback(ctx, c, desc, opts, args)
	if err != nil {
		slog.Error("Raw invocation failed",
			"contract", c.Address.Hex(),
			"method", desc.Signature(),
			"error", err,
		)
		metrics.InvocationFailures.Inc()
		return nil, &InvocationError{Contract: c.Address, Method: desc.Signature(), Primary: primaryErr, Err: err}
	}

	metrics.InvocationsTotal.WithLabelValues(string(PathFallback), string(desc.Mutability)).Inc()
	outcome.PrimaryErr = primaryErr
	return outcome, nil
}

func (d *Dispatcher) invokePrimary(ctx context.Context, c *DeployedContract, desc MethodDescriptor, opts CallOpts, args []any) (*Outcome, error) {
	if c.Binding == nil {
		return nil, ErrNoBinding
	}
	if _, ok := c.Binding.Methods[desc.Name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotBound, desc.Name)
	}

	input, err := c.Binding.Pack(desc.Name, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", desc.Name, err)
	}

	if desc.ReadOnly() {
		raw, err := d.call(ctx, c.Address, opts, input)
		if err != nil {
			return nil, err
		}
		values, err := c.Binding.Unpack(desc.Name, raw)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", desc.Name, err)
		}
		return &Outcome{Path: PathPrimary, Method: desc, Values: values, Raw: raw}, nil
	}

	tx, err := d.submit(ctx, &c.Address, desc.Signature(), PathPrimary, input, opts)
	if err != nil {
		return nil, err
	}
	return &Outcome{Path: PathPrimary, Method: desc, Tx: tx}, nil
}

func (d *Dispatcher) invokeFallback(ctx context.Context, c *DeployedContract, desc MethodDescriptor, opts CallOpts, args []any) (*Outcome, error) {
	input, err := EncodeCall(desc, args...)
	if err != nil {
		return nil, err
	}

	if desc.ReadOnly() {
		raw, err := d.call(ctx, c.Address, opts, input)
		if err != nil {
			return nil, err
		}
		values, err := DecodeOutputs(desc.Outputs, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", desc.Signature(), err)
		}
		return &Outcome{Path: PathFallback, Method: desc, Values: values, Raw: raw}, nil
	}

	tx, err := d.submit(ctx, &c.Address, desc.Signature(), PathFallback, input, opts)
	if err != nil {
		return nil, err
	}
	return &Outcome{Path: PathFallback, Method: desc, Tx: tx}, nil
}

// Transact submits arbitrary calldata, e.g. contract creation code when to is nil
func (d *Dispatcher) Transact(ctx context.Context, to *common.Address, label string, data []byte, opts CallOpts) (*PendingTransaction, error) {
	return d.submit(ctx, to, label, PathDirect, data, opts)
}

func (d *Dispatcher) call(ctx context.Context, to common.Address, opts CallOpts, input []byte) ([]byte, error) {
	raw, err := d.backend.CallContract(ctx, ethereum.CallMsg{
		From:  opts.From,
		To:    &to,
		Data:  input,
		Value: opts.Value,
	})
	if err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}
	return raw, nil
}

func (d *Dispatcher) submit(ctx context.Context, to *common.Address, label string, path Path, data []byte, opts CallOpts) (*PendingTransaction, error) {
	if opts.From == (common.Address{}) {
		return nil, ErrNoSender
	}

	args := node.TxArgs{From: opts.From, To: to, Data: data}
	if opts.Value != nil {
		args.Value = (*hexutil.Big)(opts.Value)
	}
	args.Gas = hexutil.Uint64(d.gasFor(ctx, args, opts.Gas))

	hash, err := d.backend.SendTransaction(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("eth_sendTransaction: %w", err)
	}
	metrics.TransactionsSubmitted.Inc()

	tx := &PendingTransaction{
		Hash:        hash,
		From:        opts.From,
		To:          to,
		Method:      label,
		Path:        path,
		SubmittedAt: time.Now().UTC(),
	}
	slog.Info("Transaction submitted", "tx_hash", hash.Hex(), "method", label, "path", path, "gas", uint64(args.Gas))

	if d.recorder != nil {
		if err := d.recorder.RecordSubmission(ctx, *tx); err != nil {
			slog.Warn("Failed to journal submission", "tx_hash", hash.Hex(), "error", err)
		}
	}
	return tx, nil
}

// gasFor picks the gas limit: explicit, configured, or estimate plus buffer
func (d *Dispatcher) gasFor(ctx context.Context, args node.TxArgs, explicit uint64) uint64 {
	if explicit > 0 {
		return explicit
	}
	if d.gasLimit > 0 {
		return d.gasLimit
	}
	estimate, err := d.backend.EstimateGas(ctx, args.CallMsg())
	if err != nil {
		slog.Warn("Gas estimation failed, using default limit", "error", err, "gas", FallbackGasLimit)
		return FallbackGasLimit
	}
	return estimate * (100 + d.gasBufferPercent) / 100
}
