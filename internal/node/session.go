package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Options tune session setup
type Options struct {
	// Identity overrides the default sender. It must be one of the node's accounts.
	Identity string
}

// NetworkInfo is diagnostic metadata gathered when a session opens.
// Nothing downstream depends on it.
type NetworkInfo struct {
	NetworkID   *big.Int
	ChainID     *big.Int
	BlockHeight uint64
}

// Session is an open connection to a node plus the identities it manages.
// It is built once and only read afterwards, so it may be shared.
type Session struct {
	backend    Backend
	endpoint   Endpoint
	identities []common.Address
	sender     common.Address
	info       NetworkInfo
}

// Open dials the endpoint and resolves the session. Failure is not retried.
func Open(ctx context.Context, endpoint Endpoint, opts Options) (*Session, error) {
	backend, err := Dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	session, err := NewSession(ctx, backend, endpoint, opts)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return session, nil
}

// NewSession probes liveness, logs network metadata and selects the default identity.
func NewSession(ctx context.Context, backend Backend, endpoint Endpoint, opts Options) (*Session, error) {
	listening, err := backend.Listening(ctx)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint.URL(), Err: err}
	}
	if !listening {
		return nil, &ConnectionError{Endpoint: endpoint.URL(), Err: errors.New("node is not listening")}
	}
	slog.Info("Connected to node", "endpoint", endpoint.URL(), "listening", listening)

	info := collectNetworkInfo(ctx, backend)

	identities, err := backend.Accounts(ctx)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint.URL(), Err: err}
	}
	if len(identities) == 0 {
		return nil, ErrNoIdentitiesAvailable
	}

	sender := identities[0]
	if opts.Identity != "" {
		if !common.IsHexAddress(opts.Identity) {
			return nil, fmt.Errorf("invalid account %q", opts.Identity)
		}
		want := common.HexToAddress(opts.Identity)
		found := false
		for _, id := range identities {
			if id == want {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownIdentity, want.Hex())
		}
		sender = want
	}

	slog.Info("Using account", "account", sender.Hex(), "available", len(identities))

	return &Session{
		backend:    backend,
		endpoint:   endpoint,
		identities: identities,
		sender:     sender,
		info:       info,
	}, nil
}

// collectNetworkInfo logs network metadata; lookup failures are only logged
func collectNetworkInfo(ctx context.Context, backend Backend) NetworkInfo {
	var info NetworkInfo

	if id, err := backend.NetworkID(ctx); err != nil {
		slog.Warn("Failed to read network ID", "error", err)
	} else {
		info.NetworkID = id
	}
	if id, err := backend.ChainID(ctx); err != nil {
		slog.Debug("Failed to read chain ID", "error", err)
	} else {
		info.ChainID = id
	}
	if height, err := backend.BlockNumber(ctx); err != nil {
		slog.Warn("Failed to read block number", "error", err)
	} else {
		info.BlockHeight = height
	}

	slog.Info("Network info",
		"network_id", bigString(info.NetworkID),
		"chain_id", bigString(info.ChainID),
		"block", info.BlockHeight,
	)
	return info
}

// Backend returns the RPC backend
func (s *Session) Backend() Backend {
	return s.backend
}

// Endpoint returns the endpoint the session is connected to
func (s *Session) Endpoint() Endpoint {
	return s.endpoint
}

// Identities returns a copy of the node's accounts in node order
func (s *Session) Identities() []common.Address {
	out := make([]common.Address, len(s.identities))
	copy(out, s.identities)
	return out
}

// Sender returns the default identity
func (s *Session) Sender() common.Address {
	return s.sender
}

// Identity returns the i-th identity, or the default one when i is out of range
func (s *Session) Identity(i int) common.Address {
	if i < 0 || i >= len(s.identities) {
		return s.sender
	}
	return s.identities[i]
}

// Info returns the network metadata collected at startup
func (s *Session) Info() NetworkInfo {
	return s.info
}

// Balance returns an account's balance in wei
func (s *Session) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return s.backend.BalanceAt(ctx, account)
}

// Unlock unlocks an account on the node. The returned *UnlockError is meant
// to be logged; the account may already be unlocked.
func (s *Session) Unlock(ctx context.Context, account common.Address, password string, duration time.Duration) error {
	ok, err := s.backend.UnlockAccount(ctx, account, password, duration)
	if err != nil {
		return &UnlockError{Account: account, Err: err}
	}
	if !ok {
		return &UnlockError{Account: account, Err: errors.New("node refused to unlock")}
	}
	slog.Debug("Account unlocked", "account", account.Hex(), "duration", duration)
	return nil
}

// Close releases the RPC connection
func (s *Session) Close() {
	s.backend.Close()
}

func bigString(v *big.Int) string {
	if v == nil {
		return "unknown"
	}
	return v.String()
}
