// Package nodetest provides an in-memory node.Backend for tests.
package nodetest

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"quorumkit/internal/node"
)

// ErrReverted is returned by contracts that do not understand the input
var ErrReverted = errors.New("execution reverted")

// Contract is the behaviour behind a deployed address
type Contract interface {
	Call(from common.Address, input []byte) ([]byte, error)
	Transact(from common.Address, input []byte) ([]*types.Log, error)
}

// Node is a single-process fake of a geth-compatible node. Transactions are
// executed on submission; their receipts become visible after ReceiptDelay
// not-found queries.
type Node struct {
	mu sync.Mutex

	listening bool
	listenErr error
	accounts  []common.Address
	networkID *big.Int
	chainID   *big.Int
	block     uint64

	code      map[common.Address][]byte
	contracts map[common.Address]Contract
	nonces    map[common.Address]uint64
	receipts  map[common.Hash]*types.Receipt
	queries   map[common.Hash]int

	receiptDelay int
	receiptErr   error
	callErrs     []error
	sendErrs     []error
	unlockOK     bool
	unlockErr    error
	noCode       bool
	deployer     func(code []byte) Contract

	sent         []node.TxArgs
	calls        []ethereum.CallMsg
	codeLookups  int
	closed       bool
}

// Ensure Node implements node.Backend.
var _ node.Backend = (*Node)(nil)

// New creates a listening node managing the given accounts
func New(accounts ...common.Address) *Node {
	return &Node{
		listening: true,
		accounts:  accounts,
		networkID: big.NewInt(10),
		chainID:   big.NewInt(1337),
		block:     1,
		code:      make(map[common.Address][]byte),
		contracts: make(map[common.Address]Contract),
		nonces:    make(map[common.Address]uint64),
		receipts:  make(map[common.Hash]*types.Receipt),
		queries:   make(map[common.Hash]int),
		unlockOK:  true,
	}
}

// Account returns a deterministic test account
func Account(i int) common.Address {
	var b [20]byte
	b[0] = 0xac
	binary.BigEndian.PutUint32(b[16:], uint32(i+1))
	return common.BytesToAddress(b[:])
}

// SetListening sets the net_listening answer and error
func (n *Node) SetListening(listening bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listening, n.listenErr = listening, err
}

// SetReceiptDelay makes each receipt appear only after delay not-found queries
func (n *Node) SetReceiptDelay(delay int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receiptDelay = delay
}

// SetReceiptError makes every receipt query fail with err (nil clears it)
func (n *Node) SetReceiptError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receiptErr = err
}

// FailCalls makes the next eth_call requests fail with the given errors in order
func (n *Node) FailCalls(errs ...error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.callErrs = append(n.callErrs, errs...)
}

// FailSends makes the next eth_sendTransaction requests fail with the given errors in order
func (n *Node) FailSends(errs ...error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sendErrs = append(n.sendErrs, errs...)
}

// SetUnlockResult sets the personal_unlockAccount answer
func (n *Node) SetUnlockResult(ok bool, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unlockOK, n.unlockErr = ok, err
}

// DropCode makes contract creations succeed without leaving code behind
func (n *Node) DropCode(drop bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.noCode = drop
}

// OnDeploy installs the factory that gives behaviour to newly created contracts
func (n *Node) OnDeploy(factory func(code []byte) Contract) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deployer = factory
}

// Install places a contract at an address
func (n *Node) Install(addr common.Address, code []byte, c Contract) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.code[addr] = code
	n.contracts[addr] = c
}

// ReceiptQueries returns how many receipt queries were made for hash
func (n *Node) ReceiptQueries(hash common.Hash) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.queries[hash]
}

// CodeLookups returns how many eth_getCode requests were made
func (n *Node) CodeLookups() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codeLookups
}

// Sent returns the submitted transactions in order
func (n *Node) Sent() []node.TxArgs {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]node.TxArgs, len(n.sent))
	copy(out, n.sent)
	return out
}

// Calls returns the eth_call messages in order
func (n *Node) Calls() []ethereum.CallMsg {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ethereum.CallMsg, len(n.calls))
	copy(out, n.calls)
	return out
}

// Closed reports whether Close was called
func (n *Node) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

func (n *Node) Listening(ctx context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.listening, n.listenErr
}

func (n *Node) NetworkID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(n.networkID), nil
}

func (n *Node) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(n.chainID), nil
}

func (n *Node) BlockNumber(ctx context.Context) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.block, nil
}

func (n *Node) Accounts(ctx context.Context) ([]common.Address, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]common.Address, len(n.accounts))
	copy(out, n.accounts)
	return out, nil
}

func (n *Node) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18)), nil
}

func (n *Node) UnlockAccount(ctx context.Context, account common.Address, password string, duration time.Duration) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.unlockOK, n.unlockErr
}

func (n *Node) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codeLookups++
	return n.code[account], nil
}

func (n *Node) CallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, call)
	if len(n.callErrs) > 0 {
		err := n.callErrs[0]
		n.callErrs = n.callErrs[1:]
		return nil, err
	}
	if call.To == nil {
		return nil, ErrReverted
	}
	c, ok := n.contracts[*call.To]
	if !ok {
		// calling an address without code returns empty data
		return nil, nil
	}
	return c.Call(call.From, call.Data)
}

func (n *Node) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if call.To == nil {
		return 300000, nil
	}
	return 50000, nil
}

func (n *Node) SendTransaction(ctx context.Context, args node.TxArgs) (common.Hash, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sendErrs) > 0 {
		err := n.sendErrs[0]
		n.sendErrs = n.sendErrs[1:]
		return common.Hash{}, err
	}
	if !n.managed(args.From) {
		return common.Hash{}, fmt.Errorf("unknown account %s", args.From.Hex())
	}

	nonce := n.nonces[args.From]
	n.nonces[args.From] = nonce + 1
	n.sent = append(n.sent, args)
	n.block++

	hash := crypto.Keccak256Hash(args.From.Bytes(), new(big.Int).SetUint64(nonce).Bytes(), args.Data)
	receipt := &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21000,
		GasUsed:           21000,
		TxHash:            hash,
		BlockNumber:       new(big.Int).SetUint64(n.block),
		BlockHash:         crypto.Keccak256Hash(new(big.Int).SetUint64(n.block).Bytes()),
		Logs:              []*types.Log{},
	}

	if args.To == nil {
		addr := crypto.CreateAddress(args.From, nonce)
		receipt.ContractAddress = addr
		if !n.noCode {
			n.code[addr] = append([]byte(nil), args.Data...)
			if n.deployer != nil {
				if c := n.deployer(args.Data); c != nil {
					n.contracts[addr] = c
				}
			}
		}
	} else if c, ok := n.contracts[*args.To]; ok {
		logs, err := c.Transact(args.From, args.Data)
		if err != nil {
			receipt.Status = types.ReceiptStatusFailed
		}
		for i, l := range logs {
			l.Address = *args.To
			l.TxHash = hash
			l.BlockNumber = n.block
			l.Index = uint(i)
		}
		if err == nil {
			receipt.Logs = logs
		}
	}

	n.receipts[hash] = receipt
	return hash, nil
}

func (n *Node) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queries[hash]++
	if n.receiptErr != nil {
		return nil, n.receiptErr
	}
	receipt, ok := n.receipts[hash]
	if !ok || n.queries[hash] <= n.receiptDelay {
		return nil, ethereum.NotFound
	}
	cp := *receipt
	return &cp, nil
}

func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
}

func (n *Node) managed(addr common.Address) bool {
	for _, a := range n.accounts {
		if a == addr {
			return true
		}
	}
	return false
}
