package nodetest

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type loan struct {
	id        *big.Int
	borrower  common.Address
	lender    common.Address
	currency  string
	amount    *big.Int
	interest  *big.Int
	duration  *big.Int
	createdAt *big.Int
	status    uint8
}

// FiatLoanMatcher emulates the FiatLoanMatcher contract on top of its ABI.
// Loans are numbered from 1; funding requires a lender other than the
// borrower and repayment requires a funded loan.
type FiatLoanMatcher struct {
	mu      sync.Mutex
	binding *abi.ABI
	loans   []*loan
}

// NewFiatLoanMatcher creates an empty loan book
func NewFiatLoanMatcher(binding *abi.ABI) *FiatLoanMatcher {
	return &FiatLoanMatcher{binding: binding}
}

func (f *FiatLoanMatcher) Call(from common.Address, input []byte) ([]byte, error) {
	method, args, err := f.decode(input)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch method.RawName {
	case "loanCounter":
		return method.Outputs.Pack(big.NewInt(int64(len(f.loans))))
	case "getLoanDetails", "loans":
		l, err := f.lookup(args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(l.id, l.borrower, l.lender, l.currency, l.amount, l.interest, l.duration, l.createdAt, l.status)
	}
	return nil, ErrReverted
}

func (f *FiatLoanMatcher) Transact(from common.Address, input []byte) ([]*types.Log, error) {
	method, args, err := f.decode(input)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch method.RawName {
	case "requestLoan":
		l := &loan{
			id:        big.NewInt(int64(len(f.loans) + 1)),
			borrower:  from,
			currency:  args[0].(string),
			amount:    args[1].(*big.Int),
			interest:  args[2].(*big.Int),
			duration:  args[3].(*big.Int),
			createdAt: big.NewInt(time.Now().Unix()),
		}
		f.loans = append(f.loans, l)

		event := f.binding.Events["LoanRequested"]
		data, err := event.Inputs.NonIndexed().Pack(l.currency, l.amount, l.interest, l.duration)
		if err != nil {
			return nil, err
		}
		return []*types.Log{{
			Topics: []common.Hash{event.ID, common.BigToHash(l.id), common.BytesToHash(from.Bytes())},
			Data:   data,
		}}, nil

	case "fundLoan":
		l, err := f.lookup(args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		if l.status != 0 {
			return nil, errors.New("loan is not open")
		}
		if l.borrower == from {
			return nil, errors.New("borrower cannot fund own loan")
		}
		l.lender = from
		l.status = 1
		event := f.binding.Events["LoanFunded"]
		return []*types.Log{{
			Topics: []common.Hash{event.ID, common.BigToHash(l.id), common.BytesToHash(from.Bytes())},
		}}, nil

	case "markRepaid":
		l, err := f.lookup(args[0].(*big.Int))
		if err != nil {
			return nil, err
		}
		if l.status != 1 {
			return nil, errors.New("loan is not funded")
		}
		l.status = 2
		event := f.binding.Events["LoanRepaid"]
		return []*types.Log{{
			Topics: []common.Hash{event.ID, common.BigToHash(l.id)},
		}}, nil
	}
	return nil, ErrReverted
}

// Status returns the status of a loan, or false if it does not exist
func (f *FiatLoanMatcher) Status(id int64) (uint8, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, err := f.lookup(big.NewInt(id))
	if err != nil {
		return 0, false
	}
	return l.status, true
}

func (f *FiatLoanMatcher) decode(input []byte) (*abi.Method, []any, error) {
	if len(input) < 4 {
		return nil, nil, ErrReverted
	}
	method, err := f.binding.MethodById(input[:4])
	if err != nil {
		return nil, nil, ErrReverted
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrReverted, err)
	}
	return method, args, nil
}

func (f *FiatLoanMatcher) lookup(id *big.Int) (*loan, error) {
	if !id.IsInt64() || id.Int64() < 1 || id.Int64() > int64(len(f.loans)) {
		return nil, fmt.Errorf("%w: loan %s does not exist", ErrReverted, id)
	}
	return f.loans[id.Int64()-1], nil
}
