package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"quorumkit/internal/contract"
	"quorumkit/internal/models"
)

// ErrLoanEventMissing is returned when a requestLoan receipt carries no LoanRequested log
var ErrLoanEventMissing = errors.New("LoanRequested event not found in receipt")

// ErrTooManyLoans is returned when loanCounter exceeds MaxListedLoans
var ErrTooManyLoans = errors.New("loan counter exceeds list limit")

// MaxListedLoans bounds the number of loans ListLoans reads
const MaxListedLoans = 1000

const loanRequestedEvent = "LoanRequested"

// LoanSubmission is the result of a confirmed loan request
type LoanSubmission struct {
	LoanID  *big.Int
	Tx      *contract.PendingTransaction
	Receipt *types.Receipt
}

// FiatLoan wraps a FiatLoanMatcher contract
type FiatLoan struct {
	base
}

// NewFiatLoan wraps a deployed FiatLoanMatcher contract
func NewFiatLoan(client Client, c *contract.DeployedContract) *FiatLoan {
	return &FiatLoan{base{client: client, contract: c}}
}

// LoanCounter returns the number of loans requested so far
func (f *FiatLoan) LoanCounter(ctx context.Context) (*big.Int, error) {
	values, err := f.call(ctx, "loanCounter")
	if err != nil {
		return nil, err
	}
	v, err := single(values, "loanCounter")
	if err != nil {
		return nil, err
	}
	return asBigInt(v)
}

// GetLoan reads the details of one loan
func (f *FiatLoan) GetLoan(ctx context.Context, id *big.Int) (*models.Loan, error) {
	values, err := f.call(ctx, "getLoanDetails", id)
	if err != nil {
		return nil, err
	}
	return loanFromValues(values)
}

// ListLoans reads loans 1..loanCounter in order
func (f *FiatLoan) ListLoans(ctx context.Context) ([]models.Loan, error) {
	count, err := f.LoanCounter(ctx)
	if err != nil {
		return nil, err
	}

	if count.Sign() < 0 || count.Cmp(big.NewInt(MaxListedLoans)) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTooManyLoans, count)
	}

	n := count.Int64()
	loans := make([]models.Loan, 0, n)
	for i := int64(1); i <= n; i++ {
		loan, err := f.GetLoan(ctx, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("loan %d: %w", i, err)
		}
		loans = append(loans, *loan)
	}
	return loans, nil
}

// RequestLoan submits requestLoan, waits for inclusion and returns the new loan id
func (f *FiatLoan) RequestLoan(ctx context.Context, req models.LoanRequest) (*LoanSubmission, error) {
	tx, err := f.send(ctx, f.client.Sender, "requestLoan",
		req.Currency,
		new(big.Int).SetUint64(req.Amount),
		new(big.Int).SetUint64(req.Interest),
		new(big.Int).SetUint64(req.Duration),
	)
	if err != nil {
		return nil, err
	}

	receipt, err := f.Confirm(ctx, tx)
	if err != nil {
		return nil, err
	}

	id, err := f.loanIDFromReceipt(receipt)
	if err != nil {
		return nil, err
	}
	return &LoanSubmission{LoanID: id, Tx: tx, Receipt: receipt}, nil
}

// FundLoan submits fundLoan(id). A zero lender means the client's sender.
func (f *FiatLoan) FundLoan(ctx context.Context, id *big.Int, lender common.Address) (*contract.PendingTransaction, error) {
	return f.send(ctx, lender, "fundLoan", id)
}

// MarkRepaid submits markRepaid(id)
func (f *FiatLoan) MarkRepaid(ctx context.Context, id *big.Int) (*contract.PendingTransaction, error) {
	return f.send(ctx, f.client.Sender, "markRepaid", id)
}

// loanIDFromReceipt reads the indexed loanId of the LoanRequested event. The
// event signature hash is computed when no binding is available.
func (f *FiatLoan) loanIDFromReceipt(receipt *types.Receipt) (*big.Int, error) {
	topic := contract.EventTopic("LoanRequested(uint256,address,string,uint256,uint256,uint256)")
	if f.contract.Binding != nil {
		if event, ok := f.contract.Binding.Events[loanRequestedEvent]; ok {
			topic = event.ID
		}
	}

	for _, log := range receipt.Logs {
		if len(log.Topics) >= 2 && log.Topics[0] == topic {
			return log.Topics[1].Big(), nil
		}
	}
	return nil, ErrLoanEventMissing
}

func loanFromValues(values []any) (*models.Loan, error) {
	if len(values) != 9 {
		return nil, fmt.Errorf("getLoanDetails returned %d values, expected 9", len(values))
	}

	ints := make(map[int]*big.Int)
	for _, i := range []int{0, 4, 5, 6, 7, 8} {
		n, err := asBigInt(values[i])
		if err != nil {
			return nil, fmt.Errorf("loan field %d: %w", i, err)
		}
		ints[i] = n
	}
	borrower, err := asAddress(values[1])
	if err != nil {
		return nil, err
	}
	lender, err := asAddress(values[2])
	if err != nil {
		return nil, err
	}
	currency, err := asString(values[3])
	if err != nil {
		return nil, err
	}

	return &models.Loan{
		ID:        ints[0].String(),
		Borrower:  borrower.Hex(),
		Lender:    lender.Hex(),
		Currency:  currency,
		Amount:    ints[4].String(),
		Interest:  ints[5].String(),
		Duration:  ints[6].String(),
		CreatedAt: ints[7].String(),
		Status:    statusName(ints[8]),
	}, nil
}

// statusName renders the on-chain status; values outside the enum are Unknown
func statusName(n *big.Int) string {
	if n.Sign() < 0 || n.Cmp(big.NewInt(int64(models.LoanRepaid))) > 0 {
		return "Unknown"
	}
	return models.LoanStatus(n.Uint64()).String()
}
