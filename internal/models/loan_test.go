package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanStatusString(t *testing.T) {
	assert.Equal(t, "Requested", LoanRequested.String())
	assert.Equal(t, "Funded", LoanFunded.String())
	assert.Equal(t, "Repaid", LoanRepaid.String())
	assert.Equal(t, "Unknown", LoanStatus(7).String())
}

func TestLoanRequestValid(t *testing.T) {
	ok := LoanRequest{Currency: "USD", Amount: 100000, Interest: 5000, Duration: 2592000}
	assert.True(t, ok.Valid())

	for _, r := range []LoanRequest{
		{Amount: 1, Interest: 1, Duration: 1},
		{Currency: "USD", Interest: 1, Duration: 1},
		{Currency: "USD", Amount: 1, Duration: 1},
		{Currency: "USD", Amount: 1, Interest: 1},
	} {
		assert.False(t, r.Valid(), "%+v", r)
	}
}
