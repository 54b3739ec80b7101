package storage

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorumkit/internal/contract"
)

func TestJournalRecordsSubmissionAndInclusion(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	j := NewJournal(repo)

	to := common.HexToAddress("0x5000000000000000000000000000000000000005")
	hash := common.HexToHash("0xbeef")
	require.NoError(t, j.RecordSubmission(ctx, contract.PendingTransaction{
		Hash:        hash,
		From:        common.HexToAddress("0x01"),
		To:          &to,
		Method:      "store(uint256)",
		Path:        contract.PathFallback,
		SubmittedAt: time.Now().UTC(),
	}))

	require.NoError(t, j.RecordInclusion(ctx, &types.Receipt{
		TxHash:      hash,
		Status:      types.ReceiptStatusSuccessful,
		GasUsed:     43000,
		BlockNumber: big.NewInt(12),
	}))

	list, err := repo.ListSubmissions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.Equal(t, hash.Hex(), s.TxHash)
	assert.Equal(t, to.Hex(), s.To)
	assert.Equal(t, "fallback", s.Path)
	require.True(t, s.Included())
	assert.Equal(t, uint64(12), *s.BlockNumber)
	assert.Equal(t, uint64(43000), *s.GasUsed)
}

func TestJournalInclusionOfUnknownTransaction(t *testing.T) {
	j := NewJournal(NewMemoryRepository())
	err := j.RecordInclusion(context.Background(), &types.Receipt{TxHash: common.HexToHash("0x01")})
	assert.ErrorIs(t, err, ErrNotFound)
}
