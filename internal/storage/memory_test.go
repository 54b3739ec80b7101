package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quorumkit/internal/models"
)

func TestMemorySubmissions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.SaveSubmission(ctx, &models.Submission{
			TxHash:      fmt.Sprintf("0x%02d", i),
			Method:      "store(uint256)",
			Path:        "primary",
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := repo.ListSubmissions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "0x02", list[0].TxHash)
	assert.NotEqual(t, uuid.Nil, list[0].ID)
	assert.False(t, list[0].Included())

	require.NoError(t, repo.MarkIncluded(ctx, "0x01", Inclusion{BlockNumber: 7, Status: 1, GasUsed: 21000, IncludedAt: base}))
	list, err = repo.ListSubmissions(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Included())
	assert.Equal(t, uint64(7), *list[0].BlockNumber)

	err = repo.MarkIncluded(ctx, "0xff", Inclusion{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySubmissionIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.SaveSubmission(ctx, &models.Submission{TxHash: "0x01", Method: "first"}))
	require.NoError(t, repo.SaveSubmission(ctx, &models.Submission{TxHash: "0x01", Method: "second"}))

	list, err := repo.ListSubmissions(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Method)
}

func TestMemoryDeployments(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	d := &models.Deployment{
		Name:       "SimpleStorage",
		Address:    "0xAbCdEf0000000000000000000000000000000001",
		TxHash:     "0x01",
		DeployedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.SaveDeployment(ctx, d))

	got, err := repo.GetDeployment(ctx, "0xabcdef0000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "SimpleStorage", got.Name)
	assert.Equal(t, d.ID, got.ID)

	_, err = repo.GetDeployment(ctx, "0x0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := repo.ListDeployments(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOpenWithoutURLIsMemory(t *testing.T) {
	repo, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)
	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, repo.Close())
}
