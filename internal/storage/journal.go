package storage

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"quorumkit/internal/contract"
	"quorumkit/internal/models"
)

// Journal records submissions, inclusions and deployments in a Repository.
// It satisfies contract.SubmissionRecorder and ledger.InclusionRecorder.
type Journal struct {
	repo Repository
}

// NewJournal wraps a repository
func NewJournal(repo Repository) *Journal {
	return &Journal{repo: repo}
}

// Repository returns the underlying repository
func (j *Journal) Repository() Repository {
	return j.repo
}

// RecordSubmission stores a submitted transaction
func (j *Journal) RecordSubmission(ctx context.Context, tx contract.PendingTransaction) error {
	s := &models.Submission{
		TxHash:      tx.Hash.Hex(),
		From:        tx.From.Hex(),
		Method:      tx.Method,
		Path:        string(tx.Path),
		SubmittedAt: tx.SubmittedAt,
	}
	if tx.To != nil {
		s.To = tx.To.Hex()
	}
	return j.repo.SaveSubmission(ctx, s)
}

// RecordInclusion stores the receipt data of an included transaction
func (j *Journal) RecordInclusion(ctx context.Context, receipt *types.Receipt) error {
	inc := Inclusion{
		Status:     receipt.Status,
		GasUsed:    receipt.GasUsed,
		IncludedAt: time.Now().UTC(),
	}
	if receipt.BlockNumber != nil {
		inc.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return j.repo.MarkIncluded(ctx, receipt.TxHash.Hex(), inc)
}

// RecordDeployment stores a verified deployment
func (j *Journal) RecordDeployment(ctx context.Context, d *models.Deployment) error {
	return j.repo.SaveDeployment(ctx, d)
}
