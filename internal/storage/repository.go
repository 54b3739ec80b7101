package storage

import (
	"context"
	"errors"
	"time"

	"quorumkit/internal/models"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Inclusion is the receipt data stored for an included submission
type Inclusion struct {
	BlockNumber uint64
	Status      uint64
	GasUsed     uint64
	IncludedAt  time.Time
}

// Repository defines the interface for all journal operations
type Repository interface {
	// Submissions
	SaveSubmission(ctx context.Context, submission *models.Submission) error
	MarkIncluded(ctx context.Context, txHash string, inclusion Inclusion) error
	ListSubmissions(ctx context.Context, limit, offset int) ([]*models.Submission, error)

	// Deployments
	SaveDeployment(ctx context.Context, deployment *models.Deployment) error
	GetDeployment(ctx context.Context, address string) (*models.Deployment, error)
	ListDeployments(ctx context.Context, limit, offset int) ([]*models.Deployment, error)

	// Health & Maintenance
	Ping(ctx context.Context) error
	Close() error
}

// Open returns a Postgres repository for a non-empty URL and an in-memory one otherwise
func Open(ctx context.Context, databaseURL string) (Repository, error) {
	if databaseURL == "" {
		return NewMemoryRepository(), nil
	}
	return NewPostgresRepository(ctx, databaseURL)
}
