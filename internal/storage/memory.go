package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quorumkit/internal/models"
)

// MemoryRepository keeps the journal in process memory. It is used when no
// database is configured; its contents last as long as the process.
type MemoryRepository struct {
	mu          sync.RWMutex
	submissions map[string]*models.Submission
	deployments map[string]*models.Deployment
}

// Ensure MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory journal
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		submissions: make(map[string]*models.Submission),
		deployments: make(map[string]*models.Deployment),
	}
}

func (r *MemoryRepository) SaveSubmission(ctx context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if _, exists := r.submissions[s.TxHash]; exists {
		return nil
	}
	cp := *s
	r.submissions[s.TxHash] = &cp
	return nil
}

func (r *MemoryRepository) MarkIncluded(ctx context.Context, txHash string, inc Inclusion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[txHash]
	if !ok {
		return fmt.Errorf("submission %s: %w", txHash, ErrNotFound)
	}
	includedAt := inc.IncludedAt
	block, status, gasUsed := inc.BlockNumber, inc.Status, inc.GasUsed
	s.IncludedAt = &includedAt
	s.BlockNumber = &block
	s.Status = &status
	s.GasUsed = &gasUsed
	return nil
}

func (r *MemoryRepository) ListSubmissions(ctx context.Context, limit, offset int) ([]*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		cp := *s
		all = append(all, &cp)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].SubmittedAt.After(all[j].SubmittedAt) })
	return page(all, limit, offset), nil
}

func (r *MemoryRepository) SaveDeployment(ctx context.Context, d *models.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	key := strings.ToLower(d.Address)
	if _, exists := r.deployments[key]; exists {
		return nil
	}
	cp := *d
	r.deployments[key] = &cp
	return nil
}

func (r *MemoryRepository) GetDeployment(ctx context.Context, address string) (*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deployments[strings.ToLower(address)]
	if !ok {
		return nil, fmt.Errorf("deployment %s: %w", address, ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (r *MemoryRepository) ListDeployments(ctx context.Context, limit, offset int) ([]*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*models.Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		cp := *d
		all = append(all, &cp)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].DeployedAt.After(all[j].DeployedAt) })
	return page(all, limit, offset), nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
