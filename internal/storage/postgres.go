package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quorumkit/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS submissions (
		id           UUID PRIMARY KEY,
		tx_hash      TEXT NOT NULL UNIQUE,
		from_address TEXT NOT NULL,
		to_address   TEXT NOT NULL DEFAULT '',
		method       TEXT NOT NULL,
		path         TEXT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		included_at  TIMESTAMPTZ,
		block_number BIGINT,
		status       BIGINT,
		gas_used     BIGINT
	);

	CREATE TABLE IF NOT EXISTS deployments (
		id           UUID PRIMARY KEY,
		name         TEXT NOT NULL,
		address      TEXT NOT NULL UNIQUE,
		tx_hash      TEXT NOT NULL,
		deployer     TEXT NOT NULL,
		block_number BIGINT NOT NULL,
		gas_used     BIGINT NOT NULL,
		deployed_at  TIMESTAMPTZ NOT NULL
	);
`

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects, verifies the connection and creates the schema
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Info("Connected to journal database")
	return &PostgresRepository{pool: pool}, nil
}

// SaveSubmission saves a submitted transaction
func (r *PostgresRepository) SaveSubmission(ctx context.Context, s *models.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query := `
		INSERT INTO submissions (id, tx_hash, from_address, to_address, method, path, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tx_hash) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID.String(),
		s.TxHash,
		s.From,
		s.To,
		s.Method,
		s.Path,
		s.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}
	return nil
}

// MarkIncluded stores receipt data for a submission
func (r *PostgresRepository) MarkIncluded(ctx context.Context, txHash string, inc Inclusion) error {
	query := `
		UPDATE submissions
		SET included_at = $2, block_number = $3, status = $4, gas_used = $5
		WHERE tx_hash = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		txHash,
		inc.IncludedAt,
		int64(inc.BlockNumber),
		int64(inc.Status),
		int64(inc.GasUsed),
	)
	if err != nil {
		return fmt.Errorf("failed to mark submission included: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("submission %s: %w", txHash, ErrNotFound)
	}
	return nil
}

// ListSubmissions lists submissions, newest first
func (r *PostgresRepository) ListSubmissions(ctx context.Context, limit, offset int) ([]*models.Submission, error) {
	query := `
		SELECT id::text, tx_hash, from_address, to_address, method, path, submitted_at,
			included_at, block_number, status, gas_used
		FROM submissions
		ORDER BY submitted_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, pageLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		var (
			s                      models.Submission
			id                     string
			includedAt             *time.Time
			block, status, gasUsed *int64
		)
		if err := rows.Scan(
			&id,
			&s.TxHash,
			&s.From,
			&s.To,
			&s.Method,
			&s.Path,
			&s.SubmittedAt,
			&includedAt,
			&block,
			&status,
			&gasUsed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}

		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid submission id %q: %w", id, err)
		}
		s.IncludedAt = includedAt
		s.BlockNumber = toUint64(block)
		s.Status = toUint64(status)
		s.GasUsed = toUint64(gasUsed)
		submissions = append(submissions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return submissions, nil
}

// SaveDeployment saves a verified deployment
func (r *PostgresRepository) SaveDeployment(ctx context.Context, d *models.Deployment) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	query := `
		INSERT INTO deployments (id, name, address, tx_hash, deployer, block_number, gas_used, deployed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (address) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		d.ID.String(),
		d.Name,
		d.Address,
		d.TxHash,
		d.Deployer,
		int64(d.BlockNumber),
		int64(d.GasUsed),
		d.DeployedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save deployment: %w", err)
	}
	return nil
}

// GetDeployment retrieves a deployment by contract address
func (r *PostgresRepository) GetDeployment(ctx context.Context, address string) (*models.Deployment, error) {
	query := `
		SELECT id::text, name, address, tx_hash, deployer, block_number, gas_used, deployed_at
		FROM deployments
		WHERE lower(address) = lower($1)
	`

	d, err := scanDeployment(r.pool.QueryRow(ctx, query, address))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("deployment %s: %w", address, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment: %w", err)
	}
	return d, nil
}

// ListDeployments lists deployments, newest first
func (r *PostgresRepository) ListDeployments(ctx context.Context, limit, offset int) ([]*models.Deployment, error) {
	query := `
		SELECT id::text, name, address, tx_hash, deployer, block_number, gas_used, deployed_at
		FROM deployments
		ORDER BY deployed_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, pageLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []*models.Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deployments: %w", err)
	}
	return deployments, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanDeployment(row pgx.Row) (*models.Deployment, error) {
	var (
		d              models.Deployment
		id             string
		block, gasUsed int64
	)
	if err := row.Scan(&id, &d.Name, &d.Address, &d.TxHash, &d.Deployer, &block, &gasUsed, &d.DeployedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid deployment id %q: %w", id, err)
	}
	d.ID = parsed
	d.BlockNumber = uint64(block)
	d.GasUsed = uint64(gasUsed)
	return &d, nil
}

// pageLimit maps a non-positive limit to "no limit"
func pageLimit(limit int) int {
	if limit <= 0 {
		return math.MaxInt32
	}
	return limit
}

func toUint64(v *int64) *uint64 {
	if v == nil {
		return nil
	}
	u := uint64(*v)
	return &u
}
