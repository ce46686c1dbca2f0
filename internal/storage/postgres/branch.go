package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gabrielatds/ambev/internal/domain/branch"
)

const (
	getBranchByIDSQL = `SELECT id, name, address, city FROM branches WHERE id = $1`

	listBranchesSQL = `SELECT id, name, address, city FROM branches ORDER BY name`

	upsertBranchSQL = `INSERT INTO branches (id, name, address, city) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address, city = EXCLUDED.city`
)

var _ branch.Repository = (*BranchRepository)(nil)

// BranchRepository implements branch.Repository backed by PostgreSQL.
type BranchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository returns a BranchRepository that uses the given pool.
func NewBranchRepository(pool *pgxpool.Pool) *BranchRepository {
	return &BranchRepository{pool: pool}
}

// GetByID returns a single branch by its identifier. It returns
// branch.ErrNotFound when no row matches.
func (r *BranchRepository) GetByID(ctx context.Context, id uuid.UUID) (*branch.Branch, error) {
	rows, err := r.pool.Query(ctx, getBranchByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting branch %q: %w", id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBranch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, branch.ErrNotFound
		}
		return nil, fmt.Errorf("getting branch %q: %w", id, err)
	}
	return &b, nil
}

// List returns all branches ordered by name.
func (r *BranchRepository) List(ctx context.Context) ([]branch.Branch, error) {
	rows, err := r.pool.Query(ctx, listBranchesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	return pgx.CollectRows(rows, scanBranch)
}

// Upsert inserts or updates a branch by ID.
func (r *BranchRepository) Upsert(ctx context.Context, b branch.Branch) error {
	_, err := r.pool.Exec(ctx, upsertBranchSQL, b.ID, b.Name, b.Address, b.City)
	if err != nil {
		return fmt.Errorf("upserting branch %q: %w", b.ID, err)
	}
	return nil
}

func scanBranch(row pgx.CollectableRow) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.City)
	return b, err
}
