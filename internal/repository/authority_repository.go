package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civiceye/internal/domain"
)

// AuthorityRepository handles persistence for staff accounts.
type AuthorityRepository interface {
	Create(ctx context.Context, authority *domain.Authority) error
	GetByID(ctx context.Context, id int64) (*domain.Authority, error)
	GetByUsername(ctx context.Context, username string) (*domain.Authority, error)
}

type authorityRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorityRepository instantiates the repository.
func NewAuthorityRepository(pool *pgxpool.Pool) AuthorityRepository {
	return &authorityRepository{pool: pool}
}

func (r *authorityRepository) Create(ctx context.Context, authority *domain.Authority) error {
	const query = `
        INSERT INTO authorities (username, email, password_hash, department_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		authority.Username,
		authority.Email,
		authority.PasswordHash,
		authority.DepartmentID,
	).Scan(&authority.ID, &authority.CreatedAt)
}

func (r *authorityRepository) GetByID(ctx context.Context, id int64) (*domain.Authority, error) {
	const query = `
        SELECT id, username, email, password_hash, department_id, created_at
        FROM authorities WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *authorityRepository) GetByUsername(ctx context.Context, username string) (*domain.Authority, error) {
	const query = `
        SELECT id, username, email, password_hash, department_id, created_at
        FROM authorities WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *authorityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Authority, error) {
	var authority domain.Authority
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&authority.ID,
		&authority.Username,
		&authority.Email,
		&authority.PasswordHash,
		&authority.DepartmentID,
		&authority.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &authority, nil
}
