package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// UserRepository encapsulates account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, email, password_hash, role)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
