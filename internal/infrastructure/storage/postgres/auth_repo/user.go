// Package auth_repo provides the PostgreSQL implementation of the
// admin user repository.
package auth_repo

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopper/internal/core/apperror"
	"shopper/internal/domain/auth"
	"shopper/internal/infrastructure/storage/postgres"
)

var userColumns = []string{
	"id", "email", "password_hash", "name",
	"is_admin", "is_active", "created_at", "updated_at",
}

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	pool *postgres.Pool
}

// NewUserRepo creates a user repository over the pool.
func NewUserRepo(pool *postgres.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email}, email)
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*auth.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id}, id)
}

func (r *UserRepo) getOne(ctx context.Context, pred sq.Eq, ref any) (*auth.User, error) {
	query, args, err := sq.Select(userColumns...).
		From("admin_users").
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.pool, &user, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", ref)
		}
		return nil, apperror.NewDataStore(err)
	}
	return &user, nil
}
