package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gravitational/trace"
	"github.com/jmoiron/sqlx"

	"docvault/internal/domain"
)

// UserRepository читает пользователей. Регистрация и управление ими живут в
// сервисе аутентификации, здесь пользователи нужны только для проверок при
// выдаче прав.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
        SELECT user_id, username, role, town_id, created_at
        FROM users
        WHERE user_id = $1`

	var user domain.User
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
