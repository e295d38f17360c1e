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

const permissionColumns = `
        permission_id, user_id, folder_id, file_id, permission_type,
        granted_by, created_at`

type PermissionRepository struct {
	db *sqlx.DB
}

func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Create(ctx context.Context, permission *domain.Permission) error {
	query := `
        INSERT INTO permissions (permission_id, user_id, folder_id, file_id,
                                 permission_type, granted_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &permission.CreatedAt, query,
		permission.ID,
		permission.UserID,
		permission.FolderID,
		permission.FileID,
		permission.Type,
		permission.GrantedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}

	return nil
}

func (r *PermissionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE permission_id = $1`

	var permission domain.Permission
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &permission, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("permission not found")
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	return &permission, nil
}

// Exists проверяет, есть ли право ровно на этот ресурс. Проверка всегда идет
// по точному идентификатору: право на папку ничего не дает её содержимому.
func (r *PermissionRepository) Exists(ctx context.Context, userID, resourceID uuid.UUID, isFolder bool, permType domain.PermissionType) (bool, error) {
	var query string
	if isFolder {
		query = `
            SELECT EXISTS(
                SELECT 1 FROM permissions
                WHERE user_id = $1 AND folder_id = $2 AND permission_type = $3
                  AND file_id IS NULL
            )`
	} else {
		query = `
            SELECT EXISTS(
                SELECT 1 FROM permissions
                WHERE user_id = $1 AND file_id = $2 AND permission_type = $3
                  AND folder_id IS NULL
            )`
	}

	var exists bool
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &exists, query, userID, resourceID, permType)
	if err != nil {
		return false, fmt.Errorf("failed to check permission existence: %w", err)
	}

	return exists, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := queryer(ctx, r.db).ExecContext(ctx,
		`DELETE FROM permissions WHERE permission_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete permission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return trace.NotFound("permission not found")
	}

	return nil
}

func (r *PermissionRepository) ListAll(ctx context.Context) ([]domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions ORDER BY created_at DESC`

	var permissions []domain.Permission
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &permissions, query); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}

func (r *PermissionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Permission, error) {
	query := `
        SELECT ` + permissionColumns + `
        FROM permissions
        WHERE user_id = $1
        ORDER BY created_at DESC`

	var permissions []domain.Permission
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &permissions, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}

func (r *PermissionRepository) ListByGranter(ctx context.Context, granterID uuid.UUID) ([]domain.Permission, error) {
	query := `
        SELECT ` + permissionColumns + `
        FROM permissions
        WHERE granted_by = $1
        ORDER BY created_at DESC`

	var permissions []domain.Permission
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &permissions, query, granterID); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}
