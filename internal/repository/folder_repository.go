package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"
	"github.com/jmoiron/sqlx"

	"docvault/internal/domain"
)

const folderColumns = `
        folder_id, name, favorite, parent_id, town_id,
        created_by, updated_by, deleted_by,
        created_at, updated_at, deleted_at`

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (folder_id, name, favorite, parent_id, town_id, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	err := sqlx.GetContext(ctx, queryer(ctx, r.db), folder, query,
		folder.ID,
		folder.Name,
		folder.Favorite,
		folder.ParentID,
		folder.TownID,
		folder.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

// Get находит папку по идентификатору независимо от города и состояния.
// Используется там, где принадлежность городу проверяется явно.
func (r *FolderRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE folder_id = $1`

	var folder domain.Folder
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &folder, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("folder not found")
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetLive находит живую папку города
func (r *FolderRepository) GetLive(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE folder_id = $1 AND town_id = $2 AND deleted_at IS NULL`

	var folder domain.Folder
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &folder, query, id, townID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("folder not found")
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetAny находит папку города в любом состоянии, включая корзину
func (r *FolderRepository) GetAny(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE folder_id = $1 AND town_id = $2`

	var folder domain.Folder
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &folder, query, id, townID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("folder not found")
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// GetTrashed находит папку города, лежащую в корзине
func (r *FolderRepository) GetTrashed(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE folder_id = $1 AND town_id = $2 AND deleted_at IS NOT NULL`

	var folder domain.Folder
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &folder, query, id, townID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("folder not found")
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// ListLiveByTown возвращает все живые папки города. Каскадные операции
// строят из этого списка индекс родитель -> дети.
func (r *FolderRepository) ListLiveByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE town_id = $1 AND deleted_at IS NULL
        ORDER BY created_at`

	var folders []domain.Folder
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &folders, query, townID); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return folders, nil
}

// ListLiveByParent возвращает живых детей родителя; parentID равный nil
// перечисляет корневые папки города.
func (r *FolderRepository) ListLiveByParent(ctx context.Context, townID uuid.UUID, parentID *uuid.UUID) ([]domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE town_id = $1
          AND parent_id IS NOT DISTINCT FROM $2
          AND deleted_at IS NULL
        ORDER BY name`

	var folders []domain.Folder
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &folders, query, townID, parentID); err != nil {
		return nil, fmt.Errorf("failed to list folders by parent: %w", err)
	}

	return folders, nil
}

// ListTrashedByTown возвращает все папки города, находящиеся в корзине
func (r *FolderRepository) ListTrashedByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE town_id = $1 AND deleted_at IS NOT NULL
        ORDER BY deleted_at DESC`

	var folders []domain.Folder
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &folders, query, townID); err != nil {
		return nil, fmt.Errorf("failed to list trashed folders: %w", err)
	}

	return folders, nil
}

// ListByTown возвращает все папки города независимо от состояния
func (r *FolderRepository) ListByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error) {
	query := `
        SELECT ` + folderColumns + `
        FROM folders
        WHERE town_id = $1
        ORDER BY created_at`

	var folders []domain.Folder
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &folders, query, townID); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return folders, nil
}

// ExistsByNameAndParent проверяет, есть ли среди живых детей родителя папка
// с таким именем. Для корневых папок parentID равен nil.
func (r *FolderRepository) ExistsByNameAndParent(ctx context.Context, townID uuid.UUID, parentID *uuid.UUID, name string) (bool, error) {
	query := `
        SELECT EXISTS(
            SELECT 1 FROM folders
            WHERE town_id = $1
              AND name = $2
              AND parent_id IS NOT DISTINCT FROM $3
              AND deleted_at IS NULL
        )`

	var exists bool
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &exists, query, townID, name, parentID)
	if err != nil {
		return false, fmt.Errorf("failed to check folder existence: %w", err)
	}

	return exists, nil
}

// Update сохраняет имя, флаг избранного и отметку об изменившем
func (r *FolderRepository) Update(ctx context.Context, folder *domain.Folder) error {
	query := `
        UPDATE folders
        SET name = $1, favorite = $2, updated_by = $3, updated_at = CURRENT_TIMESTAMP
        WHERE folder_id = $4
        RETURNING updated_at`

	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &folder.UpdatedAt, query,
		folder.Name, folder.Favorite, folder.UpdatedBy, folder.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trace.NotFound("folder not found")
		}
		return fmt.Errorf("failed to update folder: %w", err)
	}

	return nil
}

// SetParent переносит папку под нового родителя
func (r *FolderRepository) SetParent(ctx context.Context, id, parentID, updatedBy uuid.UUID) error {
	query := `
        UPDATE folders
        SET parent_id = $1, updated_by = $2, updated_at = CURRENT_TIMESTAMP
        WHERE folder_id = $3`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, parentID, updatedBy, id)
	if err != nil {
		return fmt.Errorf("failed to move folder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return trace.NotFound("folder not found")
	}

	return nil
}

// MarkDeleted помещает папки в корзину
func (r *FolderRepository) MarkDeleted(ctx context.Context, ids []uuid.UUID, deletedBy uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	args := []interface{}{at, deletedBy}
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
        UPDATE folders
        SET deleted_at = $1, deleted_by = $2
        WHERE folder_id IN (%s)`, placeholders(3, len(ids)))

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark folders as deleted: %w", err)
	}

	return nil
}

// ClearDeleted возвращает папки из корзины
func (r *FolderRepository) ClearDeleted(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
        UPDATE folders
        SET deleted_at = NULL, deleted_by = NULL
        WHERE folder_id IN (%s)`, placeholders(1, len(ids)))

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to restore folders: %w", err)
	}

	return nil
}

// Remove удаляет записи папок окончательно
func (r *FolderRepository) Remove(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`DELETE FROM folders WHERE folder_id IN (%s)`, placeholders(1, len(ids)))

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete folders: %w", err)
	}

	return nil
}
