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

const fileColumns = `
        file_id, name, size_bytes, content_type, object_key, favorite,
        folder_id, town_id, uploaded_by, updated_by, deleted_by,
        created_at, updated_at, last_seen, deleted_at`

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	query := `
        INSERT INTO files (file_id, name, size_bytes, content_type, object_key,
                           favorite, folder_id, town_id, uploaded_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`

	err := sqlx.GetContext(ctx, queryer(ctx, r.db), file, query,
		file.ID,
		file.Name,
		file.SizeBytes,
		file.ContentType,
		file.ObjectKey,
		file.Favorite,
		file.FolderID,
		file.TownID,
		file.UploadedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	return nil
}

// GetLive находит живой файл города
func (r *FileRepository) GetLive(ctx context.Context, id, townID uuid.UUID) (*domain.File, error) {
	query := `
        SELECT ` + fileColumns + `
        FROM files
        WHERE file_id = $1 AND town_id = $2 AND deleted_at IS NULL`

	var file domain.File
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &file, query, id, townID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("file not found")
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

// GetTrashed находит файл города, лежащий в корзине
func (r *FileRepository) GetTrashed(ctx context.Context, id, townID uuid.UUID) (*domain.File, error) {
	query := `
        SELECT ` + fileColumns + `
        FROM files
        WHERE file_id = $1 AND town_id = $2 AND deleted_at IS NOT NULL`

	var file domain.File
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &file, query, id, townID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("file not found")
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

// GetAny находит файл города в любом состоянии
func (r *FileRepository) GetAny(ctx context.Context, id, townID uuid.UUID) (*domain.File, error) {
	query := `
        SELECT ` + fileColumns + `
        FROM files
        WHERE file_id = $1 AND town_id = $2`

	var file domain.File
	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &file, query, id, townID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trace.NotFound("file not found")
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepository) listByFolders(ctx context.Context, folderIDs []uuid.UUID, condition string) ([]domain.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	args := make([]interface{}, 0, len(folderIDs))
	for _, id := range folderIDs {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
        SELECT `+fileColumns+`
        FROM files
        WHERE folder_id IN (%s)%s
        ORDER BY created_at`, placeholders(1, len(folderIDs)), condition)

	var files []domain.File
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &files, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// ListLiveByFolders возвращает живые файлы, лежащие в указанных папках
func (r *FileRepository) ListLiveByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error) {
	return r.listByFolders(ctx, folderIDs, " AND deleted_at IS NULL")
}

// ListTrashedByFolders возвращает файлы из корзины в указанных папках
func (r *FileRepository) ListTrashedByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error) {
	return r.listByFolders(ctx, folderIDs, " AND deleted_at IS NOT NULL")
}

// ListByFolders возвращает файлы в указанных папках независимо от состояния
func (r *FileRepository) ListByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error) {
	return r.listByFolders(ctx, folderIDs, "")
}

// ListTrashedByTown возвращает все файлы города, находящиеся в корзине
func (r *FileRepository) ListTrashedByTown(ctx context.Context, townID uuid.UUID) ([]domain.File, error) {
	query := `
        SELECT ` + fileColumns + `
        FROM files
        WHERE town_id = $1 AND deleted_at IS NOT NULL
        ORDER BY deleted_at DESC`

	var files []domain.File
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &files, query, townID); err != nil {
		return nil, fmt.Errorf("failed to list trashed files: %w", err)
	}

	return files, nil
}

// Update сохраняет имя, флаг избранного и отметку об изменившем
func (r *FileRepository) Update(ctx context.Context, file *domain.File) error {
	query := `
        UPDATE files
        SET name = $1, favorite = $2, updated_by = $3, updated_at = CURRENT_TIMESTAMP
        WHERE file_id = $4
        RETURNING updated_at`

	err := sqlx.GetContext(ctx, queryer(ctx, r.db), &file.UpdatedAt, query,
		file.Name, file.Favorite, file.UpdatedBy, file.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trace.NotFound("file not found")
		}
		return fmt.Errorf("failed to update file: %w", err)
	}

	return nil
}

// SetFolder переносит файл в другую папку
func (r *FileRepository) SetFolder(ctx context.Context, id, folderID, updatedBy uuid.UUID) error {
	query := `
        UPDATE files
        SET folder_id = $1, updated_by = $2, updated_at = CURRENT_TIMESTAMP
        WHERE file_id = $3`

	result, err := queryer(ctx, r.db).ExecContext(ctx, query, folderID, updatedBy, id)
	if err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return trace.NotFound("file not found")
	}

	return nil
}

// TouchLastSeen отмечает время последнего просмотра файла
func (r *FileRepository) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE files SET last_seen = $1 WHERE file_id = $2`

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	return nil
}

// MarkDeleted помещает файлы в корзину
func (r *FileRepository) MarkDeleted(ctx context.Context, ids []uuid.UUID, deletedBy uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	args := []interface{}{at, deletedBy}
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
        UPDATE files
        SET deleted_at = $1, deleted_by = $2
        WHERE file_id IN (%s)`, placeholders(3, len(ids)))

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark files as deleted: %w", err)
	}

	return nil
}

// ClearDeleted возвращает файлы из корзины
func (r *FileRepository) ClearDeleted(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`
        UPDATE files
        SET deleted_at = NULL, deleted_by = NULL
        WHERE file_id IN (%s)`, placeholders(1, len(ids)))

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to restore files: %w", err)
	}

	return nil
}

// Remove удаляет записи файлов окончательно
func (r *FileRepository) Remove(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(`DELETE FROM files WHERE file_id IN (%s)`, placeholders(1, len(ids)))

	if _, err := queryer(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	return nil
}
