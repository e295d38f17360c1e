package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"docvault/internal/domain"
)

// Контракты слоя хранения. Реализации живут в internal/repository;
// сервисы зависят только от этих интерфейсов.

type FolderStore interface {
	Create(ctx context.Context, folder *domain.Folder) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Folder, error)
	GetLive(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error)
	GetAny(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error)
	GetTrashed(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error)
	ListLiveByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error)
	ListLiveByParent(ctx context.Context, townID uuid.UUID, parentID *uuid.UUID) ([]domain.Folder, error)
	ListTrashedByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error)
	ListByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error)
	ExistsByNameAndParent(ctx context.Context, townID uuid.UUID, parentID *uuid.UUID, name string) (bool, error)
	Update(ctx context.Context, folder *domain.Folder) error
	SetParent(ctx context.Context, id, parentID, updatedBy uuid.UUID) error
	MarkDeleted(ctx context.Context, ids []uuid.UUID, deletedBy uuid.UUID, at time.Time) error
	ClearDeleted(ctx context.Context, ids []uuid.UUID) error
	Remove(ctx context.Context, ids []uuid.UUID) error
}

type FileStore interface {
	Create(ctx context.Context, file *domain.File) error
	GetLive(ctx context.Context, id, townID uuid.UUID) (*domain.File, error)
	GetAny(ctx context.Context, id, townID uuid.UUID) (*domain.File, error)
	GetTrashed(ctx context.Context, id, townID uuid.UUID) (*domain.File, error)
	ListLiveByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error)
	ListTrashedByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error)
	ListByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error)
	ListTrashedByTown(ctx context.Context, townID uuid.UUID) ([]domain.File, error)
	Update(ctx context.Context, file *domain.File) error
	SetFolder(ctx context.Context, id, folderID, updatedBy uuid.UUID) error
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkDeleted(ctx context.Context, ids []uuid.UUID, deletedBy uuid.UUID, at time.Time) error
	ClearDeleted(ctx context.Context, ids []uuid.UUID) error
	Remove(ctx context.Context, ids []uuid.UUID) error
}

type PermissionStore interface {
	Create(ctx context.Context, permission *domain.Permission) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Permission, error)
	Exists(ctx context.Context, userID, resourceID uuid.UUID, isFolder bool, permType domain.PermissionType) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]domain.Permission, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Permission, error)
	ListByGranter(ctx context.Context, granterID uuid.UUID) ([]domain.Permission, error)
}

type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TxRunner выполняет функцию как одну атомарную единицу работы
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
