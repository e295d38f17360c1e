package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"
)

// PermissionType определяет тип права доступа
type PermissionType string

const (
	PermissionRead   PermissionType = "READ"
	PermissionWrite  PermissionType = "WRITE"
	PermissionDelete PermissionType = "DELETE"
)

func (t PermissionType) Valid() bool {
	switch t {
	case PermissionRead, PermissionWrite, PermissionDelete:
		return true
	}
	return false
}

// Permission — выданное право: один пользователь, один конкретный ресурс
// (папка или файл, но не оба сразу), один тип операции.
type Permission struct {
	ID        uuid.UUID      `json:"id" db:"permission_id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	FolderID  *uuid.UUID     `json:"folder_id,omitempty" db:"folder_id"`
	FileID    *uuid.UUID     `json:"file_id,omitempty" db:"file_id"`
	Type      PermissionType `json:"permission_type" db:"permission_type"`
	GrantedBy uuid.UUID      `json:"granted_by" db:"granted_by"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// NewPermission создает право доступа, проверяя что ресурс задан ровно одним
// из двух идентификаторов.
func NewPermission(userID uuid.UUID, folderID, fileID *uuid.UUID, permType PermissionType, grantedBy uuid.UUID) (*Permission, error) {
	if (folderID == nil) == (fileID == nil) {
		return nil, trace.BadParameter("either folder id or file id must be provided")
	}
	if !permType.Valid() {
		return nil, trace.BadParameter("unknown permission type: %s", permType)
	}

	return &Permission{
		ID:        uuid.New(),
		UserID:    userID,
		FolderID:  folderID,
		FileID:    fileID,
		Type:      permType,
		GrantedBy: grantedBy,
	}, nil
}
