package domain

import (
	"time"

	"github.com/google/uuid"
)

type File struct {
	ID          uuid.UUID  `json:"id" db:"file_id"`
	Name        string     `json:"name" db:"name"`
	SizeBytes   int64      `json:"size_bytes" db:"size_bytes"`
	ContentType string     `json:"content_type" db:"content_type"`
	ObjectKey   string     `json:"-" db:"object_key"`
	Favorite    bool       `json:"favorite" db:"favorite"`
	FolderID    uuid.UUID  `json:"folder_id" db:"folder_id"`
	TownID      uuid.UUID  `json:"town_id" db:"town_id"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty" db:"uploaded_by"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
	DeletedBy   *uuid.UUID `json:"deleted_by,omitempty" db:"deleted_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastSeen    *time.Time `json:"last_seen,omitempty" db:"last_seen"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted сообщает, находится ли файл в корзине
func (f *File) IsDeleted() bool {
	return f.DeletedAt != nil
}

// FileUpload описывает входные данные загрузки файла
type FileUpload struct {
	Name        string
	ContentType string
	FolderID    uuid.UUID
	Data        []byte
}
