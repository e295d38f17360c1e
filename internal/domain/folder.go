package domain

import (
	"time"

	"github.com/google/uuid"
)

type Folder struct {
	ID        uuid.UUID  `json:"id" db:"folder_id"`
	Name      string     `json:"name" db:"name"`
	Favorite  bool       `json:"favorite" db:"favorite"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	TownID    uuid.UUID  `json:"town_id" db:"town_id"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty" db:"updated_by"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty" db:"deleted_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsDeleted сообщает, находится ли папка в корзине
func (f *Folder) IsDeleted() bool {
	return f.DeletedAt != nil
}

type FolderContent struct {
	Folders []Folder `json:"folders"`
	Files   []File   `json:"files"`
}

// FolderTreeNode представляет узел в дереве папок города
type FolderTreeNode struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Favorite bool             `json:"favorite"`
	Children []FolderTreeNode `json:"children"`
}
