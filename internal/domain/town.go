package domain

import (
	"time"

	"github.com/google/uuid"
)

// Town — граница изоляции: каждая папка и файл принадлежат ровно одному городу
type Town struct {
	ID        uuid.UUID `json:"id" db:"town_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
