package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role определяет роль пользователя внутри города
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleBasic   Role = "basic"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleBasic:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Role      Role      `json:"role" db:"role"`
	TownID    uuid.UUID `json:"town_id" db:"town_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Principal представляет уже аутентифицированного пользователя запроса.
// Разбор учетных данных происходит в слое auth, сервисы видят только это.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	TownID uuid.UUID
}
