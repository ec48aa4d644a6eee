// DTO-представления сущностей для передачи в интерфейс.
package dto

import (
	"time"

	"github.com/gofrs/uuid"
)

type UserLight struct {
	ID        uuid.UUID     `json:"id"`
	Username  *string       `json:"username" extensions:"x-nullable"`
	Email     string        `json:"email"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Avatar    string        `json:"avatar"`
	AvatarId  uuid.NullUUID `json:"avatar_id"`
}

type User struct {
	UserLight

	Bio         string     `json:"bio"`
	CreatedAt   time.Time  `json:"created_at"`
	LastActive  *time.Time `json:"last_active" extensions:"x-nullable"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
}
