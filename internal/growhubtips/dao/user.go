// DAO (Data Access Object) для работы с данными пользователей.
//
// Основные возможности:
//   - CRUD операции с пользователями.
//   - Вычисление публичного URL аватара.
package dao

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Пользователи
type User struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	Password  string  `json:"-"`
	Username  *string `json:"username" gorm:"uniqueIndex:,where:deleted_at is NULL" validate:"omitempty,username"`
	Email     string  `json:"email" gorm:"uniqueIndex:,where:deleted_at is NULL and email <> ''"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Bio       string  `json:"bio"`

	Avatar   string        `json:"avatar" gorm:"-"`
	AvatarId uuid.NullUUID `json:"avatar_id" gorm:"type:uuid"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	UpdatedAt time.Time      `json:"-"`

	IsSuperuser bool `json:"is_superuser"`
	IsActive    bool `json:"is_active" gorm:"default:true"`

	LastActive     *time.Time `json:"last_active" extensions:"x-nullable"`
	LastLoginTime  *time.Time `json:"-" extensions:"x-nullable"`
	LastLoginIp    string     `json:"-"`
	TokenUpdatedAt *time.Time `json:"-" extensions:"x-nullable"`

	AvatarAsset *MediaAsset `json:"-" gorm:"foreignKey:AvatarId" extensions:"x-nullable"`
}

func (u User) GetId() string {
	return u.ID.String()
}

func (u User) GetString() string {
	return u.Email
}

func (u User) GetEntityType() string {
	return "user"
}

func (u *User) ToLightDTO() *dto.UserLight {
	if u == nil {
		return nil
	}
	return &dto.UserLight{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		AvatarId:  u.AvatarId,
	}
}

func (u *User) ToDTO() *dto.User {
	if u == nil {
		return nil
	}

	return &dto.User{
		UserLight: *u.ToLightDTO(),

		Bio:         u.Bio,
		CreatedAt:   u.CreatedAt,
		LastActive:  u.LastActive,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = GenUUID()
	}
	u.CreatedAt = time.Now()

	return
}

func (u *User) AfterFind(tx *gorm.DB) (err error) {
	if u.AvatarId.Valid {
		u.Avatar = Config.WebURL.String() + filepath.Join("/", "api", "media", u.AvatarId.UUID.String()) + "/"
	} else {
		u.AvatarAsset = nil
	}

	return nil
}

func (u *User) String() string {
	return fmt.Sprintf("%s (%s)", u.ID, u.Email)
}

func (u *User) GetName() string {
	if u.FirstName != "" && u.LastName != "" {
		return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	}
	return u.Email
}

func UpdateUserLastActivityTime(tx *gorm.DB, user *User) error {
	// User table update cooldown
	if user.LastActive != nil && time.Since(*user.LastActive) <= time.Second*10 {
		return nil
	}
	return tx.Omit(clause.Associations).Model(user).UpdateColumn("last_active", time.Now()).Error
}
