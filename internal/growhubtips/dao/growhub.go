// DAO (Data Access Object) - предоставляет интерфейс для взаимодействия с базой данных.
// Содержит модели публикаций, страниц, пользователей, медиафайлов и черновиков
// автосохранения, а также общие помощники для пагинации и генерации идентификаторов.
//
// Основные возможности:
//   - CRUD операции над сущностями платформы.
//   - Генерация UUID для первичных ключей.
//   - Пагинация списков.
//   - Сброс пользовательских сессий.
package dao

import (
	"log/slog"
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
	filestorage "github.com/growhub-it/growhubtips/internal/growhubtips/file-storage"
	"gorm.io/gorm"
)

// GenID генерирует уникальный идентификатор в формате UUID.
// Не принимает параметров и возвращает строку, представляющую собой UUID.
func GenID() string {
	u2, _ := uuid.NewV4()
	return u2.String()
}

// GenUUID генерирует уникальный идентификатор в формате UUID. Не принимает параметров и возвращает UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

var Config *config.Config
var FileStorage filestorage.FileStorage

type SessionsReset struct {
	// id uuid IS_NULL:NO
	Id string `json:"id"`
	// user_id uuid IS_NULL:NO
	UserId string `json:"user_id" gorm:"index"`
	// reseted_at timestamp IS_NULL:NO
	ResetedAt time.Time `json:"reseted_at"`
}

// Возвращает имя таблицы для данного типа структуры.
func (SessionsReset) TableName() string { return "sessions_resets" }

// Сбрасывает сессии пользователя, создавая запись о сбросе в базе данных.
func ResetUserSessions(db *gorm.DB, user *User) error {
	return db.Create(&SessionsReset{
		Id:        GenID(),
		UserId:    user.ID.String(),
		ResetedAt: time.Now(),
	}).Error
}

type PaginationResponse struct {
	Count  int64 `json:"count"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Result any   `json:"result"`
}

func PaginationRequest(offset int, limit int, query *gorm.DB, target any) (res PaginationResponse, err error) {
	// Count query
	if err := query.Session(&gorm.Session{}).Model(target).Count(&res.Count).Error; err != nil {
		return res, err
	}

	// Data query
	if err := query.Offset(offset).Limit(limit).Find(target).Error; err != nil {
		return res, err
	}

	res.Result = target
	res.Limit = limit
	res.Offset = offset

	return res, nil
}

// AddDefaultUser создает администратора по умолчанию, если база пуста.
func AddDefaultUser(db *gorm.DB, email string, passwordHash string) {
	username := "admin"
	tm := time.Now()
	user := User{
		ID:             GenUUID(),
		Email:          email,
		Password:       passwordHash,
		Username:       &username,
		LastActive:     &tm,
		TokenUpdatedAt: &tm,
		IsActive:       true,
		IsSuperuser:    true,
	}

	if err := db.Create(&user).Error; err != nil {
		slog.Error("Create default user", "err", err)
	} else {
		slog.Info("Default user created", "email", email)
	}
}
