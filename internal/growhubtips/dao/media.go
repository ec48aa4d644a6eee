// DAO для работы с медиатекой.
//
// Основные возможности:
//   - Учет загруженных медиафайлов и их миниатюр.
//   - Удаление файла из хранилища вместе с записью.
//   - Проверка ссылок на файл перед удалением.
package dao

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"gorm.io/gorm"
)

// Медиафайлы
type MediaAsset struct {
	Id        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `json:"created_at"`

	Name        string `json:"name" gorm:"index"`
	FileSize    int64  `json:"size"`
	ContentType string `json:"content_type"`

	ThumbnailId uuid.NullUUID `json:"thumbnail_id" gorm:"type:uuid"`

	UploadedById uuid.NullUUID `json:"uploaded_by_id" gorm:"type:uuid"`

	URL string `json:"url" gorm:"-"`

	UploadedBy *User `json:"-" gorm:"foreignKey:UploadedById" extensions:"x-nullable"`
}

func (asset MediaAsset) GetId() string {
	return asset.Id.String()
}

func (asset MediaAsset) GetString() string {
	return asset.Name
}

func (asset MediaAsset) GetEntityType() string {
	return "media"
}

// IsImage сообщает, является ли файл изображением.
func (asset *MediaAsset) IsImage() bool {
	return strings.HasPrefix(asset.ContentType, "image/")
}

func (asset *MediaAsset) BeforeCreate(tx *gorm.DB) (err error) {
	if asset.Id == uuid.Nil {
		asset.Id = GenUUID()
	}
	asset.CreatedAt = time.Now()
	return
}

func (asset *MediaAsset) AfterFind(tx *gorm.DB) (err error) {
	asset.URL = Config.WebURL.String() + filepath.Join("/", "api", "media", asset.Id.String()) + "/"
	return nil
}

// Удаляет файл и его миниатюру из хранилища вместе с записью.
func (asset *MediaAsset) BeforeDelete(tx *gorm.DB) error {
	exist, err := FileStorage.Exist(asset.Id)
	if err != nil {
		return err
	}
	if exist {
		if err := FileStorage.Delete(asset.Id); err != nil {
			return err
		}
	}

	if asset.ThumbnailId.Valid {
		if err := FileStorage.Delete(asset.ThumbnailId.UUID); err != nil {
			return err
		}
	}
	return nil
}

// CanBeDeleted проверяет, можно ли удалить медиафайл. Файл нельзя удалить,
// пока на него ссылается обложка публикации, аватар пользователя или
// контент публикации/страницы.
func (asset *MediaAsset) CanBeDeleted(tx *gorm.DB) (bool, error) {
	var exists bool
	if err := tx.Raw(`
        SELECT EXISTS(SELECT 1 FROM posts WHERE cover_asset_id = ? AND deleted_at IS NULL)
           OR EXISTS(SELECT 1 FROM users WHERE avatar_id = ? AND deleted_at IS NULL)
           OR EXISTS(SELECT 1 FROM posts WHERE content::text LIKE '%' || ? || '%' AND deleted_at IS NULL)
           OR EXISTS(SELECT 1 FROM pages WHERE content::text LIKE '%' || ? || '%' AND deleted_at IS NULL)`,
		asset.Id, asset.Id, asset.Id.String(), asset.Id.String()).Scan(&exists).Error; err != nil {
		return false, err
	}
	return !exists, nil
}

func (asset *MediaAsset) ToDTO() *dto.MediaAsset {
	if asset == nil {
		return nil
	}
	return &dto.MediaAsset{
		Id:          asset.Id,
		Name:        asset.Name,
		FileSize:    asset.FileSize,
		ContentType: asset.ContentType,
		ThumbnailId: asset.ThumbnailId,
		CreatedAt:   asset.CreatedAt,
		URL:         asset.URL,
		UploadedBy:  asset.UploadedBy.ToLightDTO(),
	}
}
