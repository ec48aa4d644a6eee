// Пакет фоновой очистки платформы. Находит в хранилище файлы, не
// зарегистрированные в медиатеке, и перемещает их в директорию "unknown/",
// а также удаляет устаревшие черновики автосохранения.
//
// Основные возможности:
//   - Обнаружение и перемещение осиротевших файлов хранилища.
//   - Удаление черновиков, которые давно не обновлялись.
package maintenance

import (
	"log/slog"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	filestorage "github.com/growhub-it/growhubtips/internal/growhubtips/file-storage"
	"gorm.io/gorm"
)

type AssetsCleaner struct {
	db *gorm.DB
	si filestorage.FileStorage
}

func NewAssetCleaner(db *gorm.DB, si filestorage.FileStorage) *AssetsCleaner {
	return &AssetsCleaner{db, si}
}

func (ac *AssetsCleaner) CleanAssets() {
	slog.Info("Start assets cleaning")
	var moved int
	if err := ac.si.ListRoot(func(fi filestorage.FileInfo) error {
		if strings.Contains(fi.Name, "unknown/") {
			return nil
		}

		if _, err := uuid.FromString(fi.Name); err != nil {
			if err := ac.si.Move(fi.Name, "unknown/"+fi.Name); err != nil {
				return err
			}
			moved++
			return nil
		}

		var exist bool
		if err := ac.db.
			Where("id = ? or thumbnail_id = ?", fi.Name, fi.Name).
			Select("count(*) > 0").
			Model(&dao.MediaAsset{}).
			Find(&exist).Error; err != nil && !strings.Contains(err.Error(), "invalid input syntax") {
			return err
		}
		if exist {
			return nil
		}
		if err := ac.si.Move(fi.Name, "unknown/"+fi.Name); err != nil {
			return err
		}
		moved++
		return nil
	}); err != nil {
		slog.Error("Clean assets fail", "err", err)
	}
	slog.Info("Finish assets cleaning", "moved", moved)
}
