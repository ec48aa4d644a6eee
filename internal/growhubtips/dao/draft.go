// DAO для серверных черновиков автосохранения.
package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Черновики автосохранения. Одна строка на документ, содержимое
// перезаписывается каждой записью координатора.
type ContentDraft struct {
	DocId     string    `json:"doc_id" gorm:"primaryKey"`
	Payload   []byte    `json:"payload" gorm:"type:jsonb"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ContentDraft) TableName() string { return "content_drafts" }

// DraftSaver пишет черновики автосохранения в базу данных.
// Реализует autosave.Saver.
type DraftSaver struct {
	DB *gorm.DB
}

func (s DraftSaver) SaveContent(ctx context.Context, docID string, payload []byte) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&ContentDraft{
		DocId:     docID,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}).Error
}

// GetDraft возвращает черновик документа, если он есть.
func GetDraft(db *gorm.DB, docID string) (*ContentDraft, error) {
	var draft ContentDraft
	if err := db.Where("doc_id = ?", docID).First(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

// DeleteDraft удаляет черновик документа. Вызывается после явного
// сохранения публикации.
func DeleteDraft(db *gorm.DB, docID string) error {
	return db.Where("doc_id = ?", docID).Delete(&ContentDraft{}).Error
}

// DeleteStaleDrafts удаляет черновики старше порога.
func DeleteStaleDrafts(db *gorm.DB, olderThan time.Duration) (int64, error) {
	res := db.Where("updated_at < ?", time.Now().Add(-olderThan)).Delete(&ContentDraft{})
	return res.RowsAffected, res.Error
}
