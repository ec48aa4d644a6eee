package dao

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB создает тестовую БД SQLite в памяти
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE content_drafts (
			doc_id TEXT PRIMARY KEY,
			payload BLOB,
			updated_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestDraftSaverUpsert(t *testing.T) {
	db := setupTestDB(t)
	saver := DraftSaver{DB: db}

	docId := GenID()

	require.NoError(t, saver.SaveContent(context.Background(), docId, []byte(`{"type":"doc"}`)))

	draft, err := GetDraft(db, docId)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"type":"doc"}`), draft.Payload)

	// Повторная запись перезаписывает строку, а не создает новую
	require.NoError(t, saver.SaveContent(context.Background(), docId, []byte(`{"type":"doc","content":[]}`)))

	draft, err = GetDraft(db, docId)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"type":"doc","content":[]}`), draft.Payload)

	var count int64
	require.NoError(t, db.Model(&ContentDraft{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteDraft(t *testing.T) {
	db := setupTestDB(t)
	saver := DraftSaver{DB: db}

	docId := GenID()
	require.NoError(t, saver.SaveContent(context.Background(), docId, []byte(`{"type":"doc"}`)))
	require.NoError(t, DeleteDraft(db, docId))

	_, err := GetDraft(db, docId)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Удаление отсутствующего черновика не ошибка
	require.NoError(t, DeleteDraft(db, GenID()))
}

func TestDeleteStaleDrafts(t *testing.T) {
	db := setupTestDB(t)

	stale := ContentDraft{
		DocId:     GenID(),
		Payload:   []byte(`{"type":"doc"}`),
		UpdatedAt: time.Now().Add(-time.Hour * 24 * 40),
	}
	fresh := ContentDraft{
		DocId:     GenID(),
		Payload:   []byte(`{"type":"doc"}`),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	deleted, err := DeleteStaleDrafts(db, time.Hour*24*30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = GetDraft(db, stale.DocId)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = GetDraft(db, fresh.DocId)
	assert.NoError(t, err)
}
