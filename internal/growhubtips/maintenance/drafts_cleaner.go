package maintenance

import (
	"log/slog"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/autosave"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"gorm.io/gorm"
)

// Черновики, не обновлявшиеся дольше этого срока, считаются брошенными.
const staleDraftAge = time.Hour * 24 * 30

type DraftsCleaner struct {
	db       *gorm.DB
	fallback *autosave.BoltFallback
}

func NewDraftsCleaner(db *gorm.DB, fallback *autosave.BoltFallback) *DraftsCleaner {
	return &DraftsCleaner{db, fallback}
}

func (dc *DraftsCleaner) CleanDrafts() {
	slog.Info("Start drafts cleaning")

	deleted, err := dao.DeleteStaleDrafts(dc.db, staleDraftAge)
	if err != nil {
		slog.Error("Clean stale drafts fail", "err", err)
		return
	}

	// Записи локального резерва, для которых черновик уже удален
	var cleared int
	if dc.fallback != nil {
		keys, err := dc.fallback.Keys()
		if err != nil {
			slog.Error("List fallback keys fail", "err", err)
		}
		for _, key := range keys {
			if _, err := dao.GetDraft(dc.db, key); err == gorm.ErrRecordNotFound {
				if err := dc.fallback.Delete(key); err != nil {
					slog.Error("Delete fallback draft fail", "doc_id", key, "err", err)
					continue
				}
				cleared++
			}
		}
	}

	slog.Info("Finish drafts cleaning", "deleted", deleted, "fallback_cleared", cleared)
}
