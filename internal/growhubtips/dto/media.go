package dto

import (
	"time"

	"github.com/gofrs/uuid"
)

type MediaAsset struct {
	Id          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	FileSize    int64         `json:"size"`
	ContentType string        `json:"content_type"`
	ThumbnailId uuid.NullUUID `json:"thumbnail_id"`
	CreatedAt   time.Time     `json:"created_at"`
	URL         string        `json:"url"`

	UploadedBy *UserLight `json:"uploaded_by" extensions:"x-nullable"`
}
