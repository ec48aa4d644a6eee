package dto

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/render"
	"github.com/lib/pq"
)

type PostLight struct {
	ID           uuid.UUID      `json:"id"`
	Slug         string         `json:"slug"`
	Title        string         `json:"title"`
	Excerpt      string         `json:"excerpt"`
	CoverAssetId uuid.NullUUID  `json:"cover_asset_id"`
	Tags         pq.StringArray `json:"tags"`
	Status       string         `json:"status"`
	PublishedAt  *time.Time     `json:"published_at" extensions:"x-nullable"`
	ViewsCount   int            `json:"views_count"`
	URL          string         `json:"url"`

	Author *UserLight `json:"author" extensions:"x-nullable"`
}

type Post struct {
	PostLight

	Content         doctree.Document `json:"content"`
	RenderedHTML    string           `json:"rendered_html"`
	MetaTitle       string           `json:"meta_title"`
	MetaDescription string           `json:"meta_description"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PublicPost - публикация для публичной страницы: отрендеренный HTML,
// оглавление и SEO-поля без исходного документа редактора.
type PublicPost struct {
	PostLight

	RenderedHTML    string            `json:"rendered_html"`
	TableOfContents []render.TOCEntry `json:"table_of_contents,omitempty"`
	MetaTitle       string            `json:"meta_title"`
	MetaDescription string            `json:"meta_description"`
}
