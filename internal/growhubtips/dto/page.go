package dto

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
)

type PageLight struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Published bool      `json:"published"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Page struct {
	PageLight

	Content         doctree.Document `json:"content"`
	RenderedHTML    string           `json:"rendered_html"`
	MetaTitle       string           `json:"meta_title"`
	MetaDescription string           `json:"meta_description"`
}
