// DAO для работы со статическими страницами (о проекте, контакты и т.д.).
package dao

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/types"
	"gorm.io/gorm"
)

// Статические страницы
type Page struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Slug  string `json:"slug" gorm:"uniqueIndex:,where:deleted_at is NULL" validate:"slug"`
	Title string `json:"title"`

	Content      doctree.Document   `json:"content" gorm:"type:jsonb"`
	RenderedHTML types.RedactorHTML `json:"rendered_html" gorm:"type:text"`

	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`

	Published bool `json:"published" gorm:"default:false;index"`

	URL string `json:"url" gorm:"-"`
}

func (p Page) GetId() string {
	return p.ID.String()
}

func (p Page) GetString() string {
	return p.Title
}

func (p Page) GetEntityType() string {
	return "page"
}

func (p *Page) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = GenUUID()
	}
	return
}

func (p *Page) AfterFind(tx *gorm.DB) (err error) {
	p.URL = Config.WebURL.String() + "/" + p.Slug + "/"
	return nil
}

// SEOTitle возвращает заголовок для meta-тегов с откатом на заголовок страницы.
func (p *Page) SEOTitle() string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	return p.Title
}

func (p *Page) ToLightDTO() *dto.PageLight {
	if p == nil {
		return nil
	}
	return &dto.PageLight{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Published: p.Published,
		URL:       p.URL,
		UpdatedAt: p.UpdatedAt,
	}
}

func (p *Page) ToDTO() *dto.Page {
	if p == nil {
		return nil
	}
	return &dto.Page{
		PageLight: *p.ToLightDTO(),

		Content:         p.Content,
		RenderedHTML:    p.RenderedHTML.Body,
		MetaTitle:       p.SEOTitle(),
		MetaDescription: p.MetaDescription,
	}
}
