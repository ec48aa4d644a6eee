// DAO для работы с публикациями блога.
//
// Основные возможности:
//   - CRUD операции с публикациями.
//   - Полнотекстовый поиск по заголовку и тексту.
//   - Вычисление выдержки и поискового вектора при сохранении.
package dao

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/types"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Статусы публикации
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

const excerptMaxLen = 300

// Публикации
type Post struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Slug  string `json:"slug" gorm:"uniqueIndex:,where:deleted_at is NULL" validate:"slug"`
	Title string `json:"title"`

	Content      doctree.Document   `json:"content" gorm:"type:jsonb"`
	RenderedHTML types.RedactorHTML `json:"rendered_html" gorm:"type:text"`
	Excerpt      string             `json:"excerpt"`

	CoverAssetId uuid.NullUUID  `json:"cover_asset_id" gorm:"type:uuid"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`

	Status      string     `json:"status" gorm:"default:'draft';index"`
	PublishedAt *time.Time `json:"published_at" extensions:"x-nullable"`

	AuthorId uuid.UUID `json:"author_id" gorm:"type:uuid;index"`

	MetaTitle       string `json:"meta_title"`
	MetaDescription string `json:"meta_description"`

	ViewsCount int `json:"views_count" gorm:"default:0"`

	SearchVector types.TsVector `json:"-" gorm:"index:,type:gin"`

	URL string `json:"url" gorm:"-"`

	Author     *User       `json:"-" gorm:"foreignKey:AuthorId" extensions:"x-nullable"`
	CoverAsset *MediaAsset `json:"-" gorm:"foreignKey:CoverAssetId" extensions:"x-nullable"`
}

func (p Post) GetId() string {
	return p.ID.String()
}

func (p Post) GetString() string {
	return p.Title
}

func (p Post) GetEntityType() string {
	return "post"
}

func (p Post) Published() bool {
	return p.Status == PostStatusPublished
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = GenUUID()
	}
	return
}

func (p *Post) BeforeSave(tx *gorm.DB) (err error) {
	plain := p.Content.PlainText()

	p.Excerpt = truncateRunes(plain, excerptMaxLen)
	p.SearchVector = types.TsVector{Vector: p.Title + " " + plain}

	return
}

func (p *Post) AfterFind(tx *gorm.DB) (err error) {
	p.setURL()
	return nil
}

func (p *Post) setURL() {
	p.URL = Config.WebURL.String() + "/tips/" + p.Slug + "/"
}

// SEOTitle возвращает заголовок для meta-тегов с откатом на заголовок публикации.
func (p *Post) SEOTitle() string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	return p.Title
}

// SEODescription возвращает описание для meta-тегов с откатом на выдержку.
func (p *Post) SEODescription() string {
	if p.MetaDescription != "" {
		return p.MetaDescription
	}
	return p.Excerpt
}

func (p *Post) ToLightDTO() *dto.PostLight {
	if p == nil {
		return nil
	}
	return &dto.PostLight{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Excerpt:      p.Excerpt,
		CoverAssetId: p.CoverAssetId,
		Tags:         p.Tags,
		Status:       p.Status,
		PublishedAt:  p.PublishedAt,
		ViewsCount:   p.ViewsCount,
		URL:          p.URL,
		Author:       p.Author.ToLightDTO(),
	}
}

func (p *Post) ToDTO() *dto.Post {
	if p == nil {
		return nil
	}
	return &dto.Post{
		PostLight: *p.ToLightDTO(),

		Content:         p.Content,
		RenderedHTML:    p.RenderedHTML.Body,
		MetaTitle:       p.SEOTitle(),
		MetaDescription: p.SEODescription(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// PublishedPosts ограничивает запрос опубликованными публикациями.
func PublishedPosts(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", PostStatusPublished)
}

// PostsFullTextSearch ищет по поисковому вектору публикаций.
func PostsFullTextSearch(db *gorm.DB, query string) *gorm.DB {
	if query == "" {
		return db
	}
	return db.Where("posts.search_vector @@ plainto_tsquery('russian', ?)", query)
}

// PostsByTag ограничивает запрос публикациями с тегом.
func PostsByTag(db *gorm.DB, tag string) *gorm.DB {
	if tag == "" {
		return db
	}
	return db.Where("? = ANY(posts.tags)", tag)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return fmt.Sprintf("%s…", string(runes[:max]))
}
