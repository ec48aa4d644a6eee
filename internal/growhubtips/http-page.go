// Управление статическими страницами сайта (о нас, контакты и т.д.).
package growhubtips

import (
	"log/slog"
	"net/http"

	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/types"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (s *Services) AddPageServices(g *echo.Group) {
	g.GET("pages/", s.getPageList, AdminMiddleware)
	g.POST("pages/", s.createPage, AdminMiddleware)

	pageGroup := g.Group("pages/:pageIdOrSlug/", AdminMiddleware, s.PageMiddleware)
	pageGroup.GET("", s.getPage)
	pageGroup.PATCH("", s.updatePage)
	pageGroup.DELETE("", s.deletePage)
}

// getPageList возвращает все страницы сайта.
func (s *Services) getPageList(c echo.Context) error {
	var pages []dao.Page
	if err := s.db.Order("slug").Find(&pages).Error; err != nil {
		return EError(c, err)
	}

	result := make([]dto.PageLight, len(pages))
	for i := range pages {
		result[i] = *pages[i].ToLightDTO()
	}

	return c.JSON(http.StatusOK, result)
}

type CreatePageRequest struct {
	Title string `json:"title" validate:"required,postTitle"`
	Slug  string `json:"slug" validate:"required,slug"`
}

func (s *Services) createPage(c echo.Context) error {
	var req CreatePageRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	if !CheckPageSlug(req.Slug) {
		return EErrorDefined(c, apierrors.ErrForbiddenSlug)
	}

	page := dao.Page{
		ID:      dao.GenUUID(),
		Slug:    req.Slug,
		Title:   req.Title,
		Content: doctree.Document{Type: doctree.NodeDoc},
	}

	if err := s.db.Create(&page).Error; err != nil {
		if isUniqueViolation(err) {
			return EErrorDefined(c, apierrors.ErrPageSlugConflict)
		}
		return EError(c, err)
	}

	return c.JSON(http.StatusCreated, page.ToDTO())
}

func (s *Services) getPage(c echo.Context) error {
	page := c.(PageContext).Page
	return c.JSON(http.StatusOK, page.ToDTO())
}

type UpdatePageRequest struct {
	Title           *string           `json:"title" validate:"omitempty,postTitle"`
	Slug            *string           `json:"slug" validate:"omitempty,slug"`
	Content         *doctree.Document `json:"content"`
	Published       *bool             `json:"published"`
	MetaTitle       *string           `json:"meta_title"`
	MetaDescription *string           `json:"meta_description"`
}

func (s *Services) updatePage(c echo.Context) error {
	page := c.(PageContext).Page

	var req UpdatePageRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Slug != nil {
		if !CheckPageSlug(*req.Slug) {
			return EErrorDefined(c, apierrors.ErrForbiddenSlug)
		}
		page.Slug = *req.Slug
	}
	if req.Published != nil {
		page.Published = *req.Published
	}
	if req.MetaTitle != nil {
		page.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		page.MetaDescription = *req.MetaDescription
	}
	if req.Content != nil {
		page.Content = *req.Content
		page.RenderedHTML = types.RedactorHTML{Body: s.newRenderer().HTML(page.Content)}
	}

	if err := s.db.Save(&page).Error; err != nil {
		if isUniqueViolation(err) {
			return EErrorDefined(c, apierrors.ErrPageSlugConflict)
		}
		return EError(c, err)
	}

	if req.Content != nil {
		if err := dao.DeleteDraft(s.db, page.ID.String()); err != nil && err != gorm.ErrRecordNotFound {
			slog.Warn("Delete draft after explicit save", "page", page.ID, "err", err)
		}
	}

	return c.JSON(http.StatusOK, page.ToDTO())
}

func (s *Services) deletePage(c echo.Context) error {
	page := c.(PageContext).Page

	if err := s.db.Delete(&page).Error; err != nil {
		return EError(c, err)
	}

	if err := dao.DeleteDraft(s.db, page.ID.String()); err != nil && err != gorm.ErrRecordNotFound {
		slog.Warn("Delete draft with page", "page", page.ID, "err", err)
	}

	return c.NoContent(http.StatusOK)
}

// CheckPageSlug отклоняет адреса, зарезервированные маршрутами приложения.
func CheckPageSlug(slug string) bool {
	switch slug {
	case "api", "tips", "media", "signin", "signup", "admin",
		"rss", "sitemap", "robots", "metrics", "404", "undefined":
		return false
	}
	return true
}
