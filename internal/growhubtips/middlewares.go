// Общие middleware HTTP-слоя.
package growhubtips

import (
	"net/http"

	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"

	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Запрет методов, если включен демо-режим
func DemoMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cfg.Demo {
			return EErrorDefined(c, apierrors.ErrDemo)
		}
		return next(c)
	}
}

type PostContext struct {
	AuthContext
	Post dao.Post
}

// PostMiddleware получает публикацию по id или slug и кладет ее в контекст.
func (s *Services) PostMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		postIdOrSlug := c.Param("postIdOrSlug")

		var post dao.Post
		if err := s.db.Preload("Author").Preload("CoverAsset").
			Where("id::text = ? or slug = ?", postIdOrSlug, postIdOrSlug).
			First(&post).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return EErrorDefined(c, apierrors.ErrPostNotFound)
			}
			return EError(c, err)
		}

		return next(PostContext{c.(AuthContext), post})
	}
}

type PageContext struct {
	AuthContext
	Page dao.Page
}

// PageMiddleware получает страницу по id или slug и кладет ее в контекст.
func (s *Services) PageMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		pageIdOrSlug := c.Param("pageIdOrSlug")

		var page dao.Page
		if err := s.db.
			Where("id::text = ? or slug = ?", pageIdOrSlug, pageIdOrSlug).
			First(&page).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return EErrorDefined(c, apierrors.ErrPageNotFound)
			}
			return EError(c, err)
		}

		return next(PageContext{c.(AuthContext), page})
	}
}

type MediaContext struct {
	AuthContext
	Asset dao.MediaAsset
}

// MediaMiddleware получает медиафайл по id и кладет его в контекст.
func (s *Services) MediaMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		assetId := c.Param("assetId")

		var asset dao.MediaAsset
		if err := s.db.Preload("UploadedBy").
			Where("id = ?", assetId).
			First(&asset).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.NoContent(http.StatusNotFound)
			}
			return EError(c, err)
		}

		return next(MediaContext{c.(AuthContext), asset})
	}
}
