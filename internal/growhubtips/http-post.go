// Управление публикациями: создание, редактирование, публикация и удаление.
//
// Основные возможности:
//   - CRUD операции с публикациями.
//   - Публикация и снятие с публикации с рендерингом HTML.
//   - Полнотекстовый поиск и фильтрация по тегу и статусу.
package growhubtips

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/apierrors"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/render"
	"github.com/growhub-it/growhubtips/internal/growhubtips/types"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func (s *Services) AddPostServices(g *echo.Group) {
	g.GET("posts/", s.getPostList)
	g.POST("posts/", s.createPost)
	g.GET("posts/tags/", s.getPostTags)

	postGroup := g.Group("posts/:postIdOrSlug/", s.PostMiddleware)
	postGroup.GET("", s.getPost)
	postGroup.PATCH("", s.updatePost)
	postGroup.DELETE("", s.deletePost)
	postGroup.POST("publish/", s.publishPost)
	postGroup.POST("unpublish/", s.unpublishPost)
}

// newRenderer создает рендерер документов с разрешением медиафайлов.
func (s *Services) newRenderer() *render.Renderer {
	return &render.Renderer{
		ResolveAsset: func(assetID string) string {
			return cfg.WebURL.String() + "/api/media/" + assetID + "/"
		},
	}
}

// getPostList возвращает страницу списка публикаций. Автор без роли
// администратора видит только свои публикации.
func (s *Services) getPostList(c echo.Context) error {
	user := c.(AuthContext).User

	offset := 0
	limit := 25
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return EError(c, err)
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	query := s.db.
		Preload("Author").
		Model(&dao.Post{}).
		Order("updated_at desc")

	if !user.IsSuperuser {
		query = query.Where("author_id = ?", user.ID)
	}

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query = dao.PostsByTag(query, c.QueryParam("tag"))
	query = dao.PostsFullTextSearch(query, c.QueryParam("search_query"))

	var posts []dao.Post
	resp, err := dao.PaginationRequest(offset, limit, query, &posts)
	if err != nil {
		return EError(c, err)
	}

	result := make([]dto.PostLight, len(posts))
	for i := range posts {
		result[i] = *posts[i].ToLightDTO()
	}
	resp.Result = result

	return c.JSON(http.StatusOK, resp)
}

type CreatePostRequest struct {
	Title string   `json:"title" validate:"required,postTitle"`
	Slug  string   `json:"slug" validate:"omitempty,slug"`
	Tags  []string `json:"tags"`
}

// createPost создает черновик публикации.
func (s *Services) createPost(c echo.Context) error {
	user := c.(AuthContext).User

	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrPostTitleRequired)
	}

	if req.Slug == "" {
		req.Slug = render.Slugify(req.Title)
	}
	if req.Slug == "" {
		return EErrorDefined(c, apierrors.ErrForbiddenSlug)
	}

	post := dao.Post{
		ID:       dao.GenUUID(),
		Slug:     req.Slug,
		Title:    req.Title,
		Tags:     pq.StringArray(req.Tags),
		Status:   dao.PostStatusDraft,
		AuthorId: user.ID,
		Content:  doctree.Document{Type: doctree.NodeDoc},
	}

	if err := s.db.Create(&post).Error; err != nil {
		if isUniqueViolation(err) {
			return EErrorDefined(c, apierrors.ErrPostSlugConflict)
		}
		return EError(c, err)
	}

	post.Author = user
	return c.JSON(http.StatusCreated, post.ToDTO())
}

// getPost возвращает публикацию с содержимым.
func (s *Services) getPost(c echo.Context) error {
	post := c.(PostContext).Post
	return c.JSON(http.StatusOK, post.ToDTO())
}

type UpdatePostRequest struct {
	Title           *string           `json:"title" validate:"omitempty,postTitle"`
	Slug            *string           `json:"slug" validate:"omitempty,slug"`
	Content         *doctree.Document `json:"content"`
	Tags            *[]string         `json:"tags"`
	CoverAssetId    *string           `json:"cover_asset_id"`
	MetaTitle       *string           `json:"meta_title"`
	MetaDescription *string           `json:"meta_description"`
}

// updatePost обновляет поля публикации. Явное сохранение содержимого
// завершает цикл автосохранения и удаляет черновик документа.
func (s *Services) updatePost(c echo.Context) error {
	ctx := c.(PostContext)
	post := ctx.Post

	if !ctx.User.IsSuperuser && post.AuthorId != ctx.User.ID {
		return EErrorDefined(c, apierrors.ErrPostNotYours)
	}

	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Slug != nil {
		post.Slug = *req.Slug
	}
	if req.Tags != nil {
		post.Tags = pq.StringArray(*req.Tags)
	}
	if req.CoverAssetId != nil {
		if *req.CoverAssetId == "" {
			post.CoverAssetId = nullUUID("")
		} else {
			var exist bool
			if err := s.db.Model(&dao.MediaAsset{}).
				Select("count(*) > 0").
				Where("id = ?", *req.CoverAssetId).
				Find(&exist).Error; err != nil {
				return EError(c, err)
			}
			if !exist {
				return EErrorDefined(c, apierrors.ErrMediaNotFound)
			}
			post.CoverAssetId = nullUUID(*req.CoverAssetId)
		}
	}
	if req.MetaTitle != nil {
		post.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		post.MetaDescription = *req.MetaDescription
	}
	if req.Content != nil {
		post.Content = *req.Content
		if post.Published() {
			post.RenderedHTML = types.RedactorHTML{Body: s.newRenderer().HTML(post.Content)}
		}
	}

	if err := s.db.Omit("Author", "CoverAsset").Save(&post).Error; err != nil {
		if isUniqueViolation(err) {
			return EErrorDefined(c, apierrors.ErrPostSlugConflict)
		}
		return EError(c, err)
	}

	if req.Content != nil {
		if err := dao.DeleteDraft(s.db, post.ID.String()); err != nil && err != gorm.ErrRecordNotFound {
			slog.Warn("Delete draft after explicit save", "post", post.ID, "err", err)
		}
	}

	return c.JSON(http.StatusOK, post.ToDTO())
}

// publishPost публикует публикацию и рендерит ее HTML.
func (s *Services) publishPost(c echo.Context) error {
	ctx := c.(PostContext)
	post := ctx.Post

	if !ctx.User.IsSuperuser && post.AuthorId != ctx.User.ID {
		return EErrorDefined(c, apierrors.ErrPostNotYours)
	}

	if post.Content.Empty() {
		return EErrorDefined(c, apierrors.ErrPublishEmptyPost)
	}

	tm := time.Now()
	post.Status = dao.PostStatusPublished
	if post.PublishedAt == nil {
		post.PublishedAt = &tm
	}
	post.RenderedHTML = types.RedactorHTML{Body: s.newRenderer().HTML(post.Content)}

	if err := s.db.Omit("Author", "CoverAsset").Save(&post).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, post.ToDTO())
}

// unpublishPost снимает публикацию с публикации.
func (s *Services) unpublishPost(c echo.Context) error {
	ctx := c.(PostContext)
	post := ctx.Post

	if !ctx.User.IsSuperuser && post.AuthorId != ctx.User.ID {
		return EErrorDefined(c, apierrors.ErrPostNotYours)
	}

	post.Status = dao.PostStatusArchived

	if err := s.db.Omit("Author", "CoverAsset").
		Model(&post).
		Select("Status").
		Updates(&post).Error; err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, post.ToDTO())
}

// deletePost удаляет публикацию вместе с черновиком автосохранения.
func (s *Services) deletePost(c echo.Context) error {
	ctx := c.(PostContext)
	post := ctx.Post

	if !ctx.User.IsSuperuser && post.AuthorId != ctx.User.ID {
		return EErrorDefined(c, apierrors.ErrPostNotYours)
	}

	if err := s.db.Delete(&post).Error; err != nil {
		return EError(c, err)
	}

	if err := dao.DeleteDraft(s.db, post.ID.String()); err != nil && err != gorm.ErrRecordNotFound {
		slog.Warn("Delete draft with post", "post", post.ID, "err", err)
	}

	return c.NoContent(http.StatusOK)
}

// getPostTags возвращает все использованные теги.
func (s *Services) getPostTags(c echo.Context) error {
	var tags []string
	if err := s.db.Model(&dao.Post{}).
		Select("distinct unnest(tags)").
		Order("1").
		Find(&tags).Error; err != nil {
		return EError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}
