// Публичная часть сайта: статьи, страницы, RSS-лента, sitemap и robots.
//
// Основные возможности:
//   - Выдача опубликованного контента без авторизации.
//   - Счетчик просмотров публикаций.
//   - Генерация sitemap.xml, robots.txt и rss.xml.
package growhubtips

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/growhub-it/growhubtips/internal/growhubtips/dao"
	"github.com/growhub-it/growhubtips/internal/growhubtips/dto"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/render"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tdewolff/minify/v2"
	minifyxml "github.com/tdewolff/minify/v2/xml"
)

var xmlMinifier = minify.New()

func init() {
	xmlMinifier.AddFunc("text/xml", minifyxml.Minify)
}

func (s *Services) AddPublicServices(e *echo.Echo, apiGroup *echo.Group) {
	apiGroup.GET("media/:assetId/", s.getMediaFile)

	apiGroup.GET("tips/", s.getPublicPostList)
	apiGroup.GET("tips/:slug/", s.getPublicPost)
	apiGroup.GET("pages/:slug/", s.getPublicPage)

	e.GET("/sitemap.xml", s.getSitemap)
	e.GET("/robots.txt", s.getRobots)
	e.GET("/rss.xml", s.getRSS)
}

// getPublicPostList возвращает опубликованные статьи.
func (s *Services) getPublicPostList(c echo.Context) error {
	offset := 0
	limit := 20
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return EError(c, err)
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	query := s.db.
		Preload("Author").
		Model(&dao.Post{}).
		Scopes(dao.PublishedPosts).
		Order("published_at desc")

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

// getPublicPost возвращает опубликованную статью с HTML и оглавлением.
func (s *Services) getPublicPost(c echo.Context) error {
	var post dao.Post
	if err := s.db.
		Preload("Author").
		Scopes(dao.PublishedPosts).
		Where("slug = ?", c.Param("slug")).
		First(&post).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.NoContent(http.StatusNotFound)
		}
		return EError(c, err)
	}

	// Счетчик просмотров без гонки на инкременте
	s.db.Model(&post).UpdateColumn("views_count", gorm.Expr("views_count + 1"))

	toc, err := render.TableOfContents(post.RenderedHTML.Body)
	if err != nil {
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, dto.PublicPost{
		PostLight:       *post.ToLightDTO(),
		RenderedHTML:    post.RenderedHTML.Body,
		TableOfContents: toc,
		MetaTitle:       post.SEOTitle(),
		MetaDescription: post.SEODescription(),
	})
}

// getPublicPage возвращает опубликованную страницу сайта.
func (s *Services) getPublicPage(c echo.Context) error {
	var page dao.Page
	if err := s.db.
		Where("slug = ? and published = true", c.Param("slug")).
		First(&page).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.NoContent(http.StatusNotFound)
		}
		return EError(c, err)
	}

	return c.JSON(http.StatusOK, page.ToDTO())
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// getSitemap генерирует sitemap.xml по опубликованному контенту.
func (s *Services) getSitemap(c echo.Context) error {
	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []sitemapURL{{Loc: cfg.WebURL.String() + "/"}},
	}

	var posts []dao.Post
	if err := s.db.
		Scopes(dao.PublishedPosts).
		Order("published_at desc").
		Find(&posts).Error; err != nil {
		return EError(c, err)
	}
	for _, post := range posts {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     post.URL,
			LastMod: post.UpdatedAt.Format("2006-01-02"),
		})
	}

	var pages []dao.Page
	if err := s.db.Where("published = true").Find(&pages).Error; err != nil {
		return EError(c, err)
	}
	for _, page := range pages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     page.URL,
			LastMod: page.UpdatedAt.Format("2006-01-02"),
		})
	}

	raw, err := xml.Marshal(set)
	if err != nil {
		return EError(c, err)
	}

	body, err := xmlMinifier.Bytes("text/xml", raw)
	if err != nil {
		body = raw
	}

	return c.Blob(http.StatusOK, "application/xml", append([]byte(xml.Header), body...))
}

// getRobots отдает robots.txt со ссылкой на sitemap.
func (s *Services) getRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nDisallow: /api/\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", cfg.WebURL)
	return c.String(http.StatusOK, body)
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// getRSS генерирует RSS-ленту последних статей.
func (s *Services) getRSS(c echo.Context) error {
	var posts []dao.Post
	if err := s.db.
		Scopes(dao.PublishedPosts).
		Order("published_at desc").
		Limit(20).
		Find(&posts).Error; err != nil {
		return EError(c, err)
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.SiteTitle,
			Link:        cfg.WebURL.String(),
			Description: cfg.SiteDescription,
		},
	}

	for _, post := range posts {
		pubDate := post.CreatedAt
		if post.PublishedAt != nil {
			pubDate = *post.PublishedAt
		}
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       post.Title,
			Link:        post.URL,
			Description: post.Excerpt,
			PubDate:     pubDate.Format(time.RFC1123Z),
			GUID:        post.URL,
		})
	}

	raw, err := xml.Marshal(feed)
	if err != nil {
		return EError(c, err)
	}

	body, err := xmlMinifier.Bytes("text/xml", raw)
	if err != nil {
		body = raw
	}

	return c.Blob(http.StatusOK, "application/rss+xml", append([]byte(xml.Header), body...))
}
