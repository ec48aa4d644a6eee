package dao

import (
	"net/url"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/growhub-it/growhubtips/internal/growhubtips/config"
	"github.com/growhub-it/growhubtips/internal/growhubtips/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPagesDB(t *testing.T) *gorm.DB {
	webURL, err := url.Parse("https://tips.growhub.it")
	require.NoError(t, err)
	Config = &config.Config{WebURL: webURL}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Page{}))

	return db
}

func TestPageRoundTrip(t *testing.T) {
	db := setupPagesDB(t)

	page := Page{
		Slug:         "about",
		Title:        "О проекте",
		Content:      textDoc("GrowHub Tips - советы по выращиванию растений."),
		RenderedHTML: types.RedactorHTML{
			Body:             "<p>GrowHub Tips - советы по выращиванию растений.</p>",
			AlreadySanitized: true,
		},
		Published: true,
	}
	require.NoError(t, db.Create(&page).Error)
	assert.NotEqual(t, "", page.ID.String())

	var loaded Page
	require.NoError(t, db.Where("slug = ?", "about").First(&loaded).Error)

	assert.Equal(t, page.ID, loaded.ID)
	assert.Equal(t, "О проекте", loaded.Title)
	assert.Equal(t, page.Content, loaded.Content)
	assert.Equal(t, page.RenderedHTML.Body, loaded.RenderedHTML.Body)
	assert.Equal(t, "https://tips.growhub.it/about/", loaded.URL)
}

func TestPageScanNullContent(t *testing.T) {
	db := setupPagesDB(t)

	page := Page{Slug: "contacts", Title: "Контакты"}
	require.NoError(t, db.Create(&page).Error)

	var loaded Page
	require.NoError(t, db.Where("slug = ?", "contacts").First(&loaded).Error)
	assert.True(t, loaded.Content.Empty())
}

func TestPaginationRequest(t *testing.T) {
	db := setupPagesDB(t)

	for _, slug := range []string{"about", "contacts", "faq", "policy", "team"} {
		require.NoError(t, db.Create(&Page{Slug: slug, Title: slug}).Error)
	}

	var pages []Page
	resp, err := PaginationRequest(2, 2, db.Model(&Page{}).Order("slug"), &pages)
	require.NoError(t, err)

	assert.EqualValues(t, 5, resp.Count)
	assert.Equal(t, 2, resp.Offset)
	assert.Equal(t, 2, resp.Limit)
	require.Len(t, pages, 2)
	assert.Equal(t, "faq", pages[0].Slug)
	assert.Equal(t, "policy", pages[1].Slug)
}
