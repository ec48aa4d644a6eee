package dao

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textDoc(paragraphs ...string) doctree.Document {
	doc := doctree.Document{Type: doctree.NodeDoc}
	for _, p := range paragraphs {
		doc.Content = append(doc.Content, doctree.Node{
			Type:    doctree.NodeParagraph,
			Content: []doctree.Node{{Type: doctree.NodeText, Text: p}},
		})
	}
	return doc
}

func TestPostBeforeSaveExcerpt(t *testing.T) {
	post := Post{
		Title:   "Полив томатов",
		Content: textDoc("Томаты любят редкий, но обильный полив."),
	}
	require.NoError(t, post.BeforeSave(nil))

	assert.Equal(t, "Томаты любят редкий, но обильный полив.", post.Excerpt)
	assert.Contains(t, post.SearchVector.Vector, "Полив томатов")
	assert.Contains(t, post.SearchVector.Vector, "обильный полив")
}

func TestPostBeforeSaveExcerptTruncation(t *testing.T) {
	long := strings.Repeat("ы", 500)
	post := Post{
		Title:   "Длинная статья",
		Content: textDoc(long),
	}
	require.NoError(t, post.BeforeSave(nil))

	assert.LessOrEqual(t, utf8.RuneCountInString(post.Excerpt), excerptMaxLen+1)
	assert.True(t, strings.HasSuffix(post.Excerpt, "…"))
}

func TestPostSEOFallbacks(t *testing.T) {
	post := Post{
		Title:   "Проращивание семян",
		Excerpt: "Семена перед посадкой замачивают.",
	}

	assert.Equal(t, "Проращивание семян", post.SEOTitle())
	assert.Equal(t, "Семена перед посадкой замачивают.", post.SEODescription())

	post.MetaTitle = "Проращивание семян за 3 дня"
	post.MetaDescription = "Пошаговая инструкция по проращиванию."

	assert.Equal(t, "Проращивание семян за 3 дня", post.SEOTitle())
	assert.Equal(t, "Пошаговая инструкция по проращиванию.", post.SEODescription())
}

func TestPostPublished(t *testing.T) {
	post := Post{Status: PostStatusDraft}
	assert.False(t, post.Published())

	post.Status = PostStatusPublished
	assert.True(t, post.Published())

	post.Status = PostStatusArchived
	assert.False(t, post.Published())
}
