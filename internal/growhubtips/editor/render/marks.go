package render

import (
	"html"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
)

// renderText экранирует текст узла и оборачивает его в теги марок.
// Марки применяются в порядке следования в документе, каждая оборачивает
// результат предыдущей. Неизвестная марка пропускается.
func renderText(n *doctree.Node) string {
	out := html.EscapeString(n.Text)
	for _, mark := range n.Marks {
		out = wrapMark(mark, out)
	}
	return out
}

func wrapMark(mark doctree.Mark, inner string) string {
	switch mark.Type {
	case doctree.MarkCode:
		return "<code>" + inner + "</code>"
	case doctree.MarkBold:
		return "<strong>" + inner + "</strong>"
	case doctree.MarkItalic:
		return "<em>" + inner + "</em>"
	case doctree.MarkUnderline:
		return "<u>" + inner + "</u>"
	case doctree.MarkStrike:
		return "<s>" + inner + "</s>"
	case doctree.MarkHighlight:
		attr := ""
		if color := doctree.AttrString(mark.Attrs, "color"); color != "" {
			attr = ` data-color="` + html.EscapeString(color) + `"`
		}
		return "<mark" + attr + ">" + inner + "</mark>"
	case doctree.MarkLink:
		href := doctree.AttrString(mark.Attrs, "href")
		if href == "" {
			href = "#"
		}
		return `<a href="` + html.EscapeString(href) + `" rel="noopener noreferrer" target="_blank">` + inner + "</a>"
	}
	return inner
}
