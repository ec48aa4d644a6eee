// Пакет render преобразует дерево документа редактора в HTML для
// публичной страницы статьи.
//
// Основные возможности:
//   - Рендеринг всех известных типов узлов и марок форматирования.
//   - Уровни заголовков приводятся к диапазону h1-h3, заголовки получают
//     якоря для оглавления.
//   - Встраивание видео и постов из соцсетей через разрешение URL.
//   - Неизвестные типы узлов рендерят своих потомков или ничего.
package render

import (
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
)

var validTextAligns = map[string]struct{}{
	"left":    {},
	"center":  {},
	"right":   {},
	"justify": {},
}

// Renderer рендерит документы в HTML. Нулевое значение пригодно к
// использованию: ссылки на изображения тогда остаются как есть.
type Renderer struct {
	// ResolveAsset преобразует идентификатор медиафайла в публичный URL.
	ResolveAsset func(assetID string) string

	warned map[string]struct{}
}

// HTML рендерит документ целиком.
func (r *Renderer) HTML(doc doctree.Document) string {
	r.warned = make(map[string]struct{})

	var sb strings.Builder
	for i := range doc.Content {
		r.renderNode(&sb, &doc.Content[i])
	}
	return sb.String()
}

// NodeHTML рендерит одиночный узел. Используется в тестах и предпросмотре блоков.
func (r *Renderer) NodeHTML(n doctree.Node) string {
	r.warned = make(map[string]struct{})

	var sb strings.Builder
	r.renderNode(&sb, &n)
	return sb.String()
}

func (r *Renderer) renderNode(sb *strings.Builder, n *doctree.Node) {
	switch n.Type {
	case doctree.NodeText:
		sb.WriteString(renderText(n))
	case doctree.NodeParagraph:
		sb.WriteString("<p" + alignStyle(n.Attrs) + ">")
		r.renderChildren(sb, n)
		sb.WriteString("</p>")
	case doctree.NodeHeading:
		r.renderHeading(sb, n)
	case doctree.NodeBulletList:
		sb.WriteString("<ul>")
		r.renderChildren(sb, n)
		sb.WriteString("</ul>")
	case doctree.NodeOrderedList:
		sb.WriteString("<ol>")
		r.renderChildren(sb, n)
		sb.WriteString("</ol>")
	case doctree.NodeListItem:
		sb.WriteString("<li>")
		r.renderChildren(sb, n)
		sb.WriteString("</li>")
	case doctree.NodeBlockquote:
		sb.WriteString("<blockquote>")
		r.renderChildren(sb, n)
		sb.WriteString("</blockquote>")
	case doctree.NodeCodeBlock:
		r.renderCodeBlock(sb, n)
	case doctree.NodeHorizontalRule:
		sb.WriteString("<hr>")
	case doctree.NodeHardBreak:
		sb.WriteString("<br>")
	case doctree.NodeImage:
		r.renderImage(sb, n)
	case doctree.NodeTable:
		sb.WriteString("<table><tbody>")
		r.renderChildren(sb, n)
		sb.WriteString("</tbody></table>")
	case doctree.NodeTableRow:
		sb.WriteString("<tr>")
		r.renderChildren(sb, n)
		sb.WriteString("</tr>")
	case doctree.NodeTableHeader:
		r.renderCell(sb, n, "th")
	case doctree.NodeTableCell:
		r.renderCell(sb, n, "td")
	case doctree.NodeEmbed:
		r.renderEmbed(sb, n)
	case doctree.NodePlantCareCard:
		r.renderPlantCareCard(sb, n)
	case doctree.NodeProTip:
		sb.WriteString(`<aside class="pro-tip">`)
		r.renderChildren(sb, n)
		sb.WriteString("</aside>")
	case doctree.NodeGrowthTimeline:
		sb.WriteString(`<ol class="growth-timeline">`)
		r.renderChildren(sb, n)
		sb.WriteString("</ol>")
	case doctree.NodeTimelineEntry:
		r.renderTimelineEntry(sb, n)
	default:
		// Неизвестный узел: рендерим потомков, если они есть
		if _, ok := r.warned[n.Type]; !ok {
			r.warned[n.Type] = struct{}{}
			slog.Warn("Unknown node type in document render", "type", n.Type)
		}
		r.renderChildren(sb, n)
	}
}

func (r *Renderer) renderChildren(sb *strings.Builder, n *doctree.Node) {
	for i := range n.Content {
		r.renderNode(sb, &n.Content[i])
	}
}

func (r *Renderer) renderHeading(sb *strings.Builder, n *doctree.Node) {
	level := doctree.AttrInt(n.Attrs, "level")
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}

	anchor := ""
	if slug := Slugify(plainText(n)); slug != "" {
		anchor = ` id="` + slug + `"`
	}

	fmt.Fprintf(sb, "<h%d%s%s>", level, anchor, alignStyle(n.Attrs))
	r.renderChildren(sb, n)
	fmt.Fprintf(sb, "</h%d>", level)
}

func (r *Renderer) renderCodeBlock(sb *strings.Builder, n *doctree.Node) {
	class := ""
	if lang := doctree.AttrString(n.Attrs, "language"); lang != "" {
		class = ` class="language-` + html.EscapeString(lang) + `"`
	}
	sb.WriteString("<pre><code" + class + ">")
	for i := range n.Content {
		// Внутри блока кода марки не применяются
		sb.WriteString(html.EscapeString(n.Content[i].Text))
	}
	sb.WriteString("</code></pre>")
}

func (r *Renderer) renderImage(sb *strings.Builder, n *doctree.Node) {
	src := doctree.AttrString(n.Attrs, "src")
	if id := doctree.AttrString(n.Attrs, "assetId"); id != "" && r.ResolveAsset != nil {
		src = r.ResolveAsset(id)
	}
	if src == "" {
		return
	}

	alt := doctree.AttrString(n.Attrs, "alt")
	sb.WriteString(`<figure><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `" loading="lazy">`)
	if caption := doctree.AttrString(n.Attrs, "caption"); caption != "" {
		sb.WriteString("<figcaption>" + html.EscapeString(caption) + "</figcaption>")
	}
	sb.WriteString("</figure>")
}

func (r *Renderer) renderCell(sb *strings.Builder, n *doctree.Node, tag string) {
	var attrs string
	if colspan := doctree.AttrInt(n.Attrs, "colspan"); colspan > 1 {
		attrs += fmt.Sprintf(` colspan="%d"`, colspan)
	}
	if rowspan := doctree.AttrInt(n.Attrs, "rowspan"); rowspan > 1 {
		attrs += fmt.Sprintf(` rowspan="%d"`, rowspan)
	}
	sb.WriteString("<" + tag + attrs + ">")
	r.renderChildren(sb, n)
	sb.WriteString("</" + tag + ">")
}

func (r *Renderer) renderEmbed(sb *strings.Builder, n *doctree.Node) {
	rawURL := doctree.AttrString(n.Attrs, "url")
	provider, embedURL, ok := ResolveEmbed(rawURL)
	if !ok {
		// Нераспознанный embed не должен ломать страницу
		slog.Warn("Unresolvable embed url", "url", rawURL)
		return
	}

	fmt.Fprintf(sb,
		`<div class="embed embed-%s"><iframe src="%s" frameborder="0" allowfullscreen></iframe></div>`,
		provider, html.EscapeString(embedURL))
}

var plantCareFields = []struct {
	attr  string
	label string
}{
	{"plantName", "Растение"},
	{"light", "Свет"},
	{"water", "Полив"},
	{"soil", "Грунт"},
	{"difficulty", "Сложность"},
}

func (r *Renderer) renderPlantCareCard(sb *strings.Builder, n *doctree.Node) {
	sb.WriteString(`<aside class="plant-care-card"><dl>`)
	for _, f := range plantCareFields {
		val := doctree.AttrString(n.Attrs, f.attr)
		if val == "" {
			continue
		}
		sb.WriteString("<dt>" + f.label + "</dt><dd>" + html.EscapeString(val) + "</dd>")
	}
	sb.WriteString("</dl>")
	r.renderChildren(sb, n)
	sb.WriteString("</aside>")
}

func (r *Renderer) renderTimelineEntry(sb *strings.Builder, n *doctree.Node) {
	sb.WriteString("<li>")
	if week := doctree.AttrInt(n.Attrs, "week"); week > 0 {
		fmt.Fprintf(sb, `<span class="week">Неделя %d</span>`, week)
	}
	r.renderChildren(sb, n)
	sb.WriteString("</li>")
}

func alignStyle(attrs map[string]interface{}) string {
	align := doctree.AttrString(attrs, "textAlign")
	if _, ok := validTextAligns[align]; !ok {
		return ""
	}
	return ` style="text-align: ` + align + `"`
}

func plainText(n *doctree.Node) string {
	if n.Type == doctree.NodeText {
		return n.Text
	}
	var sb strings.Builder
	for i := range n.Content {
		sb.WriteString(plainText(&n.Content[i]))
	}
	return sb.String()
}

// Slugify превращает текст заголовка в якорь для оглавления.
func Slugify(s string) string {
	var sb strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 'а' && r <= 'я', r == 'ё':
			sb.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				sb.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
