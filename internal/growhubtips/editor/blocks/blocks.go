// Пакет blocks содержит статический каталог блоков, доступных для вставки
// через слэш-команду редактора. Каталог ранжируется нечетким поиском по
// подписи и ключевым словам блока.
package blocks

import (
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/fuzzy"
)

// Block описывает один пункт палитры команд.
type Block struct {
	Type        string                 `json:"type"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Icon        string                 `json:"icon"`
	Keywords    []string               `json:"keywords,omitempty"`
	Attrs       map[string]interface{} `json:"attrs,omitempty"`

	searchText string
}

// SearchText возвращает строку, по которой блок ищется в палитре.
func (b Block) SearchText() string {
	return b.searchText
}

var catalog = buildCatalog([]Block{
	{Type: "paragraph", Label: "Paragraph", Description: "Обычный текстовый блок", Icon: "text", Keywords: []string{"text", "plain"}},
	{Type: "heading1", Label: "Heading 1", Description: "Крупный заголовок раздела", Icon: "h-1", Keywords: []string{"title", "h1"}, Attrs: map[string]interface{}{"level": 1}},
	{Type: "heading2", Label: "Heading 2", Description: "Средний заголовок", Icon: "h-2", Keywords: []string{"subtitle", "h2"}, Attrs: map[string]interface{}{"level": 2}},
	{Type: "heading3", Label: "Heading 3", Description: "Мелкий заголовок", Icon: "h-3", Keywords: []string{"subtitle", "h3"}, Attrs: map[string]interface{}{"level": 3}},
	{Type: "bulletList", Label: "Bullet list", Description: "Маркированный список", Icon: "list", Keywords: []string{"unordered", "ul"}},
	{Type: "orderedList", Label: "Numbered list", Description: "Нумерованный список", Icon: "list-ordered", Keywords: []string{"ordered", "ol", "steps"}},
	{Type: "blockquote", Label: "Quote", Description: "Цитата", Icon: "quote", Keywords: []string{"blockquote", "citation"}},
	{Type: "codeBlock", Label: "Code", Description: "Блок кода с подсветкой", Icon: "code", Keywords: []string{"snippet", "pre"}},
	{Type: "horizontalRule", Label: "Divider", Description: "Горизонтальный разделитель", Icon: "minus", Keywords: []string{"hr", "separator", "line"}},
	{Type: "image", Label: "Image", Description: "Изображение из медиатеки", Icon: "image", Keywords: []string{"photo", "picture", "media"}},
	{Type: "table", Label: "Table", Description: "Таблица", Icon: "table", Keywords: []string{"grid", "rows"}},
	{Type: "embed", Label: "Embed", Description: "Видео или пост из соцсети", Icon: "tv", Keywords: []string{"youtube", "instagram", "twitter", "video"}},
	{Type: "plantCareCard", Label: "Plant care card", Description: "Карточка ухода за растением", Icon: "sprout", Keywords: []string{"plant", "care", "водa", "свет"}},
	{Type: "proTip", Label: "Pro tip", Description: "Совет от редакции", Icon: "lightbulb", Keywords: []string{"tip", "advice", "callout"}},
	{Type: "growthTimeline", Label: "Growth timeline", Description: "Таймлайн роста по неделям", Icon: "calendar-range", Keywords: []string{"timeline", "weeks", "progress"}},
})

func buildCatalog(items []Block) []Block {
	for i := range items {
		text := items[i].Label
		for _, kw := range items[i].Keywords {
			text += " " + kw
		}
		items[i].searchText = text
	}
	return items
}

// All возвращает каталог блоков в фиксированном порядке.
func All() []Block {
	out := make([]Block, len(catalog))
	copy(out, catalog)
	return out
}

// Find ищет блок по типу.
func Find(blockType string) (Block, bool) {
	for _, b := range catalog {
		if b.Type == blockType {
			return b, true
		}
	}
	return Block{}, false
}

// Suggest возвращает блоки, ранжированные по релевантности запросу.
// limit вне диапазона [1, len(каталога)] приводится к размеру каталога.
func Suggest(query string, limit int) []Block {
	if limit <= 0 || limit > len(catalog) {
		limit = len(catalog)
	}

	ranked := fuzzy.Rank(query, catalog)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// NewNode создает узел-заготовку для вставки блока в документ.
func (b Block) NewNode() doctree.Node {
	switch b.Type {
	case "heading1", "heading2", "heading3":
		level := doctree.AttrInt(b.Attrs, "level")
		if level < 1 {
			level = 1
		}
		if level > 3 {
			level = 3
		}
		return doctree.Node{
			Type:  doctree.NodeHeading,
			Attrs: map[string]interface{}{"level": level},
		}
	case "bulletList", "orderedList":
		return doctree.Node{
			Type: b.Type,
			Content: []doctree.Node{
				{Type: doctree.NodeListItem, Content: []doctree.Node{{Type: doctree.NodeParagraph}}},
			},
		}
	case "blockquote":
		return doctree.Node{
			Type:    doctree.NodeBlockquote,
			Content: []doctree.Node{{Type: doctree.NodeParagraph}},
		}
	case "table":
		row := func(cell string) doctree.Node {
			return doctree.Node{
				Type: doctree.NodeTableRow,
				Content: []doctree.Node{
					{Type: cell, Content: []doctree.Node{{Type: doctree.NodeParagraph}}},
					{Type: cell, Content: []doctree.Node{{Type: doctree.NodeParagraph}}},
				},
			}
		}
		return doctree.Node{
			Type:    doctree.NodeTable,
			Content: []doctree.Node{row(doctree.NodeTableHeader), row(doctree.NodeTableCell)},
		}
	case "growthTimeline":
		return doctree.Node{
			Type: doctree.NodeGrowthTimeline,
			Content: []doctree.Node{
				{Type: doctree.NodeTimelineEntry, Attrs: map[string]interface{}{"week": 1}, Content: []doctree.Node{{Type: doctree.NodeParagraph}}},
			},
		}
	case "plantCareCard", "proTip":
		return doctree.Node{
			Type:    b.Type,
			Content: []doctree.Node{{Type: doctree.NodeParagraph}},
		}
	default:
		node := doctree.Node{Type: b.Type}
		if len(b.Attrs) > 0 {
			node.Attrs = make(map[string]interface{}, len(b.Attrs))
			for k, v := range b.Attrs {
				node.Attrs[k] = v
			}
		}
		return node
	}
}
