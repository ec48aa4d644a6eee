// Пакет doctree содержит модель документа редактора GrowHub.
// Документ хранится как дерево типизированных узлов в том же JSON-формате,
// который создает веб-редактор, и сериализуется в PostgreSQL JSONB без потерь.
//
// Основные возможности:
//   - Парсинг и сериализация JSON документа редактора.
//   - Неизвестные типы узлов сохраняются как есть (round trip без потерь).
//   - Реализация driver.Valuer/sql.Scanner для колонок JSONB.
//   - Обход дерева и извлечение плоского текста для поисковой индексации.
package doctree

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Известные типы узлов документа.
const (
	NodeDoc            = "doc"
	NodeParagraph      = "paragraph"
	NodeHeading        = "heading"
	NodeText           = "text"
	NodeBulletList     = "bulletList"
	NodeOrderedList    = "orderedList"
	NodeListItem       = "listItem"
	NodeBlockquote     = "blockquote"
	NodeCodeBlock      = "codeBlock"
	NodeHorizontalRule = "horizontalRule"
	NodeHardBreak      = "hardBreak"
	NodeImage          = "image"
	NodeTable          = "table"
	NodeTableRow       = "tableRow"
	NodeTableHeader    = "tableHeader"
	NodeTableCell      = "tableCell"
	NodeEmbed          = "embed"
	NodePlantCareCard  = "plantCareCard"
	NodeProTip         = "proTip"
	NodeGrowthTimeline = "growthTimeline"
	NodeTimelineEntry  = "timelineEntry"
)

// Известные типы марок (форматирование текста).
const (
	MarkBold      = "bold"
	MarkItalic    = "italic"
	MarkUnderline = "underline"
	MarkStrike    = "strike"
	MarkCode      = "code"
	MarkHighlight = "highlight"
	MarkLink      = "link"
)

// Document представляет корневой документ редактора.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content,omitempty"`
}

// Node представляет узел в дереве документа.
// Используется универсальная структура с map для атрибутов для поддержки различных типов нод.
type Node struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []Node                 `json:"content,omitempty"`
	Marks   []Mark                 `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// Mark представляет форматирование текста (bold, italic, link и т.д.).
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Parse разбирает JSON документа редактора. Некорректный JSON возвращает
// ошибку, неизвестные типы узлов ошибкой не считаются и остаются в дереве.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse editor document: %w", err)
	}
	if doc.Type == "" {
		doc.Type = NodeDoc
	}
	return doc, nil
}

// Bytes сериализует документ обратно в JSON. Сериализация детерминирована:
// неизмененное дерево всегда дает одинаковые байты, на этом строится
// сравнение в автосохранении.
func (d Document) Bytes() ([]byte, error) {
	if d.Type == "" {
		d.Type = NodeDoc
	}
	return json.Marshal(d)
}

// Empty сообщает, пуст ли документ. Документ без контента или состоящий
// только из пустых параграфов считается пустым.
func (d Document) Empty() bool {
	for _, n := range d.Content {
		if n.Type != NodeParagraph {
			return false
		}
		if len(n.Content) > 0 {
			return false
		}
	}
	return true
}

// Walk обходит дерево документа в глубину. Возврат false из fn
// останавливает спуск в дочерние узлы текущего узла.
func (d Document) Walk(fn func(n *Node) bool) {
	for i := range d.Content {
		walkNode(&d.Content[i], fn)
	}
}

func walkNode(n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Content {
		walkNode(&n.Content[i], fn)
	}
}

// PlainText возвращает текстовое содержимое документа. Блочные узлы
// разделяются переводом строки. Используется для выдержек и tsvector.
func (d Document) PlainText() string {
	var sb strings.Builder
	for _, n := range d.Content {
		text := nodePlainText(&n)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func nodePlainText(n *Node) string {
	if n.Type == NodeText {
		return n.Text
	}
	if n.Type == NodeHardBreak {
		return " "
	}

	var sb strings.Builder
	for i := range n.Content {
		sb.WriteString(nodePlainText(&n.Content[i]))
		if isBlockNode(n.Content[i].Type) && i != len(n.Content)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func isBlockNode(t string) bool {
	switch t {
	case NodeParagraph, NodeHeading, NodeBulletList, NodeOrderedList,
		NodeListItem, NodeBlockquote, NodeCodeBlock, NodeTable,
		NodeTableRow, NodePlantCareCard, NodeProTip, NodeGrowthTimeline,
		NodeTimelineEntry:
		return true
	}
	return false
}

// AssetIDs собирает идентификаторы медиафайлов, на которые ссылаются
// узлы изображений. Используется сборщиком осиротевших файлов.
func (d Document) AssetIDs() []string {
	var ids []string
	d.Walk(func(n *Node) bool {
		if n.Type == NodeImage {
			if id := AttrString(n.Attrs, "assetId"); id != "" {
				ids = append(ids, id)
			}
		}
		return true
	})
	return ids
}

// Value реализует интерфейс driver.Valuer для сохранения Document в PostgreSQL JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует интерфейс sql.Scanner для чтения Document из PostgreSQL JSONB.
// NULL в колонке дает пустой документ, а не ошибку.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{Type: NodeDoc}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	doc, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// GormDataType указывает GORM использовать тип JSONB для PostgreSQL колонок.
func (Document) GormDataType() string {
	return "jsonb"
}
