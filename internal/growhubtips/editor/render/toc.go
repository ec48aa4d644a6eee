package render

import (
	"strings"

	"golang.org/x/net/html"
)

// TOCEntry - один пункт оглавления статьи.
type TOCEntry struct {
	Level  int    `json:"level"`
	Anchor string `json:"anchor"`
	Title  string `json:"title"`
}

// TableOfContents извлекает заголовки h1-h3 с якорями из отрендеренного
// HTML. Заголовки без id пропускаются.
func TableOfContents(renderedHTML string) ([]TOCEntry, error) {
	root, err := html.Parse(strings.NewReader(renderedHTML))
	if err != nil {
		return nil, err
	}

	var entries []TOCEntry
	var iter func(*html.Node)
	iter = func(n *html.Node) {
		if n.Type == html.ElementNode {
			var level int
			switch n.Data {
			case "h1":
				level = 1
			case "h2":
				level = 2
			case "h3":
				level = 3
			}
			if level > 0 {
				if anchor := getAttrValue(n, "id"); anchor != "" {
					entries = append(entries, TOCEntry{
						Level:  level,
						Anchor: anchor,
						Title:  nodeText(n),
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			iter(c)
		}
	}
	iter(root)

	return entries, nil
}

func getAttrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}
