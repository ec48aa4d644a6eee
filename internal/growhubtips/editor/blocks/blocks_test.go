package blocks

import (
	"testing"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
)

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0].Label = "mutated"

	second := All()
	if second[0].Label == "mutated" {
		t.Error("All() returned a shared slice, catalog was mutated")
	}
}

func TestFind(t *testing.T) {
	b, ok := Find("plantCareCard")
	if !ok {
		t.Fatal("Find(plantCareCard) not found")
	}
	if b.Label != "Plant care card" {
		t.Errorf("label = %q, want %q", b.Label, "Plant care card")
	}

	if _, ok := Find("unknownBlock"); ok {
		t.Error("Find(unknownBlock) = ok, want miss")
	}
}

func TestSuggestEmptyQuery(t *testing.T) {
	got := Suggest("", 0)
	if len(got) != len(All()) {
		t.Fatalf("len(Suggest empty) = %d, want full catalog %d", len(got), len(All()))
	}
	if got[0].Type != "paragraph" {
		t.Errorf("first suggestion = %q, want catalog order (paragraph)", got[0].Type)
	}
}

func TestSuggestHeadingQuery(t *testing.T) {
	got := Suggest("h1", 5)
	if len(got) == 0 {
		t.Fatal("Suggest(h1) returned nothing")
	}
	if got[0].Type != "heading1" {
		t.Errorf("Suggest(h1)[0] = %q, want heading1", got[0].Type)
	}
}

func TestSuggestLimitClamp(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"negative", -3, len(All())},
		{"zero", 0, len(All())},
		{"in range", 4, 4},
		{"above catalog", 500, len(All())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Suggest("", tt.limit); len(got) != tt.want {
				t.Errorf("len(Suggest(limit=%d)) = %d, want %d", tt.limit, len(got), tt.want)
			}
		})
	}
}

func TestSuggestNoMatches(t *testing.T) {
	if got := Suggest("qqqqq", 10); len(got) != 0 {
		t.Errorf("Suggest(qqqqq) = %v, want empty", got)
	}
}

func TestNewNodeHeading(t *testing.T) {
	b, _ := Find("heading2")
	node := b.NewNode()
	if node.Type != doctree.NodeHeading {
		t.Errorf("node.Type = %q, want heading", node.Type)
	}
	if got := doctree.AttrInt(node.Attrs, "level"); got != 2 {
		t.Errorf("level = %d, want 2", got)
	}
}

func TestNewNodeTableSkeleton(t *testing.T) {
	b, _ := Find("table")
	node := b.NewNode()
	if len(node.Content) != 2 {
		t.Fatalf("table rows = %d, want 2", len(node.Content))
	}
	if node.Content[0].Content[0].Type != doctree.NodeTableHeader {
		t.Errorf("first row cell = %q, want tableHeader", node.Content[0].Content[0].Type)
	}
	if node.Content[1].Content[0].Type != doctree.NodeTableCell {
		t.Errorf("second row cell = %q, want tableCell", node.Content[1].Content[0].Type)
	}
}

func TestNewNodeList(t *testing.T) {
	b, _ := Find("bulletList")
	node := b.NewNode()
	if len(node.Content) != 1 || node.Content[0].Type != doctree.NodeListItem {
		t.Fatalf("bulletList skeleton = %+v, want single listItem", node.Content)
	}
}
