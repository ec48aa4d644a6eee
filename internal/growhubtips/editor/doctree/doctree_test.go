package doctree

import (
	"encoding/json"
	"testing"
)

func TestParseSimpleDocument(t *testing.T) {
	raw := `{
		"type": "doc",
		"content": [
			{
				"type": "paragraph",
				"content": [
					{"type": "text", "text": "Полив ", "marks": [{"type": "bold"}]},
					{"type": "text", "text": "монстеры"}
				]
			}
		]
	}`

	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if doc.Type != NodeDoc {
		t.Errorf("doc.Type = %q, want %q", doc.Type, NodeDoc)
	}
	if len(doc.Content) != 1 {
		t.Fatalf("len(doc.Content) = %d, want 1", len(doc.Content))
	}

	p := doc.Content[0]
	if p.Type != NodeParagraph {
		t.Errorf("node type = %q, want %q", p.Type, NodeParagraph)
	}
	if len(p.Content) != 2 {
		t.Fatalf("len(paragraph.Content) = %d, want 2", len(p.Content))
	}
	if p.Content[0].Text != "Полив " {
		t.Errorf("text = %q, want %q", p.Content[0].Text, "Полив ")
	}
	if len(p.Content[0].Marks) != 1 || p.Content[0].Marks[0].Type != MarkBold {
		t.Errorf("marks = %v, want single bold mark", p.Content[0].Marks)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"type": "doc",`)); err == nil {
		t.Error("Parse() of malformed JSON: expected error, got nil")
	}
}

// Неизвестные типы узлов должны переживать round trip без изменений.
func TestUnknownNodeRoundTrip(t *testing.T) {
	raw := `{"type":"doc","content":[{"type":"soilMoistureWidget","attrs":{"sensor":"a1","threshold":40},"content":[{"type":"text","text":"датчик"}]}]}`

	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	out, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	var got, want interface{}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("unmarshal serialized doc: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("unmarshal source doc: %v", err)
	}

	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(want)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("round trip mismatch:\ngot  %s\nwant %s", gotJSON, wantJSON)
	}
}

func TestBytesDeterministic(t *testing.T) {
	doc, err := Parse([]byte(`{"type":"doc","content":[{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Свет"}]}]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	first, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	second, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("serialization is not deterministic:\nfirst  %s\nsecond %s", first, second)
	}
}

func TestScanNull(t *testing.T) {
	var doc Document
	if err := doc.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if doc.Type != NodeDoc {
		t.Errorf("doc.Type = %q, want %q", doc.Type, NodeDoc)
	}
	if len(doc.Content) != 0 {
		t.Errorf("len(doc.Content) = %d, want 0", len(doc.Content))
	}
}

func TestEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"no content", `{"type":"doc"}`, true},
		{"single empty paragraph", `{"type":"doc","content":[{"type":"paragraph"}]}`, true},
		{"two empty paragraphs", `{"type":"doc","content":[{"type":"paragraph"},{"type":"paragraph"}]}`, true},
		{"paragraph with text", `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x"}]}]}`, false},
		{"horizontal rule only", `{"type":"doc","content":[{"type":"horizontalRule"}]}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := doc.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	raw := `{"type":"doc","content":[
		{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Уход за фикусом"}]},
		{"type":"paragraph","content":[
			{"type":"text","text":"Поливать раз"},
			{"type":"hardBreak"},
			{"type":"text","text":"в неделю"}
		]}
	]}`

	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := "Уход за фикусом\nПоливать раз в неделю"
	if got := doc.PlainText(); got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestAssetIDs(t *testing.T) {
	raw := `{"type":"doc","content":[
		{"type":"image","attrs":{"assetId":"11111111-aaaa-4bbb-8ccc-222222222222","alt":"росток"}},
		{"type":"blockquote","content":[{"type":"image","attrs":{"assetId":"33333333-dddd-4eee-8fff-444444444444"}}]},
		{"type":"image","attrs":{"src":"https://example.com/x.png"}}
	]}`

	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ids := doc.AssetIDs()
	if len(ids) != 2 {
		t.Fatalf("len(AssetIDs()) = %d, want 2", len(ids))
	}
	if ids[0] != "11111111-aaaa-4bbb-8ccc-222222222222" {
		t.Errorf("ids[0] = %q", ids[0])
	}
	if ids[1] != "33333333-dddd-4eee-8fff-444444444444" {
		t.Errorf("ids[1] = %q", ids[1])
	}
}

func TestAttrHelpers(t *testing.T) {
	attrs := map[string]interface{}{
		"level":    float64(3),
		"count":    7,
		"ratio":    1.5,
		"name":     "pro-tip",
		"wide":     true,
		"badValue": []string{"x"},
	}

	if got := AttrInt(attrs, "level"); got != 3 {
		t.Errorf("AttrInt(level) = %d, want 3", got)
	}
	if got := AttrInt(attrs, "count"); got != 7 {
		t.Errorf("AttrInt(count) = %d, want 7", got)
	}
	if got := AttrInt(attrs, "missing"); got != 0 {
		t.Errorf("AttrInt(missing) = %d, want 0", got)
	}
	if got := AttrFloat(attrs, "ratio"); got != 1.5 {
		t.Errorf("AttrFloat(ratio) = %v, want 1.5", got)
	}
	if got := AttrString(attrs, "name"); got != "pro-tip" {
		t.Errorf("AttrString(name) = %q, want %q", got, "pro-tip")
	}
	if got := AttrString(attrs, "badValue"); got != "" {
		t.Errorf("AttrString(badValue) = %q, want empty", got)
	}
	if !AttrBool(attrs, "wide") {
		t.Error("AttrBool(wide) = false, want true")
	}
	if AttrBool(nil, "wide") {
		t.Error("AttrBool(nil map) = true, want false")
	}
}
