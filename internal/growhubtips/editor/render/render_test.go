package render

import (
	"strings"
	"testing"

	"github.com/growhub-it/growhubtips/internal/growhubtips/editor/doctree"
)

func renderDoc(t *testing.T, raw string) string {
	t.Helper()
	doc, err := doctree.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var r Renderer
	return r.HTML(doc)
}

func TestRenderParagraph(t *testing.T) {
	got := renderDoc(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"привет <мир>"}]}]}`)
	want := "<p>привет &lt;мир&gt;</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderTextAlign(t *testing.T) {
	tests := []struct {
		name  string
		align string
		want  string
	}{
		{"center", "center", `<p style="text-align: center">x</p>`},
		{"justify", "justify", `<p style="text-align: justify">x</p>`},
		{"bogus value dropped", "diagonal", "<p>x</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Renderer
			got := r.NodeHTML(doctree.Node{
				Type:    doctree.NodeParagraph,
				Attrs:   map[string]interface{}{"textAlign": tt.align},
				Content: []doctree.Node{{Type: doctree.NodeText, Text: "x"}},
			})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderHeadingLevelClamp(t *testing.T) {
	tests := []struct {
		name  string
		level interface{}
		want  string
	}{
		{"level 2", float64(2), "h2"},
		{"level 0 clamps to 1", float64(0), "h1"},
		{"level 6 clamps to 3", float64(6), "h3"},
		{"missing level", nil, "h1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := map[string]interface{}{}
			if tt.level != nil {
				attrs["level"] = tt.level
			}
			var r Renderer
			got := r.NodeHTML(doctree.Node{
				Type:    doctree.NodeHeading,
				Attrs:   attrs,
				Content: []doctree.Node{{Type: doctree.NodeText, Text: "Свет"}},
			})
			if !strings.HasPrefix(got, "<"+tt.want) || !strings.HasSuffix(got, "</"+tt.want+">") {
				t.Errorf("got %q, want %s tag", got, tt.want)
			}
		})
	}
}

func TestRenderHeadingAnchor(t *testing.T) {
	var r Renderer
	got := r.NodeHTML(doctree.Node{
		Type:    doctree.NodeHeading,
		Attrs:   map[string]interface{}{"level": 2},
		Content: []doctree.Node{{Type: doctree.NodeText, Text: "Выбор грунта"}},
	})
	want := `<h2 id="выбор-грунта">Выбор грунта</h2>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderMarks(t *testing.T) {
	tests := []struct {
		name  string
		marks []doctree.Mark
		want  string
	}{
		{"bold", []doctree.Mark{{Type: "bold"}}, "<strong>x</strong>"},
		{"italic", []doctree.Mark{{Type: "italic"}}, "<em>x</em>"},
		{"underline", []doctree.Mark{{Type: "underline"}}, "<u>x</u>"},
		{"strike", []doctree.Mark{{Type: "strike"}}, "<s>x</s>"},
		{"code", []doctree.Mark{{Type: "code"}}, "<code>x</code>"},
		{"highlight", []doctree.Mark{{Type: "highlight"}}, "<mark>x</mark>"},
		{
			"highlight with color",
			[]doctree.Mark{{Type: "highlight", Attrs: map[string]interface{}{"color": "#ffef9e"}}},
			`<mark data-color="#ffef9e">x</mark>`,
		},
		{
			"link",
			[]doctree.Mark{{Type: "link", Attrs: map[string]interface{}{"href": "https://growhub.example/tips"}}},
			`<a href="https://growhub.example/tips" rel="noopener noreferrer" target="_blank">x</a>`,
		},
		{
			"link without href",
			[]doctree.Mark{{Type: "link"}},
			`<a href="#" rel="noopener noreferrer" target="_blank">x</a>`,
		},
		{
			"marks wrap in list order",
			[]doctree.Mark{{Type: "link", Attrs: map[string]interface{}{"href": "#"}}, {Type: "bold"}, {Type: "italic"}},
			`<em><strong><a href="#" rel="noopener noreferrer" target="_blank">x</a></strong></em>`,
		},
		{
			"reversed list reverses nesting",
			[]doctree.Mark{{Type: "italic"}, {Type: "bold"}},
			"<strong><em>x</em></strong>",
		},
		{"unknown mark ignored", []doctree.Mark{{Type: "blink"}}, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderText(&doctree.Node{Type: doctree.NodeText, Text: "x", Marks: tt.marks})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderLists(t *testing.T) {
	got := renderDoc(t, `{"type":"doc","content":[
		{"type":"bulletList","content":[
			{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"перлит"}]}]},
			{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"кора"}]}]}
		]}
	]}`)
	want := "<ul><li><p>перлит</p></li><li><p>кора</p></li></ul>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderCodeBlock(t *testing.T) {
	var r Renderer
	got := r.NodeHTML(doctree.Node{
		Type:    doctree.NodeCodeBlock,
		Attrs:   map[string]interface{}{"language": "bash"},
		Content: []doctree.Node{{Type: doctree.NodeText, Text: "echo <hi>"}},
	})
	want := `<pre><code class="language-bash">echo &lt;hi&gt;</code></pre>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderImageWithResolver(t *testing.T) {
	r := Renderer{ResolveAsset: func(id string) string {
		return "/api/media/" + id + "/"
	}}
	got := r.NodeHTML(doctree.Node{
		Type:  doctree.NodeImage,
		Attrs: map[string]interface{}{"assetId": "abc", "alt": "росток", "caption": "Неделя 2"},
	})
	want := `<figure><img src="/api/media/abc/" alt="росток" loading="lazy"><figcaption>Неделя 2</figcaption></figure>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderImageWithoutSrc(t *testing.T) {
	var r Renderer
	if got := r.NodeHTML(doctree.Node{Type: doctree.NodeImage}); got != "" {
		t.Errorf("image without src rendered %q, want empty", got)
	}
}

func TestRenderTableSpans(t *testing.T) {
	got := renderDoc(t, `{"type":"doc","content":[
		{"type":"table","content":[
			{"type":"tableRow","content":[
				{"type":"tableHeader","attrs":{"colspan":2},"content":[{"type":"paragraph","content":[{"type":"text","text":"Полив"}]}]}
			]},
			{"type":"tableRow","content":[
				{"type":"tableCell","attrs":{"colspan":1,"rowspan":1},"content":[{"type":"paragraph"}]},
				{"type":"tableCell","content":[{"type":"paragraph"}]}
			]}
		]}
	]}`)
	want := `<table><tbody><tr><th colspan="2"><p>Полив</p></th></tr><tr><td><p></p></td><td><p></p></td></tr></tbody></table>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEmbedYoutube(t *testing.T) {
	var r Renderer
	got := r.NodeHTML(doctree.Node{
		Type:  doctree.NodeEmbed,
		Attrs: map[string]interface{}{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
	})
	want := `<div class="embed embed-youtube"><iframe src="https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ" frameborder="0" allowfullscreen></iframe></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEmbedUnresolvable(t *testing.T) {
	var r Renderer
	got := r.NodeHTML(doctree.Node{
		Type:  doctree.NodeEmbed,
		Attrs: map[string]interface{}{"url": "https://example.com/video/15"},
	})
	if got != "" {
		t.Errorf("unresolvable embed rendered %q, want empty", got)
	}
}

func TestRenderPlantCareCard(t *testing.T) {
	var r Renderer
	got := r.NodeHTML(doctree.Node{
		Type: doctree.NodePlantCareCard,
		Attrs: map[string]interface{}{
			"plantName":  "Монстера",
			"light":      "Яркий рассеянный",
			"water":      "Раз в неделю",
			"difficulty": "Легко",
		},
		Content: []doctree.Node{{Type: doctree.NodeParagraph, Content: []doctree.Node{{Type: doctree.NodeText, Text: "Любит опрыскивание."}}}},
	})

	for _, part := range []string{
		`<aside class="plant-care-card">`,
		"<dt>Растение</dt><dd>Монстера</dd>",
		"<dt>Свет</dt><dd>Яркий рассеянный</dd>",
		"<dt>Сложность</dt><dd>Легко</dd>",
		"<p>Любит опрыскивание.</p>",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("rendered card %q does not contain %q", got, part)
		}
	}
	if strings.Contains(got, "<dt>Грунт</dt>") {
		t.Error("empty soil attr rendered a dl row")
	}
}

func TestRenderGrowthTimeline(t *testing.T) {
	got := renderDoc(t, `{"type":"doc","content":[
		{"type":"growthTimeline","content":[
			{"type":"timelineEntry","attrs":{"week":1},"content":[{"type":"paragraph","content":[{"type":"text","text":"всходы"}]}]},
			{"type":"timelineEntry","attrs":{"week":3},"content":[{"type":"paragraph","content":[{"type":"text","text":"первый лист"}]}]}
		]}
	]}`)
	want := `<ol class="growth-timeline"><li><span class="week">Неделя 1</span><p>всходы</p></li><li><span class="week">Неделя 3</span><p>первый лист</p></li></ol>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderUnknownNode(t *testing.T) {
	t.Run("with children", func(t *testing.T) {
		got := renderDoc(t, `{"type":"doc","content":[{"type":"futureWidget","content":[{"type":"paragraph","content":[{"type":"text","text":"внутри"}]}]}]}`)
		if got != "<p>внутри</p>" {
			t.Errorf("got %q, want children rendered", got)
		}
	})
	t.Run("without children", func(t *testing.T) {
		got := renderDoc(t, `{"type":"doc","content":[{"type":"futureWidget"}]}`)
		if got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Выбор грунта", "выбор-грунта"},
		{"Watering 101", "watering-101"},
		{"  A  B  ", "a-b"},
		{"***", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTableOfContents(t *testing.T) {
	rendered := renderDoc(t, `{"type":"doc","content":[
		{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Уход"}]},
		{"type":"paragraph","content":[{"type":"text","text":"текст"}]},
		{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Полив"}]},
		{"type":"heading","attrs":{"level":5},"content":[{"type":"text","text":"Дренаж"}]}
	]}`)

	toc, err := TableOfContents(rendered)
	if err != nil {
		t.Fatalf("TableOfContents() error = %v", err)
	}
	if len(toc) != 3 {
		t.Fatalf("len(toc) = %d, want 3", len(toc))
	}
	if toc[0].Level != 1 || toc[0].Anchor != "уход" || toc[0].Title != "Уход" {
		t.Errorf("toc[0] = %+v", toc[0])
	}
	if toc[1].Level != 2 || toc[1].Anchor != "полив" {
		t.Errorf("toc[1] = %+v", toc[1])
	}
	// Уровень 5 приводится к h3 при рендеринге
	if toc[2].Level != 3 || toc[2].Anchor != "дренаж" {
		t.Errorf("toc[2] = %+v", toc[2])
	}
}
