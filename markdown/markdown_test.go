package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func render(md string) string {
	var buf bytes.Buffer
	Render(&buf, md)
	return buf.String()
}

func TestFormatInlineBold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineItalic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text *italic* more", "text <em>italic</em> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineCodeProtected(t *testing.T) {
	got := FormatInline("use `x_y_z` here")
	if !strings.Contains(got, "<code>x_y_z</code>") {
		t.Errorf("inline code should not be italic-formatted: %q", got)
	}
}

func TestFormatInlineLink(t *testing.T) {
	got := FormatInline("[docs](https://example.com)")
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("link not rendered: %q", got)
	}
	got = FormatInline("[ext](https://example.com)^")
	if !strings.Contains(got, `target="_blank"`) {
		t.Errorf("caret link should open in new tab: %q", got)
	}
}

func TestFormatInlineUnsafeURLDropped(t *testing.T) {
	got := FormatInline("[x](javascript:alert(1))")
	if strings.Contains(got, "javascript") {
		t.Errorf("unsafe scheme should be dropped: %q", got)
	}
}

func TestRenderHeadingsWithAnchors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading One", `<h1 id="heading-one">Heading One</h1>`},
		{"## Setup & Teardown", `<h2 id="setup-teardown">Setup &amp; Teardown</h2>`},
		{"### Third", `<h3 id="third">Third</h3>`},
		{"#### Fourth", `<h4 id="fourth">Fourth</h4>`},
	}
	for _, tt := range tests {
		got := render(tt.input)
		if got != tt.expected {
			t.Errorf("render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Test Fixtures", "test-fixtures"},
		{"GPU tests (long-running)", "gpu-tests-long-running"},
		{"  Trailing!  ", "trailing"},
	}
	for _, tt := range tests {
		if got := Anchor(tt.input); got != tt.expected {
			t.Errorf("Anchor(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render("```go\nfmt.Println(\"hello\")\n```")
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
	if !strings.Contains(got, `<span class="code-lang code-lang-go">go</span>`) {
		t.Errorf("code block should have language badge: %q", got)
	}
	if !strings.Contains(got, `<div class="code-block-wrapper">`) || !strings.Contains(got, "</div>") {
		t.Errorf("badge wrapper missing or unclosed: %q", got)
	}
}

func TestRenderCodeBlockWithoutLanguage(t *testing.T) {
	got := render("```\nplain code\n```")
	if strings.Contains(got, "code-lang") {
		t.Errorf("code block without language should not have badge: %q", got)
	}
	if !strings.Contains(got, "plain code") {
		t.Errorf("code content missing: %q", got)
	}
}

func TestRenderCodeBlockEscapes(t *testing.T) {
	got := render("```\nif a < b && b > c {\n```")
	if !strings.Contains(got, "a &lt; b &amp;&amp; b &gt; c") {
		t.Errorf("code should be HTML-escaped: %q", got)
	}
}

func TestRenderLists(t *testing.T) {
	got := render("- one\n- two")
	if !strings.Contains(got, "<ul><li>one</li><li>two</li></ul>") {
		t.Errorf("unordered list wrong: %q", got)
	}
	got = render("1. one\n2. two")
	if !strings.Contains(got, "<ol><li>one</li><li>two</li></ol>") {
		t.Errorf("ordered list wrong: %q", got)
	}
}

func TestRenderBlockquote(t *testing.T) {
	got := render("> quoted text")
	if !strings.Contains(got, "<blockquote>quoted text</blockquote>") {
		t.Errorf("blockquote wrong: %q", got)
	}
}

func TestRenderCallout(t *testing.T) {
	got := render("> [!note] Remember this.\n> And this.")
	if !strings.Contains(got, `<div class="callout callout-note">`) {
		t.Errorf("callout div missing: %q", got)
	}
	if !strings.Contains(got, "Remember this.") || !strings.Contains(got, "And this.") {
		t.Errorf("callout content missing: %q", got)
	}
	if !strings.HasSuffix(got, "</div>") {
		t.Errorf("callout should be closed: %q", got)
	}
}

func TestRenderCalloutKinds(t *testing.T) {
	for _, kind := range []string{"note", "tip", "warning"} {
		got := render("> [!" + kind + "] body")
		if !strings.Contains(got, "callout-"+kind) {
			t.Errorf("callout kind %q not rendered: %q", kind, got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	got := render("| A | B |\n|---|---|\n| 1 | 2 |")
	for _, want := range []string{"<table>", "<thead><tr><th>A</th><th>B</th></tr></thead>", "<tbody>", "<td>1</td><td>2</td>", "</table>"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q: %q", want, got)
		}
	}
}

func TestRenderParagraphJoinsLines(t *testing.T) {
	got := render("first line\nsecond line")
	if !strings.HasPrefix(got, "<p>") || !strings.HasSuffix(got, "</p>") {
		t.Errorf("paragraph wrapping wrong: %q", got)
	}
	if !strings.Contains(got, "first line") || !strings.Contains(got, "second line") {
		t.Errorf("paragraph content missing: %q", got)
	}
}

func TestRenderHorizontalRule(t *testing.T) {
	if got := render("---"); got != "<hr/>" {
		t.Errorf("render(---) = %q, want <hr/>", got)
	}
}

func TestRenderImageWithDimensions(t *testing.T) {
	got := FormatInline("![diagram](/public/uploads/diagram.jpg){640|480}")
	if !strings.Contains(got, `width="640"`) || !strings.Contains(got, `height="480"`) {
		t.Errorf("image dimensions missing: %q", got)
	}
	if !strings.Contains(got, `src="/public/uploads/diagram.jpg"`) {
		t.Errorf("image src missing: %q", got)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com", "https://example.com"},
		{"/lesson/a/", "/lesson/a/"},
		{"#anchor", "#anchor"},
		{"javascript:alert(1)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
