// Package markdown renders lesson Markdown to HTML as a templ component.
// Beyond the basics it supports anchored headings (so syllabus entries can
// deep-link into a lesson) and callout admonitions, which course prose
// leans on heavily.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold             = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnderscore   = regexp.MustCompile(`__(.+?)__`)
	reItalic           = regexp.MustCompile(`\*([^*]+)\*`)
	reItalicUnderscore = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode       = regexp.MustCompile("`([^`]+)`")
	reLink             = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedList      = regexp.MustCompile(`^(\d+)\.\s`)
	// ![alt](url) or ![alt](url){width|height}
	reImg = regexp.MustCompile(`\!\[(.*?)\]\((.*?)\)(?:\{(\d+)\|(\d+)\})?`)
	// > [!note] / > [!tip] / > [!warning]
	reCallout = regexp.MustCompile(`^\[!(note|tip|warning)\]\s*`)
)

// Markdown returns a templ.Component that renders md as HTML.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, content)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// block tracks which container element is currently open.
type block int

const (
	blockNone block = iota
	blockPara
	blockList
	blockOrderedList
	blockQuote
	blockCallout
	blockTable
)

type renderer struct {
	buf             *bytes.Buffer
	open            block
	inCode          bool
	codeLang        bool // current code block carries a language badge
	tableHeaderDone bool
}

// Render writes the HTML representation of md to buf.
func Render(buf *bytes.Buffer, md string) {
	r := &renderer{buf: buf}
	for _, raw := range strings.Split(md, "\n") {
		r.line(strings.TrimRight(raw, "\r"))
	}
	r.close()
	r.closeCode()
}

// close ends whichever container block is open.
func (r *renderer) close() {
	switch r.open {
	case blockPara:
		r.buf.WriteString("</p>")
	case blockList:
		r.buf.WriteString("</ul>")
	case blockOrderedList:
		r.buf.WriteString("</ol>")
	case blockQuote:
		r.buf.WriteString("</blockquote>")
	case blockCallout:
		r.buf.WriteString("</div>")
	case blockTable:
		if r.tableHeaderDone {
			r.buf.WriteString("</tbody>")
		}
		r.buf.WriteString("</table>")
		r.tableHeaderDone = false
	}
	r.open = blockNone
}

func (r *renderer) closeCode() {
	if !r.inCode {
		return
	}
	r.buf.WriteString("</code></pre>")
	if r.codeLang {
		r.buf.WriteString("</div>")
		r.codeLang = false
	}
	r.inCode = false
}

// ensure closes the current block unless it already matches want, and
// reports whether a new container must be opened.
func (r *renderer) ensure(want block) bool {
	if r.open == want {
		return false
	}
	r.close()
	r.open = want
	return true
}

func (r *renderer) line(line string) {
	if strings.HasPrefix(line, "```") {
		if r.inCode {
			r.closeCode()
			return
		}
		r.close()
		lang := strings.TrimSpace(line[3:])
		if lang != "" {
			r.codeLang = true
			escaped := html.EscapeString(lang)
			r.buf.WriteString(`<div class="code-block-wrapper"><span class="code-lang code-lang-` + escaped + `">` + escaped + `</span>`)
			r.buf.WriteString(`<pre class="code-block"><code class="language-` + escaped + `">`)
		} else {
			r.buf.WriteString(`<pre class="code-block"><code>`)
		}
		r.inCode = true
		return
	}

	if r.inCode {
		r.buf.WriteString(html.EscapeString(line))
		r.buf.WriteString("\n")
		return
	}

	if strings.TrimSpace(line) == "" {
		r.close()
		return
	}

	switch {
	case strings.HasPrefix(line, "---"):
		r.close()
		r.buf.WriteString("<hr/>")
	case strings.HasPrefix(line, "#### "):
		r.heading(4, line[5:])
	case strings.HasPrefix(line, "### "):
		r.heading(3, line[4:])
	case strings.HasPrefix(line, "## "):
		r.heading(2, line[3:])
	case strings.HasPrefix(line, "# "):
		r.heading(1, line[2:])
	case strings.HasPrefix(line, "|"):
		r.tableRow(line)
	case strings.HasPrefix(line, "- "):
		if r.ensure(blockList) {
			r.buf.WriteString("<ul>")
		}
		r.buf.WriteString("<li>")
		r.buf.WriteString(FormatInline(strings.TrimSpace(line[2:])))
		r.buf.WriteString("</li>")
	case reOrderedList.MatchString(line):
		if r.ensure(blockOrderedList) {
			r.buf.WriteString("<ol>")
		}
		content := reOrderedList.ReplaceAllString(line, "")
		r.buf.WriteString("<li>")
		r.buf.WriteString(FormatInline(strings.TrimSpace(content)))
		r.buf.WriteString("</li>")
	case strings.HasPrefix(line, "> "):
		r.quote(strings.TrimSpace(line[2:]))
	default:
		if r.ensure(blockPara) {
			r.buf.WriteString("<p>")
		} else {
			r.buf.WriteString(" ")
		}
		r.buf.WriteString(FormatInline(strings.TrimSpace(line)) + "\n")
	}
}

func (r *renderer) heading(level int, text string) {
	r.close()
	text = strings.TrimSpace(text)
	tag := "h" + strconv.Itoa(level)
	anchor := Anchor(text)
	if anchor != "" {
		r.buf.WriteString(`<` + tag + ` id="` + anchor + `">`)
	} else {
		r.buf.WriteString(`<` + tag + `>`)
	}
	r.buf.WriteString(FormatInline(text))
	r.buf.WriteString(`</` + tag + `>`)
}

func (r *renderer) quote(text string) {
	if m := reCallout.FindStringSubmatch(text); m != nil {
		kind := m[1]
		r.close()
		r.open = blockCallout
		r.buf.WriteString(`<div class="callout callout-` + kind + `">`)
		rest := strings.TrimSpace(text[len(m[0]):])
		if rest != "" {
			r.buf.WriteString(FormatInline(rest))
		}
		return
	}
	if r.open == blockCallout {
		r.buf.WriteString(" ")
		r.buf.WriteString(FormatInline(text))
		return
	}
	if r.ensure(blockQuote) {
		r.buf.WriteString("<blockquote>")
	}
	r.buf.WriteString(FormatInline(text))
}

func (r *renderer) tableRow(line string) {
	if r.ensure(blockTable) {
		r.buf.WriteString("<table>")
		// First row is the header.
		r.buf.WriteString("<thead><tr>")
		for _, cell := range parseTableCells(line) {
			r.buf.WriteString("<th>")
			r.buf.WriteString(FormatInline(cell))
			r.buf.WriteString("</th>")
		}
		r.buf.WriteString("</tr></thead>")
		return
	}
	if isTableSeparator(line) {
		// Skip separator line like |---|---|
		if !r.tableHeaderDone {
			r.buf.WriteString("<tbody>")
			r.tableHeaderDone = true
		}
		return
	}
	if !r.tableHeaderDone {
		r.buf.WriteString("<tbody>")
		r.tableHeaderDone = true
	}
	r.buf.WriteString("<tr>")
	for _, cell := range parseTableCells(line) {
		r.buf.WriteString("<td>")
		r.buf.WriteString(FormatInline(cell))
		r.buf.WriteString("</td>")
	}
	r.buf.WriteString("</tr>")
}

func parseTableCells(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func isTableSeparator(line string) bool {
	line = strings.TrimSpace(line)
	line = strings.Trim(line, "|")
	for _, cell := range strings.Split(line, "|") {
		cell = strings.TrimSpace(cell)
		cleaned := strings.ReplaceAll(strings.ReplaceAll(cell, "-", ""), ":", "")
		if cleaned != "" {
			return false
		}
	}
	return true
}

// Anchor derives a stable fragment id from heading text.
func Anchor(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	var b strings.Builder
	dash := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ApplyOutsideTags applies fn only to text segments outside HTML tags,
// so that formatting regexes never touch URLs inside href attributes, etc.
func ApplyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline applies inline formatting (bold, italic, code, links, images) to s.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)
	// ![alt](url) or ![alt](url){width|height}
	escaped = reImg.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reImg.FindStringSubmatch(m)
		if len(match) < 3 {
			return m
		}
		src := SafeURL(match[2])
		if src == "" {
			return match[1]
		}
		attrs := `loading="lazy" decoding="async"`
		if match[3] != "" && match[4] != "" {
			attrs += ` width="` + match[3] + `" height="` + match[4] + `"`
		}
		return `<img ` + attrs + ` alt="` + match[1] + `" src="` + src + `"/>`
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		if len(match) < 3 {
			return m
		}
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := `class="underline decoration-2 underline-offset-4"`
		if len(match) >= 4 && match[3] == "^" {
			attrs += ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `" ` + attrs + `>` + match[1] + `</a>`
	})
	// Inline code: extract and replace with placeholders so bold/italic
	// regex does not format content inside backticks.
	var inlineCodeBlocks []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reInlineCode.FindStringSubmatch(m)
		placeholder := "\x00IC" + strconv.Itoa(len(inlineCodeBlocks)) + "\x00"
		inlineCodeBlocks = append(inlineCodeBlocks, "<code>"+match[1]+"</code>")
		return placeholder
	})
	// Apply bold/italic only outside HTML tags so URLs in href are not corrupted
	escaped = ApplyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reBoldUnderscore.ReplaceAllString(seg, "<strong>$1</strong>")
		seg = reItalic.ReplaceAllString(seg, "<em>$1</em>")
		seg = reItalicUnderscore.ReplaceAllString(seg, "<em>$1</em>")
		return seg
	})
	// Restore inline code blocks
	for i, code := range inlineCodeBlocks {
		escaped = strings.Replace(escaped, "\x00IC"+strconv.Itoa(i)+"\x00", code, 1)
	}
	return escaped
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
