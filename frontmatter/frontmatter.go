// Package frontmatter splits a lesson page into its YAML metadata block
// and Markdown body. The block is required: a page without front-matter
// cannot satisfy the id/name contract and is rejected at parse time.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Meta is the decoded front-matter of a single page. Extra holds keys the
// schema does not know about, so site-specific fields survive a round trip.
type Meta struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Requires []string `yaml:"requires"`
	Tags     []string `yaml:"tags"`
	Summary  string   `yaml:"summary"`
	Updated  string   `yaml:"updated"`
	Weight   int      `yaml:"weight"`
	Draft    bool     `yaml:"draft"`

	Extra map[string]any `yaml:"-"`
}

// Page is the result of parsing one content file.
type Page struct {
	Meta Meta
	Body string
}

var knownKeys = map[string]struct{}{
	"id": {}, "name": {}, "requires": {}, "tags": {},
	"summary": {}, "updated": {}, "weight": {}, "draft": {},
}

// Parse splits src into front-matter and body and decodes the metadata.
// The front-matter block must start on the first line.
func Parse(src string) (Page, error) {
	raw, body, err := split(src)
	if err != nil {
		return Page{}, err
	}

	var meta Meta
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return Page{}, fmt.Errorf("frontmatter: decode: %w", err)
	}

	// Second pass into a generic map to pick up unknown keys.
	var all map[string]any
	if err := yaml.Unmarshal([]byte(raw), &all); err != nil {
		return Page{}, fmt.Errorf("frontmatter: decode: %w", err)
	}
	for k, v := range all {
		if _, ok := knownKeys[k]; ok {
			continue
		}
		if meta.Extra == nil {
			meta.Extra = make(map[string]any)
		}
		meta.Extra[k] = v
	}

	meta.ID = strings.TrimSpace(meta.ID)
	meta.Name = strings.TrimSpace(meta.Name)
	meta.Requires = trimAll(meta.Requires)
	meta.Tags = trimAll(meta.Tags)

	return Page{Meta: meta, Body: body}, nil
}

// split returns the raw YAML between the delimiters and the remaining body.
func split(src string) (string, string, error) {
	// Tolerate a UTF-8 BOM and Windows line endings.
	src = strings.TrimPrefix(src, "\uFEFF")

	lines := strings.SplitAfter(src, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != delimiter {
		return "", "", fmt.Errorf("frontmatter: missing opening %q delimiter", delimiter)
	}
	var yamlEnd = -1
	offset := len(lines[0])
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == delimiter {
			yamlEnd = i
			break
		}
		offset += len(lines[i])
	}
	if yamlEnd < 0 {
		return "", "", fmt.Errorf("frontmatter: missing closing %q delimiter", delimiter)
	}
	raw := src[len(lines[0]):offset]
	body := src[offset+len(lines[yamlEnd]):]
	return raw, strings.TrimPrefix(body, "\n"), nil
}

func trimAll(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
