package frontmatter

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	src := `---
id: testing-fixtures
name: Test Fixtures
requires: [testing-basics]
tags: [testing, fixtures]
summary: Reusable setup and teardown.
updated: 2026-02-10
weight: 3
---

# Test Fixtures

Body text.
`
	page, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if page.Meta.ID != "testing-fixtures" {
		t.Errorf("ID = %q, want %q", page.Meta.ID, "testing-fixtures")
	}
	if page.Meta.Name != "Test Fixtures" {
		t.Errorf("Name = %q, want %q", page.Meta.Name, "Test Fixtures")
	}
	if len(page.Meta.Requires) != 1 || page.Meta.Requires[0] != "testing-basics" {
		t.Errorf("Requires = %v, want [testing-basics]", page.Meta.Requires)
	}
	if len(page.Meta.Tags) != 2 || page.Meta.Tags[0] != "testing" || page.Meta.Tags[1] != "fixtures" {
		t.Errorf("Tags = %v, want [testing fixtures]", page.Meta.Tags)
	}
	if page.Meta.Weight != 3 {
		t.Errorf("Weight = %d, want 3", page.Meta.Weight)
	}
	if !strings.HasPrefix(page.Body, "# Test Fixtures") {
		t.Errorf("Body should start with heading, got %q", page.Body)
	}
}

func TestParseBlockListSyntax(t *testing.T) {
	src := "---\nid: a\nname: A\nrequires:\n  - b\n  - c\n---\nbody"
	page, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(page.Meta.Requires) != 2 || page.Meta.Requires[0] != "b" || page.Meta.Requires[1] != "c" {
		t.Errorf("Requires = %v, want [b c]", page.Meta.Requires)
	}
	if page.Body != "body" {
		t.Errorf("Body = %q, want %q", page.Body, "body")
	}
}

func TestParseMissingOpeningDelimiter(t *testing.T) {
	if _, err := Parse("# Just a heading\n"); err == nil {
		t.Fatal("expected error for missing front-matter")
	}
}

func TestParseMissingClosingDelimiter(t *testing.T) {
	if _, err := Parse("---\nid: a\nname: A\n"); err == nil {
		t.Fatal("expected error for unterminated front-matter")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse("---\nid: [unclosed\n---\nbody"); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestParseUnknownKeysPreserved(t *testing.T) {
	src := "---\nid: a\nname: A\nvideo_url: https://example.com/a.mp4\n---\n"
	page, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if page.Meta.Extra["video_url"] != "https://example.com/a.mp4" {
		t.Errorf("Extra = %v, want video_url preserved", page.Meta.Extra)
	}
	if _, ok := page.Meta.Extra["id"]; ok {
		t.Error("known keys should not appear in Extra")
	}
}

func TestParseTrimsFields(t *testing.T) {
	src := "---\nid: '  spaced  '\nname: '  Name  '\ntags: ['', '  go  ']\n---\n"
	page, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if page.Meta.ID != "spaced" {
		t.Errorf("ID = %q, want trimmed", page.Meta.ID)
	}
	if page.Meta.Name != "Name" {
		t.Errorf("Name = %q, want trimmed", page.Meta.Name)
	}
	if len(page.Meta.Tags) != 1 || page.Meta.Tags[0] != "go" {
		t.Errorf("Tags = %v, want empty entries dropped", page.Meta.Tags)
	}
}

func TestParseCRLF(t *testing.T) {
	src := "---\r\nid: a\r\nname: A\r\n---\r\nbody\r\n"
	page, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if page.Meta.ID != "a" || page.Meta.Name != "A" {
		t.Errorf("Meta = %+v, want id a / name A", page.Meta)
	}
}
