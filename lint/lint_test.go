package lint

import (
	"strings"
	"testing"
)

func page(id string, requires ...string) Page {
	return Page{ID: id, Name: strings.ToUpper(id), Requires: requires, Source: id + ".md"}
}

func findMessage(t *testing.T, r Result, want string) Issue {
	t.Helper()
	for _, is := range r.Issues {
		if strings.Contains(is.Message, want) {
			return is
		}
	}
	t.Fatalf("no issue containing %q in %v", want, r.Issues)
	return Issue{}
}

func TestCheckCleanCorpus(t *testing.T) {
	r := Check([]Page{
		page("basics"),
		page("fixtures", "basics"),
		page("mocking", "basics", "fixtures"),
	})
	if len(r.Issues) != 0 {
		t.Errorf("expected no issues, got %v", r.Issues)
	}
	if r.Errors(false) || r.Errors(true) {
		t.Error("clean corpus should not report errors")
	}
	if r.Err(false) != nil {
		t.Errorf("Err = %v, want nil", r.Err(false))
	}
}

func TestCheckMissingID(t *testing.T) {
	r := Check([]Page{{Name: "No Id", Source: "noid.md"}})
	is := findMessage(t, r, "missing required field: id")
	if is.Severity != Error {
		t.Errorf("severity = %v, want error", is.Severity)
	}
	if is.Source != "noid.md" {
		t.Errorf("source = %q, want noid.md", is.Source)
	}
}

func TestCheckMissingName(t *testing.T) {
	r := Check([]Page{{ID: "a", Source: "a.md"}})
	is := findMessage(t, r, "missing required field: name")
	if is.PageID != "a" {
		t.Errorf("page id = %q, want a", is.PageID)
	}
}

func TestCheckDuplicateIDs(t *testing.T) {
	r := Check([]Page{
		{ID: "a", Name: "A", Source: "one.md"},
		{ID: "a", Name: "Other A", Source: "two.md"},
	})
	is := findMessage(t, r, "duplicate id")
	if is.Source != "two.md" {
		t.Errorf("duplicate reported at %q, want the second definition", is.Source)
	}
	if !strings.Contains(is.Message, "one.md") {
		t.Errorf("message should name the first definition: %q", is.Message)
	}
	if !r.Errors(false) {
		t.Error("duplicate id must block publishing")
	}
}

func TestCheckDanglingRequires(t *testing.T) {
	r := Check([]Page{page("a", "ghost")})
	is := findMessage(t, r, `requires unknown page "ghost"`)
	if is.PageID != "a" {
		t.Errorf("page id = %q, want a", is.PageID)
	}
}

func TestCheckSelfRequires(t *testing.T) {
	r := Check([]Page{page("a", "a")})
	findMessage(t, r, "requires itself")
}

func TestCheckCycle(t *testing.T) {
	r := Check([]Page{
		page("a", "b"),
		page("b", "c"),
		page("c", "a"),
	})
	is := findMessage(t, r, "requires cycle")
	for _, id := range []string{"a", "b", "c"} {
		if !strings.Contains(is.Message, id) {
			t.Errorf("cycle message %q should name %q", is.Message, id)
		}
	}
	// The same cycle must be reported once, not once per member.
	count := 0
	for _, issue := range r.Issues {
		if strings.Contains(issue.Message, "requires cycle") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("cycle reported %d times, want 1", count)
	}
}

func TestCheckTwoSeparateCycles(t *testing.T) {
	r := Check([]Page{
		page("a", "b"), page("b", "a"),
		page("x", "y"), page("y", "x"),
	})
	count := 0
	for _, issue := range r.Issues {
		if strings.Contains(issue.Message, "requires cycle") {
			count++
		}
	}
	if count != 2 {
		t.Errorf("cycle issues = %d, want 2", count)
	}
}

func TestCheckAdvisoryBadDate(t *testing.T) {
	p := page("a")
	p.Updated = "02/10/2026"
	r := Check([]Page{p})
	is := findMessage(t, r, "not YYYY-MM-DD")
	if is.Severity != Warning {
		t.Errorf("severity = %v, want warning", is.Severity)
	}
	if r.Errors(false) {
		t.Error("warnings alone should not block publishing")
	}
	if !r.Errors(true) {
		t.Error("strict mode should block on warnings")
	}
	if r.Err(true) == nil {
		t.Error("strict Err should be non-nil")
	}
}

func TestCheckAdvisoryDuplicateTags(t *testing.T) {
	p := page("a")
	p.Tags = []string{"go", "Go"}
	r := Check([]Page{p})
	is := findMessage(t, r, `duplicate tag "go"`)
	if is.Severity != Warning {
		t.Errorf("severity = %v, want warning", is.Severity)
	}
}

func TestErrAggregatesAllBlockingIssues(t *testing.T) {
	r := Check([]Page{
		page("a", "ghost"),
		{ID: "b", Source: "b.md"},
	})
	err := r.Err(false)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "ghost") || !strings.Contains(msg, "missing required field: name") {
		t.Errorf("aggregated error should contain both findings: %q", msg)
	}
}

func TestIssueErrorFormat(t *testing.T) {
	is := Issue{Severity: Error, PageID: "a", Source: "a.md", Message: "boom"}
	if got := is.Error(); got != "a.md: error: boom" {
		t.Errorf("Error() = %q", got)
	}
	is = Issue{Severity: Warning, PageID: "a", Message: "meh"}
	if got := is.Error(); got != "a: warning: meh" {
		t.Errorf("Error() = %q", got)
	}
}
