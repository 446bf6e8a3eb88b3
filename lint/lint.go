// Package lint checks a parsed lesson corpus for integrity: required
// metadata, unique ids, resolvable prerequisites, and an acyclic requires
// relation. It is the gate in front of every publish path: content sync,
// dashboard saves, and the CLI all run the same checks.
package lint

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Severity classifies an issue. Errors block publishing; warnings do not
// unless strict mode is on.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Page is the linter's view of one lesson: just the metadata under contract.
type Page struct {
	ID       string
	Name     string
	Requires []string
	Tags     []string
	Updated  string
	Source   string // file path for diagnostics, may be empty
}

// Issue is a single finding against one page.
type Issue struct {
	Severity Severity
	PageID   string
	Source   string
	Message  string
}

func (i Issue) Error() string {
	loc := i.Source
	if loc == "" {
		loc = i.PageID
	}
	if loc == "" {
		loc = "<unknown page>"
	}
	return fmt.Sprintf("%s: %s: %s", loc, i.Severity, i.Message)
}

// Result holds every issue found in one corpus pass.
type Result struct {
	Issues []Issue
}

// Errors reports whether any issue blocks publishing. In strict mode
// warnings block too.
func (r Result) Errors(strict bool) bool {
	for _, is := range r.Issues {
		if is.Severity == Error || strict {
			return true
		}
	}
	return false
}

// Err folds the blocking issues into a single error, or nil if the corpus
// is publishable.
func (r Result) Err(strict bool) error {
	var merr *multierror.Error
	for _, is := range r.Issues {
		if is.Severity == Error || strict {
			merr = multierror.Append(merr, is)
		}
	}
	return merr.ErrorOrNil()
}

// Check runs every corpus check over pages and returns all findings,
// ordered by source then page id.
func Check(pages []Page) Result {
	var issues []Issue
	issues = append(issues, checkRequired(pages)...)
	issues = append(issues, checkDuplicateIDs(pages)...)
	issues = append(issues, checkRequires(pages)...)
	issues = append(issues, checkCycles(pages)...)
	issues = append(issues, checkAdvisory(pages)...)

	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].Source != issues[b].Source {
			return issues[a].Source < issues[b].Source
		}
		return issues[a].PageID < issues[b].PageID
	})
	return Result{Issues: issues}
}

// checkRequired enforces the two mandatory front-matter fields.
func checkRequired(pages []Page) []Issue {
	var issues []Issue
	for _, p := range pages {
		if strings.TrimSpace(p.ID) == "" {
			issues = append(issues, Issue{
				Severity: Error,
				Source:   p.Source,
				Message:  "missing required field: id",
			})
		}
		if strings.TrimSpace(p.Name) == "" {
			issues = append(issues, Issue{
				Severity: Error,
				PageID:   p.ID,
				Source:   p.Source,
				Message:  "missing required field: name",
			})
		}
	}
	return issues
}

// checkDuplicateIDs flags every page that reuses an id already claimed by
// an earlier page.
func checkDuplicateIDs(pages []Page) []Issue {
	var issues []Issue
	seen := make(map[string]string, len(pages)) // id -> first source
	for _, p := range pages {
		if p.ID == "" {
			continue
		}
		if first, dup := seen[p.ID]; dup {
			msg := fmt.Sprintf("duplicate id %q", p.ID)
			if first != "" {
				msg = fmt.Sprintf("duplicate id %q (first defined in %s)", p.ID, first)
			}
			issues = append(issues, Issue{
				Severity: Error,
				PageID:   p.ID,
				Source:   p.Source,
				Message:  msg,
			})
			continue
		}
		seen[p.ID] = p.Source
	}
	return issues
}

// checkRequires verifies referential integrity of the requires lists.
func checkRequires(pages []Page) []Issue {
	known := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		if p.ID != "" {
			known[p.ID] = struct{}{}
		}
	}
	var issues []Issue
	for _, p := range pages {
		for _, req := range p.Requires {
			if req == p.ID && p.ID != "" {
				issues = append(issues, Issue{
					Severity: Error,
					PageID:   p.ID,
					Source:   p.Source,
					Message:  "page requires itself",
				})
				continue
			}
			if _, ok := known[req]; !ok {
				issues = append(issues, Issue{
					Severity: Error,
					PageID:   p.ID,
					Source:   p.Source,
					Message:  fmt.Sprintf("requires unknown page %q", req),
				})
			}
		}
	}
	return issues
}

// checkCycles reports each requires cycle once, naming the pages on it.
// Self-requires is reported by checkRequires and skipped here.
func checkCycles(pages []Page) []Issue {
	adj := make(map[string][]string, len(pages))
	src := make(map[string]string, len(pages))
	for _, p := range pages {
		if p.ID == "" {
			continue
		}
		src[p.ID] = p.Source
		for _, req := range p.Requires {
			if req != p.ID {
				adj[p.ID] = append(adj[p.ID], req)
			}
		}
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(adj))
	var stack []string
	var issues []Issue
	reported := make(map[string]bool)

	var visit func(id string)
	visit = func(id string) {
		state[id] = inStack
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				// Walk back up the stack to recover the cycle path.
				i := len(stack) - 1
				for i >= 0 && stack[i] != next {
					i--
				}
				cycle := append(append([]string{}, stack[i:]...), next)
				key := canonicalCycle(cycle[:len(cycle)-1])
				if !reported[key] {
					reported[key] = true
					issues = append(issues, Issue{
						Severity: Error,
						PageID:   next,
						Source:   src[next],
						Message:  fmt.Sprintf("requires cycle: %s", strings.Join(cycle, " -> ")),
					})
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}

	ids := make([]string, 0, len(src))
	for id := range src {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return issues
}

// canonicalCycle produces a rotation-independent key so the same cycle is
// not reported once per member.
func canonicalCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	min := 0
	for i := range cycle {
		if cycle[i] < cycle[min] {
			min = i
		}
	}
	rotated := append(append([]string{}, cycle[min:]...), cycle[:min]...)
	return strings.Join(rotated, "\x00")
}

// checkAdvisory covers the non-blocking hygiene checks.
func checkAdvisory(pages []Page) []Issue {
	var issues []Issue
	for _, p := range pages {
		if p.Updated != "" {
			if _, err := time.Parse("2006-01-02", p.Updated); err != nil {
				issues = append(issues, Issue{
					Severity: Warning,
					PageID:   p.ID,
					Source:   p.Source,
					Message:  fmt.Sprintf("updated %q is not YYYY-MM-DD", p.Updated),
				})
			}
		}
		seen := make(map[string]struct{}, len(p.Tags))
		for _, t := range p.Tags {
			tag := strings.ToLower(strings.TrimSpace(t))
			if _, dup := seen[tag]; dup {
				issues = append(issues, Issue{
					Severity: Warning,
					PageID:   p.ID,
					Source:   p.Source,
					Message:  fmt.Sprintf("duplicate tag %q", tag),
				})
				continue
			}
			seen[tag] = struct{}{}
		}
	}
	return issues
}
