package courseengine

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eringen/courseengine/frontmatter"
	"github.com/eringen/courseengine/lint"
)

// LoadDir walks dir and parses every .md file into a Lesson. Files and
// directories starting with "." or "_" are skipped. Parse failures abort the
// load; a half-readable corpus cannot be linted meaningfully.
func LoadDir(dir string) ([]Lesson, error) {
	var lessons []Lesson
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || !strings.HasSuffix(base, ".md") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		page, err := frontmatter.Parse(string(raw))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		lessons = append(lessons, Lesson{
			ID:       page.Meta.ID,
			Name:     page.Meta.Name,
			Requires: page.Meta.Requires,
			Tags:     page.Meta.Tags,
			Summary:  page.Meta.Summary,
			Updated:  page.Meta.Updated,
			Weight:   page.Meta.Weight,
			Content:  page.Body,
			Source:   filepath.ToSlash(rel),
			Draft:    page.Meta.Draft,
			Link:     "/lesson/" + page.Meta.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Source < lessons[j].Source })
	return lessons, nil
}

// LintLessons runs the corpus checks over lessons.
func LintLessons(lessons []Lesson) lint.Result {
	pages := make([]lint.Page, len(lessons))
	for i, l := range lessons {
		pages[i] = lint.Page{
			ID:       l.ID,
			Name:     l.Name,
			Requires: l.Requires,
			Tags:     l.Tags,
			Updated:  l.Updated,
			Source:   l.Source,
		}
	}
	return lint.Check(pages)
}

// SyncContent loads the content directory, lints the resulting corpus
// together with any dashboard-authored lessons already in the store, and
// replaces the stored corpus atomically. A lint error leaves the store
// untouched.
func (a *App) SyncContent() error {
	loaded, err := LoadDir(a.Config.ContentDir)
	if err != nil {
		return fmt.Errorf("courseengine: load content: %w", err)
	}

	// Dashboard-authored lessons have no source file and survive a sync.
	existing, err := a.Store.ListAllLessons()
	if err != nil {
		return fmt.Errorf("courseengine: list lessons: %w", err)
	}
	for _, l := range existing {
		if l.Source == "" {
			loaded = append(loaded, l)
		}
	}

	if err := LintLessons(loaded).Err(a.strictLint); err != nil {
		return fmt.Errorf("courseengine: corpus failed lint:\n%w", err)
	}

	if err := a.Store.ReplaceAll(loaded); err != nil {
		return fmt.Errorf("courseengine: replace corpus: %w", err)
	}
	a.Cache.Invalidate()
	return nil
}
