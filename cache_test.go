package courseengine

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestCache(t *testing.T) (*Store, *LessonCache) {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "course.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, NewLessonCache(s, time.Minute)
}

func TestCacheReturnsSyllabusOrder(t *testing.T) {
	s, cache := setupTestCache(t)
	for _, l := range []Lesson{
		{ID: "mocking", Name: "Mocking", Requires: []string{"basics"}},
		{ID: "basics", Name: "Basics"},
	} {
		if err := s.SaveLesson(l); err != nil {
			t.Fatalf("SaveLesson failed: %v", err)
		}
	}

	lessons, err := cache.ListLessons("")
	if err != nil {
		t.Fatalf("ListLessons failed: %v", err)
	}
	if len(lessons) != 2 || lessons[0].ID != "basics" || lessons[1].ID != "mocking" {
		t.Errorf("order = %v, want basics before mocking", lessonIDs(lessons))
	}
}

func TestCacheServesStaleUntilInvalidated(t *testing.T) {
	s, cache := setupTestCache(t)
	if err := s.SaveLesson(Lesson{ID: "a", Name: "A"}); err != nil {
		t.Fatalf("SaveLesson failed: %v", err)
	}
	if _, err := cache.ListLessons(""); err != nil {
		t.Fatalf("ListLessons failed: %v", err)
	}

	if err := s.SaveLesson(Lesson{ID: "b", Name: "B"}); err != nil {
		t.Fatalf("SaveLesson failed: %v", err)
	}
	lessons, _ := cache.ListLessons("")
	if len(lessons) != 1 {
		t.Fatalf("cache should still serve the old snapshot, got %d lessons", len(lessons))
	}

	cache.Invalidate()
	lessons, _ = cache.ListLessons("")
	if len(lessons) != 2 {
		t.Fatalf("cache should reload after Invalidate, got %d lessons", len(lessons))
	}
}

func TestCacheGetLesson(t *testing.T) {
	s, cache := setupTestCache(t)
	if err := s.SaveLesson(Lesson{ID: "a", Name: "A"}); err != nil {
		t.Fatalf("SaveLesson failed: %v", err)
	}

	got, err := cache.GetLesson("a")
	if err != nil {
		t.Fatalf("GetLesson failed: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("ID = %q, want a", got.ID)
	}
	if _, err := cache.GetLesson("missing"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCacheTagFilter(t *testing.T) {
	s, cache := setupTestCache(t)
	for _, l := range []Lesson{
		{ID: "a", Name: "A", Tags: []string{"testing"}},
		{ID: "b", Name: "B", Tags: []string{"hardware"}},
	} {
		if err := s.SaveLesson(l); err != nil {
			t.Fatalf("SaveLesson failed: %v", err)
		}
	}

	lessons, err := cache.ListLessons("Testing")
	if err != nil {
		t.Fatalf("ListLessons failed: %v", err)
	}
	if len(lessons) != 1 || lessons[0].ID != "a" {
		t.Errorf("filtered = %v, want [a]", lessonIDs(lessons))
	}
}
