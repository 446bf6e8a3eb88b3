package courseengine

import (
	"strings"
	"testing"
)

func lessonIDs(lessons []Lesson) []string {
	var ids []string
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestSyllabusOrderRespectsRequires(t *testing.T) {
	syl, err := NewSyllabus([]Lesson{
		{ID: "mocking", Name: "Mocking", Requires: []string{"fixtures"}},
		{ID: "basics", Name: "Basics"},
		{ID: "fixtures", Name: "Fixtures", Requires: []string{"basics"}},
	})
	if err != nil {
		t.Fatalf("NewSyllabus failed: %v", err)
	}
	ids := lessonIDs(syl.Ordered())
	pos := make(map[string]int)
	for i, id := range ids {
		pos[id] = i
	}
	if pos["basics"] > pos["fixtures"] || pos["fixtures"] > pos["mocking"] {
		t.Errorf("order %v violates prerequisites", ids)
	}
}

func TestSyllabusTieBreakByWeightThenName(t *testing.T) {
	syl, err := NewSyllabus([]Lesson{
		{ID: "c", Name: "Charlie", Weight: 2},
		{ID: "b", Name: "Bravo", Weight: 1},
		{ID: "a", Name: "Alpha", Weight: 2},
	})
	if err != nil {
		t.Fatalf("NewSyllabus failed: %v", err)
	}
	ids := lessonIDs(syl.Ordered())
	want := []string{"b", "a", "c"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestSyllabusDepth(t *testing.T) {
	syl, err := NewSyllabus([]Lesson{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", Requires: []string{"a"}},
		{ID: "c", Name: "C", Requires: []string{"a", "b"}},
	})
	if err != nil {
		t.Fatalf("NewSyllabus failed: %v", err)
	}
	for id, want := range map[string]int{"a": 0, "b": 1, "c": 2} {
		if got := syl.Depth(id); got != want {
			t.Errorf("Depth(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestSyllabusPrerequisitesTransitive(t *testing.T) {
	syl, err := NewSyllabus([]Lesson{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", Requires: []string{"a"}},
		{ID: "c", Name: "C", Requires: []string{"b"}},
		{ID: "x", Name: "X"},
	})
	if err != nil {
		t.Fatalf("NewSyllabus failed: %v", err)
	}
	ids := lessonIDs(syl.Prerequisites("c"))
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Prerequisites(c) = %v, want [a b] in reading order", ids)
	}
	if got := syl.Prerequisites("a"); len(got) != 0 {
		t.Errorf("Prerequisites(a) = %v, want empty", got)
	}
}

func TestSyllabusUnlocks(t *testing.T) {
	syl, err := NewSyllabus([]Lesson{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", Requires: []string{"a"}},
		{ID: "c", Name: "C", Requires: []string{"a"}},
	})
	if err != nil {
		t.Fatalf("NewSyllabus failed: %v", err)
	}
	ids := lessonIDs(syl.Unlocks("a"))
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Errorf("Unlocks(a) = %v, want [b c]", ids)
	}
}

func TestSyllabusUnknownRequire(t *testing.T) {
	_, err := NewSyllabus([]Lesson{
		{ID: "a", Name: "A", Requires: []string{"ghost"}},
	})
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("err = %v, want unknown lesson error naming ghost", err)
	}
}

func TestSyllabusCycle(t *testing.T) {
	_, err := NewSyllabus([]Lesson{
		{ID: "a", Name: "A", Requires: []string{"b"}},
		{ID: "b", Name: "B", Requires: []string{"a"}},
	})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("err = %v, want cycle error", err)
	}
}
