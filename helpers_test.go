package courseengine

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Test Fixtures", "test-fixtures"},
		{"GPU Tests & Parallelism", "gpu-tests-parallelism"},
		{"  already-slugged  ", "already-slugged"},
		{"Trailing!!!", "trailing"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://course.example.com", []string{"lesson", "fixtures"}, "https://course.example.com/lesson/fixtures/"},
		{"https://course.example.com", nil, "https://course.example.com"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestFilterRelatedLessons(t *testing.T) {
	current := Lesson{ID: "fixtures", Tags: []string{"testing"}}
	lessons := []Lesson{
		{ID: "fixtures", Tags: []string{"testing"}},
		{ID: "mocking", Tags: []string{"Testing"}},
		{ID: "gpu", Tags: []string{"hardware"}},
	}
	related := FilterRelatedLessons(current, lessons)
	if len(related) != 1 || related[0].ID != "mocking" {
		t.Errorf("related = %v, want [mocking]", related)
	}
}

func TestCourseJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Testing 101", URL: "https://course.example.com", Author: "Jo"}
	got := CourseJsonLD(cfg)
	for _, want := range []string{`"@type":"Course"`, "Testing 101", `"name":"Jo"`} {
		if !strings.Contains(got, want) {
			t.Errorf("CourseJsonLD missing %q: %s", want, got)
		}
	}
}

func TestLessonJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Testing 101", URL: "https://course.example.com"}
	lesson := Lesson{
		ID:       "fixtures",
		Name:     "Test Fixtures",
		Summary:  "Setup and teardown.",
		Updated:  "2026-02-10",
		Tags:     []string{"testing"},
		Requires: []string{"basics"},
	}
	got := LessonJsonLD(lesson, cfg)
	for _, want := range []string{`"@type":"LearningResource"`, "Test Fixtures", "2026-02-10", "basics", "https://course.example.com/lesson/fixtures/"} {
		if !strings.Contains(got, want) {
			t.Errorf("LessonJsonLD missing %q: %s", want, got)
		}
	}
}
