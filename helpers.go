package courseengine

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// Slugify converts a lesson name to a URL-safe id.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterRelatedLessons finds lessons that share at least one tag with current.
func FilterRelatedLessons(current Lesson, lessons []Lesson) []Lesson {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []Lesson
	for _, l := range lessons {
		if l.ID == current.ID {
			continue
		}
		for _, t := range l.Tags {
			tag := strings.ToLower(strings.TrimSpace(t))
			if _, ok := tagSet[tag]; ok {
				related = append(related, l)
				break
			}
		}
	}
	return related
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// CourseJsonLD returns a JSON-LD string for a Course schema using SiteConfig.
func CourseJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Course",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["provider"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// LessonJsonLD returns a JSON-LD string for a LearningResource schema.
func LessonJsonLD(lesson Lesson, cfg SiteConfig) string {
	lessonURL := BuildURL(cfg.URL, "lesson", lesson.ID)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "LearningResource",
		"name":        lesson.Name,
		"description": lesson.Summary,
		"url":         lessonURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   lessonURL,
		},
	}
	if lesson.Updated != "" {
		data["dateModified"] = lesson.Updated
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(lesson.Tags) > 0 {
		data["keywords"] = strings.Join(lesson.Tags, ", ")
	}
	if len(lesson.Requires) > 0 {
		data["competencyRequired"] = strings.Join(lesson.Requires, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
