package courseengine

// Lesson is the core content type stored in SQLite and rendered by templates.
// ID doubles as the URL slug; Requires lists prerequisite lesson ids.
type Lesson struct {
	ID       string
	Name     string
	Requires []string
	Tags     []string
	Summary  string
	Updated  string // YYYY-MM-DD, last meaningful revision
	Weight   int    // ordering hint among lessons of equal depth
	Content  string
	Link     string
	Draft    bool
	Source   string // content file the lesson was loaded from, "" if dashboard-authored
}

// Figure is an uploaded lesson illustration, resized and re-encoded on upload.
type Figure struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
