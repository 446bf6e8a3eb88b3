package courseengine

import "time"

// SiteConfig holds all configuration for a courseengine site.
type SiteConfig struct {
	Name        string // Course name (default "Course")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Course description for the feed and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/course.db")
	ContentDir   string // Markdown lesson directory (default "content")

	ProgressEnabled      bool   // Enable reader progress tracking (default false)
	ProgressDatabasePath string // Progress SQLite path (default "data/progress.db")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	LessonCacheTTL time.Duration // Lesson cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Course"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/course.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.ProgressDatabasePath == "" {
		c.ProgressDatabasePath = "data/progress.db"
	}
	if c.LessonCacheTTL == 0 {
		c.LessonCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStrictLint promotes lint warnings to errors during content sync,
// so a corpus with advisory issues refuses to publish.
func WithStrictLint() Option {
	return func(a *App) {
		a.strictLint = true
	}
}
