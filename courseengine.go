// Package courseengine is a course publishing engine built with Go, Echo,
// and templ. Lessons are Markdown files with YAML front-matter (id, name,
// requires, tags); the engine lints the corpus for integrity, orders it by
// prerequisites, and serves it with an admin dashboard, feed, and sitemap
// out of the box.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// courseengine handles the handler logic, middleware, linting, and database
// operations.
package courseengine

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/courseengine/progress"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home             func(lessons []Lesson, activeTag string, tags []string, siteURL string) templ.Component
	HomePartial      func(lessons []Lesson, activeTag string, tags []string, siteURL string) templ.Component
	SyllabusSection  func(lessons []Lesson, activeTag string, tags []string) templ.Component
	Lesson           func(lesson Lesson, prereqs, unlocks []Lesson, siteURL string) templ.Component
	LessonPartial    func(lesson Lesson, prereqs, unlocks []Lesson, siteURL string) templ.Component
	AdminLogin       func(showError bool, csrfToken string) templ.Component
	AdminDashboard   func(lessons []Lesson, message string, csrfToken string) templ.Component
	AdminFormPartial func(lesson Lesson, csrfToken string) templ.Component
	AdminFigures     func(figures []Figure, csrfToken string) templ.Component
	NotFound         func() templ.Component
	ServerError      func() templ.Component
}

// App is the central courseengine application. It wires together the store,
// cache, loader, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *LessonCache
	Views  ViewFuncs

	loginLimiter  *LoginLimiter
	progressStore *progress.Store
	customRoutes  []func(*App)
	staticDir     string
	strictLint    bool
}

// New creates a new courseengine App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, syncs the content directory, sets up
// middleware and routes, and starts the server.
func (a *App) Start() error {
	// Validate required config
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("courseengine: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("courseengine: SessionSecret is required")
	}

	// Initialize store
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("courseengine: init store: %w", err)
	}
	a.Store = store

	// Initialize cache
	a.Cache = NewLessonCache(a.Store, a.Config.LessonCacheTTL)

	// Ingest the content directory. A corpus that fails lint never starts
	// serving; the error lists every finding.
	if _, err := os.Stat(a.Config.ContentDir); err == nil {
		if err := a.SyncContent(); err != nil {
			return err
		}
	}

	// Initialize login limiter
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	// Initialize progress tracking if enabled
	if a.Config.ProgressEnabled {
		progressStore, err := progress.NewStore(a.Config.ProgressDatabasePath)
		if err != nil {
			return fmt.Errorf("courseengine: init progress: %w", err)
		}
		a.progressStore = progressStore
		if err := progress.InitSalt(progressStore); err != nil {
			return fmt.Errorf("courseengine: init progress salt: %w", err)
		}
		stopCleanup := progressStore.StartCleanupScheduler(365, 24*time.Hour)
		defer stopCleanup()
	}

	// Setup middleware
	a.setupMiddleware()

	// Setup routes
	a.setupRoutes()

	// Apply custom routes
	for _, fn := range a.customRoutes {
		fn(a)
	}

	// Start server
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Serve embedded framework assets (progress.js)
	// These are served under /public/ and fall through to the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/progress.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	// User's static assets
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/lessons", handleLessonsRedirect)
	e.GET("/", a.handleHome)
	e.GET("/lesson/:id/", a.handleLesson)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/lesson/:id/", a.handleAdminLesson)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/lesson/:id/", a.handleAdminDelete)
	e.POST("/admin/sync/", a.handleAdminSync)
	e.GET("/admin/figures/", a.handleFigureList)
	e.POST("/admin/figures/upload/", a.handleFigureUpload)
	e.DELETE("/admin/figures/:filename/", a.handleFigureDelete)

	// Progress routes
	if a.Config.ProgressEnabled && a.progressStore != nil {
		progressHandler := progress.NewHandler(a.progressStore)
		progressHandler.RegisterRoutes(e, func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !IsAdmin(c) {
					return c.Redirect(http.StatusSeeOther, "/admin/")
				}
				return next(c)
			}
		})
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.progressStore != nil {
		a.progressStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("courseengine: required environment variable %s is not set", key)
	}
	return v
}
