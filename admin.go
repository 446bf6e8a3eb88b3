package courseengine

import (
	"crypto/subtle"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/courseengine/lint"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) renderAdminDashboard(c echo.Context, message string) error {
	lessons, err := a.Store.ListAllLessons()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(lessons, message, CsrfToken(c)))
}

func (a *App) handleAdminLesson(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")
	lesson, err := a.Store.GetLessonAny(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminFormPartial(lesson, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminSave persists a lesson from the dashboard form. The save is
// validated against the corpus checks first: a dashboard edit must never
// introduce a duplicate id, a dangling prerequisite, or a cycle.
func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	name := strings.TrimSpace(c.FormValue("name"))
	id := strings.TrimSpace(c.FormValue("id"))
	if id == "" {
		id = Slugify(name)
	}
	if id == "" {
		return a.redirectWithMsg(c, "Id is required. Add a name or id.")
	}
	updated := strings.TrimSpace(c.FormValue("updated"))
	if updated == "" {
		updated = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", updated); err != nil {
		return a.redirectWithMsg(c, "Invalid date format. Use YYYY-MM-DD.")
	}
	weight := 0
	if w := strings.TrimSpace(c.FormValue("weight")); w != "" {
		parsed, err := strconv.Atoi(w)
		if err != nil {
			return a.redirectWithMsg(c, "Weight must be a number.")
		}
		weight = parsed
	}
	lesson := Lesson{
		ID:       id,
		Name:     name,
		Requires: FilterEmpty(strings.Split(c.FormValue("requires"), ",")),
		Tags:     FilterEmpty(strings.Split(c.FormValue("tags"), ",")),
		Summary:  c.FormValue("summary"),
		Updated:  updated,
		Weight:   weight,
		Content:  c.FormValue("content"),
		Draft:    c.FormValue("draft") != "",
	}
	for i := range lesson.Requires {
		lesson.Requires[i] = strings.TrimSpace(lesson.Requires[i])
	}

	if msg := a.checkSave(lesson); msg != "" {
		return a.redirectWithMsg(c, msg)
	}

	// A file-backed lesson edited in the dashboard keeps its source path,
	// so the next content sync takes over again.
	if existing, err := a.Store.GetLessonAny(id); err == nil {
		lesson.Source = existing.Source
	}

	if err := a.Store.SaveLesson(lesson); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

// checkSave lints the corpus as it would look after saving l. Returns a
// user-facing message, or "" if the save is clean.
func (a *App) checkSave(l Lesson) string {
	existing, err := a.Store.ListAllLessons()
	if err != nil {
		return "Could not validate lesson: " + err.Error()
	}
	next := make([]Lesson, 0, len(existing)+1)
	for _, e := range existing {
		if e.ID != l.ID {
			next = append(next, e)
		}
	}
	next = append(next, l)
	for _, is := range LintLessons(next).Issues {
		if is.Severity == lint.Error || a.strictLint {
			return "Lesson rejected: " + is.Message
		}
	}
	return ""
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id := c.Param("id")

	// Refuse to delete a lesson other lessons still require.
	lessons, err := a.Store.ListAllLessons()
	if err != nil {
		return err
	}
	for _, l := range lessons {
		if l.ID == id {
			continue
		}
		for _, req := range l.Requires {
			if req == id {
				return a.renderAdminDashboard(c, fmt.Sprintf("Cannot delete: %s requires this lesson", l.ID))
			}
		}
	}

	if err := a.Store.DeleteLesson(id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

// handleAdminSync re-reads the content directory into the store.
func (a *App) handleAdminSync(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.SyncContent(); err != nil {
		return a.renderAdminDashboard(c, "Sync failed: "+firstLine(err.Error()))
	}
	return a.renderAdminDashboard(c, "synced")
}

func (a *App) redirectWithMsg(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
