package courseengine

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	tag := c.QueryParam("tag")
	lessons, err := a.Cache.ListLessons(tag)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		partial := c.QueryParam("partial")
		switch partial {
		case "syllabus":
			return Render(c, a.Views.SyllabusSection(lessons, tag, tags))
		case "home":
			return Render(c, a.Views.HomePartial(lessons, tag, tags, a.Config.URL))
		}
	}
	return Render(c, a.Views.Home(lessons, tag, tags, a.Config.URL))
}

func (a *App) handleLesson(c echo.Context) error {
	id := c.Param("id")
	lesson, err := a.Cache.GetLesson(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	prereqs, unlocks := a.lessonNeighbors(id)
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "lesson" {
		return Render(c, a.Views.LessonPartial(lesson, prereqs, unlocks, a.Config.URL))
	}
	return Render(c, a.Views.Lesson(lesson, prereqs, unlocks, a.Config.URL))
}

// lessonNeighbors resolves the prerequisite closure and direct dependents
// of a lesson from the cached syllabus. Both are empty when the stored
// corpus could not be ordered.
func (a *App) lessonNeighbors(id string) (prereqs, unlocks []Lesson) {
	syl, err := a.Cache.Syllabus()
	if err != nil || syl == nil {
		return nil, nil
	}
	return syl.Prerequisites(id), syl.Unlocks(id)
}

func (a *App) handleSitemap(c echo.Context) error {
	lessons, err := a.Cache.ListLessons("")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, lessons)
}

func (a *App) handleFeed(c echo.Context) error {
	lessons, err := a.Cache.ListLessons("")
	if err != nil {
		return err
	}
	return a.renderFeed(c, lessons)
}

func handleLessonsRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
