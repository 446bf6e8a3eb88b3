package courseengine

import (
	"encoding/xml"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// renderFeed emits recently revised lessons, newest revision first, so
// subscribers see course updates rather than syllabus order.
func (a *App) renderFeed(c echo.Context, lessons []Lesson) error {
	base := a.Config.URL

	byUpdated := make([]Lesson, len(lessons))
	copy(byUpdated, lessons)
	sort.SliceStable(byUpdated, func(i, j int) bool {
		return byUpdated[i].Updated > byUpdated[j].Updated
	})

	items := make([]rssItem, 0, len(byUpdated))
	for _, l := range byUpdated {
		pubDate := ""
		if t, err := time.Parse("2006-01-02", l.Updated); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		lessonURL := BuildURL(base, "lesson", l.ID)
		items = append(items, rssItem{
			Title:       l.Name,
			Link:        lessonURL,
			Description: l.Summary,
			PubDate:     pubDate,
			GUID:        lessonURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
