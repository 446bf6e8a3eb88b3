package progress

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves the progress API.
type Handler struct {
	store *Store
}

// NewHandler creates a Handler backed by store.
func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

// RegisterRoutes mounts the public event endpoint and the admin-only stats
// endpoints. adminMiddleware guards the latter.
func (h *Handler) RegisterRoutes(e *echo.Echo, adminMiddleware echo.MiddlewareFunc) {
	e.POST("/api/progress/event", h.handleEvent)
	e.GET("/api/progress/completed", h.handleCompleted)
	e.GET("/admin/progress/stats", h.handleStats, adminMiddleware)
}

type eventRequest struct {
	LessonID  string `json:"lesson_id"`
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
	Screen    string `json:"screen"`
}

func (h *Handler) handleEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if req.LessonID == "" || (req.Event != EventView && req.Event != EventComplete) {
		return c.NoContent(http.StatusBadRequest)
	}
	e := Event{
		VisitorID: VisitorID(c.RealIP(), c.Request().UserAgent()),
		SessionID: req.SessionID,
		LessonID:  req.LessonID,
		Kind:      req.Event,
		Screen:    req.Screen,
		Timestamp: time.Now(),
	}
	if err := h.store.RecordEvent(e); err != nil {
		c.Logger().Errorf("record progress event: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleCompleted lets the client render checkmarks for the current reader.
func (h *Handler) handleCompleted(c echo.Context) error {
	visitorID := VisitorID(c.RealIP(), c.Request().UserAgent())
	ids, err := h.store.CompletedLessons(visitorID)
	if err != nil {
		c.Logger().Errorf("list completed lessons: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"completed": ids})
}

func (h *Handler) handleStats(c echo.Context) error {
	stats, err := h.store.StatsByLesson()
	if err != nil {
		c.Logger().Errorf("progress stats: %v", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	if stats == nil {
		stats = []LessonStats{}
	}
	return c.JSON(http.StatusOK, map[string][]LessonStats{"lessons": stats})
}
