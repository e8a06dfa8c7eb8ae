package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
)

type EntryHandler struct {
	svc *services.EntryService
	now func() time.Time
}

func NewEntryHandler(svc *services.EntryService) *EntryHandler {
	return &EntryHandler{
		svc: svc,
		now: time.Now,
	}
}

// Date is YYYY-MM-DD (RFC 3339 timestamps are accepted too) and defaults to
// today. Completed defaults to true.
type trackEntryRequest struct {
	HabitID    string `json:"habit_id" binding:"required"`
	Date       string `json:"date"`
	Completed  *bool  `json:"completed"`
	Notes      string `json:"notes"`
	Value      *int   `json:"value"`
	Mood       *int   `json:"mood"`
	Difficulty *int   `json:"difficulty"`
}

type updateEntryRequest struct {
	Completed  *bool   `json:"completed"`
	Notes      *string `json:"notes"`
	Value      *int    `json:"value"`
	Mood       *int    `json:"mood"`
	Difficulty *int    `json:"difficulty"`
	Version    int     `json:"version" binding:"required"`
}

func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/entries")
	{
		entries.POST("", h.Track)
		entries.GET("", h.ListByHabit)
		entries.PUT("/:id", h.Update)
		entries.DELETE("/:id", h.Delete)
	}
}

// parseDay reads a calendar day from a query or body value.
func parseDay(s string) (time.Time, error) {
	if day, err := analytics.ParseDay(s); err == nil {
		return day, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return analytics.NormalizeToDay(t), nil
}

// Track godoc
// @Summary  Record a habit for one day
// @Description Tracking the same habit and day again replaces the earlier record.
// @Tags     entries
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body trackEntryRequest true "Entry"
// @Success  201 {object} domain.HabitEntry
// @Failure  400 {object} map[string]string
// @Failure  403 {object} map[string]string
// @Router   /entries [post]
func (h *EntryHandler) Track(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req trackEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	date := analytics.NormalizeToDay(h.now())
	if req.Date != "" {
		d, err := parseDay(req.Date)
		if err != nil {
			badRequest(c, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = d
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	entry, err := h.svc.Track(c.Request.Context(), services.TrackEntryInput{
		HabitID:    req.HabitID,
		UserID:     userID,
		Date:       date,
		Completed:  completed,
		Notes:      req.Notes,
		Value:      req.Value,
		Mood:       req.Mood,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *EntryHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), services.UpdateEntryInput{
		ID:         c.Param("id"),
		UserID:     userID,
		Completed:  req.Completed,
		Notes:      req.Notes,
		Value:      req.Value,
		Mood:       req.Mood,
		Difficulty: req.Difficulty,
		Version:    req.Version,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *EntryHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListByHabit godoc
// @Summary  List the entries of a habit, newest first
// @Tags     entries
// @Security BearerAuth
// @Produce  json
// @Param    habit_id query string true  "Habit ID"
// @Param    from     query string false "First day, YYYY-MM-DD"
// @Param    to       query string false "Last day, YYYY-MM-DD"
// @Success  200 {array} domain.HabitEntry
// @Router   /entries [get]
func (h *EntryHandler) ListByHabit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	habitID := c.Query("habit_id")
	if habitID == "" {
		badRequest(c, "habit_id is required")
		return
	}

	var from, to time.Time
	if s := c.Query("from"); s != "" {
		d, err := parseDay(s)
		if err != nil {
			badRequest(c, "invalid from date, expected YYYY-MM-DD")
			return
		}
		from = d
	}
	if s := c.Query("to"); s != "" {
		d, err := parseDay(s)
		if err != nil {
			badRequest(c, "invalid to date, expected YYYY-MM-DD")
			return
		}
		to = d
	}

	list, err := h.svc.ListByHabitID(c.Request.Context(), habitID, userID, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
