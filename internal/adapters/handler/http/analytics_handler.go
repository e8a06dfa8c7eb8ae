package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
)

// AnalyticsHandler never rejects a bad days, period, groupBy or year value;
// those fall back to their defaults. Only unparseable dates are a 400.
type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/analytics")
	{
		group.GET("/overview", h.Overview)
		group.GET("/habits/:id", h.Habit)
		group.GET("/heatmap", h.Heatmap)
		group.GET("/trends", h.Trends)
	}
}

// queryInt returns 0 for a missing or malformed value.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// window reads days or start_date/end_date. It writes the 400 itself and
// reports false when a date is malformed or only one of the two is given.
func window(c *gin.Context) (domain.AnalyticsWindow, bool) {
	w := domain.AnalyticsWindow{Days: queryInt(c, "days")}

	if s := c.Query("start_date"); s != "" {
		d, err := parseDay(s)
		if err != nil {
			badRequest(c, "invalid start_date, expected YYYY-MM-DD")
			return w, false
		}
		w.StartDate = d
	}
	if s := c.Query("end_date"); s != "" {
		d, err := parseDay(s)
		if err != nil {
			badRequest(c, "invalid end_date, expected YYYY-MM-DD")
			return w, false
		}
		w.EndDate = d
	}
	if w.StartDate.IsZero() != w.EndDate.IsZero() {
		badRequest(c, "start_date and end_date must be given together")
		return w, false
	}
	return w, true
}

// Overview godoc
// @Summary  Aggregate statistics over every active habit
// @Tags     analytics
// @Security BearerAuth
// @Produce  json
// @Param    days query int false "Window length in days ending today" default(30)
// @Success  200 {object} map[string]domain.OverviewStats
// @Router   /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	w, ok := window(c)
	if !ok {
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), userID, w)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// Habit godoc
// @Summary  Streaks, statistics, insights and prediction for one habit
// @Tags     analytics
// @Security BearerAuth
// @Produce  json
// @Param    id         path  string true  "Habit ID"
// @Param    days       query int    false "Window length in days ending today" default(30)
// @Param    start_date query string false "First day, YYYY-MM-DD, requires end_date"
// @Param    end_date   query string false "Last day, YYYY-MM-DD, requires start_date"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} map[string]string
// @Failure  403 {object} map[string]string
// @Failure  404 {object} map[string]string
// @Router   /analytics/habits/{id} [get]
func (h *AnalyticsHandler) Habit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	w, ok := window(c)
	if !ok {
		return
	}

	habit, result, err := h.svc.HabitAnalytics(c.Request.Context(), userID, c.Param("id"), w)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"habit":     habit,
		"analytics": result,
	})
}

// Heatmap godoc
// @Summary  One cell per day of a calendar year
// @Tags     analytics
// @Security BearerAuth
// @Produce  json
// @Param    year query int false "Calendar year, defaults to the current one"
// @Success  200 {object} map[string]interface{}
// @Router   /analytics/heatmap [get]
func (h *AnalyticsHandler) Heatmap(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	year := queryInt(c, "year")
	if year < 1 || year > 9999 {
		year = 0
	}

	heatmap, habits, err := h.svc.Heatmap(c.Request.Context(), userID, year)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"heatmapData": heatmap.Days,
		"habits":      habits,
		"year":        heatmap.Year,
	})
}

// Trends godoc
// @Summary  Completion trends in fixed-size buckets
// @Tags     analytics
// @Security BearerAuth
// @Produce  json
// @Param    period  query string false "week, month, quarter or year" default(month)
// @Param    groupBy query string false "day, week or month"           default(day)
// @Success  200 {object} map[string]interface{}
// @Router   /analytics/trends [get]
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	report, habits, err := h.svc.Trends(c.Request.Context(), userID, c.Query("period"), c.Query("groupBy"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trends":  report.Buckets,
		"period":  report.Period,
		"groupBy": report.GroupBy,
		"habits":  habits,
	})
}
