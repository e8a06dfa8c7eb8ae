package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-analytics/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics/internal/core/services"
)

// fixedNow is 2024-03-15 10:00 local time.
var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)

type queueSpy struct {
	habitIDs []string
}

func (q *queueSpy) Enqueue(habitID string) {
	q.habitIDs = append(q.habitIDs, habitID)
}

type testServer struct {
	router  *gin.Engine
	habits  *repository.InMemoryHabitRepository
	entries *repository.InMemoryEntryRepository
	queue   *queueSpy
}

// newTestServer wires the handlers to in-memory storage. Requests carrying
// an X-User-ID header are treated as authenticated as that user.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	entries := repository.NewInMemoryEntryRepository()
	habits := repository.NewInMemoryHabitRepository(entries)
	queue := &queueSpy{}

	habitSvc := services.NewHabitService(habits)
	entrySvc := services.NewEntryService(entries, habits, queue)
	analyticsSvc := services.NewAnalyticsService(habits, entries,
		services.WithAnalyticsClock(func() time.Time { return fixedNow }),
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	adapterHTTP.NewHabitHandler(habitSvc).RegisterRoutes(api)
	adapterHTTP.NewEntryHandler(entrySvc).RegisterRoutes(api)
	adapterHTTP.NewAnalyticsHandler(analyticsSvc).RegisterRoutes(api)

	return &testServer{router: r, habits: habits, entries: entries, queue: queue}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) seedHabit(t *testing.T, userID, name string, category domain.Category) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, domain.HabitAttributes{Name: name, Category: category})
	require.NoError(t, err)
	require.NoError(t, s.habits.Create(context.Background(), h))
	return h
}

// seedEntry records habit on the day daysAgo days before fixedNow.
func (s *testServer) seedEntry(t *testing.T, h *domain.Habit, daysAgo int, completed bool) *domain.HabitEntry {
	t.Helper()
	e := domain.NewHabitEntry(h.ID, h.UserID, fixedNow.AddDate(0, 0, -daysAgo), completed)
	require.NoError(t, s.entries.Upsert(context.Background(), e))
	return e
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

