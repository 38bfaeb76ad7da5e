package observability

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/internship-portal/pkg/util"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/applications", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/applications", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/api/auth/login", "POST", 400, time.Millisecond)
	m.RecordError("/api/auth/login", "POST", "VALIDATION_FAILED")

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, "/api/applications", snap.Requests[0].Path)
	assert.Equal(t, int64(2), snap.Requests[0].Count)
	assert.InDelta(t, 20.0, snap.Requests[0].AvgMillis, 0.01)
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "VALIDATION_FAILED", snap.Errors[0].Code)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	snap := m.Snapshot()
	assert.Empty(t, snap.Requests)
	assert.Empty(t, snap.Errors)
}

func TestRequestLoggerRecordsStatusFromError(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.NewNotFound("thing", nil) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	byPath := map[string]int{}
	for _, r := range m.Snapshot().Requests {
		byPath[r.Path] = r.Status
	}
	assert.Equal(t, fiber.StatusNoContent, byPath["/ok"])
	assert.Equal(t, fiber.StatusNotFound, byPath["/missing"])
	assert.Equal(t, fiber.StatusInternalServerError, byPath["/boom"])
}

func TestRequestLoggerKeysByRoutePattern(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/items/:id", func(c *fiber.Ctx) error { return apperrors.NewNotFound("item", nil) })

	for i := 0; i < 50; i++ {
		for _, path := range []string{fmt.Sprintf("/items/%d", i), fmt.Sprintf("/nope-%d", i)} {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
		}
	}

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	byPath := map[string]int64{}
	for _, r := range snap.Requests {
		byPath[r.Path] = r.Count
	}
	assert.Equal(t, int64(50), byPath["/items/:id"])
	assert.Equal(t, int64(50), byPath[UnmatchedRoute])
}
