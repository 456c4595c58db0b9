package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/sipstreak/internal/metrics"
	"github.com/julianstephens/sipstreak/internal/models"
	"github.com/julianstephens/sipstreak/internal/storage"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

func newTestServer(t *testing.T) (*Server, *metrics.Manager) {
	t.Helper()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	m := metrics.NewManager()
	tr, err := tracker.Open(storage.NewMemoryStore(), tracker.Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
		Observer: m,
	})
	require.NoError(t, err)
	return New(tr, m), m
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type todayJSON struct {
	Day     string  `json:"day"`
	Count   int     `json:"count"`
	TotalMl int     `json:"totalMl"`
	GoalMl  int     `json:"goalMl"`
	Ratio   float64 `json:"ratio"`
	Streak  int     `json:"streak"`
	Color   struct {
		Hex string `json:"hex"`
		RGB string `json:"rgb"`
	} `json:"color"`
	Hint struct {
		Tier    string `json:"tier"`
		Message string `json:"message"`
	} `json:"hint"`
	Award *struct {
		Count   int    `json:"count"`
		Message string `json:"message"`
	} `json:"award"`
}

type mutationJSON struct {
	Undone bool `json:"undone"`
	Event  *struct {
		Ts int64 `json:"ts"`
		Ml int   `json:"ml"`
	} `json:"event"`
	Today todayJSON `json:"today"`
}

func TestToday(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	today := decode[todayJSON](t, rec)
	assert.Equal(t, "2024-03-10", today.Day)
	assert.Equal(t, 0, today.TotalMl)
	assert.Equal(t, 2000, today.GoalMl)
	assert.Equal(t, "#ef4444", today.Color.Hex)
	assert.Equal(t, "rgb(239, 68, 68)", today.Color.RGB)
	assert.Equal(t, "tap-to-start", today.Hint.Tier)
	assert.Nil(t, today.Award)
}

func TestDrinkAndUndo(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/drink", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[mutationJSON](t, rec)
	require.NotNil(t, res.Event)
	assert.Equal(t, 50, res.Event.Ml)
	assert.Equal(t, 50, res.Today.TotalMl)

	rec = do(t, s, http.MethodPost, "/api/drink", map[string]int{"ml": 300})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 350, decode[mutationJSON](t, rec).Today.TotalMl)

	rec = do(t, s, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[mutationJSON](t, rec)
	assert.True(t, res.Undone)
	assert.Equal(t, 300, res.Event.Ml)
	assert.Equal(t, 50, res.Today.TotalMl)

	do(t, s, http.MethodPost, "/api/undo", nil)
	rec = do(t, s, http.MethodPost, "/api/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[mutationJSON](t, rec)
	assert.False(t, res.Undone)
	assert.Nil(t, res.Event)
	assert.Equal(t, 0, res.Today.TotalMl)
}

func TestDrinkRejectsBadVolume(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/drink", map[string]int{"ml": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/drink", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoalAwardsOnce(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, http.MethodPost, "/api/drink", map[string]int{"ml": 600})

	rec := do(t, s, http.MethodPut, "/api/goal", map[string]int{"goalMl": 500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[mutationJSON](t, rec)
	require.NotNil(t, res.Today.Award)
	assert.Equal(t, 1, res.Today.Award.Count)
	assert.Equal(t, "🎉 Goal reached! Streak +1 (🔥 1)", res.Today.Award.Message)
	assert.Equal(t, "goal-reached", res.Today.Hint.Tier)

	rec = do(t, s, http.MethodPost, "/api/drink", nil)
	res = decode[mutationJSON](t, rec)
	assert.Nil(t, res.Today.Award)
	assert.Equal(t, 1, res.Today.Streak)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/goal", map[string]int{"goalMl": -5}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/goal", map[string]int{}).Code)
}

func TestHistoryChartAndDays(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/drink", map[string]int{"ml": 200})

	rec := do(t, s, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[struct {
		Days []struct {
			Day     string `json:"day"`
			TotalMl int    `json:"totalMl"`
		} `json:"days"`
	}](t, rec)
	require.Len(t, history.Days, 1)
	assert.Equal(t, "2024-03-10", history.Days[0].Day)
	assert.Equal(t, 200, history.Days[0].TotalMl)

	rec = do(t, s, http.MethodGet, "/api/chart/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chart := decode[chartResponse](t, rec)
	require.Len(t, chart.Hours, 24)
	assert.Equal(t, 200, chart.Hours[9])
	assert.Equal(t, 200, chart.MaxMl)

	rec = do(t, s, http.MethodGet, "/api/chart/2024-03-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, decode[chartResponse](t, rec).MaxMl)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/chart/yesterday", nil).Code)

	rec = do(t, s, http.MethodGet, "/api/days", nil)
	days := decode[daysResponse](t, rec)
	require.Len(t, days.Days, 30)
	assert.Equal(t, "2024-03-10", days.Days[0])
	assert.Equal(t, "2024-02-10", days.Days[29])
}

func TestProfile(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Cup50, decode[models.Profile](t, rec).CupMl)

	rec = do(t, s, http.MethodPut, "/api/profile", map[string]any{
		"cupMl":  200,
		"outfit": map[string]string{"hat": "cap"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p := decode[models.Profile](t, rec)
	assert.Equal(t, models.Cup200, p.CupMl)
	assert.Equal(t, "cap", p.Outfit["hat"])

	rec = do(t, s, http.MethodPost, "/api/drink", nil)
	assert.Equal(t, 200, decode[mutationJSON](t, rec).Event.Ml)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPut, "/api/profile", map[string]int{"cupMl": 75}).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	do(t, s, http.MethodPost, "/api/drink", map[string]int{"ml": 150})

	rec = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "sipstreak_ml_recorded_total 150")
	assert.Contains(t, body, `sipstreak_http_requests_total{method="POST",route="/api/drink",status_code="201"} 1`)
}

func TestWithoutMetrics(t *testing.T) {
	tr, err := tracker.Open(storage.NewMemoryStore(), tracker.Options{})
	require.NoError(t, err)
	s := New(tr, nil)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/metrics", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/today", nil).Code)
}
