/*
handlers_test.go - HTTP-level tests for the API

Tests run against the full router with an in-memory store, exercising
week and task CRUD, statistics responses, series queries, and settings
round trips.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally/earnings-engine/api"
	"github.com/tally/earnings-engine/factory"
	"github.com/tally/earnings-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	router http.Handler
	store  *sqlite.Store
}

func newTestServer(t *testing.T) *testServer {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	settings := factory.DefaultSettings()
	// Deterministic test rates: $20 regular, $30 bonus, Monday 09:00-17:00
	settings.Pay.Payrate = 20
	settings.Pay.BonusPayrate = 30
	settings.Pay.BonusStartDay = 1
	settings.Pay.BonusStartTime = "09:00"
	settings.Pay.BonusEndDay = 1
	settings.Pay.BonusEndTime = "17:00"

	handler := api.NewHandler(store, settings, filepath.Join(t.TempDir(), "settings.json"))
	return &testServer{router: api.NewRouter(handler), store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (s *testServer) createWeek(t *testing.T, label string, bonus bool) api.WeekDTO {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/weeks", api.WeekRequest{
		Label:                  label,
		IsBonusWeek:            bonus,
		UseGlobalBonusSettings: true,
		UseGlobalOfficeHours:   true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[api.WeekDTO](t, rec)
}

func (s *testServer) createTask(t *testing.T, weekID int64, req api.TaskRequest) api.TaskDTO {
	t.Helper()
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/weeks/%d/tasks", weekID), req)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[api.TaskDTO](t, rec)
}

// =============================================================================
// WEEK ENDPOINT TESTS
// =============================================================================

func TestWeekEndpoints_CRUD(t *testing.T) {
	s := newTestServer(t)

	// Create
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", true)
	assert.NotZero(t, week.ID)
	assert.True(t, week.IsBonusWeek)

	// List
	rec := s.do(t, http.MethodGet, "/api/weeks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weeks := decode[[]api.WeekDTO](t, rec)
	require.Len(t, weeks, 1)

	// Update
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/weeks/%d", week.ID), api.WeekRequest{
		Label:       week.Label,
		IsBonusWeek: false,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[api.WeekDTO](t, rec).IsBonusWeek)

	// Delete
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/weeks/%d", week.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/weeks/%d", week.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateWeek_MissingLabel(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/weeks", api.WeekRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetWeek_BadID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/weeks/peach", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// TASK ENDPOINT TESTS
// =============================================================================

func TestTaskEndpoints_CreateListsWithEligibility(t *testing.T) {
	// GIVEN: A bonus week and a task inside the Monday 09:00-17:00 window
	// WHEN: Creating and listing tasks
	// THEN: The task comes back with bonus_eligible true

	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", true)

	task := s.createTask(t, week.ID, api.TaskRequest{
		Duration:    "02:00:00",
		TimeLimit:   "03:00:00",
		ProjectName: "Search Quality",
		Locale:      "en_US",
		DateAudited: "2026-01-05",
		TimeBegin:   "2026-01-05 10:00:00",
		TimeEnd:     "2026-01-05 12:00:00",
	})
	assert.True(t, task.BonusEligible)

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/weeks/%d/tasks", week.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[[]api.TaskDTO](t, rec)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].BonusEligible)
}

func TestTaskEndpoints_NonBonusWeekNeverEligible(t *testing.T) {
	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", false)

	task := s.createTask(t, week.ID, api.TaskRequest{
		Duration:  "02:00:00",
		TimeBegin: "2026-01-05 10:00:00",
		TimeEnd:   "2026-01-05 12:00:00",
	})
	assert.False(t, task.BonusEligible)
}

func TestTaskEndpoints_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", true)
	task := s.createTask(t, week.ID, api.TaskRequest{Duration: "01:00:00", DateAudited: "2026-01-06"})

	rec := s.do(t, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), api.TaskRequest{
		Duration:    "01:30:00",
		DateAudited: "2026-01-06",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "01:30:00", decode[api.TaskDTO](t, rec).Duration)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskEndpoints_BulkDelete(t *testing.T) {
	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", true)

	var ids []int64
	for _, d := range []string{"2026-01-05", "2026-01-06", "2026-01-07"} {
		task := s.createTask(t, week.ID, api.TaskRequest{Duration: "00:30:00", DateAudited: d})
		ids = append(ids, task.ID)
	}

	rec := s.do(t, http.MethodPost, "/api/tasks/delete", api.BulkDeleteRequest{IDs: ids[:2]})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[api.BulkDeleteResponse](t, rec).Deleted)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/weeks/%d/tasks", week.ID), nil)
	assert.Len(t, decode[[]api.TaskDTO](t, rec), 1)
}

func TestCreateTask_WeekNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/weeks/42/tasks", api.TaskRequest{Duration: "00:30:00"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// STATISTICS ENDPOINT TESTS
// =============================================================================

func TestWeekStatistics(t *testing.T) {
	// GIVEN: A bonus week with one eligible (2h) and one regular (1h) task
	// WHEN: Fetching week statistics
	// THEN: Aggregate carries detail precision and the blended earnings

	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", true)

	s.createTask(t, week.ID, api.TaskRequest{
		Duration:    "02:00:00",
		TimeLimit:   "02:00:00",
		ProjectName: "Search Quality",
		DateAudited: "2026-01-05",
		TimeBegin:   "2026-01-05 10:00:00",
		TimeEnd:     "2026-01-05 12:00:00",
	})
	s.createTask(t, week.ID, api.TaskRequest{
		Duration:    "01:00:00",
		TimeLimit:   "02:00:00",
		ProjectName: "Ads Review",
		DateAudited: "2026-01-06",
	})

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/weeks/%d/statistics", week.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[api.WeekStatisticsDTO](t, rec)

	// 2h x $30 + 1h x $20
	assert.Equal(t, "$80.00", stats.Aggregate.TotalEarnings)
	assert.Equal(t, "03:00:00", stats.Aggregate.TotalTime)
	assert.Equal(t, "75.00%", stats.Aggregate.TimeLimitUsage)
	assert.Equal(t, "1", stats.Aggregate.BonusTasks)

	require.Len(t, stats.Daily, 2)
	assert.Equal(t, "2026-01-05", stats.Daily[0].Date)
	assert.Equal(t, "$60.00", stats.Daily[0].TotalEarnings)

	require.Len(t, stats.Projects, 2)
}

func TestRangeStatistics(t *testing.T) {
	// GIVEN: Tasks across two weeks
	// WHEN: Fetching range statistics
	// THEN: Summary precision, regular rate only (no week context)

	s := newTestServer(t)
	w1 := s.createWeek(t, "05/01/2026 - 11/01/2026", true)
	w2 := s.createWeek(t, "12/01/2026 - 18/01/2026", false)

	s.createTask(t, w1.ID, api.TaskRequest{
		Duration:    "02:00:00",
		DateAudited: "2026-01-05",
		TimeBegin:   "2026-01-05 10:00:00",
		TimeEnd:     "2026-01-05 12:00:00",
	})
	s.createTask(t, w2.ID, api.TaskRequest{Duration: "01:00:00", DateAudited: "2026-01-13"})

	rec := s.do(t, http.MethodGet, "/api/statistics?start=2026-01-01&end=2026-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[api.RangeStatisticsDTO](t, rec)

	assert.Equal(t, 2, stats.TaskCount)
	// 3h x $20: the in-window task earns the regular rate without a week
	assert.Equal(t, "$60.00", stats.Aggregate.TotalEarnings)
	assert.Equal(t, "0.0%", stats.Aggregate.FailRate)
}

func TestRangeStatistics_MissingParams(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/statistics?start=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SERIES ENDPOINT TESTS
// =============================================================================

func TestSeries_ByWeek(t *testing.T) {
	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", false)

	s.createTask(t, week.ID, api.TaskRequest{Duration: "01:00:00", DateAudited: "2026-01-05"})
	s.createTask(t, week.ID, api.TaskRequest{Duration: "02:00:00", DateAudited: "2026-01-06"})

	url := fmt.Sprintf("/api/series?week_id=%d&x=date_audited&y=total_earnings", week.ID)
	rec := s.do(t, http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	series := decode[api.SeriesDTO](t, rec)

	require.Len(t, series.Points, 2)
	assert.Equal(t, "2026-01-05", series.Points[0].Label)
	assert.InDelta(t, 20.0, series.Points[0].Value, 0.001)
	assert.InDelta(t, 40.0, series.Points[1].Value, 0.001)
}

func TestSeries_UnknownMetric(t *testing.T) {
	s := newTestServer(t)
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", false)

	url := fmt.Sprintf("/api/series?week_id=%d&x=date_audited&y=vibes", week.ID)
	rec := s.do(t, http.MethodGet, url, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SETTINGS ENDPOINT TESTS
// =============================================================================

func TestSettings_RoundTrip(t *testing.T) {
	// GIVEN: Updated settings via PUT
	// WHEN: Reading them back and computing statistics
	// THEN: The new rates take effect immediately

	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[api.SettingsDTO](t, rec)
	assert.Equal(t, 20.0, settings.Payrate)

	settings.Payrate = 40
	rec = s.do(t, http.MethodPut, "/api/settings", settings)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, 40.0, decode[api.SettingsDTO](t, rec).Payrate)

	// New rate flows into statistics
	week := s.createWeek(t, "05/01/2026 - 11/01/2026", false)
	s.createTask(t, week.ID, api.TaskRequest{Duration: "01:00:00", DateAudited: "2026-01-05"})

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/weeks/%d/statistics", week.ID), nil)
	stats := decode[api.WeekStatisticsDTO](t, rec)
	assert.Equal(t, "$40.00", stats.Aggregate.TotalEarnings)
}
