/*
handlers.go - HTTP handler implementations

PURPOSE:
  Connects the HTTP API to the store and the earnings engine. Handlers
  read rows, hand them to a Calculator built from the current settings
  snapshot, and translate results to DTOs.

SETTINGS SNAPSHOT:
  The handler keeps the settings behind a RWMutex. Each request takes a
  snapshot Calculator, so a concurrent settings update never changes the
  configuration mid-calculation.

ERROR MAPPING:
  store.ErrWeekNotFound / ErrTaskNotFound -> 404
  malformed request bodies and IDs        -> 400
  everything else                         -> 500

SEE ALSO:
  - server.go: Route wiring
  - dto.go: Request/response shapes
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/tally/earnings-engine/engine"
	"github.com/tally/earnings-engine/factory"
	"github.com/tally/earnings-engine/store/sqlite"
)

// Handler holds the API dependencies.
type Handler struct {
	store *sqlite.Store

	mu           sync.RWMutex
	settings     factory.Settings
	settingsPath string // empty = don't persist settings updates
}

// NewHandler creates the API handler.
func NewHandler(store *sqlite.Store, settings factory.Settings, settingsPath string) *Handler {
	return &Handler{store: store, settings: settings, settingsPath: settingsPath}
}

// calculator snapshots the current settings into a Calculator.
func (h *Handler) calculator() *engine.Calculator {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return engine.NewCalculator(h.settings.Pay)
}

// Settings returns the current settings snapshot.
func (h *Handler) Settings() factory.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

// =============================================================================
// WEEK HANDLERS
// =============================================================================

func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.store.ListWeeks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list weeks", err)
		return
	}
	dtos := make([]WeekDTO, 0, len(weeks))
	for _, week := range weeks {
		dtos = append(dtos, weekToDTO(week))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateWeek(w http.ResponseWriter, r *http.Request) {
	var req WeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required", nil)
		return
	}

	id, err := h.store.CreateWeek(r.Context(), req.toConfig(0))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create week", err)
		return
	}
	writeJSON(w, http.StatusCreated, weekToDTO(req.toConfig(id)))
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	week, err := h.store.GetWeek(r.Context(), id)
	if errors.Is(err, sqlite.ErrWeekNotFound) {
		writeError(w, http.StatusNotFound, "week not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load week", err)
		return
	}
	writeJSON(w, http.StatusOK, weekToDTO(*week))
}

func (h *Handler) UpdateWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req WeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	err := h.store.UpdateWeek(r.Context(), req.toConfig(id))
	if errors.Is(err, sqlite.ErrWeekNotFound) {
		writeError(w, http.StatusNotFound, "week not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update week", err)
		return
	}
	writeJSON(w, http.StatusOK, weekToDTO(req.toConfig(id)))
}

func (h *Handler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.store.DeleteWeek(r.Context(), id)
	if errors.Is(err, sqlite.ErrWeekNotFound) {
		writeError(w, http.StatusNotFound, "week not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete week", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TASK HANDLERS
// =============================================================================

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	weekID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	week, err := h.store.GetWeek(r.Context(), weekID)
	if errors.Is(err, sqlite.ErrWeekNotFound) {
		writeError(w, http.StatusNotFound, "week not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load week", err)
		return
	}

	tasks, err := h.store.TasksByWeek(r.Context(), weekID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}

	calc := h.calculator()
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dtos = append(dtos, taskToDTO(t, calc.TaskBonusEligible(t, week)))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	weekID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	week, err := h.store.GetWeek(r.Context(), weekID)
	if errors.Is(err, sqlite.ErrWeekNotFound) {
		writeError(w, http.StatusNotFound, "week not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load week", err)
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	task := req.toTask(0, weekID)
	id, err := h.store.AddTask(r.Context(), task)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create task", err)
		return
	}
	task.ID = id
	writeJSON(w, http.StatusCreated, taskToDTO(task, h.calculator().TaskBonusEligible(task, week)))
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	existing, err := h.store.GetTask(r.Context(), id)
	if errors.Is(err, sqlite.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load task", err)
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	task := req.toTask(id, existing.WeekID)
	if err := h.store.UpdateTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update task", err)
		return
	}

	week, err := h.store.GetWeek(r.Context(), task.WeekID)
	if err != nil {
		week = nil // week gone mid-update; eligibility just reads false
	}
	writeJSON(w, http.StatusOK, taskToDTO(task, h.calculator().TaskBonusEligible(task, week)))
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.store.DeleteTask(r.Context(), id)
	if errors.Is(err, sqlite.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "task not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	deleted, err := h.store.DeleteTasks(r.Context(), req.IDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// WeekStatistics returns aggregate, daily, and per-project statistics
// for one week at detail precision.
func (h *Handler) WeekStatistics(w http.ResponseWriter, r *http.Request) {
	weekID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	week, err := h.store.GetWeek(r.Context(), weekID)
	if errors.Is(err, sqlite.ErrWeekNotFound) {
		writeError(w, http.StatusNotFound, "week not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load week", err)
		return
	}

	tasks, err := h.store.TasksByWeek(r.Context(), weekID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}

	calc := h.calculator()
	dto := WeekStatisticsDTO{
		WeekID:    weekID,
		Aggregate: calc.AggregateStatistics(tasks, week).View(engine.PrecisionDetail),
		Daily:     dailyDTOs(calc.DailyStatistics(tasks, week)),
		Projects:  projectDTOs(calc.ProjectStatistics(tasks, week)),
	}
	writeJSON(w, http.StatusOK, dto)
}

// RangeStatistics returns the aggregate over a date range at summary
// precision. Range queries have no week context: no bonus eligibility,
// no office hours.
func (h *Handler) RangeStatistics(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required", nil)
		return
	}

	tasks, err := h.store.TasksByDateRange(r.Context(), start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}

	stats := h.calculator().AggregateStatistics(tasks, nil)
	writeJSON(w, http.StatusOK, RangeStatisticsDTO{
		Start:     start,
		End:       end,
		TaskCount: stats.TaskCount,
		Aggregate: stats.View(engine.PrecisionSummary),
	})
}

// Series returns a metric series over one week's tasks, or over a date
// range when week_id is absent.
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dimension := q.Get("x")
	metric := q.Get("y")
	if dimension == "" || metric == "" {
		writeError(w, http.StatusBadRequest, "x and y query parameters are required", nil)
		return
	}

	var (
		tasks []engine.Task
		week  *engine.WeekConfig
		err   error
	)
	if weekParam := q.Get("week_id"); weekParam != "" {
		weekID, convErr := strconv.ParseInt(weekParam, 10, 64)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "invalid week_id", convErr)
			return
		}
		week, err = h.store.GetWeek(r.Context(), weekID)
		if errors.Is(err, sqlite.ErrWeekNotFound) {
			writeError(w, http.StatusNotFound, "week not found", nil)
			return
		}
		if err == nil {
			tasks, err = h.store.TasksByWeek(r.Context(), weekID)
		}
	} else {
		start, end := q.Get("start"), q.Get("end")
		if start == "" || end == "" {
			writeError(w, http.StatusBadRequest, "week_id or start/end is required", nil)
			return
		}
		tasks, err = h.store.TasksByDateRange(r.Context(), start, end)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}

	points := h.calculator().MetricSeries(tasks, week, dimension, metric)
	if points == nil {
		writeError(w, http.StatusBadRequest, "unknown dimension or metric", nil)
		return
	}
	writeJSON(w, http.StatusOK, SeriesDTO{Dimension: dimension, Metric: metric, Points: points})
}

func dailyDTOs(daily map[string]engine.Statistics) []DailyStatisticsDTO {
	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	dtos := make([]DailyStatisticsDTO, 0, len(dates))
	for _, date := range dates {
		dtos = append(dtos, DailyStatisticsDTO{
			Date:           date,
			StatisticsView: daily[date].View(engine.PrecisionDetail),
		})
	}
	return dtos
}

func projectDTOs(projects map[string]map[string]engine.Statistics) []ProjectStatisticsDTO {
	var dtos []ProjectStatisticsDTO
	for project, locales := range projects {
		for locale, st := range locales {
			dtos = append(dtos, ProjectStatisticsDTO{
				Project:        project,
				Locale:         locale,
				StatisticsView: st.View(engine.PrecisionDetail),
			})
		}
	}
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].Project != dtos[j].Project {
			return dtos[i].Project < dtos[j].Project
		}
		return dtos[i].Locale < dtos[j].Locale
	})
	return dtos
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsToDTO(h.Settings()))
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	settings := settingsFromDTO(req)

	h.mu.Lock()
	h.settings = settings
	path := h.settingsPath
	h.mu.Unlock()

	if path != "" {
		if err := factory.Save(path, settings); err != nil {
			log.Printf("warning: settings updated in memory but not persisted: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, settingsToDTO(settings))
}

func settingsToDTO(s factory.Settings) SettingsDTO {
	return SettingsDTO{
		Payrate:                  s.Pay.Payrate,
		BonusEnabled:             s.Pay.BonusEnabled,
		BonusStartDay:            s.Pay.BonusStartDay,
		BonusStartTime:           s.Pay.BonusStartTime,
		BonusEndDay:              s.Pay.BonusEndDay,
		BonusEndTime:             s.Pay.BonusEndTime,
		BonusPayrate:             s.Pay.BonusPayrate,
		EnableTaskBonus:          s.Pay.EnableTaskBonus,
		BonusTaskThreshold:       s.Pay.BonusTaskThreshold,
		BonusAdditionalAmount:    s.Pay.BonusAdditionalAmount,
		OfficeHourPayrate:        s.Pay.OfficeHourPayrate,
		OfficeHourSessionMinutes: s.Pay.OfficeHourSessionMinutes,
		WeekStartDay:             s.Week.StartDay,
		WeekStartHour:            s.Week.StartHour,
		WeekEndDay:               s.Week.EndDay,
		WeekEndHour:              s.Week.EndHour,
		AutoCreateNextWeek:       s.Week.AutoCreateNext,
	}
}

func settingsFromDTO(d SettingsDTO) factory.Settings {
	return factory.Settings{
		Pay: engine.GlobalPayConfig{
			Payrate:                  d.Payrate,
			BonusEnabled:             d.BonusEnabled,
			BonusStartDay:            d.BonusStartDay,
			BonusStartTime:           d.BonusStartTime,
			BonusEndDay:              d.BonusEndDay,
			BonusEndTime:             d.BonusEndTime,
			BonusPayrate:             d.BonusPayrate,
			EnableTaskBonus:          d.EnableTaskBonus,
			BonusTaskThreshold:       d.BonusTaskThreshold,
			BonusAdditionalAmount:    d.BonusAdditionalAmount,
			OfficeHourPayrate:        d.OfficeHourPayrate,
			OfficeHourSessionMinutes: d.OfficeHourSessionMinutes,
		},
		Week: factory.WeekDefaults{
			StartDay:       d.WeekStartDay,
			StartHour:      d.WeekStartHour,
			EndDay:         d.WeekEndDay,
			EndHour:        d.WeekEndHour,
			AutoCreateNext: d.AutoCreateNextWeek,
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("api error (%d): %s: %v", status, message, err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
