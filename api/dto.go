/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/format.go: StatisticsView, embedded in statistics responses
*/
package api

import (
	"github.com/tally/earnings-engine/engine"
)

// =============================================================================
// WEEKS
// =============================================================================

// WeekDTO represents a week and its pay configuration.
type WeekDTO struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`

	IsBonusWeek            bool    `json:"is_bonus_week"`
	UseGlobalBonusSettings bool    `json:"use_global_bonus_settings"`
	BonusStartDay          int     `json:"bonus_start_day"`
	BonusStartTime         string  `json:"bonus_start_time"`
	BonusEndDay            int     `json:"bonus_end_day"`
	BonusEndTime           string  `json:"bonus_end_time"`
	BonusPayrate           float64 `json:"bonus_payrate"`

	EnableTaskBonus       bool    `json:"enable_task_bonus"`
	BonusTaskThreshold    int     `json:"bonus_task_threshold"`
	BonusAdditionalAmount float64 `json:"bonus_additional_amount"`

	OfficeHourCount          int     `json:"office_hour_count"`
	OfficeHourPayrate        float64 `json:"office_hour_payrate"`
	OfficeHourSessionMinutes int     `json:"office_hour_session_minutes"`
	UseGlobalOfficeHours     bool    `json:"use_global_office_hours"`
}

// WeekRequest is the request body to create or update a week.
// The same shape as WeekDTO minus the server-assigned ID.
type WeekRequest struct {
	Label string `json:"label"`

	IsBonusWeek            bool    `json:"is_bonus_week"`
	UseGlobalBonusSettings bool    `json:"use_global_bonus_settings"`
	BonusStartDay          int     `json:"bonus_start_day"`
	BonusStartTime         string  `json:"bonus_start_time"`
	BonusEndDay            int     `json:"bonus_end_day"`
	BonusEndTime           string  `json:"bonus_end_time"`
	BonusPayrate           float64 `json:"bonus_payrate"`

	EnableTaskBonus       bool    `json:"enable_task_bonus"`
	BonusTaskThreshold    int     `json:"bonus_task_threshold"`
	BonusAdditionalAmount float64 `json:"bonus_additional_amount"`

	OfficeHourCount          int     `json:"office_hour_count"`
	OfficeHourPayrate        float64 `json:"office_hour_payrate"`
	OfficeHourSessionMinutes int     `json:"office_hour_session_minutes"`
	UseGlobalOfficeHours     bool    `json:"use_global_office_hours"`
}

func weekToDTO(w engine.WeekConfig) WeekDTO {
	return WeekDTO{
		ID:                       w.ID,
		Label:                    w.Label,
		IsBonusWeek:              w.IsBonusWeek,
		UseGlobalBonusSettings:   w.UseGlobalBonusSettings,
		BonusStartDay:            w.BonusStartDay,
		BonusStartTime:           w.BonusStartTime,
		BonusEndDay:              w.BonusEndDay,
		BonusEndTime:             w.BonusEndTime,
		BonusPayrate:             w.BonusPayrate,
		EnableTaskBonus:          w.EnableTaskBonus,
		BonusTaskThreshold:       w.BonusTaskThreshold,
		BonusAdditionalAmount:    w.BonusAdditionalAmount,
		OfficeHourCount:          w.OfficeHourCount,
		OfficeHourPayrate:        w.OfficeHourPayrate,
		OfficeHourSessionMinutes: w.OfficeHourSessionMinutes,
		UseGlobalOfficeHours:     w.UseGlobalOfficeHours,
	}
}

func (r WeekRequest) toConfig(id int64) engine.WeekConfig {
	return engine.WeekConfig{
		ID:                       id,
		Label:                    r.Label,
		IsBonusWeek:              r.IsBonusWeek,
		UseGlobalBonusSettings:   r.UseGlobalBonusSettings,
		BonusStartDay:            r.BonusStartDay,
		BonusStartTime:           r.BonusStartTime,
		BonusEndDay:              r.BonusEndDay,
		BonusEndTime:             r.BonusEndTime,
		BonusPayrate:             r.BonusPayrate,
		EnableTaskBonus:          r.EnableTaskBonus,
		BonusTaskThreshold:       r.BonusTaskThreshold,
		BonusAdditionalAmount:    r.BonusAdditionalAmount,
		OfficeHourCount:          r.OfficeHourCount,
		OfficeHourPayrate:        r.OfficeHourPayrate,
		OfficeHourSessionMinutes: r.OfficeHourSessionMinutes,
		UseGlobalOfficeHours:     r.UseGlobalOfficeHours,
	}
}

// =============================================================================
// TASKS
// =============================================================================

// TaskDTO represents one task row. BonusEligible is computed at read
// time from the current settings, not stored.
type TaskDTO struct {
	ID          int64  `json:"id"`
	WeekID      int64  `json:"week_id"`
	Duration    string `json:"duration"`
	TimeLimit   string `json:"time_limit"`
	Score       *int   `json:"score"`
	ProjectName string `json:"project_name"`
	Locale      string `json:"locale"`
	DateAudited string `json:"date_audited"`
	TimeBegin   string `json:"time_begin"`
	TimeEnd     string `json:"time_end"`

	BonusEligible bool `json:"bonus_eligible"`
}

// TaskRequest is the request body to create or update a task.
type TaskRequest struct {
	Duration    string `json:"duration"`
	TimeLimit   string `json:"time_limit"`
	Score       *int   `json:"score"`
	ProjectName string `json:"project_name"`
	Locale      string `json:"locale"`
	DateAudited string `json:"date_audited"`
	TimeBegin   string `json:"time_begin"`
	TimeEnd     string `json:"time_end"`
}

// BulkDeleteRequest names the task rows to remove.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// BulkDeleteResponse reports how many rows were removed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

func taskToDTO(t engine.Task, eligible bool) TaskDTO {
	return TaskDTO{
		ID:            t.ID,
		WeekID:        t.WeekID,
		Duration:      t.Duration,
		TimeLimit:     t.TimeLimit,
		Score:         t.Score,
		ProjectName:   t.ProjectName,
		Locale:        t.Locale,
		DateAudited:   t.DateAudited,
		TimeBegin:     t.TimeBegin,
		TimeEnd:       t.TimeEnd,
		BonusEligible: eligible,
	}
}

func (r TaskRequest) toTask(id, weekID int64) engine.Task {
	return engine.Task{
		ID:          id,
		WeekID:      weekID,
		Duration:    r.Duration,
		TimeLimit:   r.TimeLimit,
		Score:       r.Score,
		ProjectName: r.ProjectName,
		Locale:      r.Locale,
		DateAudited: r.DateAudited,
		TimeBegin:   r.TimeBegin,
		TimeEnd:     r.TimeEnd,
	}
}

// =============================================================================
// STATISTICS
// =============================================================================

// DailyStatisticsDTO is one day's statistics, sorted by date in
// responses.
type DailyStatisticsDTO struct {
	Date string `json:"date"`
	engine.StatisticsView
}

// ProjectStatisticsDTO is one (project, locale) group's statistics.
type ProjectStatisticsDTO struct {
	Project string `json:"project"`
	Locale  string `json:"locale"`
	engine.StatisticsView
}

// WeekStatisticsDTO bundles the three groupings for one week.
type WeekStatisticsDTO struct {
	WeekID    int64                  `json:"week_id"`
	Aggregate engine.StatisticsView  `json:"aggregate"`
	Daily     []DailyStatisticsDTO   `json:"daily"`
	Projects  []ProjectStatisticsDTO `json:"projects"`
}

// RangeStatisticsDTO is the aggregate over a date range, summary
// precision.
type RangeStatisticsDTO struct {
	Start     string                `json:"start"`
	End       string                `json:"end"`
	TaskCount int                   `json:"task_count"`
	Aggregate engine.StatisticsView `json:"aggregate"`
}

// SeriesDTO is a chartable metric series.
type SeriesDTO struct {
	Dimension string               `json:"dimension"`
	Metric    string               `json:"metric"`
	Points    []engine.SeriesPoint `json:"points"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO mirrors the settings document served and accepted by the
// settings endpoints.
type SettingsDTO struct {
	Payrate float64 `json:"payrate"`

	BonusEnabled          bool    `json:"bonus_enabled"`
	BonusStartDay         int     `json:"bonus_start_day"`
	BonusStartTime        string  `json:"bonus_start_time"`
	BonusEndDay           int     `json:"bonus_end_day"`
	BonusEndTime          string  `json:"bonus_end_time"`
	BonusPayrate          float64 `json:"bonus_payrate"`
	EnableTaskBonus       bool    `json:"enable_task_bonus"`
	BonusTaskThreshold    int     `json:"bonus_task_threshold"`
	BonusAdditionalAmount float64 `json:"bonus_additional_amount"`

	OfficeHourPayrate        float64 `json:"office_hour_payrate"`
	OfficeHourSessionMinutes int     `json:"office_hour_session_minutes"`

	WeekStartDay       int  `json:"week_start_day"`
	WeekStartHour      int  `json:"week_start_hour"`
	WeekEndDay         int  `json:"week_end_day"`
	WeekEndHour        int  `json:"week_end_hour"`
	AutoCreateNextWeek bool `json:"auto_create_next_week"`
}
