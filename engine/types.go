/*
Package engine provides the earnings and statistics engine for audited tasks.

PURPOSE:
  This package contains the pure calculation core: given a batch of task
  records and one week's pay configuration, it decides per-task bonus
  eligibility and computes aggregate, per-day, and per-project statistics
  including total earnings.

KEY CONCEPTS IN THIS FILE (types.go):
  - Task: One audited unit of work (duration, timestamps, score)
  - WeekConfig: Per-week pay configuration, possibly deferring to globals
  - GlobalPayConfig: Process-wide pay defaults and the bonus master toggle
  - Statistics: Accumulated totals for one grouping of tasks
  - StatisticsView: Display formatting of Statistics

DESIGN PRINCIPLES:
  1. Purity: Calculations read only their arguments. No ambient settings
     object, no I/O. Safe to call concurrently with distinct inputs.
  2. Precision: Earnings use decimal.Decimal, never float accumulation.
  3. Fail quiet: Malformed durations, timestamps, or clock strings
     contribute zero (or "not eligible") and never abort a batch.

USAGE:
  calc := engine.NewCalculator(global)
  stats := calc.AggregateStatistics(tasks, &week)
  fmt.Println(stats.View(engine.PrecisionDetail).TotalEarnings)

SEE ALSO:
  - bonus.go: Bonus-window eligibility rules
  - statistics.go: Aggregate/daily/project calculations
  - config.go: Week vs global settings precedence
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TASK - One audited unit of work
// =============================================================================

// Task mirrors one row of the tasks table. String fields keep the stored
// text formats; parsing happens at calculation time and malformed values
// degrade to zero rather than failing the batch.
type Task struct {
	ID        int64
	WeekID    int64
	Duration  string // "HH:MM:SS" elapsed working time
	TimeLimit string // "HH:MM:SS" allotted time
	Score     *int   // 1-5 rating; nil when not yet scored

	ProjectName string
	Locale      string

	DateAudited string // "YYYY-MM-DD"
	TimeBegin   string // "YYYY-MM-DD HH:MM:SS", may be empty
	TimeEnd     string // "YYYY-MM-DD HH:MM:SS", may be empty

	// BonusPaid is the flag from the superseded bonus scheme. Kept for
	// storage compatibility; eligibility never consults it.
	BonusPaid bool
}

// Failing reports whether the task's score counts as a fail.
// Scores 1 and 2 fail, 3 and above pass, a missing score is neither.
func (t Task) Failing() bool {
	return t.Score != nil && (*t.Score == 1 || *t.Score == 2)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// WeekConfig is the per-week pay configuration. A week either carries its
// own bonus parameters or defers to the global defaults via
// UseGlobalBonusSettings; office hours defer independently.
//
// Days use the 1 (Monday) through 7 (Sunday) numbering throughout.
type WeekConfig struct {
	ID    int64
	Label string // "dd/MM/yyyy - dd/MM/yyyy"

	IsBonusWeek            bool
	UseGlobalBonusSettings bool
	BonusStartDay          int    // 1-7
	BonusStartTime         string // "HH:MM"
	BonusEndDay            int    // 1-7
	BonusEndTime           string // "HH:MM"
	BonusPayrate           float64

	EnableTaskBonus       bool
	BonusTaskThreshold    int
	BonusAdditionalAmount float64

	OfficeHourCount          int
	OfficeHourPayrate        float64
	OfficeHourSessionMinutes int
	UseGlobalOfficeHours     bool
}

// GlobalPayConfig is the process-wide pay configuration snapshot. It is
// passed explicitly into every calculation; the engine never reads
// ambient state.
type GlobalPayConfig struct {
	Payrate float64 // regular hourly rate

	// BonusEnabled is the master toggle. When false no task anywhere is
	// bonus-eligible, regardless of per-week settings.
	BonusEnabled   bool
	BonusStartDay  int
	BonusStartTime string
	BonusEndDay    int
	BonusEndTime   string
	BonusPayrate   float64

	EnableTaskBonus       bool
	BonusTaskThreshold    int
	BonusAdditionalAmount float64

	OfficeHourPayrate        float64
	OfficeHourSessionMinutes int
}

// BonusWindow is a resolved recurring weekly time range during which task
// work earns the bonus rate. Days use the 1 (Monday) - 7 (Sunday)
// convention; times are "HH:MM" strings validated at check time.
type BonusWindow struct {
	StartDay  int
	StartTime string
	EndDay    int
	EndTime   string
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator evaluates eligibility and statistics against one global
// configuration snapshot. Zero internal mutable state: a Calculator may be
// shared across goroutines.
type Calculator struct {
	Global GlobalPayConfig
}

func NewCalculator(global GlobalPayConfig) *Calculator {
	return &Calculator{Global: global}
}

// =============================================================================
// STATISTICS - Accumulated totals for one grouping of tasks
// =============================================================================

// Statistics holds the raw accumulated values for a set of tasks. Derived
// metrics (averages, percentages) and display formatting live on View.
type Statistics struct {
	TaskCount         int
	TotalSeconds      int64
	TotalLimitSeconds int64
	FailCount         int

	BonusTaskCount int
	BonusSeconds   int64
	RegularSeconds int64

	Earnings decimal.Decimal
}

// AverageSeconds is the mean task duration, 0 when there are no tasks.
func (s Statistics) AverageSeconds() float64 {
	if s.TaskCount == 0 {
		return 0
	}
	return float64(s.TotalSeconds) / float64(s.TaskCount)
}

// TimeLimitUsagePercent is total duration over total time limit, as a
// percentage. 0 when no time limit was recorded.
func (s Statistics) TimeLimitUsagePercent() float64 {
	if s.TotalLimitSeconds == 0 {
		return 0
	}
	return float64(s.TotalSeconds) / float64(s.TotalLimitSeconds) * 100
}

// FailRatePercent is failing tasks over all tasks, as a percentage.
func (s Statistics) FailRatePercent() float64 {
	if s.TaskCount == 0 {
		return 0
	}
	return float64(s.FailCount) / float64(s.TaskCount) * 100
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

var secondsPerHour = decimal.NewFromInt(3600)

// earnedAt converts a duration in seconds to hours and multiplies by the
// hourly rate.
func earnedAt(durationSeconds int64, hourlyRate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(durationSeconds).Div(secondsPerHour).Mul(hourlyRate)
}

func rate(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
