/*
bonus.go - Bonus-window eligibility rules

PURPOSE:
  Decides whether a task earns the bonus hourly rate. A task qualifies
  only when the week is a bonus week, the global bonus toggle is on, and
  BOTH its begin and end timestamps fall inside the recurring weekly
  bonus window.

WINDOW SEMANTICS:
  The window is (start day, start time) through (end day, end time),
  recurring every week. Three shapes:
    same-day:   Monday 09:00 - Monday 17:00
    forward:    Monday 09:00 - Friday 17:00 (whole middle days included)
    wrap:       Saturday 09:00 - Monday 09:00 (spans the week boundary)
  Both endpoints are inclusive.

STRICTNESS:
  An earlier scheme checked a single best-effort timestamp (falling back
  to date_audited at noon). That check survives only as
  TimestampForDisplay; eligibility demands both explicit timestamps so a
  task cannot qualify on a fabricated time.

FAILURE MODE:
  Everything here fails closed: missing timestamps, malformed "HH:MM"
  window times, or out-of-range day numbers all mean "not eligible".

SEE ALSO:
  - config.go: Which window applies (week-specific vs global)
  - statistics.go: How eligibility feeds earnings
*/
package engine

import "time"

// TaskBonusEligible reports whether the task earns the bonus rate for the
// given week. Both TimeBegin and TimeEnd must parse and independently fall
// inside the resolved bonus window; a task with only one timestamp never
// qualifies.
func (c *Calculator) TaskBonusEligible(task Task, week *WeekConfig) bool {
	if !c.Global.BonusEnabled {
		return false
	}
	if week == nil || !week.IsBonusWeek {
		return false
	}

	begin, okBegin := ParseTimestamp(task.TimeBegin)
	end, okEnd := ParseTimestamp(task.TimeEnd)
	if !okBegin || !okEnd {
		return false
	}

	window := c.BonusWindowFor(week)
	return TimestampInBonusWindow(begin, window) && TimestampInBonusWindow(end, window)
}

// BonusWindowFor resolves which bonus window governs a week: the week's
// own window when it defines one, the global default otherwise.
func (c *Calculator) BonusWindowFor(week *WeekConfig) BonusWindow {
	if week != nil && week.IsBonusWeek && !week.UseGlobalBonusSettings {
		return BonusWindow{
			StartDay:  week.BonusStartDay,
			StartTime: week.BonusStartTime,
			EndDay:    week.BonusEndDay,
			EndTime:   week.BonusEndTime,
		}
	}
	return BonusWindow{
		StartDay:  c.Global.BonusStartDay,
		StartTime: c.Global.BonusStartTime,
		EndDay:    c.Global.BonusEndDay,
		EndTime:   c.Global.BonusEndTime,
	}
}

// TimestampInBonusWindow reports whether a timestamp falls inside the
// recurring weekly window. Malformed window times fail closed.
func TimestampInBonusWindow(t time.Time, w BonusWindow) bool {
	startClock, ok := parseClock(w.StartTime)
	if !ok {
		return false
	}
	endClock, ok := parseClock(w.EndTime)
	if !ok {
		return false
	}

	day := mondayWeekday(t)
	clock := t.Hour()*3600 + t.Minute()*60 + t.Second()
	startDay := weekdayFromConfig(w.StartDay)
	endDay := weekdayFromConfig(w.EndDay)

	switch {
	case startDay == endDay:
		// Single-day window.
		return day == startDay && clock >= startClock && clock <= endClock

	case startDay < endDay:
		// Forward span. Whole days strictly between the endpoints are
		// entirely in-window.
		if day < startDay || day > endDay {
			return false
		}
		if day == startDay {
			return clock >= startClock
		}
		if day == endDay {
			return clock <= endClock
		}
		return true

	default:
		// Wrap-around span, e.g. Saturday through Monday.
		if day == startDay {
			return clock >= startClock
		}
		if day == endDay {
			return clock <= endClock
		}
		return day > startDay || day < endDay
	}
}
