/*
statistics.go - Aggregate, daily, and per-project statistics

PURPOSE:
  The three groupings of the same underlying computation:
    AggregateStatistics: one Statistics for the whole batch
    DailyStatistics:     grouped by date_audited
    ProjectStatistics:   grouped by (project, locale)

EARNINGS FORMULA (per grouping):
  sum(non-bonus task hours x regular rate)
  + sum(bonus-eligible task hours x bonus rate)
  + flat task-count bonus, once, when the grouping's eligible count
    reaches the threshold
  + office-hour earnings (count x rate x session/60)

GROUPING POLICIES:
  The task-count bonus is evaluated against each grouping's own eligible
  count: once per call for the aggregate, once per day for daily, once
  per (project, locale) for projects. Daily statistics therefore stand
  alone and recompute identically from that day's rows; the aggregate
  view is the authoritative period total.

  Office-hour earnings attach to the aggregate in full and are split
  evenly across the distinct days that have tasks in the daily view.
  Project statistics carry no office-hour share (sessions are not
  attributable to a project).

All parsing failures contribute zero and processing continues; these
functions never return an error.
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// addTask folds one task into the statistics: duration and time-limit
// totals, fail count, and per-task earnings at the bonus or regular rate.
func (c *Calculator) addTask(st *Statistics, task Task, week *WeekConfig, eff effectivePay, regularRate decimal.Decimal) {
	st.TaskCount++

	duration := ParseHMS(task.Duration)
	st.TotalSeconds += duration
	st.TotalLimitSeconds += ParseHMS(task.TimeLimit)
	if task.Failing() {
		st.FailCount++
	}

	if c.TaskBonusEligible(task, week) {
		st.BonusTaskCount++
		st.BonusSeconds += duration
		st.Earnings = st.Earnings.Add(earnedAt(duration, eff.bonusRate))
	} else {
		st.RegularSeconds += duration
		st.Earnings = st.Earnings.Add(earnedAt(duration, regularRate))
	}
}

// AggregateStatistics computes one Statistics over the whole batch.
// A nil week means no bonus eligibility and no office hours.
func (c *Calculator) AggregateStatistics(tasks []Task, week *WeekConfig) Statistics {
	eff := c.resolvePay(week)
	regularRate := rate(c.Global.Payrate)

	var st Statistics
	for _, task := range tasks {
		c.addTask(&st, task, week, eff, regularRate)
	}

	st.Earnings = st.Earnings.Add(eff.taskCountBonus(st.BonusTaskCount))
	if week != nil {
		st.Earnings = st.Earnings.Add(eff.officeHourEarnings())
	}
	return st
}

// DailyStatistics groups the batch by date_audited. Tasks with a blank
// date are skipped. The task-count bonus is applied per day against that
// day's eligible count; the week's office-hour earnings are split evenly
// across the days present.
func (c *Calculator) DailyStatistics(tasks []Task, week *WeekConfig) map[string]Statistics {
	eff := c.resolvePay(week)
	regularRate := rate(c.Global.Payrate)

	daily := make(map[string]Statistics)
	for _, task := range tasks {
		day := strings.TrimSpace(task.DateAudited)
		if day == "" {
			continue
		}
		st := daily[day]
		c.addTask(&st, task, week, eff, regularRate)
		daily[day] = st
	}

	for day, st := range daily {
		st.Earnings = st.Earnings.Add(eff.taskCountBonus(st.BonusTaskCount))
		daily[day] = st
	}

	if week != nil && len(daily) > 0 {
		total := eff.officeHourEarnings()
		if !total.IsZero() {
			share := total.Div(decimal.NewFromInt(int64(len(daily))))
			for day, st := range daily {
				st.Earnings = st.Earnings.Add(share)
				daily[day] = st
			}
		}
	}
	return daily
}

const (
	// UnassignedProject labels tasks with no project name.
	UnassignedProject = "Unassigned Project"
	// NoLocale labels tasks with no locale.
	NoLocale = "N/A"
)

// ProjectStatistics groups the batch by (project_name, locale), with
// fallback labels for blank values. The task-count bonus is applied per
// group against that group's eligible count.
func (c *Calculator) ProjectStatistics(tasks []Task, week *WeekConfig) map[string]map[string]Statistics {
	eff := c.resolvePay(week)
	regularRate := rate(c.Global.Payrate)

	projects := make(map[string]map[string]Statistics)
	for _, task := range tasks {
		project := strings.TrimSpace(task.ProjectName)
		if project == "" {
			project = UnassignedProject
		}
		locale := strings.TrimSpace(task.Locale)
		if locale == "" {
			locale = NoLocale
		}
		if projects[project] == nil {
			projects[project] = make(map[string]Statistics)
		}
		st := projects[project][locale]
		c.addTask(&st, task, week, eff, regularRate)
		projects[project][locale] = st
	}

	for _, locales := range projects {
		for locale, st := range locales {
			st.Earnings = st.Earnings.Add(eff.taskCountBonus(st.BonusTaskCount))
			locales[locale] = st
		}
	}
	return projects
}
