/*
series.go - Metric series for charting

PURPOSE:
  Shapes task batches into (label, value) series for the charting layer:
  group by one X dimension, compute one Y metric per group. The engine
  supplies data only; rendering belongs to the consumer.

DIMENSIONS: date_audited, project_name, locale, week_id
METRICS:    total_time (hours), average_time (hours), time_limit_usage,
            fail_rate, bonus_tasks_count, total_earnings

Unknown dimension or metric names yield an empty series rather than an
error, consistent with the engine's fail-quiet policy.
*/
package engine

import (
	"sort"
	"strconv"
	"strings"
)

// Series dimensions.
const (
	DimensionDate    = "date_audited"
	DimensionProject = "project_name"
	DimensionLocale  = "locale"
	DimensionWeek    = "week_id"
)

// Series metrics.
const (
	MetricTotalTime      = "total_time"
	MetricAverageTime    = "average_time"
	MetricTimeLimitUsage = "time_limit_usage"
	MetricFailRate       = "fail_rate"
	MetricBonusTasks     = "bonus_tasks_count"
	MetricTotalEarnings  = "total_earnings"
)

// SeriesPoint is one chartable value.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MetricSeries groups tasks by the X dimension and computes the Y metric
// per group, sorted by label. Week config drives bonus eligibility and
// rates; flat bonuses and office-hour earnings are period-level values
// and are excluded from per-group series.
func (c *Calculator) MetricSeries(tasks []Task, week *WeekConfig, dimension, metric string) []SeriesPoint {
	if !validMetric(metric) {
		return nil
	}

	groups := make(map[string][]Task)
	for _, task := range tasks {
		label, ok := dimensionLabel(task, dimension)
		if !ok {
			return nil
		}
		groups[label] = append(groups[label], task)
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	eff := c.resolvePay(week)
	regularRate := rate(c.Global.Payrate)

	points := make([]SeriesPoint, 0, len(labels))
	for _, label := range labels {
		var st Statistics
		for _, task := range groups[label] {
			c.addTask(&st, task, week, eff, regularRate)
		}
		points = append(points, SeriesPoint{Label: label, Value: metricValue(st, metric)})
	}
	return points
}

func dimensionLabel(task Task, dimension string) (string, bool) {
	switch dimension {
	case DimensionDate:
		return strings.TrimSpace(task.DateAudited), true
	case DimensionProject:
		if p := strings.TrimSpace(task.ProjectName); p != "" {
			return p, true
		}
		return UnassignedProject, true
	case DimensionLocale:
		if l := strings.TrimSpace(task.Locale); l != "" {
			return l, true
		}
		return NoLocale, true
	case DimensionWeek:
		return strconv.FormatInt(task.WeekID, 10), true
	default:
		return "", false
	}
}

func validMetric(metric string) bool {
	switch metric {
	case MetricTotalTime, MetricAverageTime, MetricTimeLimitUsage,
		MetricFailRate, MetricBonusTasks, MetricTotalEarnings:
		return true
	}
	return false
}

func metricValue(st Statistics, metric string) float64 {
	switch metric {
	case MetricTotalTime:
		return float64(st.TotalSeconds) / 3600
	case MetricAverageTime:
		return st.AverageSeconds() / 3600
	case MetricTimeLimitUsage:
		return st.TimeLimitUsagePercent()
	case MetricFailRate:
		return st.FailRatePercent()
	case MetricBonusTasks:
		return float64(st.BonusTaskCount)
	case MetricTotalEarnings:
		return st.Earnings.InexactFloat64()
	}
	return 0
}
