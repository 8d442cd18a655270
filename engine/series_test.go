package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally/earnings-engine/engine"
)

func TestMetricSeries_EarningsByDate(t *testing.T) {
	// GIVEN: 1h on Tuesday and 2h on Wednesday at $20/h
	// WHEN: Building a total_earnings series over date_audited
	// THEN: Two points, sorted by date

	calc := engine.NewCalculator(testGlobal())
	tasks := []engine.Task{
		plainTask("02:00:00", "02:00:00", "2026-01-07"),
		plainTask("01:00:00", "02:00:00", "2026-01-06"),
	}

	points := calc.MetricSeries(tasks, bonusWeek(), engine.DimensionDate, engine.MetricTotalEarnings)

	require.Len(t, points, 2)
	assert.Equal(t, "2026-01-06", points[0].Label)
	assert.InDelta(t, 20.0, points[0].Value, 0.001)
	assert.Equal(t, "2026-01-07", points[1].Label)
	assert.InDelta(t, 40.0, points[1].Value, 0.001)
}

func TestMetricSeries_FailRateByProject(t *testing.T) {
	// GIVEN: One failing and one passing task in the same project
	// WHEN: Building a fail_rate series over project_name
	// THEN: 50% for the project

	calc := engine.NewCalculator(testGlobal())
	pass := plainTask("00:10:00", "00:30:00", "2026-01-06")
	fail := plainTask("00:10:00", "00:30:00", "2026-01-06")
	fail.Score = score(1)

	points := calc.MetricSeries([]engine.Task{pass, fail}, bonusWeek(), engine.DimensionProject, engine.MetricFailRate)

	require.Len(t, points, 1)
	assert.Equal(t, "Search Quality", points[0].Label)
	assert.InDelta(t, 50.0, points[0].Value, 0.001)
}

func TestMetricSeries_BlankProjectUsesFallbackLabel(t *testing.T) {
	calc := engine.NewCalculator(testGlobal())
	task := plainTask("00:10:00", "00:30:00", "2026-01-06")
	task.ProjectName = ""

	points := calc.MetricSeries([]engine.Task{task}, bonusWeek(), engine.DimensionProject, engine.MetricBonusTasks)

	require.Len(t, points, 1)
	assert.Equal(t, engine.UnassignedProject, points[0].Label)
}

func TestMetricSeries_ExcludesFlatBonuses(t *testing.T) {
	// GIVEN: Task-count bonus enabled and met
	// WHEN: Building an earnings series
	// THEN: Points carry per-task earnings only; the flat bonus is a
	//       period-level value and stays out of per-group series

	global := testGlobal()
	global.EnableTaskBonus = true
	global.BonusTaskThreshold = 1
	global.BonusAdditionalAmount = 50
	calc := engine.NewCalculator(global)

	task := taskAt(mondayMorning, "2026-01-05 11:00:00")
	task.Duration = "01:00:00"
	task.DateAudited = "2026-01-05"

	points := calc.MetricSeries([]engine.Task{task}, bonusWeek(), engine.DimensionDate, engine.MetricTotalEarnings)

	require.Len(t, points, 1)
	assert.InDelta(t, 30.0, points[0].Value, 0.001)
}

func TestMetricSeries_UnknownDimensionOrMetric(t *testing.T) {
	calc := engine.NewCalculator(testGlobal())
	tasks := []engine.Task{plainTask("00:10:00", "00:30:00", "2026-01-06")}

	assert.Nil(t, calc.MetricSeries(tasks, bonusWeek(), "color", engine.MetricTotalTime))
	assert.Nil(t, calc.MetricSeries(tasks, bonusWeek(), engine.DimensionDate, "sparkle"))
}

func TestMetricSeries_TotalTimeInHours(t *testing.T) {
	calc := engine.NewCalculator(testGlobal())
	tasks := []engine.Task{
		plainTask("01:30:00", "02:00:00", "2026-01-06"),
	}

	points := calc.MetricSeries(tasks, bonusWeek(), engine.DimensionDate, engine.MetricTotalTime)

	require.Len(t, points, 1)
	assert.InDelta(t, 1.5, points[0].Value, 0.001)
}
