package engine

import "fmt"

// Precision selects how many decimal places percentage fields carry.
// Summary tables use one, detail views two.
type Precision int

const (
	PrecisionSummary Precision = 1
	PrecisionDetail  Precision = 2
)

// StatisticsView is the display form of Statistics: durations as
// "HH:MM:SS", percentages with a trailing "%", earnings as "$X.XX".
type StatisticsView struct {
	TotalTime      string `json:"total_time"`
	AverageTime    string `json:"average_time"`
	TimeLimitUsage string `json:"time_limit_usage"`
	FailRate       string `json:"fail_rate"`
	BonusTasks     string `json:"bonus_tasks"`
	TotalEarnings  string `json:"total_earnings"`
}

// View formats the statistics at the requested percentage precision.
func (s Statistics) View(p Precision) StatisticsView {
	return StatisticsView{
		TotalTime:      FormatHMS(float64(s.TotalSeconds)),
		AverageTime:    FormatHMS(s.AverageSeconds()),
		TimeLimitUsage: fmt.Sprintf("%.*f%%", int(p), s.TimeLimitUsagePercent()),
		FailRate:       fmt.Sprintf("%.*f%%", int(p), s.FailRatePercent()),
		BonusTasks:     fmt.Sprintf("%d", s.BonusTaskCount),
		TotalEarnings:  "$" + s.Earnings.StringFixed(2),
	}
}
