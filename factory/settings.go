/*
Package factory provides JSON to Go settings conversion.

PURPOSE:
  Converts a JSON settings document into an engine.GlobalPayConfig plus
  the week-duration defaults the rollover scheduler needs. This keeps pay
  configuration out of code: rates and windows live in a settings file
  that an admin UI can edit, and the factory fills in defaults for
  anything absent.

JSON SCHEMA:
  {
    "payrate": 25.3,
    "bonus": {
      "enabled": true,
      "start_day": 6, "start_time": "09:00",
      "end_day": 1,   "end_time": "09:00",
      "payrate": 37.95,
      "task_bonus": {"enabled": false, "threshold": 20, "amount": 50.0}
    },
    "office_hours": {"payrate": 25.3, "session_minutes": 30},
    "week": {
      "start_day": 1, "start_hour": 9,
      "end_day": 1,   "end_hour": 9,
      "auto_create_next": true
    }
  }

DEFAULTS:
  Absent fields take the values above: $25.30 regular rate, bonus window
  Saturday 09:00 through Monday 09:00 at $37.95, task-count bonus
  disabled (threshold 20, $50), office hours $25.30 per 30-minute
  session, Monday-09:00 week boundaries. Unknown fields are ignored.

USAGE:
  settings, err := factory.Load("./settings.json")   // defaults if absent
  calc := engine.NewCalculator(settings.Pay)

SEE ALSO:
  - engine/types.go: GlobalPayConfig definition
  - api/scheduler.go: Consumer of the week-duration defaults
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tally/earnings-engine/engine"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the full resolved configuration document.
type Settings struct {
	Pay  engine.GlobalPayConfig
	Week WeekDefaults
}

// WeekDefaults describes where an audit week starts and ends, in the
// 1 (Monday) - 7 (Sunday) day convention.
type WeekDefaults struct {
	StartDay  int
	StartHour int
	EndDay    int
	EndHour   int

	// AutoCreateNext enables the rollover scheduler: when the newest
	// week's end passes, the following week is created automatically.
	AutoCreateNext bool
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Pay: engine.GlobalPayConfig{
			Payrate:                  25.3,
			BonusEnabled:             true,
			BonusStartDay:            6,
			BonusStartTime:           "09:00",
			BonusEndDay:              1,
			BonusEndTime:             "09:00",
			BonusPayrate:             37.95,
			EnableTaskBonus:          false,
			BonusTaskThreshold:       20,
			BonusAdditionalAmount:    50.0,
			OfficeHourPayrate:        25.3,
			OfficeHourSessionMinutes: 30,
		},
		Week: WeekDefaults{
			StartDay:       1,
			StartHour:      9,
			EndDay:         1,
			EndHour:        9,
			AutoCreateNext: true,
		},
	}
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================
// Pointer fields distinguish "absent" (take the default) from an explicit
// zero value.

type settingsJSON struct {
	Payrate     *float64         `json:"payrate"`
	Bonus       *bonusJSON       `json:"bonus"`
	OfficeHours *officeHoursJSON `json:"office_hours"`
	Week        *weekJSON        `json:"week"`
}

type bonusJSON struct {
	Enabled   *bool          `json:"enabled"`
	StartDay  *int           `json:"start_day"`
	StartTime *string        `json:"start_time"`
	EndDay    *int           `json:"end_day"`
	EndTime   *string        `json:"end_time"`
	Payrate   *float64       `json:"payrate"`
	TaskBonus *taskBonusJSON `json:"task_bonus"`
}

type taskBonusJSON struct {
	Enabled   *bool    `json:"enabled"`
	Threshold *int     `json:"threshold"`
	Amount    *float64 `json:"amount"`
}

type officeHoursJSON struct {
	Payrate        *float64 `json:"payrate"`
	SessionMinutes *int     `json:"session_minutes"`
}

type weekJSON struct {
	StartDay       *int  `json:"start_day"`
	StartHour      *int  `json:"start_hour"`
	EndDay         *int  `json:"end_day"`
	EndHour        *int  `json:"end_hour"`
	AutoCreateNext *bool `json:"auto_create_next"`
}

// =============================================================================
// PARSE / LOAD / SAVE
// =============================================================================

// ParseSettings decodes a JSON settings document, filling defaults for
// absent fields.
func ParseSettings(data []byte) (Settings, error) {
	var doc settingsJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("invalid settings document: %w", err)
	}

	s := DefaultSettings()
	if doc.Payrate != nil {
		s.Pay.Payrate = *doc.Payrate
	}
	if b := doc.Bonus; b != nil {
		setBool(&s.Pay.BonusEnabled, b.Enabled)
		setInt(&s.Pay.BonusStartDay, b.StartDay)
		setString(&s.Pay.BonusStartTime, b.StartTime)
		setInt(&s.Pay.BonusEndDay, b.EndDay)
		setString(&s.Pay.BonusEndTime, b.EndTime)
		setFloat(&s.Pay.BonusPayrate, b.Payrate)
		if tb := b.TaskBonus; tb != nil {
			setBool(&s.Pay.EnableTaskBonus, tb.Enabled)
			setInt(&s.Pay.BonusTaskThreshold, tb.Threshold)
			setFloat(&s.Pay.BonusAdditionalAmount, tb.Amount)
		}
	}
	if oh := doc.OfficeHours; oh != nil {
		setFloat(&s.Pay.OfficeHourPayrate, oh.Payrate)
		setInt(&s.Pay.OfficeHourSessionMinutes, oh.SessionMinutes)
	}
	if w := doc.Week; w != nil {
		setInt(&s.Week.StartDay, w.StartDay)
		setInt(&s.Week.StartHour, w.StartHour)
		setInt(&s.Week.EndDay, w.EndDay)
		setInt(&s.Week.EndHour, w.EndHour)
		setBool(&s.Week.AutoCreateNext, w.AutoCreateNext)
	}
	return s, nil
}

// Load reads a settings file. A missing file is not an error: the stock
// defaults are returned so first startup needs no configuration.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// Save writes the settings back as JSON.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(toJSON(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func toJSON(s Settings) settingsJSON {
	return settingsJSON{
		Payrate: &s.Pay.Payrate,
		Bonus: &bonusJSON{
			Enabled:   &s.Pay.BonusEnabled,
			StartDay:  &s.Pay.BonusStartDay,
			StartTime: &s.Pay.BonusStartTime,
			EndDay:    &s.Pay.BonusEndDay,
			EndTime:   &s.Pay.BonusEndTime,
			Payrate:   &s.Pay.BonusPayrate,
			TaskBonus: &taskBonusJSON{
				Enabled:   &s.Pay.EnableTaskBonus,
				Threshold: &s.Pay.BonusTaskThreshold,
				Amount:    &s.Pay.BonusAdditionalAmount,
			},
		},
		OfficeHours: &officeHoursJSON{
			Payrate:        &s.Pay.OfficeHourPayrate,
			SessionMinutes: &s.Pay.OfficeHourSessionMinutes,
		},
		Week: &weekJSON{
			StartDay:       &s.Week.StartDay,
			StartHour:      &s.Week.StartHour,
			EndDay:         &s.Week.EndDay,
			EndHour:        &s.Week.EndHour,
			AutoCreateNext: &s.Week.AutoCreateNext,
		},
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
