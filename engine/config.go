/*
config.go - Week vs global settings precedence

PURPOSE:
  Resolves which pay parameters actually apply to a calculation. A week
  either carries its own bonus parameters or defers to the global
  defaults; office-hour rate and session length defer independently of
  the bonus settings. A nil week means a date-range query with no week
  context: no bonus, no office hours, regular rate only.

PRECEDENCE:
  bonus rate / window / task bonus:
    week-specific  when IsBonusWeek && !UseGlobalBonusSettings
    global default otherwise
  office-hour rate and session length:
    global default when UseGlobalOfficeHours, else week-specific
  office-hour count:
    always the week's own count (there is no global count)

The master BonusEnabled toggle is checked in bonus.go, not here; resolved
parameters describe what WOULD apply, eligibility decides whether any of
it does.
*/
package engine

import "github.com/shopspring/decimal"

// effectivePay is the fully resolved pay configuration for one
// calculation call.
type effectivePay struct {
	bonusRate decimal.Decimal

	taskBonusEnabled   bool
	taskBonusThreshold int
	taskBonusAmount    decimal.Decimal

	officeHourCount   int
	officeHourRate    decimal.Decimal
	officeHourMinutes int
}

func (c *Calculator) resolvePay(week *WeekConfig) effectivePay {
	eff := effectivePay{
		bonusRate:          rate(c.Global.BonusPayrate),
		taskBonusEnabled:   c.Global.EnableTaskBonus,
		taskBonusThreshold: c.Global.BonusTaskThreshold,
		taskBonusAmount:    rate(c.Global.BonusAdditionalAmount),
		officeHourRate:     rate(c.Global.OfficeHourPayrate),
		officeHourMinutes:  c.Global.OfficeHourSessionMinutes,
	}
	if week == nil {
		return eff
	}

	if week.IsBonusWeek && !week.UseGlobalBonusSettings {
		eff.bonusRate = rate(week.BonusPayrate)
		eff.taskBonusEnabled = week.EnableTaskBonus
		eff.taskBonusThreshold = week.BonusTaskThreshold
		eff.taskBonusAmount = rate(week.BonusAdditionalAmount)
	}

	eff.officeHourCount = week.OfficeHourCount
	if !week.UseGlobalOfficeHours {
		eff.officeHourRate = rate(week.OfficeHourPayrate)
		eff.officeHourMinutes = week.OfficeHourSessionMinutes
	}
	return eff
}

// officeHourEarnings is count x rate x (session minutes / 60), the flat
// fee for the week's office-hour sessions.
func (e effectivePay) officeHourEarnings() decimal.Decimal {
	if e.officeHourCount == 0 || e.officeHourMinutes == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(e.officeHourCount)).
		Mul(e.officeHourRate).
		Mul(decimal.NewFromInt(int64(e.officeHourMinutes))).
		Div(decimal.NewFromInt(60))
}

// taskCountBonus returns the flat additional amount when the
// bonus-eligible task count reaches the threshold, zero otherwise.
// Applied at most once per grouping.
func (e effectivePay) taskCountBonus(bonusTaskCount int) decimal.Decimal {
	if e.taskBonusEnabled && bonusTaskCount >= e.taskBonusThreshold {
		return e.taskBonusAmount
	}
	return decimal.Zero
}
