package domain

import (
	"math"
	"time"
)

// ─── Cycle Tracking ─────────────────────────────────────────────────────────
// Cycles are a fixed fifteen days, anchored to the UTC+8 trading day. A day
// rolls over at 08:00 in that zone: before the cutover hour the previous
// calendar day is still in effect.

const (
	// CycleLength is the fixed number of days per cycle.
	CycleLength = 15
	// CutoverHour is the UTC+8 hour at which a new cycle day begins.
	CutoverHour = 8
	// CycleZoneOffset is the fixed offset of the cycle day boundary zone.
	CycleZoneOffset = 8 * time.Hour
)

// CycleState is the process-wide cycle bookkeeping. CurrentCycle only ever
// advances; ManualResetDays, when set, overrides the computed countdown
// verbatim and never expires on its own.
type CycleState struct {
	CycleStartDate  time.Time `json:"cycleStartDate"`
	CurrentCycle    int       `json:"currentCycle"`
	ManualResetDays *int      `json:"manualResetDays,omitempty"`
}

// CurrentCycleDay returns which day of the cycle now falls on, in [1, CycleLength].
func CurrentCycleDay(cycleStart, now time.Time) int {
	adjusted := now.UTC().Add(CycleZoneOffset)
	if adjusted.Hour() < CutoverHour {
		adjusted = adjusted.AddDate(0, 0, -1)
	}

	diff := adjusted.Sub(cycleStart)
	if diff < 0 {
		diff = -diff
	}
	day := int(math.Floor(diff.Hours()/24)) + 1
	if day > CycleLength {
		return CycleLength
	}
	return day
}

// DaysUntilReset returns the global countdown to the next cycle boundary.
// A manual override takes absolute precedence. The computed value is always
// in [1, CycleLength] since the cycle day is clamped; the countdown reaches
// zero only through a stored zero override.
func (s *CycleState) DaysUntilReset(now time.Time) int {
	if s.ManualResetDays != nil {
		return *s.ManualResetDays
	}
	return CycleLength - CurrentCycleDay(s.CycleStartDate, now) + 1
}

// AccountResetDays returns the reset countdown for one account: its own
// reset date when set, otherwise the global countdown.
func AccountResetDays(a *Account, s *CycleState, now time.Time) int {
	if a.ResetDate != nil {
		days := int(math.Ceil(a.ResetDate.Sub(now).Hours() / 24))
		if days < 0 {
			return 0
		}
		return days
	}
	return s.DaysUntilReset(now)
}

// CycleProgress returns cycle completion as a whole percentage.
func CycleProgress(cycleStart, now time.Time) int {
	day := CurrentCycleDay(cycleStart, now)
	return int(math.Round(float64(day) / CycleLength * 100))
}
