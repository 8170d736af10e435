package tracker

import (
	"time"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/observability"
)

// ─── Cycle Operations ───────────────────────────────────────────────────────

// CycleStatus is the cycle dashboard snapshot.
type CycleStatus struct {
	CurrentCycle    int       `json:"currentCycle"`
	CycleStartDate  time.Time `json:"cycleStartDate"`
	CycleDay        int       `json:"cycleDay"`
	DaysUntilReset  int       `json:"daysUntilReset"`
	ProgressPct     int       `json:"progressPct"`
	ManualResetDays *int      `json:"manualResetDays,omitempty"`
	Accounts        int       `json:"accounts"`
}

// CycleStatus reports the current cycle position.
func (t *Tracker) CycleStatus() CycleStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	return CycleStatus{
		CurrentCycle:    t.state.Cycle.CurrentCycle,
		CycleStartDate:  t.state.Cycle.CycleStartDate,
		CycleDay:        domain.CurrentCycleDay(t.state.Cycle.CycleStartDate, now),
		DaysUntilReset:  t.state.Cycle.DaysUntilReset(now),
		ProgressPct:     domain.CycleProgress(t.state.Cycle.CycleStartDate, now),
		ManualResetDays: t.state.Cycle.ManualResetDays,
		Accounts:        len(t.state.Accounts),
	}
}

// SetManualResetDays sets the global countdown override. Zero or negative
// clears it, returning control to the computed countdown. The override does
// not expire on its own.
func (t *Tracker) SetManualResetDays(days int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if days <= 0 {
		t.state.Cycle.ManualResetDays = nil
	} else {
		t.state.Cycle.ManualResetDays = &days
	}
	if err := t.persist(); err != nil {
		return err
	}
	t.refreshGauges()
	return nil
}

// ResetCycle performs the manual cycle advance: a new season. All accounts
// are wiped, the start date moves to now, and the counter increments.
// Two-phase: confirm must be set. Returns the new cycle number.
func (t *Tracker) ResetCycle(confirm bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !confirm {
		return 0, domain.ErrConfirmationRequired
	}

	t.state.Accounts = []domain.Account{}
	t.state.Cycle.CycleStartDate = t.now()
	t.state.Cycle.CurrentCycle++

	if err := t.persist(); err != nil {
		return 0, err
	}
	observability.CycleRollovers.WithLabelValues("manual").Inc()
	t.refreshGauges()
	return t.state.Cycle.CurrentCycle, nil
}

// AutoAdvance advances the cycle when the countdown has reached zero.
// Unlike the manual reset it keeps all accounts: only the start date and
// counter move. Reports whether a rollover happened.
func (t *Tracker) AutoAdvance() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.state.Cycle.DaysUntilReset(now) != 0 {
		return false, nil
	}

	t.state.Cycle.CycleStartDate = now
	t.state.Cycle.CurrentCycle++

	if err := t.persist(); err != nil {
		return false, err
	}
	observability.CycleRollovers.WithLabelValues("auto").Inc()
	t.refreshGauges()
	return true, nil
}
