package tracker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alphatrack/alphatrack/internal/domain"
)

// ─── Snapshot Export / Import ───────────────────────────────────────────────

// Snapshot is the export file format: the full account list and cycle
// position, pretty-printed for human inspection.
type Snapshot struct {
	Accounts       []domain.Account `json:"accounts"`
	CycleStartDate time.Time        `json:"cycleStartDate"`
	CurrentCycle   int              `json:"currentCycle"`
	ExportDate     time.Time        `json:"exportDate"`
}

// Export serializes the current state as an indented JSON snapshot.
func (t *Tracker) Export() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Accounts:       t.state.Accounts,
		CycleStartDate: t.state.Cycle.CycleStartDate,
		CurrentCycle:   t.state.Cycle.CurrentCycle,
		ExportDate:     t.now(),
	}
	if snap.Accounts == nil {
		snap.Accounts = []domain.Account{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tracker: encoding snapshot: %w", err)
	}
	return data, nil
}

// Import replaces the entire state with the snapshot's contents. A parse
// failure rejects the import with current state untouched; missing fields
// take first-run defaults (no accounts, cycle one starting now). Two-phase:
// the overwrite is destructive, so confirm must be set.
func (t *Tracker) Import(data []byte, confirm bool) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedSnapshot, err)
	}
	if !confirm {
		return domain.ErrConfirmationRequired
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if snap.Accounts == nil {
		snap.Accounts = []domain.Account{}
	}
	if snap.CycleStartDate.IsZero() {
		snap.CycleStartDate = t.now()
	}
	if snap.CurrentCycle == 0 {
		snap.CurrentCycle = 1
	}

	t.state.Accounts = snap.Accounts
	t.state.Cycle.CycleStartDate = snap.CycleStartDate
	t.state.Cycle.CurrentCycle = snap.CurrentCycle

	if err := t.persist(); err != nil {
		return err
	}
	t.refreshGauges()
	return nil
}
