// Package store defines the persistence contract for tracker state.
//
// The persisted model is deliberately simple: four keys in a local
// key-value store, overwritten in full on every save. There is exactly one
// writer (the tracker holds the only handle), so no transactions or partial
// writes are needed.
package store

import (
	"time"

	"github.com/alphatrack/alphatrack/internal/domain"
)

// Keys under which state is persisted. Backends must use these names so a
// data directory is portable between them.
const (
	KeyAccounts        = "accounts"          // JSON array of domain.Account
	KeyCycleStartDate  = "cycle_start_date"  // RFC3339
	KeyCurrentCycle    = "current_cycle"     // integer as string
	KeyManualResetDays = "manual_reset_days" // integer as string, present only when set
)

// State is the complete persisted application state.
type State struct {
	Accounts []domain.Account
	Cycle    domain.CycleState
}

// DefaultState returns the state of a first run: no accounts, cycle one
// starting now.
func DefaultState(now time.Time) *State {
	return &State{
		Accounts: []domain.Account{},
		Cycle: domain.CycleState{
			CycleStartDate: now,
			CurrentCycle:   1,
		},
	}
}

// Store loads and saves the full state snapshot.
type Store interface {
	// Load returns the persisted state, or DefaultState when nothing has
	// been saved yet.
	Load() (*State, error)
	// Save overwrites the entire persisted state.
	Save(*State) error
	Close() error
}
