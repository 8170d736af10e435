package boltstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "alphatrack.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_LoadEmpty(t *testing.T) {
	s := newTestStore(t)

	state, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Accounts) != 0 {
		t.Errorf("accounts = %d, want 0", len(state.Accounts))
	}
	if state.Cycle.CurrentCycle != 1 {
		t.Errorf("cycle = %d, want 1", state.Cycle.CurrentCycle)
	}
	if state.Cycle.ManualResetDays != nil {
		t.Error("manual reset days should be unset on first run")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	created := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	override := 5
	in := &store.State{
		Accounts: []domain.Account{{
			ID:              "acc-1",
			Name:            "main",
			CurrentScore:    100,
			DailyScore:      2,
			RegressionScore: 5,
			RegressionDates: []string{"07/01", "07/01"},
			ScoreHistory: []domain.ScoreEvent{{
				Date:       created,
				Action:     domain.ActionCreated,
				AlphaScore: 100,
			}},
			CreatedAt:   created,
			LastUpdated: created,
		}},
		Cycle: domain.CycleState{
			CycleStartDate:  created,
			CurrentCycle:    3,
			ManualResetDays: &override,
		},
	}

	if err := s.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(out.Accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(out.Accounts))
	}
	acc := out.Accounts[0]
	if acc.Name != "main" || acc.CurrentScore != 100 || len(acc.RegressionDates) != 2 {
		t.Errorf("account round trip mismatch: %+v", acc)
	}
	if len(acc.ScoreHistory) != 1 || acc.ScoreHistory[0].Action != domain.ActionCreated {
		t.Errorf("history round trip mismatch: %+v", acc.ScoreHistory)
	}
	if !out.Cycle.CycleStartDate.Equal(created) {
		t.Errorf("cycle start = %v, want %v", out.Cycle.CycleStartDate, created)
	}
	if out.Cycle.CurrentCycle != 3 {
		t.Errorf("cycle = %d, want 3", out.Cycle.CurrentCycle)
	}
	if out.Cycle.ManualResetDays == nil || *out.Cycle.ManualResetDays != 5 {
		t.Errorf("manual reset days = %v, want 5", out.Cycle.ManualResetDays)
	}
}

func TestStore_ClearingOverrideRemovesKey(t *testing.T) {
	s := newTestStore(t)

	override := 7
	state := store.DefaultState(time.Now())
	state.Cycle.ManualResetDays = &override
	if err := s.Save(state); err != nil {
		t.Fatal(err)
	}

	state.Cycle.ManualResetDays = nil
	if err := s.Save(state); err != nil {
		t.Fatal(err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out.Cycle.ManualResetDays != nil {
		t.Errorf("manual reset days = %v, want unset", *out.Cycle.ManualResetDays)
	}
}

func TestStore_SaveIsFullOverwrite(t *testing.T) {
	s := newTestStore(t)

	state := store.DefaultState(time.Now())
	state.Accounts = []domain.Account{{ID: "a", Name: "one"}, {ID: "b", Name: "two"}}
	if err := s.Save(state); err != nil {
		t.Fatal(err)
	}

	state.Accounts = []domain.Account{{ID: "b", Name: "two"}}
	if err := s.Save(state); err != nil {
		t.Fatal(err)
	}

	out, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Accounts) != 1 || out.Accounts[0].Name != "two" {
		t.Errorf("accounts after overwrite = %+v, want just %q", out.Accounts, "two")
	}
}
