// Package tracker is the application service behind every user-facing
// operation: account CRUD, airdrop flows, score adjustments, cycle
// bookkeeping, and snapshot export/import.
//
// The tracker owns the only handle to the state store. Operations validate
// their input before touching any field, mutate in memory, then persist the
// full state snapshot; a rejected operation leaves state byte-identical.
// Destructive operations follow a two-phase protocol: invoked without
// confirm they return domain.ErrConfirmationRequired and touch nothing.
package tracker

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/observability"
	"github.com/alphatrack/alphatrack/internal/infra/store"
)

// Tracker coordinates all state mutations. Access is serialized by a single
// mutex: the HTTP API and CLI are the only callers and neither needs more.
type Tracker struct {
	mu    sync.Mutex
	store store.Store
	state *store.State
	now   func() time.Time
}

// New loads persisted state (or first-run defaults) from st.
func New(st store.Store) (*Tracker, error) {
	state, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("tracker: loading state: %w", err)
	}
	t := &Tracker{store: st, state: state, now: time.Now}
	t.refreshGauges()
	return t, nil
}

// Close releases the underlying store.
func (t *Tracker) Close() error {
	return t.store.Close()
}

// persist writes the full state snapshot. Caller holds the mutex.
func (t *Tracker) persist() error {
	if err := t.store.Save(t.state); err != nil {
		return fmt.Errorf("tracker: saving state: %w", err)
	}
	return nil
}

// find returns the account with the given id. Caller holds the mutex.
func (t *Tracker) find(id string) (*domain.Account, error) {
	for i := range t.state.Accounts {
		if t.state.Accounts[i].ID == id {
			return &t.state.Accounts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
}

// nameTaken reports whether another account (excluding excludeID) already
// uses name. Caller holds the mutex.
func (t *Tracker) nameTaken(name, excludeID string) bool {
	for i := range t.state.Accounts {
		if t.state.Accounts[i].Name == name && t.state.Accounts[i].ID != excludeID {
			return true
		}
	}
	return false
}

func (t *Tracker) refreshGauges() {
	now := t.now()
	observability.Accounts.Set(float64(len(t.state.Accounts)))
	observability.CycleDay.Set(float64(domain.CurrentCycleDay(t.state.Cycle.CycleStartDate, now)))
	observability.CycleDaysUntilReset.Set(float64(t.state.Cycle.DaysUntilReset(now)))
}

// RefreshGauges recomputes the exported gauges. The daemon drives this from
// its per-minute tick.
func (t *Tracker) RefreshGauges() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshGauges()
}

// ─── Account CRUD ───────────────────────────────────────────────────────────

// AccountParams carries user-supplied account fields. Score fields are
// pointers so that an absent field is distinguishable from zero; all three
// are required on create and update.
type AccountParams struct {
	Name            string
	CurrentScore    *float64
	DailyScore      *float64
	RegressionScore *float64
	RegressionDates []string
}

func (p *AccountParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name", domain.ErrMissingField)
	}
	if p.CurrentScore == nil {
		return fmt.Errorf("%w: currentScore", domain.ErrMissingField)
	}
	if p.DailyScore == nil {
		return fmt.Errorf("%w: dailyScore", domain.ErrMissingField)
	}
	if p.RegressionScore == nil {
		return fmt.Errorf("%w: regressionScore", domain.ErrMissingField)
	}
	return nil
}

// CreateAccount adds a new account and seeds its history with a creation
// event. Names must be unique across all accounts.
func (t *Tracker) CreateAccount(p AccountParams) (*domain.Account, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	name := strings.TrimSpace(p.Name)
	if t.nameTaken(name, "") {
		return nil, fmt.Errorf("%w: %s", domain.ErrNameTaken, name)
	}

	now := t.now()
	acc := domain.Account{
		ID:              uuid.NewString(),
		Name:            name,
		CurrentScore:    *p.CurrentScore,
		DailyScore:      *p.DailyScore,
		RegressionScore: *p.RegressionScore,
		RegressionDates: append([]string(nil), p.RegressionDates...),
		CreatedAt:       now,
		LastUpdated:     now,
	}
	initial := acc.Score(now)
	acc.ScoreHistory = []domain.ScoreEvent{{
		Date:        now,
		Action:      domain.ActionCreated,
		Change:      0,
		AlphaScore:  initial,
		Description: fmt.Sprintf("initial score: %v", initial),
	}}

	t.state.Accounts = append(t.state.Accounts, acc)
	if err := t.persist(); err != nil {
		return nil, err
	}

	observability.AccountsCreated.Inc()
	t.refreshGauges()
	out := acc
	return &out, nil
}

// UpdateAccount replaces an account's base parameters. A "manual edit"
// history event is appended only when the effective score actually moved.
func (t *Tracker) UpdateAccount(id string, p AccountParams) (*domain.Account, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.Name)
	if t.nameTaken(name, id) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNameTaken, name)
	}

	now := t.now()
	oldScore := acc.Score(now)

	acc.Name = name
	acc.CurrentScore = *p.CurrentScore
	acc.DailyScore = *p.DailyScore
	acc.RegressionScore = *p.RegressionScore
	acc.RegressionDates = append([]string(nil), p.RegressionDates...)
	acc.LastUpdated = now

	newScore := acc.Score(now)
	if newScore != oldScore {
		acc.ScoreHistory = append(acc.ScoreHistory, domain.ScoreEvent{
			Date:        now,
			Action:      domain.ActionManualEdit,
			Change:      domain.Round2(newScore - oldScore),
			AlphaScore:  newScore,
			Description: fmt.Sprintf("score changed from %v to %v", oldScore, newScore),
		})
	}

	if err := t.persist(); err != nil {
		return nil, err
	}
	out := *acc
	return &out, nil
}

// DeleteAccount removes an account. Two-phase: confirm must be set.
func (t *Tracker) DeleteAccount(id string, confirm bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.find(id); err != nil {
		return err
	}
	if !confirm {
		return domain.ErrConfirmationRequired
	}

	kept := t.state.Accounts[:0]
	for _, acc := range t.state.Accounts {
		if acc.ID != id {
			kept = append(kept, acc)
		}
	}
	t.state.Accounts = kept

	if err := t.persist(); err != nil {
		return err
	}
	observability.AccountsDeleted.Inc()
	t.refreshGauges()
	return nil
}

// Account returns a copy of one account.
func (t *Tracker) Account(id string) (*domain.Account, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return nil, err
	}
	out := *acc
	return &out, nil
}

// History returns an account's score events, oldest first.
func (t *Tracker) History(id string) ([]domain.ScoreEvent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return nil, err
	}
	return append([]domain.ScoreEvent(nil), acc.ScoreHistory...), nil
}

// ─── Listing ────────────────────────────────────────────────────────────────

// AccountView is one row of the account list: the stored record plus every
// derived field the UI renders. The effective score is recomputed here on
// every call; it is never read from storage.
type AccountView struct {
	domain.Account
	AlphaScore      float64     `json:"alphaScore"`
	Tier            domain.Tier `json:"tier"`
	TodayBonusCount int         `json:"todayBonusCount"`
	ResetDays       int         `json:"resetDays"`
	ResetSource     string      `json:"resetSource"` // "account" or "global"
	TagSummary      string      `json:"tagSummary"`
}

// ListAccounts returns all accounts sorted by descending recomputed score.
func (t *Tracker) ListAccounts() []AccountView {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	views := make([]AccountView, 0, len(t.state.Accounts))
	for i := range t.state.Accounts {
		acc := t.state.Accounts[i]
		score := acc.Score(now)
		source := "global"
		if acc.ResetDate != nil {
			source = "account"
		}
		views = append(views, AccountView{
			Account:         acc,
			AlphaScore:      score,
			Tier:            domain.ScoreTier(score),
			TodayBonusCount: acc.TodayBonusCount(now),
			ResetDays:       domain.AccountResetDays(&acc, &t.state.Cycle, now),
			ResetSource:     source,
			TagSummary:      domain.SummarizeTags(acc.RegressionDates),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].AlphaScore > views[j].AlphaScore
	})
	return views
}
