package tracker

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/boltstore"
)

var testNow = time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	st, err := boltstore.Open(filepath.Join(t.TempDir(), "alphatrack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	tr, err := New(st)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { tr.Close() })
	tr.now = func() time.Time { return testNow }
	// The store seeds a fresh state from the wall clock; pin the cycle
	// start to the same instant as the injected clock so cycle math is
	// deterministic.
	tr.state.Cycle.CycleStartDate = testNow
	return tr
}

func f(v float64) *float64 { return &v }

func mustCreate(t *testing.T, tr *Tracker, name string, current, daily, regression float64, tags ...string) *domain.Account {
	t.Helper()
	acc, err := tr.CreateAccount(AccountParams{
		Name:            name,
		CurrentScore:    f(current),
		DailyScore:      f(daily),
		RegressionScore: f(regression),
		RegressionDates: tags,
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s) error: %v", name, err)
	}
	return acc
}

// ─── Create / Update / Delete ───────────────────────────────────────────────

func TestCreateAccount(t *testing.T) {
	tr := newTestTracker(t)

	acc := mustCreate(t, tr, "main", 100, 2, 5)
	if acc.ID == "" {
		t.Error("account ID not assigned")
	}
	if len(acc.ScoreHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(acc.ScoreHistory))
	}
	ev := acc.ScoreHistory[0]
	if ev.Action != domain.ActionCreated || ev.Change != 0 || ev.AlphaScore != 100 {
		t.Errorf("creation event = %+v", ev)
	}
}

func TestCreateAccount_MissingFields(t *testing.T) {
	tr := newTestTracker(t)

	tests := []struct {
		name   string
		params AccountParams
	}{
		{"empty name", AccountParams{Name: "  ", CurrentScore: f(1), DailyScore: f(1), RegressionScore: f(1)}},
		{"no current score", AccountParams{Name: "a", DailyScore: f(1), RegressionScore: f(1)}},
		{"no daily score", AccountParams{Name: "a", CurrentScore: f(1), RegressionScore: f(1)}},
		{"no regression score", AccountParams{Name: "a", CurrentScore: f(1), DailyScore: f(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tr.CreateAccount(tt.params); !errors.Is(err, domain.ErrMissingField) {
				t.Errorf("error = %v, want ErrMissingField", err)
			}
		})
	}
	if n := len(tr.ListAccounts()); n != 0 {
		t.Errorf("accounts created despite rejection: %d", n)
	}
}

func TestCreateAccount_DuplicateName(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 100, 0, 0)

	_, err := tr.CreateAccount(AccountParams{
		Name: "main", CurrentScore: f(1), DailyScore: f(1), RegressionScore: f(1),
	})
	if !errors.Is(err, domain.ErrNameTaken) {
		t.Errorf("error = %v, want ErrNameTaken", err)
	}
	if n := len(tr.ListAccounts()); n != 1 {
		t.Errorf("accounts = %d, want 1", n)
	}
}

func TestUpdateAccount_AppendsEventOnlyOnScoreChange(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 100, 0, 0)

	// Same parameters: score does not move, no event.
	updated, err := tr.UpdateAccount(acc.ID, AccountParams{
		Name: "main", CurrentScore: f(100), DailyScore: f(0), RegressionScore: f(0),
	})
	if err != nil {
		t.Fatalf("UpdateAccount() error: %v", err)
	}
	if len(updated.ScoreHistory) != 1 {
		t.Errorf("history length = %d, want 1 (no change event)", len(updated.ScoreHistory))
	}

	// Raised base score: one manual edit event with the delta.
	updated, err = tr.UpdateAccount(acc.ID, AccountParams{
		Name: "main", CurrentScore: f(110), DailyScore: f(0), RegressionScore: f(0),
	})
	if err != nil {
		t.Fatalf("UpdateAccount() error: %v", err)
	}
	if len(updated.ScoreHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(updated.ScoreHistory))
	}
	ev := updated.ScoreHistory[1]
	if ev.Action != domain.ActionManualEdit || ev.Change != 10 || ev.AlphaScore != 110 {
		t.Errorf("edit event = %+v", ev)
	}
}

func TestUpdateAccount_RejectsNameCollision(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "first", 1, 0, 0)
	second := mustCreate(t, tr, "second", 1, 0, 0)

	_, err := tr.UpdateAccount(second.ID, AccountParams{
		Name: "first", CurrentScore: f(1), DailyScore: f(0), RegressionScore: f(0),
	})
	if !errors.Is(err, domain.ErrNameTaken) {
		t.Errorf("error = %v, want ErrNameTaken", err)
	}
}

func TestDeleteAccount_TwoPhase(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 1, 0, 0)

	if err := tr.DeleteAccount(acc.ID, false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed delete error = %v, want ErrConfirmationRequired", err)
	}
	if n := len(tr.ListAccounts()); n != 1 {
		t.Fatalf("account deleted without confirmation")
	}

	if err := tr.DeleteAccount(acc.ID, true); err != nil {
		t.Fatalf("DeleteAccount() error: %v", err)
	}
	if n := len(tr.ListAccounts()); n != 0 {
		t.Errorf("accounts = %d, want 0", n)
	}

	if err := tr.DeleteAccount(acc.ID, true); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("error = %v, want ErrAccountNotFound", err)
	}
}

// ─── Listing ────────────────────────────────────────────────────────────────

func TestListAccounts_SortedByRecomputedScore(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "low", 10, 0, 0)
	mustCreate(t, tr, "high", 90, 0, 0)
	mustCreate(t, tr, "mid", 55, 0, 0)

	views := tr.ListAccounts()
	want := []string{"high", "mid", "low"}
	for i, name := range want {
		if views[i].Name != name {
			t.Errorf("views[%d] = %s, want %s", i, views[i].Name, name)
		}
	}
	if views[0].Tier != domain.TierExcellent || views[2].Tier != domain.TierNeedsImprovement {
		t.Errorf("tiers = %v / %v", views[0].Tier, views[2].Tier)
	}
}

func TestListAccounts_DerivedFields(t *testing.T) {
	tr := newTestTracker(t)
	// testNow is July 1st: both tags match today.
	mustCreate(t, tr, "main", 50, 0, 5, "07/01", "07/01")

	views := tr.ListAccounts()
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	v := views[0]
	if v.AlphaScore != 60 { // 50 + 5*2
		t.Errorf("alphaScore = %v, want 60", v.AlphaScore)
	}
	if v.TodayBonusCount != 2 {
		t.Errorf("todayBonusCount = %d, want 2", v.TodayBonusCount)
	}
	if v.ResetSource != "global" {
		t.Errorf("resetSource = %q, want global", v.ResetSource)
	}
	if v.TagSummary != "07/01(x2)" {
		t.Errorf("tagSummary = %q", v.TagSummary)
	}
}

// ─── Quick Claim ────────────────────────────────────────────────────────────

func TestClaimAirdrop(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 20, 0, 0)

	claimed, err := tr.ClaimAirdrop(acc.ID, true)
	if err != nil {
		t.Fatalf("ClaimAirdrop() error: %v", err)
	}
	if claimed.CurrentScore != 5 {
		t.Errorf("currentScore = %v, want 5", claimed.CurrentScore)
	}
	ev := claimed.ScoreHistory[len(claimed.ScoreHistory)-1]
	if ev.Action != domain.ActionClaim || ev.Change != -15 || ev.AlphaScore != 5 {
		t.Errorf("claim event = %+v", ev)
	}
}

func TestClaimAirdrop_InsufficientScore(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 10, 0, 0)

	_, err := tr.ClaimAirdrop(acc.ID, true)
	if !errors.Is(err, domain.ErrInsufficientScore) {
		t.Fatalf("error = %v, want ErrInsufficientScore", err)
	}

	// Rejection leaves score and history untouched.
	after, _ := tr.Account(acc.ID)
	if after.CurrentScore != 10 {
		t.Errorf("currentScore = %v, want 10", after.CurrentScore)
	}
	if len(after.ScoreHistory) != 1 {
		t.Errorf("history length = %d, want 1", len(after.ScoreHistory))
	}
}

func TestClaimAirdrop_ConfirmationRequired(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 20, 0, 0)

	if _, err := tr.ClaimAirdrop(acc.ID, false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("error = %v, want ErrConfirmationRequired", err)
	}
	after, _ := tr.Account(acc.ID)
	if after.CurrentScore != 20 {
		t.Errorf("currentScore mutated without confirmation: %v", after.CurrentScore)
	}
}

// ─── Confirmed Airdrop ──────────────────────────────────────────────────────

func TestConfirmAirdrop(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 100, 0, 0)

	claimed, err := tr.ConfirmAirdrop(acc.ID, "2024-01-01", 20)
	if err != nil {
		t.Fatalf("ConfirmAirdrop() error: %v", err)
	}
	if claimed.CurrentScore != 80 {
		t.Errorf("currentScore = %v, want 80", claimed.CurrentScore)
	}
	if len(claimed.RegressionDates) != 1 || claimed.RegressionDates[0] != "01/16" {
		t.Errorf("regressionDates = %v, want [01/16]", claimed.RegressionDates)
	}
	ev := claimed.ScoreHistory[len(claimed.ScoreHistory)-1]
	if ev.Action != domain.ActionAirdrop || ev.Change != -20 {
		t.Errorf("airdrop event = %+v", ev)
	}
	if !strings.Contains(ev.Description, "01/16") {
		t.Errorf("description %q does not mention the return tag", ev.Description)
	}
}

func TestConfirmAirdrop_DuplicateTagsAccumulate(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 100, 0, 0)

	if _, err := tr.ConfirmAirdrop(acc.ID, "2024-01-01", 10); err != nil {
		t.Fatal(err)
	}
	claimed, err := tr.ConfirmAirdrop(acc.ID, "2024-01-01", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(claimed.RegressionDates) != 2 {
		t.Fatalf("regressionDates = %v, want two identical tags", claimed.RegressionDates)
	}
	if claimed.RegressionDates[0] != "01/16" || claimed.RegressionDates[1] != "01/16" {
		t.Errorf("regressionDates = %v", claimed.RegressionDates)
	}
}

func TestConfirmAirdrop_Validation(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 10, 0, 0)

	if _, err := tr.ConfirmAirdrop(acc.ID, "01/16/2024", 5); !errors.Is(err, domain.ErrInvalidDate) {
		t.Errorf("bad date error = %v, want ErrInvalidDate", err)
	}
	if _, err := tr.ConfirmAirdrop(acc.ID, "2024-01-01", 0); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if _, err := tr.ConfirmAirdrop(acc.ID, "2024-01-01", 50); !errors.Is(err, domain.ErrInsufficientScore) {
		t.Errorf("oversized amount error = %v, want ErrInsufficientScore", err)
	}

	after, _ := tr.Account(acc.ID)
	if after.CurrentScore != 10 || len(after.RegressionDates) != 0 {
		t.Errorf("state mutated by rejected claims: %+v", after)
	}
}

// ─── Adjustment ─────────────────────────────────────────────────────────────

func TestAdjustScore(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 50, 0, 0)

	adjusted, err := tr.AdjustScore(acc.ID, -7.5, "penalty")
	if err != nil {
		t.Fatalf("AdjustScore() error: %v", err)
	}
	if adjusted.CurrentScore != 42.5 {
		t.Errorf("currentScore = %v, want 42.5", adjusted.CurrentScore)
	}
	ev := adjusted.ScoreHistory[len(adjusted.ScoreHistory)-1]
	if ev.Action != domain.ActionAdjustment || ev.Change != -7.5 {
		t.Errorf("adjustment event = %+v", ev)
	}
	if !strings.Contains(ev.Description, "penalty") {
		t.Errorf("description %q does not carry the reason", ev.Description)
	}
}

// ─── Reset Date Override ────────────────────────────────────────────────────

func TestSetAccountResetDate(t *testing.T) {
	tr := newTestTracker(t)
	acc := mustCreate(t, tr, "main", 1, 0, 0)

	if err := tr.SetAccountResetDate(acc.ID, "2024-07-05"); err != nil {
		t.Fatalf("SetAccountResetDate() error: %v", err)
	}
	views := tr.ListAccounts()
	if views[0].ResetSource != "account" {
		t.Errorf("resetSource = %q, want account", views[0].ResetSource)
	}
	if views[0].ResetDays != 4 { // testNow is July 1st 10:00 UTC
		t.Errorf("resetDays = %d, want 4", views[0].ResetDays)
	}

	// Malformed date leaves the prior value untouched.
	if err := tr.SetAccountResetDate(acc.ID, "not-a-date"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("error = %v, want ErrInvalidDate", err)
	}
	after, _ := tr.Account(acc.ID)
	if after.ResetDate == nil {
		t.Error("reset date cleared by rejected input")
	}

	// Empty string clears.
	if err := tr.SetAccountResetDate(acc.ID, ""); err != nil {
		t.Fatal(err)
	}
	after, _ = tr.Account(acc.ID)
	if after.ResetDate != nil {
		t.Error("reset date not cleared")
	}
}

// ─── Cycle Operations ───────────────────────────────────────────────────────

func TestResetCycle_WipesAccounts(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 1, 0, 0)

	if _, err := tr.ResetCycle(false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("unconfirmed reset error = %v, want ErrConfirmationRequired", err)
	}
	if n := len(tr.ListAccounts()); n != 1 {
		t.Fatal("accounts wiped without confirmation")
	}

	cycle, err := tr.ResetCycle(true)
	if err != nil {
		t.Fatalf("ResetCycle() error: %v", err)
	}
	if cycle != 2 {
		t.Errorf("cycle = %d, want 2", cycle)
	}
	if n := len(tr.ListAccounts()); n != 0 {
		t.Errorf("accounts = %d, want 0 after manual reset", n)
	}
	if !tr.CycleStatus().CycleStartDate.Equal(testNow) {
		t.Errorf("cycle start not moved to now")
	}
}

func TestAutoAdvance_KeepsAccounts(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 1, 0, 0)

	// Countdown above zero: nothing happens.
	advanced, err := tr.AutoAdvance()
	if err != nil {
		t.Fatal(err)
	}
	if advanced {
		t.Fatal("advanced with days remaining")
	}

	// Force the countdown to zero via the manual override.
	if err := tr.SetManualResetDays(1); err != nil {
		t.Fatal(err)
	}
	tr.mu.Lock()
	zero := 0
	tr.state.Cycle.ManualResetDays = &zero
	tr.mu.Unlock()

	advanced, err = tr.AutoAdvance()
	if err != nil {
		t.Fatal(err)
	}
	if !advanced {
		t.Fatal("did not advance at zero countdown")
	}
	status := tr.CycleStatus()
	if status.CurrentCycle != 2 {
		t.Errorf("cycle = %d, want 2", status.CurrentCycle)
	}
	if n := len(tr.ListAccounts()); n != 1 {
		t.Errorf("accounts = %d, want 1: automatic advance must not wipe", n)
	}
}

func TestSetManualResetDays(t *testing.T) {
	tr := newTestTracker(t)

	if err := tr.SetManualResetDays(9); err != nil {
		t.Fatal(err)
	}
	if got := tr.CycleStatus().DaysUntilReset; got != 9 {
		t.Errorf("daysUntilReset = %d, want 9 (override verbatim)", got)
	}

	// Zero or negative clears the override.
	if err := tr.SetManualResetDays(0); err != nil {
		t.Fatal(err)
	}
	status := tr.CycleStatus()
	if status.ManualResetDays != nil {
		t.Error("override not cleared")
	}
	if status.DaysUntilReset != domain.CycleLength {
		t.Errorf("daysUntilReset = %d, want computed %d", status.DaysUntilReset, domain.CycleLength)
	}
}

// ─── Snapshot Round Trip ────────────────────────────────────────────────────

func TestSnapshot_RoundTrip(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 100, 2, 5, "07/01")
	mustCreate(t, tr, "spare", 40, 1, 0)

	data, err := tr.Export()
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.HasPrefix(string(data), "{\n") {
		t.Error("export is not pretty-printed")
	}

	other := newTestTracker(t)
	if err := other.Import(data, true); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	got := other.ListAccounts()
	want := tr.ListAccounts()
	if len(got) != len(want) {
		t.Fatalf("accounts = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || got[i].AlphaScore != want[i].AlphaScore {
			t.Errorf("account %d = %s/%v, want %s/%v",
				i, got[i].Name, got[i].AlphaScore, want[i].Name, want[i].AlphaScore)
		}
	}
	if other.CycleStatus().CurrentCycle != tr.CycleStatus().CurrentCycle {
		t.Error("cycle counter did not round trip")
	}
}

func TestImport_MalformedRejectedUntouched(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 1, 0, 0)

	if err := tr.Import([]byte("{not json"), true); !errors.Is(err, domain.ErrMalformedSnapshot) {
		t.Fatalf("error = %v, want ErrMalformedSnapshot", err)
	}
	if n := len(tr.ListAccounts()); n != 1 {
		t.Errorf("accounts = %d, want 1: failed import must not mutate", n)
	}
}

func TestImport_DefaultsForMissingFields(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 1, 0, 0)

	if err := tr.Import([]byte(`{}`), true); err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if n := len(tr.ListAccounts()); n != 0 {
		t.Errorf("accounts = %d, want 0", n)
	}
	status := tr.CycleStatus()
	if status.CurrentCycle != 1 {
		t.Errorf("cycle = %d, want default 1", status.CurrentCycle)
	}
	if !status.CycleStartDate.Equal(testNow) {
		t.Errorf("cycle start = %v, want now", status.CycleStartDate)
	}
}

func TestImport_ConfirmationRequired(t *testing.T) {
	tr := newTestTracker(t)
	mustCreate(t, tr, "main", 1, 0, 0)

	if err := tr.Import([]byte(`{}`), false); !errors.Is(err, domain.ErrConfirmationRequired) {
		t.Fatalf("error = %v, want ErrConfirmationRequired", err)
	}
	if n := len(tr.ListAccounts()); n != 1 {
		t.Error("unconfirmed import mutated state")
	}
}
