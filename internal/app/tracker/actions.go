package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/observability"
)

// QuickClaimCost is the fixed deduction of the quick airdrop claim.
const QuickClaimCost = 15

// ─── Airdrop Flows ──────────────────────────────────────────────────────────

// ClaimAirdrop applies the quick claim: a fixed 15-point deduction against
// the recomputed score. Rejected below 15 points with nothing mutated.
// Two-phase: validation runs first so the caller can surface insufficiency
// before asking the user to confirm.
func (t *Tracker) ClaimAirdrop(id string, confirm bool) (*domain.Account, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return nil, err
	}

	now := t.now()
	score := acc.Score(now)
	if score < QuickClaimCost {
		return nil, fmt.Errorf("%w: score %v is below the %d point claim cost",
			domain.ErrInsufficientScore, score, QuickClaimCost)
	}
	if !confirm {
		return nil, domain.ErrConfirmationRequired
	}

	acc.CurrentScore -= QuickClaimCost
	acc.LastUpdated = now
	after := acc.Score(now)
	acc.ScoreHistory = append(acc.ScoreHistory, domain.ScoreEvent{
		Date:        now,
		Action:      domain.ActionClaim,
		Change:      -QuickClaimCost,
		AlphaScore:  after,
		Description: fmt.Sprintf("claimed airdrop for %d points, score %v to %v", QuickClaimCost, score, after),
	})

	if err := t.persist(); err != nil {
		return nil, err
	}
	observability.AirdropsClaimed.WithLabelValues("quick").Inc()
	out := *acc
	return &out, nil
}

// ConfirmAirdrop applies the detailed claim flow: a user-chosen amount is
// deducted from the base score, and the bonus tag fifteen days after the
// airdrop date is appended to the tag multiset even when an identical tag
// already exists, so one calendar day can carry several returns.
func (t *Tracker) ConfirmAirdrop(id, airdropDate string, amount float64) (*domain.Account, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(airdropDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDate, airdropDate)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, amount)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return nil, err
	}

	now := t.now()
	total := acc.Score(now)
	if total < amount {
		return nil, fmt.Errorf("%w: score %v is below the claim amount %v",
			domain.ErrInsufficientScore, total, amount)
	}

	tag := domain.AirdropReturnTag(date)
	acc.CurrentScore -= amount
	acc.RegressionDates = append(acc.RegressionDates, tag)
	acc.LastUpdated = now
	acc.ScoreHistory = append(acc.ScoreHistory, domain.ScoreEvent{
		Date:       now,
		Action:     domain.ActionAirdrop,
		Change:     -amount,
		AlphaScore: acc.Score(now),
		Description: fmt.Sprintf("claimed %v point airdrop on %s, return tag %s added",
			amount, date.Format("2006-01-02"), tag),
	})

	if err := t.persist(); err != nil {
		return nil, err
	}
	observability.AirdropsClaimed.WithLabelValues("confirmed").Inc()
	out := *acc
	return &out, nil
}

// ─── Custom Adjustment ──────────────────────────────────────────────────────

// AdjustScore applies an arbitrary signed delta with a free-text reason.
func (t *Tracker) AdjustScore(id string, change float64, reason string) (*domain.Account, error) {
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = domain.ActionAdjustment
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return nil, err
	}

	now := t.now()
	before := acc.Score(now)
	acc.CurrentScore += change
	acc.LastUpdated = now
	after := acc.Score(now)
	acc.ScoreHistory = append(acc.ScoreHistory, domain.ScoreEvent{
		Date:        now,
		Action:      domain.ActionAdjustment,
		Change:      change,
		AlphaScore:  after,
		Description: fmt.Sprintf("%s, score %v to %v", reason, before, after),
	})

	if err := t.persist(); err != nil {
		return nil, err
	}
	observability.Adjustments.Inc()
	out := *acc
	return &out, nil
}

// ─── Reset Date Override ────────────────────────────────────────────────────

// SetAccountResetDate sets or clears an account's own reset deadline. An
// empty string clears it; a malformed date is rejected with the prior value
// untouched.
func (t *Tracker) SetAccountResetDate(id, dateStr string) error {
	dateStr = strings.TrimSpace(dateStr)

	var reset *time.Time
	if dateStr != "" {
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("%w: %q", domain.ErrInvalidDate, dateStr)
		}
		reset = &d
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	acc, err := t.find(id)
	if err != nil {
		return err
	}
	acc.ResetDate = reset
	acc.LastUpdated = t.now()
	return t.persist()
}
