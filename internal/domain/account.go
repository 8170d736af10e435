// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture: it depends on nothing.
package domain

import "time"

// ─── Account Types ──────────────────────────────────────────────────────────

// Account is one tracked Alpha program account. The effective score is never
// stored; it is derived from the base fields via ComputeScore on every read.
type Account struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	CurrentScore    float64      `json:"currentScore"`
	DailyScore      float64      `json:"dailyScore"`
	RegressionScore float64      `json:"regressionScore"`
	RegressionDates []string     `json:"regressionDates"` // MM/DD tags, duplicates allowed
	ResetDate       *time.Time   `json:"resetDate,omitempty"`
	ScoreHistory    []ScoreEvent `json:"scoreHistory"`
	CreatedAt       time.Time    `json:"createdAt"`
	LastUpdated     time.Time    `json:"lastUpdated"`
}

// Score returns the account's effective score at the given instant.
func (a *Account) Score(now time.Time) float64 {
	return ComputeScore(a.CurrentScore, a.DailyScore, a.RegressionScore, a.RegressionDates, a.CreatedAt, now)
}

// TodayBonusCount reports how many bonus tags match now's calendar day.
func (a *Account) TodayBonusCount(now time.Time) int {
	return MatchCount(a.RegressionDates, now)
}

// ─── Score History ──────────────────────────────────────────────────────────

// Event action labels. One ScoreEvent is appended per score-changing
// mutation; events are immutable and the slice is oldest-first.
const (
	ActionCreated    = "account created"
	ActionManualEdit = "manual edit"
	ActionClaim      = "airdrop claimed"
	ActionAirdrop    = "airdrop confirmed"
	ActionAdjustment = "custom adjustment"
)

// ScoreEvent is a single entry in an account's score history.
type ScoreEvent struct {
	Date        time.Time `json:"date"`
	Action      string    `json:"action"`
	Change      float64   `json:"change"`
	AlphaScore  float64   `json:"alphaScore"` // effective score after the change
	Description string    `json:"description"`
}
