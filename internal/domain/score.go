package domain

import (
	"math"
	"time"
)

// ─── Scoring Engine ─────────────────────────────────────────────────────────

// ComputeScore derives an account's effective score at the given instant.
//
//	score = currentScore + dailyScore * daysPassed + regressionScore * (tags matching today)
//
// daysPassed is the number of whole days between createdAt and now, clamped
// to zero when createdAt lies in the future. Tag matching compares the MM/DD
// form of now's month and day only; each matching occurrence in the tag
// multiset contributes regressionScore once. The result is rounded to two
// decimals.
//
// Pure function of its inputs. Callers must re-invoke on every read; the
// result goes stale as now advances.
func ComputeScore(currentScore, dailyScore, regressionScore float64, tags []string, createdAt, now time.Time) float64 {
	daysPassed := math.Floor(now.Sub(createdAt).Hours() / 24)
	if daysPassed < 0 {
		daysPassed = 0
	}

	total := currentScore + dailyScore*daysPassed

	if regressionScore > 0 {
		total += regressionScore * float64(MatchCount(tags, now))
	}

	return Round2(total)
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ─── Score Tiers ────────────────────────────────────────────────────────────

// Tier classifies an effective score.
type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierFair             Tier = "fair"
	TierNeedsImprovement Tier = "needs improvement"
)

// ScoreTier maps a score to its tier. Total over all reals: the bands are
// [80, inf), [60, 80), [40, 60), (-inf, 40).
func ScoreTier(score float64) Tier {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	case score >= 40:
		return TierFair
	default:
		return TierNeedsImprovement
	}
}

// ─── Fund Score ─────────────────────────────────────────────────────────────

// FundScore maps a held fund amount to its daily point contribution.
func FundScore(amount float64) int {
	switch {
	case amount >= 10000:
		return 3
	case amount >= 1000:
		return 2
	default:
		return 0
	}
}
