package domain

import (
	"fmt"
	"strings"
	"time"
)

// ─── Bonus Date Tags ────────────────────────────────────────────────────────
// Bonus dates are "MM/DD" tags with no year. They form a multiset: the same
// tag may appear more than once, and each occurrence counts independently.
// On the wire and in exports they travel as a single comma-joined string.

// FormatTag renders t's month and day as an MM/DD tag.
func FormatTag(t time.Time) string {
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Day())
}

// ParseTags splits a comma-joined tag string, trimming whitespace and
// dropping empty entries. Order and duplicates are preserved.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// JoinTags renders a tag multiset back to its comma-joined form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// MatchCount reports how many tags equal now's MM/DD representation.
// Year and leap-day handling are deliberately absent: matching is by
// calendar day only.
func MatchCount(tags []string, now time.Time) int {
	today := FormatTag(now)
	n := 0
	for _, tag := range tags {
		if tag == today {
			n++
		}
	}
	return n
}

// AirdropReturnDelay is how long after an airdrop its points return.
const AirdropReturnDelay = 15 * 24 * time.Hour

// AirdropReturnTag derives the bonus tag for a confirmed airdrop: the
// airdrop date plus fifteen days, as MM/DD.
func AirdropReturnTag(airdropDate time.Time) string {
	return FormatTag(airdropDate.AddDate(0, 0, 15))
}

// SummarizeTags renders a compact human-readable view of a tag multiset:
// unique tags in first-seen order with an xN suffix for repeats, truncated
// after three distinct tags.
func SummarizeTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}

	counts := make(map[string]int, len(tags))
	var order []string
	for _, tag := range tags {
		if counts[tag] == 0 {
			order = append(order, tag)
		}
		counts[tag]++
	}

	render := func(unique []string) string {
		parts := make([]string, 0, len(unique))
		for _, tag := range unique {
			if counts[tag] > 1 {
				parts = append(parts, fmt.Sprintf("%s(x%d)", tag, counts[tag]))
			} else {
				parts = append(parts, tag)
			}
		}
		return strings.Join(parts, ", ")
	}

	if len(order) <= 3 {
		return render(order)
	}
	return fmt.Sprintf("%s... %d total", render(order[:3]), len(tags))
}
