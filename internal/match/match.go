// Package match scores how well a discovered catalog item matches the title
// a caller asked for.
package match

import (
	"math"
	"strings"

	"trailgrab/internal/titles"
)

// Score weights. These are tuned values carried over from production use;
// change Threshold through configuration rather than editing them.
const (
	exactTitleScore    = 200
	containsTitleScore = 150
	yearExactBonus     = 30
	yearCloseBonus     = 15
	yearNearBonus      = 5
	yearFarPenalty     = -50
	previewBonus       = 5

	// Threshold is the minimum score at which a candidate is accepted.
	Threshold = 50
)

// Score rates a candidate against a search title. Higher is better. Scores
// at or below zero mean no meaningful title similarity. Years only adjust
// the score when both are known (non-zero), and hasPreview adds a small
// bonus because an item that already exposes a preview is more likely to be
// the page we want.
func Score(candidateTitle, searchTitle string, candidateYear, searchYear int, hasPreview bool) int {
	candidate := titles.Normalize(candidateTitle)
	search := titles.Normalize(searchTitle)
	if candidate == "" || search == "" {
		return 0
	}

	score := 0
	switch {
	case candidate == search:
		score = exactTitleScore
	case contains(candidate, search) || contains(search, candidate):
		score = containsTitleScore
	default:
		pct := wordOverlap(candidate, search)
		if pct >= 0.5 {
			score = int(math.Floor(pct * 100))
		}
	}

	if candidateYear > 0 && searchYear > 0 {
		diff := candidateYear - searchYear
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score += yearExactBonus
		case diff == 1:
			score += yearCloseBonus
		case diff <= 2:
			score += yearNearBonus
		case diff > 5:
			score += yearFarPenalty
		}
	}

	if hasPreview {
		score += previewBonus
	}
	return score
}

// Accept reports whether a score meets the given acceptance threshold. A
// non-positive threshold falls back to the default.
func Accept(score, threshold int) bool {
	if threshold <= 0 {
		threshold = Threshold
	}
	return score >= threshold
}

// contains is plain substring containment over normalized text, so
// "alien" matches "aliens" and suffixed trailer titles match their base
// title.
func contains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(haystack, needle)
}

// wordOverlap returns the larger of the two directional overlap fractions
// between the word sets of a and b.
func wordOverlap(a, b string) float64 {
	aw := wordSet(a)
	bw := wordSet(b)
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}
	overlap := 0
	for w := range aw {
		if bw[w] {
			overlap++
		}
	}
	fromA := float64(overlap) / float64(len(aw))
	fromB := float64(overlap) / float64(len(bw))
	return math.Max(fromA, fromB)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range fieldsOf(s) {
		set[w] = true
	}
	return set
}

func fieldsOf(s string) []string {
	return titles.Words(s)
}
