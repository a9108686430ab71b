package engine

import (
	"math"
	"regexp"
	"strings"

	"github.com/mreyes/reel-server/internal/models"
)

// Scoring weights. Rewards are added, penalties subtracted; the relative
// magnitudes are what make the greedy builder favor tight thematic runs
// over pure chronology.
const (
	sharedTagWeight    = 2.4
	continuityBase     = 3.0
	continuityDecay    = 1.35
	continuityFloor    = 0.8
	varietyBonus       = 1.2
	locationBonus      = 1.75
	chronologyBonus    = 2.4
	recencyCloseBonus  = 1.25
	recencyNearBonus   = 0.4
	focusTagWeight     = 2.9
	focusKeywordWeight = 1.6
	impactThemeWeight  = 1.2
	usagePenaltyWeight = 1.1
	backtrackPenalty   = 4.5

	// Per-keyword occurrence cap so one repeated word cannot drown the
	// rest of the theme score.
	keywordMatchCap = 3

	yearMillis = 365 * 24 * 60 * 60 * 1000
)

// Score decomposes how well a candidate follows the chain's current last
// item under one recipe. Deterministic and side-effect free: every term is
// computed independently, rewards summed, penalties subtracted.
//
// narratorStreak is the count of consecutive trailing beats already narrated
// by prev's narrator; it dampens the continuity reward for long runs and
// funds a variety bonus when a run of 2+ just broke.
func Score(prev, cand Item, r Recipe, usage map[string]int, weights map[string]float64, narratorStreak int) models.ScoreBreakdown {
	shared := sharedTags(prev.Tags, cand.Tags)
	sharedScore := float64(len(shared)) * sharedTagWeight

	var continuity float64
	if cand.Anecdote.Narrator == prev.Anecdote.Narrator {
		continuity = math.Max(continuityFloor, continuityBase-float64(narratorStreak)*continuityDecay)
	} else if narratorStreak >= 2 {
		continuity = varietyBonus
	}

	var location float64
	if prev.Anecdote.Location != "" && prev.Anecdote.Location == cand.Anecdote.Location {
		location = locationBonus
	}

	// NaN timestamps fail every comparison below, so items with unparsable
	// dates neither earn chronology rewards nor trigger the mode penalty.
	var chronology float64
	if cand.TS >= prev.TS {
		chronology = chronologyBonus
	}

	var recency float64
	gap := math.Abs(cand.TS - prev.TS)
	if gap <= yearMillis {
		recency += recencyCloseBonus
	}
	if gap <= 3*yearMillis {
		recency += recencyNearBonus
	}

	theme := themeScore(cand, r, weights)

	usagePenalty := float64(usage[cand.Anecdote.ID]) * usagePenaltyWeight

	var modePenalty float64
	if r.Mode == ModeChronological && cand.TS < prev.TS {
		modePenalty = backtrackPenalty
	}

	total := sharedScore + continuity + location + chronology + recency + theme - usagePenalty - modePenalty

	return models.ScoreBreakdown{
		Total:           total,
		SharedTagScore:  sharedScore,
		ContinuityScore: continuity,
		LocationScore:   location,
		ChronologyScore: chronology,
		RecencyScore:    recency,
		ThemeScore:      theme,
		UsagePenalty:    usagePenalty,
		ModePenalty:     modePenalty,
		NarratorStreak:  narratorStreak,
		SharedTags:      shared,
		FromID:          prev.Anecdote.ID,
		ToID:            cand.Anecdote.ID,
	}
}

// themeScore measures a single item's affinity to a recipe's thematic
// focus, independent of any previous item: weighted focus-tag overlap,
// keyword hits in the search blob, and (impact mode only) the raw impact
// score. Also used standalone for non-chronological start selection.
func themeScore(it Item, r Recipe, weights map[string]float64) float64 {
	var score float64

	if len(r.FocusTags) > 0 {
		focus := make(map[string]bool, len(r.FocusTags))
		for _, tag := range r.FocusTags {
			focus[tag] = true
		}
		counted := make(map[string]bool, len(it.Tags))
		for _, tag := range it.Tags {
			if !focus[tag] || counted[tag] {
				continue
			}
			counted[tag] = true
			score += weightFor(weights, tag) * focusTagWeight
		}
	}

	score += float64(keywordMatches(it.Blob, r.FocusKeywords)) * focusKeywordWeight

	if r.Mode == ModeImpact {
		score += ImpactScore(it) * impactThemeWeight
	}

	return score
}

// keywordMatches counts focus-keyword occurrences in the blob, capped per
// keyword. Single words match on word boundaries; multi-word phrases match
// as plain substrings.
func keywordMatches(blob string, keywords []string) int {
	var count int
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") {
			c := strings.Count(blob, kw)
			if c > keywordMatchCap {
				c = keywordMatchCap
			}
			count += c
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		count += len(re.FindAllStringIndex(blob, keywordMatchCap))
	}
	return count
}

// sharedTags returns the set intersection of two tag lists, ordered by
// first appearance in prev.
func sharedTags(prev, cand []string) []string {
	candSet := make(map[string]bool, len(cand))
	for _, tag := range cand {
		candSet[tag] = true
	}
	var shared []string
	seen := make(map[string]bool, len(prev))
	for _, tag := range prev {
		if !candSet[tag] || seen[tag] {
			continue
		}
		seen[tag] = true
		shared = append(shared, tag)
	}
	return shared
}
