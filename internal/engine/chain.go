package engine

import (
	"math"

	"github.com/mreyes/reel-server/internal/models"
)

const (
	targetRatio = 0.45
	targetMin   = 4
	targetMax   = 8

	// Weights for standalone start selection in non-chronological modes.
	startImpactWeight = 0.5
	startUsageWeight  = 1.4
)

// targetLength is how many beats a chain aims for given the corpus size.
func targetLength(itemCount int) int {
	t := int(math.Round(float64(itemCount) * targetRatio))
	if t < targetMin {
		t = targetMin
	}
	if t > targetMax {
		t = targetMax
	}
	return t
}

// buildChain greedily grows one ordered chain for a recipe: pick a start,
// then repeatedly append the highest-scoring unused item. When nothing
// scores non-negatively it drifts forward chronologically instead, and
// stops early once even that yields nothing. Returns the chain plus the
// accepted score breakdown per non-start item id.
func buildChain(items []Item, r Recipe, weights map[string]float64, usage map[string]int, target int) ([]Item, map[string]*models.ScoreBreakdown) {
	scores := make(map[string]*models.ScoreBreakdown)
	if len(items) == 0 || target <= 0 {
		return nil, scores
	}

	used := make([]bool, len(items))
	start := pickStart(items, used, r, weights, usage)
	if start < 0 {
		return nil, scores
	}
	chain := []Item{items[start]}
	used[start] = true

	for len(chain) < target {
		last := chain[len(chain)-1]
		streak := narratorStreak(chain)

		best := -1
		var bestScore models.ScoreBreakdown
		for i, it := range items {
			if used[i] {
				continue
			}
			s := Score(last, it, r, usage, weights, streak)
			if best == -1 || s.Total > bestScore.Total {
				best, bestScore = i, s
			}
		}

		if best == -1 || bestScore.Total < 0 {
			best = chronoFallback(items, used, last.TS)
			if best == -1 {
				break
			}
			bestScore = Score(last, items[best], r, usage, weights, streak)
		}

		sb := bestScore
		scores[items[best].Anecdote.ID] = &sb
		chain = append(chain, items[best])
		used[best] = true
	}

	return chain, scores
}

// pickStart selects the chain's first item. Chronological mode starts from
// the earliest timestamp; every other mode starts from the item with the
// strongest standalone affinity to the recipe, discounted by prior usage.
func pickStart(items []Item, used []bool, r Recipe, weights map[string]float64, usage map[string]int) int {
	if r.Mode == ModeChronological {
		best := -1
		for i, it := range items {
			if used[i] {
				continue
			}
			if best == -1 || it.TS < items[best].TS {
				best = i
			}
		}
		return best
	}

	best := -1
	bestScore := math.Inf(-1)
	for i, it := range items {
		if used[i] {
			continue
		}
		s := themeScore(it, r, weights) + ImpactScore(it)*startImpactWeight - float64(usage[it.Anecdote.ID])*startUsageWeight
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// chronoFallback picks the earliest unused item at or after the given
// timestamp, falling back to the earliest unused item outright. Returns -1
// when everything is used.
func chronoFallback(items []Item, used []bool, after float64) int {
	best := -1
	for i, it := range items {
		if used[i] || !(it.TS >= after) {
			continue
		}
		if best == -1 || it.TS < items[best].TS {
			best = i
		}
	}
	if best != -1 {
		return best
	}
	for i := range items {
		if used[i] {
			continue
		}
		if best == -1 || items[i].TS < items[best].TS {
			best = i
		}
	}
	return best
}

// narratorStreak counts the consecutive trailing beats that share the last
// beat's narrator. A single-beat chain has streak 0.
func narratorStreak(chain []Item) int {
	streak := 0
	for i := len(chain) - 1; i > 0; i-- {
		if chain[i].Anecdote.Narrator != chain[i-1].Anecdote.Narrator {
			break
		}
		streak++
	}
	return streak
}
