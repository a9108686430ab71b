package engine

import (
	"strings"

	"github.com/mreyes/reel-server/internal/models"
)

const (
	minStorylineBeats = 3
	fallbackMaxBeats  = 6
)

// Assemble runs the full pipeline over a corpus of anecdotes: normalize,
// weigh tags, then build one storyline per catalog recipe in order. A single
// usage counter is shared across recipes so later cuts are nudged toward
// material earlier cuts did not use. Chains shorter than 3 beats are
// discarded and duplicate chains (same items, same order) are emitted only
// once. If nothing survives, one generic chronological cut is emitted
// instead so a non-empty corpus always yields at least one storyline.
//
// The returned slice is never nil; an empty corpus produces an empty slice.
// Identical input in identical order always produces identical output.
func Assemble(anecdotes []models.Anecdote) []models.Storyline {
	storylines := []models.Storyline{}
	if len(anecdotes) == 0 {
		return storylines
	}

	items := Normalize(anecdotes)
	weights := TagWeights(items)
	usage := make(map[string]int)
	seen := make(map[string]bool)
	target := targetLength(len(items))

	for _, r := range Catalog(items) {
		chain, scores := buildChain(items, r, weights, usage, target)
		if len(chain) < minStorylineBeats {
			continue
		}
		sig := chainSignature(chain)
		if seen[sig] {
			continue
		}
		seen[sig] = true

		storylines = append(storylines, renderStoryline(r, chain, scores))
		for _, it := range chain {
			usage[it.Anecdote.ID]++
		}
	}

	if len(storylines) == 0 {
		r := FallbackRecipe()
		fallbackTarget := len(items)
		if fallbackTarget > fallbackMaxBeats {
			fallbackTarget = fallbackMaxBeats
		}
		if chain, scores := buildChain(items, r, weights, usage, fallbackTarget); len(chain) > 0 {
			storylines = append(storylines, renderStoryline(r, chain, scores))
		}
	}

	return storylines
}

// chainSignature identifies a chain by its ordered item ids.
func chainSignature(chain []Item) string {
	ids := make([]string, 0, len(chain))
	for _, it := range chain {
		ids = append(ids, it.Anecdote.ID)
	}
	return strings.Join(ids, "|")
}
