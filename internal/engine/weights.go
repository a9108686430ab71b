package engine

import (
	"math"
	"sort"
)

// TagWeights computes an inverse-document-frequency style weight for every
// tag in the corpus: weight = ln((N+1)/(df+1)) + 1, rounded to 3 decimals,
// where df is the number of items carrying the tag. Ubiquitous tags settle
// near 1.0, rare tags score strictly higher. The table is built once per run
// and read-only afterward.
func TagWeights(items []Item) map[string]float64 {
	df := make(map[string]int)
	for _, it := range items {
		seen := make(map[string]bool, len(it.Tags))
		for _, tag := range it.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			df[tag]++
		}
	}

	n := float64(len(items))
	weights := make(map[string]float64, len(df))
	for tag, count := range df {
		weights[tag] = round3(math.Log((n+1)/(float64(count)+1)) + 1)
	}
	return weights
}

// weightFor looks up a tag's weight. Tags never seen in the corpus count as
// 1 by convention.
func weightFor(weights map[string]float64, tag string) float64 {
	if w, ok := weights[tag]; ok {
		return w
	}
	return 1
}

// TopTags returns the corpus's n most frequent tags, most frequent first.
// Frequency is document frequency (items carrying the tag, duplicates within
// one item ignored). Ties keep first-seen order, so the result is stable for
// a stable input ordering.
func TopTags(items []Item, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		seen := make(map[string]bool, len(it.Tags))
		for _, tag := range it.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	return order
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
