package engine

import "strings"

// Words that mark an anecdote as narratively significant. Checked as
// substrings of the searchable blob, one point per word present.
var impactWords = []string{
	"breakthrough",
	"milestone",
	"award",
	"first",
	"debut",
	"biggest",
	"record deal",
	"signed",
	"charted",
	"radio",
	"viral",
	"famous",
	"launch",
}

// Tags that carry a flat impact bonus on top of the vocabulary hits.
var impactTags = []string{"milestone", "concert", "festival"}

const (
	impactTagBonus = 2.0
	soldOutBonus   = 2.0
	soldOutPhrase  = "sold out"
)

// ImpactScore is a heuristic measure of narrative significance: one point
// per impact word present in the blob, +2 per impact tag, +2 if the blob
// contains the literal phrase "sold out".
func ImpactScore(it Item) float64 {
	var score float64
	for _, word := range impactWords {
		if strings.Contains(it.Blob, word) {
			score++
		}
	}
	for _, tag := range impactTags {
		if containsTag(it.Tags, tag) {
			score += impactTagBonus
		}
	}
	if strings.Contains(it.Blob, soldOutPhrase) {
		score += soldOutBonus
	}
	return score
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
