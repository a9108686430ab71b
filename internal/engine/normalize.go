package engine

import (
	"math"
	"strings"
	"time"

	"github.com/mreyes/reel-server/internal/models"
)

// Item is a scoring-ready view of an Anecdote: a numeric timestamp, one
// lower-cased searchable blob, and a lower-cased tag list. Items are derived
// once per run and never mutated afterward.
type Item struct {
	Anecdote models.Anecdote
	TS       float64 // epoch millis; NaN for unparsable dates
	Blob     string
	Tags     []string
}

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Normalize converts anecdotes into Items, preserving order and length.
// An unparsable date becomes a NaN timestamp: NaN compares false against
// everything, so such items simply never win or lose a chronology check.
func Normalize(anecdotes []models.Anecdote) []Item {
	items := make([]Item, 0, len(anecdotes))
	for _, a := range anecdotes {
		ts := parseTimestamp(a.Date)
		if a.Year == 0 {
			a.Year = models.YearFromDate(a.Date)
		}

		tags := make([]string, 0, len(a.Tags))
		for _, tag := range a.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				tags = append(tags, tag)
			}
		}

		items = append(items, Item{
			Anecdote: a,
			TS:       ts,
			Blob:     buildBlob(a, tags),
			Tags:     tags,
		})
	}
	return items
}

func parseTimestamp(date string) float64 {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return float64(t.UnixMilli())
		}
	}
	return math.NaN()
}

// buildBlob concatenates every searchable field into one lower-cased string.
// Keyword and impact matching run against this blob only.
func buildBlob(a models.Anecdote, tags []string) string {
	parts := []string{
		a.Title,
		a.Story,
		a.Notes,
		a.Location,
		a.Narrator,
		strings.Join(tags, " "),
	}
	return strings.ToLower(strings.Join(parts, " "))
}
