package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mreyes/reel-server/internal/models"
)

const (
	summaryLimit  = 140
	summaryMinCut = 40
)

// renderStoryline turns a finished chain into user-facing prose. Pure
// formatting keyed by the recipe's style; no scoring happens here.
func renderStoryline(r Recipe, chain []Item, scores map[string]*models.ScoreBreakdown) models.Storyline {
	first := chain[0]
	last := chain[len(chain)-1]

	beats := make([]models.Beat, 0, len(chain))
	tagSeen := make(map[string]bool)
	yearSeen := make(map[int]bool)
	var tags []string
	var years []int

	for i, it := range chain {
		summary := summarize(it.Anecdote.Story)

		var conn *models.Connection
		var sb *models.ScoreBreakdown
		if i > 0 {
			conn = connectionBetween(chain[i-1], it)
			sb = scores[it.Anecdote.ID]
		}

		var voiceover string
		switch {
		case i == 0:
			voiceover = firstLine(r.Style, it)
		case i == len(chain)-1:
			voiceover = lastLine(r.Style, it)
		default:
			voiceover = interiorLine(r.Style, it, summary)
		}

		beats = append(beats, models.Beat{
			ID:         fmt.Sprintf("%s-%d", r.ID, i),
			Anecdote:   it.Anecdote,
			Summary:    summary,
			Voiceover:  voiceover,
			Connection: conn,
			Intensity:  intensity(it),
			Score:      sb,
		})

		for _, tag := range it.Tags {
			if !tagSeen[tag] {
				tagSeen[tag] = true
				tags = append(tags, tag)
			}
		}
		if y := it.Anecdote.Year; !yearSeen[y] {
			yearSeen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)

	return models.Storyline{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Style:       string(r.Style),
		Tone:        toneFor(r.Style),
		Opening:     openingLine(r.Style, first.Anecdote.Year, placeOr(first.Anecdote.Location)),
		Closing:     closingLine(r.Style, last.Anecdote.Year, placeOr(last.Anecdote.Location)),
		Beats:       beats,
		Tags:        tags,
		Timeframe: models.Timeframe{
			Start: first.Anecdote.Date,
			End:   last.Anecdote.Date,
			Years: years,
		},
	}
}

// summarize truncates a story body to 140 characters, trimming at the last
// word boundary past character 40 when one exists, and marks any shortened
// text with an ellipsis.
func summarize(story string) string {
	runes := []rune(story)
	if len(runes) <= summaryLimit {
		return story
	}
	cut := summaryLimit
	for i := summaryLimit - 1; i > summaryMinCut; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	return string(runes[:cut]) + "..."
}

// intensity maps an item's impact score onto the 1..5 scale shown in the UI.
func intensity(it Item) int {
	v := int(math.Round(1 + ImpactScore(it)/2))
	if v < 1 {
		v = 1
	}
	if v > 5 {
		v = 5
	}
	return v
}

// connectionBetween explains adjacency by first-matching priority: shared
// tag, then same storyteller, then same location, then plain chronology.
func connectionBetween(prev, cur Item) *models.Connection {
	if shared := sharedTags(prev.Tags, cur.Tags); len(shared) > 0 {
		return &models.Connection{Type: models.ConnectionTag, Label: "#" + shared[0]}
	}
	if prev.Anecdote.Narrator != "" && prev.Anecdote.Narrator == cur.Anecdote.Narrator {
		return &models.Connection{Type: models.ConnectionStoryteller, Label: cur.Anecdote.Narrator}
	}
	if prev.Anecdote.Location != "" && prev.Anecdote.Location == cur.Anecdote.Location {
		return &models.Connection{Type: models.ConnectionLocation, Label: cur.Anecdote.Location}
	}
	return &models.Connection{
		Type:  models.ConnectionChronology,
		Label: fmt.Sprintf("%d to %d", prev.Anecdote.Year, cur.Anecdote.Year),
	}
}

func toneFor(style Style) string {
	switch style {
	case StyleFiftyCent:
		return "gritty, unfiltered, victory lap"
	case StyleJesse:
		return "fast, neon, tongue in cheek"
	case StyleCoogler:
		return "intimate, cinematic, rising"
	default:
		return "warm, reflective, widescreen"
	}
}

func placeOr(location string) string {
	if strings.TrimSpace(location) == "" {
		return "the city"
	}
	return location
}

func tellerOr(narrator string) string {
	if strings.TrimSpace(narrator) == "" {
		return "someone who was there"
	}
	return narrator
}

func openingLine(style Style, year int, place string) string {
	switch style {
	case StyleFiftyCent:
		return fmt.Sprintf("%d, %s. Nobody was checking for us yet. They would be.", year, place)
	case StyleJesse:
		return fmt.Sprintf("Okay so — %s, %d. Trust me, you want to hear this one.", place, year)
	case StyleCoogler:
		return fmt.Sprintf("Open on %s, %d. Quiet at first. It won't stay quiet.", place, year)
	default:
		return fmt.Sprintf("This one begins in %s, back in %d.", place, year)
	}
}

func closingLine(style Style, year int, place string) string {
	switch style {
	case StyleFiftyCent:
		return fmt.Sprintf("That's how you get from nothing to %d in %s. No shortcuts.", year, place)
	case StyleJesse:
		return fmt.Sprintf("And that, friends, is how %s earned its reputation by %d.", place, year)
	case StyleCoogler:
		return fmt.Sprintf("Fade out on %s, %d. Roll credits.", place, year)
	default:
		return fmt.Sprintf("Years later it still comes back to %s, %d.", place, year)
	}
}

func firstLine(style Style, it Item) string {
	year := it.Anecdote.Year
	place := placeOr(it.Anecdote.Location)
	title := it.Anecdote.Title
	switch style {
	case StyleFiftyCent:
		return fmt.Sprintf("It starts back in %d in %s — \"%s\". Remember that name.", year, place, title)
	case StyleJesse:
		return fmt.Sprintf("First stop, %d: \"%s\". %s was never the same after.", year, title, place)
	case StyleCoogler:
		return fmt.Sprintf("The first frame is %d, %s: \"%s\".", year, place, title)
	default:
		return fmt.Sprintf("In %d, in %s, it kicks off with \"%s\".", year, place, title)
	}
}

func interiorLine(style Style, it Item, summary string) string {
	title := it.Anecdote.Title
	teller := tellerOr(it.Anecdote.Narrator)
	switch style {
	case StyleFiftyCent:
		return fmt.Sprintf("Next up: \"%s\". The way %s tells it — %s", title, teller, summary)
	case StyleJesse:
		return fmt.Sprintf("Then \"%s\" happens — %s swears it went exactly like this: %s", title, teller, summary)
	case StyleCoogler:
		return fmt.Sprintf("Cut to \"%s\". %s carries this one: %s", title, teller, summary)
	default:
		return fmt.Sprintf("From there, \"%s\" — as %s remembers it: %s", title, teller, summary)
	}
}

func lastLine(style Style, it Item) string {
	year := it.Anecdote.Year
	place := placeOr(it.Anecdote.Location)
	title := it.Anecdote.Title
	switch style {
	case StyleFiftyCent:
		return fmt.Sprintf("And by %d, out in %s, \"%s\" said everything that needed saying.", year, place, title)
	case StyleJesse:
		return fmt.Sprintf("Last call, %d, somewhere in %s: \"%s\".", year, place, title)
	case StyleCoogler:
		return fmt.Sprintf("The final shot holds on %s, %d — \"%s\".", place, year, title)
	default:
		return fmt.Sprintf("It lands in %d, %s, on \"%s\".", year, place, title)
	}
}
