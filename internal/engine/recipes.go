package engine

// Style keys the voiceover templates a storyline is rendered with. It
// carries no scoring behavior.
type Style string

const (
	StyleFiftyCent Style = "50cent"
	StyleJesse     Style = "jesse"
	StyleCoogler   Style = "coogler"
	StyleHybrid    Style = "hybrid"
)

// SelectionMode controls how a chain picks its start item and which
// mode-specific scoring branches apply.
type SelectionMode string

const (
	ModeChronological SelectionMode = "chronological"
	ModeTag           SelectionMode = "tag"
	ModeImpact        SelectionMode = "impact"
	ModeCommunity     SelectionMode = "community"
)

// Recipe is the static configuration for one storyline cut: a narration
// style, a selection mode, and the thematic focus the scorer leans toward.
type Recipe struct {
	ID            string
	Title         string
	Description   string
	Style         Style
	Mode          SelectionMode
	FocusTags     []string
	FocusKeywords []string
}

// topTagCount is how many of the corpus's most frequent tags seed the
// recipes' focus-tag lists.
const topTagCount = 6

var nightlifeTags = []string{"nightlife", "club", "dj", "party", "dance", "rave"}

var originKeywords = []string{"first", "childhood", "grew up", "young", "school", "home", "started"}

var nightlifeKeywords = []string{"club", "night", "party", "dance floor", "dj", "crowd", "show"}

var communityKeywords = []string{"community", "neighborhood", "block", "together", "friends", "crew", "hometown"}

// Catalog builds the fixed, ordered list of recipes for one run, seeded
// with the corpus's most frequent tags. Order matters: usage penalties
// accumulate across recipes, so later cuts drift toward less-used material.
func Catalog(items []Item) []Recipe {
	top := TopTags(items, topTagCount)
	return []Recipe{
		{
			ID:            "origin-story",
			Title:         "Origin Story",
			Description:   "Where it all started, told in order.",
			Style:         StyleFiftyCent,
			Mode:          ModeChronological,
			FocusTags:     top,
			FocusKeywords: originKeywords,
		},
		{
			ID:            "nightlife-pulse",
			Title:         "Nightlife Pulse",
			Description:   "The clubs, the booths, the nights that ran long.",
			Style:         StyleJesse,
			Mode:          ModeTag,
			FocusTags:     unionTags(nightlifeTags, top),
			FocusKeywords: nightlifeKeywords,
		},
		{
			ID:            "breakthrough",
			Title:         "The Breakthrough",
			Description:   "The moments the needle actually moved.",
			Style:         StyleCoogler,
			Mode:          ModeImpact,
			FocusTags:     top,
			FocusKeywords: impactWords,
		},
		{
			ID:            "cinematic-cut",
			Title:         "The Cinematic Cut",
			Description:   "Big moments and the people around them, shot wide.",
			Style:         StyleHybrid,
			Mode:          ModeImpact,
			FocusKeywords: unionTags(impactWords, communityKeywords),
		},
	}
}

// FallbackRecipe is the generic chronological cut emitted when every
// catalog recipe fails to produce a usable chain.
func FallbackRecipe() Recipe {
	return Recipe{
		ID:          "the-rewind",
		Title:       "The Rewind",
		Description: "Every era in order, start to now.",
		Style:       StyleHybrid,
		Mode:        ModeChronological,
	}
}

// unionTags merges two lists preserving first-appearance order.
func unionTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, tag := range list {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
