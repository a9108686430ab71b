package models

import (
	"strings"
	"time"
)

// Anecdote is one dated personal story record, the unit of input for the
// storyline engine. Tags are stored lower-cased; Year is derived from Date.
type Anecdote struct {
	ID       string     `json:"id"`
	Date     string     `json:"date"` // ISO date, e.g. "2008-06-21"
	Year     int        `json:"year"`
	Title    string     `json:"title"`
	Story    string     `json:"story"`
	Notes    string     `json:"notes,omitempty"`
	Narrator string     `json:"narrator"`
	Location string     `json:"location,omitempty"`
	Tags     []string   `json:"tags"`
	Media    []MediaRef `json:"media,omitempty"`
}

// MediaRef is an attached photo/audio/video reference. Opaque to the engine.
type MediaRef struct {
	Kind    string `json:"kind"` // "photo", "audio", "video"
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Connection explains why two consecutive beats sit next to each other.
type Connection struct {
	Type  string `json:"type"` // "tag", "storyteller", "location", "chronology"
	Label string `json:"label"`
}

// Connection type constants
const (
	ConnectionTag         = "tag"
	ConnectionStoryteller = "storyteller"
	ConnectionLocation    = "location"
	ConnectionChronology  = "chronology"
)

// ScoreBreakdown decomposes one candidate-selection decision. It is recorded
// when a beat is accepted into a chain and never recomputed afterward.
type ScoreBreakdown struct {
	Total           float64  `json:"total"`
	SharedTagScore  float64  `json:"shared_tag_score"`
	ContinuityScore float64  `json:"continuity_score"`
	LocationScore   float64  `json:"location_score"`
	ChronologyScore float64  `json:"chronology_score"`
	RecencyScore    float64  `json:"recency_score"`
	ThemeScore      float64  `json:"theme_score"`
	UsagePenalty    float64  `json:"usage_penalty"`
	ModePenalty     float64  `json:"mode_penalty"`
	NarratorStreak  int      `json:"narrator_streak"`
	SharedTags      []string `json:"shared_tags"`
	FromID          string   `json:"from_id"`
	ToID            string   `json:"to_id"`
}

// Beat is one anecdote's role within a storyline. The first beat of a
// storyline has a nil Connection and no score breakdown.
type Beat struct {
	ID         string          `json:"id"` // "<storyline id>-<position>"
	Anecdote   Anecdote        `json:"anecdote"`
	Summary    string          `json:"summary"`
	Voiceover  string          `json:"voiceover"`
	Connection *Connection     `json:"connection"`
	Intensity  int             `json:"intensity"` // 1..5
	Score      *ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// Timeframe spans a storyline's beats in chain order. Start and End are the
// first and last beat's raw date strings; Years is sorted ascending.
type Timeframe struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Years []int  `json:"years"`
}

// Storyline is one assembled narrative cut.
type Storyline struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Style       string    `json:"style"`
	Tone        string    `json:"tone"`
	Opening     string    `json:"opening"`
	Closing     string    `json:"closing"`
	Beats       []Beat    `json:"beats"`
	Tags        []string  `json:"tags"`
	Timeframe   Timeframe `json:"timeframe"`
}

// Build is one persisted assembly run over the full corpus.
type Build struct {
	BuildID    string      `json:"build_id"`
	Trigger    string      `json:"trigger"`
	ItemCount  int         `json:"item_count"`
	Storylines []Storyline `json:"storylines"`
	CreatedAt  string      `json:"created_at"`
}

// Build trigger constants
const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
	TriggerStartup   = "startup"
	TriggerOnDemand  = "on-demand"
)

// AnecdoteResponse is returned after creating or updating an anecdote
type AnecdoteResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	UIMessage string `json:"ui_message,omitempty"`
}

// AnecdotesResponse is returned by the anecdote list endpoint
type AnecdotesResponse struct {
	Anecdotes []Anecdote `json:"anecdotes"`
	Count     int        `json:"count"`
}

// StorylinesResponse is returned by the storyline endpoints
type StorylinesResponse struct {
	BuildID    string      `json:"build_id"`
	Trigger    string      `json:"trigger"`
	ItemCount  int         `json:"item_count"`
	CreatedAt  string      `json:"created_at"`
	Storylines []Storyline `json:"storylines"`
}

// SynopsisResponse is returned by the synopsis endpoint
type SynopsisResponse struct {
	StorylineID string `json:"storyline_id"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	Text        string `json:"text"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Anecdotes int    `json:"anecdotes"`
	LastBuild string `json:"last_build,omitempty"`
	Synopsis  string `json:"synopsis"`
	Version   string `json:"version"`
}

// Status constants
const (
	StatusStored   = "stored"
	StatusUpdated  = "updated"
	StatusDeleted  = "deleted"
	StatusNotFound = "not_found"
)

// SanitizeAnecdote normalizes a record in place: trims free-text fields,
// lower-cases and dedupes tags, and derives Year from Date when unset.
// The engine tolerates unsanitized input; this keeps stored records tidy.
func SanitizeAnecdote(a *Anecdote) {
	a.ID = strings.TrimSpace(a.ID)
	a.Date = strings.TrimSpace(a.Date)
	a.Title = strings.TrimSpace(a.Title)
	a.Story = strings.TrimSpace(a.Story)
	a.Notes = strings.TrimSpace(a.Notes)
	a.Narrator = strings.TrimSpace(a.Narrator)
	a.Location = strings.TrimSpace(a.Location)

	seen := make(map[string]bool, len(a.Tags))
	tags := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	a.Tags = tags

	if a.Year == 0 {
		a.Year = YearFromDate(a.Date)
	}
}

// YearFromDate extracts the calendar year from an ISO date string.
// Returns 0 when the date does not start with a parsable YYYY-MM-DD.
func YearFromDate(date string) int {
	if len(date) < 10 {
		return 0
	}
	t, err := time.Parse("2006-01-02", date[:10])
	if err != nil {
		return 0
	}
	return t.Year()
}
