package synopsis

import (
	"fmt"

	"github.com/mreyes/reel-server/internal/models"
)

// BuildPrompt renders one storyline as a grounded prompt. The rules pin the
// model to the beats so it cannot invent people, places, or events.
func BuildPrompt(s models.Storyline) string {
	prompt := fmt.Sprintf(`You are writing the synopsis for one episode of a highlight reel assembled from a musician's own anecdotes.

RULES:
1. Mention only people, places, and years that appear in the beats below.
2. Do not invent events, quotes, or outcomes.
3. Match the tone: %s.
4. Reply with the synopsis only, no preamble.

Episode: %s
Pitch: %s
Years covered: %s to %s

Beats:
`, s.Tone, s.Title, s.Description, dateOr(s.Timeframe.Start), dateOr(s.Timeframe.End))

	for _, b := range s.Beats {
		prompt += fmt.Sprintf("- [%d] %s: %s\n", b.Anecdote.Year, b.Anecdote.Title, b.Summary)
	}

	prompt += "\nWrite 2-3 sentences that make someone want to watch this episode."

	return prompt
}

func dateOr(date string) string {
	if date == "" {
		return "unknown"
	}
	return date
}
