package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mreyes/reel-server/internal/db"
	"github.com/mreyes/reel-server/internal/models"
)

// seedEntry mirrors models.Anecdote with YAML field names so seed files can
// be written by hand. JSON seed files use the same keys.
type seedEntry struct {
	ID       string      `yaml:"id" json:"id"`
	Date     string      `yaml:"date" json:"date"`
	Year     int         `yaml:"year" json:"year"`
	Title    string      `yaml:"title" json:"title"`
	Story    string      `yaml:"story" json:"story"`
	Notes    string      `yaml:"notes" json:"notes"`
	Narrator string      `yaml:"narrator" json:"narrator"`
	Location string      `yaml:"location" json:"location"`
	Tags     []string    `yaml:"tags" json:"tags"`
	Media    []seedMedia `yaml:"media" json:"media"`
}

type seedMedia struct {
	Kind    string `yaml:"kind" json:"kind"`
	URL     string `yaml:"url" json:"url"`
	Caption string `yaml:"caption" json:"caption"`
}

type seedFile struct {
	Anecdotes []seedEntry `yaml:"anecdotes" json:"anecdotes"`
}

// Load reads a seed file and returns sanitized anecdotes ready for storage.
// Files ending in .json are parsed as JSON; everything else as YAML.
// Entries without an id get one derived from the date and title.
func Load(path string) ([]models.Anecdote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var file seedFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing seed json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing seed yaml: %w", err)
		}
	}

	anecdotes := make([]models.Anecdote, 0, len(file.Anecdotes))
	for i, entry := range file.Anecdotes {
		a := entry.toAnecdote()
		models.SanitizeAnecdote(&a)
		if a.Title == "" && a.Story == "" {
			return nil, fmt.Errorf("seed entry %d: missing title and story", i)
		}
		if a.ID == "" {
			a.ID = entryID(a, i)
		}
		anecdotes = append(anecdotes, a)
	}
	return anecdotes, nil
}

// SeedDatabase loads the seed file and inserts any anecdotes the database
// does not already have. Re-running with the same file is a no-op; returns
// the number of rows actually inserted.
func SeedDatabase(database *db.DB, path string) (int, error) {
	anecdotes, err := Load(path)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, a := range anecdotes {
		existing, err := database.GetAnecdote(a.ID)
		if err != nil {
			return inserted, fmt.Errorf("checking %s: %w", a.ID, err)
		}
		if existing != nil {
			continue
		}
		if err := database.SaveAnecdote(a); err != nil {
			return inserted, fmt.Errorf("inserting %s: %w", a.ID, err)
		}
		inserted++
	}
	return inserted, nil
}

func (e seedEntry) toAnecdote() models.Anecdote {
	a := models.Anecdote{
		ID:       e.ID,
		Date:     e.Date,
		Year:     e.Year,
		Title:    e.Title,
		Story:    e.Story,
		Notes:    e.Notes,
		Narrator: e.Narrator,
		Location: e.Location,
		Tags:     e.Tags,
	}
	for _, m := range e.Media {
		a.Media = append(a.Media, models.MediaRef{Kind: m.Kind, URL: m.URL, Caption: m.Caption})
	}
	return a
}

// entryID builds a stable id like "2004-09-03-mixtape-nights" so reseeding
// the same file never duplicates rows.
func entryID(a models.Anecdote, index int) string {
	slug := slugify(a.Title)
	if a.Date != "" {
		return fmt.Sprintf("%s-%s", a.Date, slug)
	}
	return fmt.Sprintf("%s-%d", slug, index)
}

// slugify converts a title to a URL-friendly slug
func slugify(s string) string {
	// Convert to lowercase
	s = strings.ToLower(s)

	// Replace spaces and underscores with hyphens
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")

	// Remove non-alphanumeric characters except hyphens
	reg := regexp.MustCompile(`[^a-z0-9-]`)
	s = reg.ReplaceAllString(s, "")

	// Replace multiple hyphens with single hyphen
	reg = regexp.MustCompile(`-+`)
	s = reg.ReplaceAllString(s, "-")

	// Trim hyphens from start and end
	s = strings.Trim(s, "-")

	// Limit length
	if len(s) > 50 {
		s = s[:50]
		// Don't end with a hyphen
		s = strings.TrimRight(s, "-")
	}

	// Default if empty
	if s == "" {
		s = "anecdote"
	}

	return s
}
