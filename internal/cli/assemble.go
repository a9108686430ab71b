package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mreyes/reel-server/internal/engine"
	"github.com/mreyes/reel-server/internal/models"
	"github.com/mreyes/reel-server/internal/source"
)

var outJSON string

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble <seed-file>",
	Short: "Assemble storylines from a seed file",
	Long: `Assemble loads anecdotes from a YAML or JSON seed file and builds the
full set of storyline cuts, exactly as a server rebuild would.

Example:
  reelctl assemble anecdotes.yaml
  reelctl assemble anecdotes.yaml --json storylines.json
  reelctl assemble anecdotes.yaml -v`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func init() {
	rootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().StringVar(&outJSON, "json", "", "write full storylines JSON to this path")
}

func runAssemble(cmd *cobra.Command, args []string) error {
	anecdotes, err := source.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading seed file: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d anecdotes from %s\n\n", len(anecdotes), args[0])
	}

	storylines := engine.Assemble(anecdotes)

	if outJSON != "" {
		data, err := json.MarshalIndent(storylines, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding storylines: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", outJSON, err)
		}
		fmt.Printf("Wrote %d storylines to %s\n", len(storylines), outJSON)
		return nil
	}

	for i, s := range storylines {
		if i > 0 {
			fmt.Println()
		}
		printStoryline(s)
	}
	fmt.Printf("\n%d storylines from %d anecdotes\n", len(storylines), len(anecdotes))
	return nil
}

func printStoryline(s models.Storyline) {
	fmt.Printf("%s - %q (%s)\n", s.ID, s.Title, s.Style)
	fmt.Printf("  %s\n", s.Description)
	if len(s.Timeframe.Years) > 0 {
		fmt.Printf("  %d beats, %s to %s\n", len(s.Beats), s.Timeframe.Start, s.Timeframe.End)
	} else {
		fmt.Printf("  %d beats\n", len(s.Beats))
	}

	for i, b := range s.Beats {
		year := "----"
		if b.Anecdote.Year > 0 {
			year = fmt.Sprintf("%d", b.Anecdote.Year)
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, year, b.Anecdote.Title)

		if verbose {
			if b.Connection != nil {
				fmt.Printf("     via %s: %s", b.Connection.Type, b.Connection.Label)
				if b.Score != nil {
					fmt.Printf(" (score %.2f)", b.Score.Total)
				}
				fmt.Println()
			}
			fmt.Printf("     %s\n", b.Voiceover)
		}
	}
}
