package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mreyes/reel-server/internal/engine"
	"github.com/mreyes/reel-server/internal/source"
)

// recipesCmd represents the recipes command
var recipesCmd = &cobra.Command{
	Use:   "recipes <seed-file>",
	Short: "Show the storyline recipes a corpus would run",
	Long: `Recipes prints the catalog of storyline cuts along with the focus tags
each one would use for the given corpus. The lists depend on the corpus:
every recipe folds its most frequent tags into its own focus.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipes,
}

func init() {
	rootCmd.AddCommand(recipesCmd)
}

func runRecipes(cmd *cobra.Command, args []string) error {
	anecdotes, err := source.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading seed file: %w", err)
	}

	items := engine.Normalize(anecdotes)
	for i, r := range engine.Catalog(items) {
		if i > 0 {
			fmt.Println()
		}
		printRecipe(r)
	}

	fmt.Println()
	fmt.Println("Fallback when no recipe produces a chain:")
	printRecipe(engine.FallbackRecipe())
	return nil
}

func printRecipe(r engine.Recipe) {
	fmt.Printf("%s - %q\n", r.ID, r.Title)
	fmt.Printf("  %s\n", r.Description)
	fmt.Printf("  style=%s mode=%s\n", r.Style, r.Mode)
	if len(r.FocusTags) > 0 {
		fmt.Printf("  focus tags: %s\n", strings.Join(r.FocusTags, ", "))
	}
	if len(r.FocusKeywords) > 0 {
		fmt.Printf("  focus keywords: %s\n", strings.Join(r.FocusKeywords, ", "))
	}
}
