package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mreyes/reel-server/internal/engine"
	"github.com/mreyes/reel-server/internal/source"
)

var topCount int

// tagsCmd represents the tags command
var tagsCmd = &cobra.Command{
	Use:   "tags <seed-file>",
	Short: "Show corpus tag weights",
	Long: `Tags loads a seed file and prints every tag's rarity weight, the same
weights the assembler uses for shared-tag and theme scoring. Rare tags
weigh more than ubiquitous ones.

Example:
  reelctl tags anecdotes.yaml
  reelctl tags anecdotes.yaml --top 10`,
	Args: cobra.ExactArgs(1),
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)

	tagsCmd.Flags().IntVar(&topCount, "top", 6, "how many top tags to highlight")
}

func runTags(cmd *cobra.Command, args []string) error {
	anecdotes, err := source.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading seed file: %w", err)
	}

	items := engine.Normalize(anecdotes)
	weights := engine.TagWeights(items)
	if len(weights) == 0 {
		fmt.Println("No tags in corpus")
		return nil
	}

	tags := make([]string, 0, len(weights))
	for tag := range weights {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if weights[tags[i]] != weights[tags[j]] {
			return weights[tags[i]] > weights[tags[j]]
		}
		return tags[i] < tags[j]
	})

	fmt.Printf("Tag weights across %d anecdotes:\n\n", len(items))
	for _, tag := range tags {
		fmt.Printf("  %-20s %.3f\n", tag, weights[tag])
	}

	top := engine.TopTags(items, topCount)
	fmt.Printf("\nTop tags by frequency: %s\n", strings.Join(top, ", "))
	return nil
}
