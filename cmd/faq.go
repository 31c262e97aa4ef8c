package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/Deokateoer1/ksef-checklist-builder/internal/faq"
	"github.com/Deokateoer1/ksef-checklist-builder/internal/output"
)

var faqCmd = &cobra.Command{
	Use:   "faq QUERY...",
	Short: "Search the built-in KSeF knowledge base",
	Long: `Searches the offline FAQ covering deadlines, error codes, XML structure,
and the automation agent. No network access; answers come from the embedded
knowledge base.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFAQ,
}

func init() {
	faqCmd.Flags().IntP("limit", "n", 5, "maximum number of answers")
	rootCmd.AddCommand(faqCmd)
}

func runFAQ(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	results := faq.Search(query)

	limit, _ := cmd.Flags().GetInt("limit")
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if outputFormat() == output.FormatJSON {
		if results == nil {
			results = []faq.Result{}
		}
		return output.JSON(os.Stdout, results)
	}

	if len(results) == 0 {
		fmt.Fprintf(os.Stderr, "No answers found for %q. Try different keywords, e.g. \"deadline\", \"21133\", \"token\".\n", query)
		return nil
	}

	return renderFAQ(results)
}

// renderFAQ prints results as markdown, styled for the terminal when
// possible and plain otherwise.
func renderFAQ(results []faq.Result) error {
	var md strings.Builder
	for _, r := range results {
		fmt.Fprintf(&md, "## %s\n\n%s\n\n*%s*\n\n", r.Item.Question, r.Item.Answer, r.Item.Category)
	}

	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		fmt.Fprint(os.Stdout, md.String())
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80), //nolint:mnd // readable answer width
	)
	if err != nil {
		fmt.Fprint(os.Stdout, md.String())
		return nil
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		fmt.Fprint(os.Stdout, md.String())
		return nil
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}
