// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/pkg/arxiv"
	"github.com/pdiddy/labmate/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search arXiv for papers",
	Long: `Search queries the arXiv API with free text and prints matching papers in
the API's relevance order.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 10, "maximum number of results to return")
	searchCmd.Flags().Int("max-retries", 0, "retries for rate-limited requests")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("bibtex", false, "output results as BibTeX entries")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	asJSON, _ := cmd.Flags().GetBool("json")
	asBibTeX, _ := cmd.Flags().GetBool("bibtex")

	cfg := types.DefaultSearchConfig()
	cfg.MaxResults = maxResults
	cfg.MaxRetries = maxRetries

	records, err := arxiv.Search(cmd.Context(), strings.Join(args, " "), cfg)
	if err != nil {
		return err
	}

	switch {
	case asJSON:
		return arxiv.FormatJSON(records, os.Stdout)
	case asBibTeX:
		arxiv.FormatBibTeX(records, os.Stdout)
		return nil
	}
	arxiv.FormatTable(records, os.Stdout)
	return nil
}
