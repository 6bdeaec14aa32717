// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/pkg/summarize"
	"github.com/pdiddy/labmate/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [text-file]",
	Short: "Summarize a text with an LLM",
	Long: `Summarize sends a text file (or stdin) to a hosted LLM and prints the
summary with key points. The provider must be selected explicitly with
--provider; --batch compares several models side by side.

Examples:
  labmate summarize --provider openai paper.md
  labmate summarize --provider anthropic --model claude-sonnet-4-5-20250929 paper.md
  cat paper.md | labmate summarize --provider gemini
  labmate summarize --batch openai/gpt-4o,gemini paper.md`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("provider", "", "LLM provider: openai, anthropic, or gemini")
	summarizeCmd.Flags().String("model", "", "model identifier (default: provider's default model)")
	summarizeCmd.Flags().Int("max-tokens", 0, "completion token cap (0 uses the provider default)")
	summarizeCmd.Flags().Float64("temperature", 0, "sampling temperature")
	summarizeCmd.Flags().String("language", "", `summary language ("auto" detects the input's language)`)
	summarizeCmd.Flags().Int("max-retries", 0, "retries for rate-limited requests")
	summarizeCmd.Flags().String("batch", "", "comma-separated provider/model specs to compare")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	language, _ := cmd.Flags().GetString("language")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	batch, _ := cmd.Flags().GetString("batch")

	text, err := readInput(args)
	if err != nil {
		return err
	}

	cfg := types.DefaultSummaryConfig()
	cfg.Provider = types.Provider(strings.ToLower(provider))
	cfg.Model = model
	cfg.MaxTokens = maxTokens
	cfg.Temperature = temperature
	cfg.Language = language
	cfg.MaxRetries = maxRetries

	if batch != "" {
		return runSummarizeBatch(cmd, text, batch, cfg)
	}

	client, err := summarize.NewClient(cfg)
	if err != nil {
		return err
	}
	sum, err := summarize.Summarize(cmd.Context(), client, text, cfg)
	if err != nil {
		return err
	}
	printSummary(sum)
	return nil
}

func runSummarizeBatch(cmd *cobra.Command, text, batch string, cfg types.SummaryConfig) error {
	var specs []summarize.BatchSpec
	for _, raw := range strings.Split(batch, ",") {
		spec, err := summarize.ParseSpec(raw)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	results := summarize.SummarizeBatch(cmd.Context(), text, specs, cfg)
	failures := 0
	for _, r := range results {
		fmt.Printf("=== %s ===\n", r.Spec)
		if r.Err != nil {
			fmt.Printf("failed: %v\n\n", r.Err)
			failures++
			continue
		}
		printSummary(r.Summary)
		fmt.Println()
	}
	if failures > 0 {
		return fmt.Errorf("%d model(s) failed", failures)
	}
	return nil
}

// readInput reads the text from the file argument or stdin.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("provide a text file or pipe text on stdin")
	}
	return string(data), nil
}

func printSummary(sum types.Summary) {
	fmt.Printf("[%s/%s]\n\n%s\n", sum.Provider, sum.Model, sum.Text)
	if len(sum.KeyPoints) > 0 {
		fmt.Println("\nKey points:")
		for _, p := range sum.KeyPoints {
			fmt.Printf("  - %s\n", p)
		}
	}
}
