// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/pkg/summarize"
	"github.com/pdiddy/labmate/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>...",
	Short: "Ask a question about one or more PDFs",
	Long: `Ask uploads PDFs through the Gemini Files API and answers a question
grounded in the documents. This command always uses Gemini; the other
providers have no comparable file grounding.

Example:
  labmate ask --pdf papers/raw/2301.07041.pdf "what is the main result?"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringArray("pdf", nil, "PDF file to ground the answer in (repeatable)")
	askCmd.Flags().String("model", "", "Gemini model identifier")
	askCmd.Flags().Int("max-tokens", 0, "completion token cap")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a question")
	}
	pdfs, _ := cmd.Flags().GetStringArray("pdf")
	if len(pdfs) == 0 {
		return fmt.Errorf("provide at least one --pdf")
	}
	model, _ := cmd.Flags().GetString("model")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")

	cfg := types.DefaultSummaryConfig()
	cfg.Provider = types.ProviderGemini
	cfg.Model = model
	cfg.MaxTokens = maxTokens

	client, err := summarize.NewGeminiClient(cfg)
	if err != nil {
		return err
	}

	answer, err := client.AskPDF(cmd.Context(), strings.Join(args, " "), pdfs, cfg)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
