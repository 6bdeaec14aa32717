// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/pkg/summarize"
	"github.com/pdiddy/labmate/pkg/types"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models a provider currently serves",
	RunE:  runModels,
}

func init() {
	modelsCmd.Flags().String("provider", "", "LLM provider: openai, anthropic, or gemini")

	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	provider, _ := cmd.Flags().GetString("provider")

	cfg := types.DefaultSummaryConfig()
	cfg.Provider = types.Provider(strings.ToLower(provider))

	client, err := summarize.NewClient(cfg)
	if err != nil {
		return err
	}
	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	for _, m := range models {
		fmt.Println(m)
	}
	return nil
}
