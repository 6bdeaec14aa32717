// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the labmate CLI: arXiv search,
// paper fetching, PDF-to-Markdown conversion, LLM summarization, and the
// local paper catalog.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the labmate CLI.
var rootCmd = &cobra.Command{
	Use:   "labmate",
	Short: "Research paper toolkit: search, fetch, convert, summarize",
	Long: `labmate is a toolkit for working with research papers. It searches arXiv,
downloads papers into a local catalog, converts PDFs and arXiv sources to
Markdown, and summarizes texts through the OpenAI, Anthropic, and Gemini
APIs.

API keys come from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY,
GEMINI_API_KEY) or a .env file in the working directory.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./labmate.yaml or ~/.config/labmate/labmate.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("labmate")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "labmate"))
		}
	}

	viper.SetEnvPrefix("LABMATE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
