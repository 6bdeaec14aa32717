// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect the local paper catalog",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cataloged papers, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		libPath, _ := cmd.Flags().GetString("library")
		limit, _ := cmd.Flags().GetInt("limit")

		lib, err := openLibrary(libPath)
		if err != nil {
			return err
		}
		defer lib.Close()

		entries, err := lib.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	},
}

var librarySearchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Full-text search over cataloged titles and abstracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("provide a search query")
		}
		libPath, _ := cmd.Flags().GetString("library")
		limit, _ := cmd.Flags().GetInt("limit")

		lib, err := openLibrary(libPath)
		if err != nil {
			return err
		}
		defer lib.Close()

		entries, err := lib.SearchText(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <arxiv-id>",
	Short: "Show one catalog entry in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		libPath, _ := cmd.Flags().GetString("library")

		lib, err := openLibrary(libPath)
		if err != nil {
			return err
		}
		defer lib.Close()

		e, err := lib.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s\n%s\n", e.Title, strings.Join(e.Authors, ", "))
		if !e.Published.IsZero() {
			fmt.Printf("published: %s\n", e.Published.Format("2006-01-02"))
		}
		if e.Abstract != "" {
			fmt.Printf("\n%s\n", e.Abstract)
		}
		if e.PDFPath != "" {
			fmt.Printf("\npdf:      %s\n", e.PDFPath)
		}
		if e.MarkdownPath != "" {
			fmt.Printf("markdown: %s\n", e.MarkdownPath)
		}
		if e.BibTeX != "" {
			fmt.Printf("\n%s", e.BibTeX)
		}
		return nil
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:   "remove <arxiv-id>",
	Short: "Remove one entry from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		libPath, _ := cmd.Flags().GetString("library")

		lib, err := openLibrary(libPath)
		if err != nil {
			return err
		}
		defer lib.Close()

		if err := lib.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		libPath, _ := cmd.Flags().GetString("library")
		format, _ := cmd.Flags().GetString("format")

		lib, err := openLibrary(libPath)
		if err != nil {
			return err
		}
		defer lib.Close()

		switch format {
		case "yaml":
			return lib.ExportYAML(cmd.Context(), os.Stdout)
		case "json":
			return lib.ExportJSON(cmd.Context(), os.Stdout)
		}
		return fmt.Errorf("unknown format %q (valid: yaml, json)", format)
	},
}

func init() {
	libraryCmd.PersistentFlags().String("library", "", "catalog database path (default library/labmate.db)")
	libraryListCmd.Flags().Int("limit", 0, "maximum entries to list (0 lists all)")
	librarySearchCmd.Flags().Int("limit", 20, "maximum hits to return")
	libraryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	libraryCmd.AddCommand(libraryListCmd, librarySearchCmd, libraryShowCmd, libraryRemoveCmd, libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}

func printEntries(entries []types.LibraryEntry) {
	if len(entries) == 0 {
		fmt.Println("no papers")
		return
	}
	for _, e := range entries {
		fmt.Printf("%-14s %s\n", e.ArxivID, e.Title)
	}
}
