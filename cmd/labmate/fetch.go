// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/internal/fetch"
	"github.com/pdiddy/labmate/internal/library"
	"github.com/pdiddy/labmate/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <id-or-url>...",
	Short: "Download papers and add them to the catalog",
	Long: `Fetch downloads papers by arXiv ID, arXiv URL, or direct PDF URL into
papers/raw/, writes metadata sidecars, and records each paper in the local
catalog. Existing papers are skipped.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("papers-dir", "papers", "base directory for papers")
	fetchCmd.Flags().Bool("with-source", false, "also download the arXiv e-print source archive")
	fetchCmd.Flags().String("library", "", "catalog database path (default library/labmate.db)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more arXiv IDs or PDF URLs")
	}

	papersDir, _ := cmd.Flags().GetString("papers-dir")
	withSource, _ := cmd.Flags().GetBool("with-source")
	libPath, _ := cmd.Flags().GetString("library")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := types.DefaultFetchConfig()
	cfg.PapersDir = papersDir
	cfg.WithSource = withSource
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	lib, err := openLibrary(libPath)
	if err != nil {
		return err
	}
	defer lib.Close()

	result := fetch.Batch(cmd.Context(), args, cfg, lib, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d paper(s) failed", result.Failed)
	}
	return nil
}

// openLibrary opens the catalog at path, falling back to the default
// location.
func openLibrary(path string) (*library.Store, error) {
	cfg := types.DefaultLibraryConfig()
	if path != "" {
		cfg.Path = path
	}
	return library.Open(cfg)
}
