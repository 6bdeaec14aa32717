// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/labmate/pkg/arxiv"
	"github.com/pdiddy/labmate/pkg/convert"
	"github.com/pdiddy/labmate/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf-file|url|arxiv-id>...",
	Short: "Convert papers to Markdown",
	Long: `Convert turns papers into Markdown. Local PDF files go through the selected
backend (native extraction or the markitdown container). http(s) URLs are
fetched and reduced to readable Markdown. With --tex, arXiv IDs are
converted from their LaTeX source via pandoc, which preserves structure far
better than PDF extraction.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "native", "PDF conversion backend: native or markitdown")
	convertCmd.Flags().String("out-dir", "papers/markdown", "output directory for Markdown files")
	convertCmd.Flags().Bool("tex", false, "convert arXiv LaTeX source with pandoc instead of the PDF")
	convertCmd.Flags().Bool("stdout", false, "print Markdown to stdout instead of writing files")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more PDF files, URLs, or arXiv IDs")
	}

	backend, _ := cmd.Flags().GetString("backend")
	outDir, _ := cmd.Flags().GetString("out-dir")
	useTeX, _ := cmd.Flags().GetBool("tex")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	cfg := types.DefaultConvertConfig()
	cfg.Backend = types.ConversionBackend(backend)
	cfg.MarkdownDir = outDir

	if useTeX {
		return convertTeX(cmd, args, cfg, toStdout)
	}

	var pdfFiles []string
	for _, arg := range args {
		switch {
		case isHTTPURL(arg):
			md, err := convert.FromURL(cmd.Context(), arg, nil)
			if err != nil {
				return err
			}
			if err := emit(md, arg, cfg.MarkdownDir, toStdout); err != nil {
				return err
			}
		default:
			pdfFiles = append(pdfFiles, arg)
		}
	}
	if len(pdfFiles) == 0 {
		return nil
	}

	conv, err := convert.NewConverter(cfg)
	if err != nil {
		return err
	}

	if toStdout {
		for _, path := range pdfFiles {
			md, err := convert.ConvertFile(conv, path, os.Stderr)
			if err != nil {
				return err
			}
			fmt.Println(md)
		}
		return nil
	}

	result := convert.ConvertBatch(conv, pdfFiles, cfg.MarkdownDir, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", len(result.Failed))
	}
	return nil
}

func convertTeX(cmd *cobra.Command, args []string, cfg types.ConvertConfig, toStdout bool) error {
	for _, arg := range args {
		md, err := convert.FromTeXSource(cmd.Context(), arg, cfg, nil, os.Stderr)
		if err != nil {
			return err
		}
		if err := emit(md, arg, cfg.MarkdownDir, toStdout); err != nil {
			return err
		}
	}
	return nil
}

// emit prints Markdown or writes it under outDir named after the source.
func emit(md, source, outDir string, toStdout bool) error {
	if toStdout {
		fmt.Println(md)
		return nil
	}
	name := source
	if id, ok := arxiv.ExtractID(source); ok {
		name = id
	} else if u, err := url.Parse(source); err == nil && u.Path != "" {
		name = strings.Trim(u.Path, "/")
		name = strings.ReplaceAll(name, "/", "-")
	}
	outPath, err := convert.WriteMarkdown(md, name, outDir)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func isHTTPURL(s string) bool {
	if _, ok := arxiv.ExtractID(s); ok && !strings.Contains(s, "://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
