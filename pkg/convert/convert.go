// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns documents into Markdown: local PDFs through a
// pluggable backend, web pages through readability reduction, and arXiv
// e-print sources through LaTeX flattening plus pandoc.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/labmate/internal/container"
	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// Converter transforms a PDF file into Markdown text.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the Markdown content.
	Convert(pdfPath string) (string, error)
}

// NewConverter builds the converter selected by cfg.Backend. The
// markitdown backend requires a local container runtime with the
// markitdown image present.
func NewConverter(cfg types.ConvertConfig) (Converter, error) {
	switch cfg.Backend {
	case types.BackendNative, "":
		return &NativeConverter{}, nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, errdefs.Wrap(errdefs.ErrNotFound, "convert backend", err)
		}
		return NewMarkitdownConverter(rt)
	}
	return nil, errdefs.New(errdefs.ErrRequest, "convert backend",
		"unknown backend %q (valid: native, markitdown)", cfg.Backend)
}

// ConvertFile converts one PDF to Markdown. The path is checked before
// the converter runs: a missing file maps to ErrNotFound and a non-PDF
// extension to ErrFormat, with no backend invocation in either case. A
// converter failure or an empty extraction (image-only PDF) maps to
// ErrFormat. The result is returned, never written.
func ConvertFile(conv Converter, path string, w io.Writer) (string, error) {
	const op = "convert pdf"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errdefs.New(errdefs.ErrNotFound, op, "no such file: %s", path)
		}
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "", errdefs.New(errdefs.ErrFormat, op, "not a PDF file: %s", path)
	}

	fmt.Fprintf(w, "converting: %s\n", filepath.Base(path))

	md, err := conv.Convert(path)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrFormat, op, err)
	}
	if strings.TrimSpace(md) == "" {
		return "", errdefs.New(errdefs.ErrFormat, op, "no extractable text in %s", path)
	}
	return md, nil
}

// WriteMarkdown writes md under outDir as <stem of sourcePath>.md with a
// YAML frontmatter header recording the source and conversion time. The
// output path is returned; parent directories are created as needed.
func WriteMarkdown(md, sourcePath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", outDir, err)
	}

	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outPath := filepath.Join(outDir, stem+".md")

	if err := os.WriteFile(outPath, []byte(addFrontmatter(sourcePath, md)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, err)
	}
	return outPath, nil
}

// addFrontmatter prepends YAML frontmatter to the converted content.
func addFrontmatter(sourcePath, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source: %q\n", sourcePath)
	fmt.Fprintf(&b, "converted: %q\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted []string
	Skipped   []string
	Failed    []string
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return len(r.Converted) + len(r.Skipped) + len(r.Failed)
}

// HasFailures reports whether any files failed conversion.
func (r BatchResult) HasFailures() bool {
	return len(r.Failed) > 0
}

// ConvertBatch converts each PDF into outDir, skipping files whose output
// already exists and continuing past per-file failures. Per-file status
// and a summary go to w.
func ConvertBatch(conv Converter, pdfPaths []string, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, path := range pdfPaths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outPath := filepath.Join(outDir, stem+".md")

		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", stem)
			result.Skipped = append(result.Skipped, path)
			continue
		}

		md, err := ConvertFile(conv, path, io.Discard)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed = append(result.Failed, path)
			continue
		}
		if _, err := WriteMarkdown(md, path, outDir); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
			result.Failed = append(result.Failed, path)
			continue
		}

		fmt.Fprintf(w, "converted: %s\n", stem)
		result.Converted = append(result.Converted, path)
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		len(result.Converted), len(result.Skipped), len(result.Failed), result.Total())
	return result
}
