// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads papers, writes metadata sidecars, and catalogs
// the results.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/labmate/pkg/arxiv"
	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
	sourceDir   = "source"
)

// Cataloger records fetched papers. *library.Store satisfies it; a nil
// Cataloger skips cataloging.
type Cataloger interface {
	Add(ctx context.Context, e types.LibraryEntry) error
}

// metadataLookup resolves arXiv metadata. Declared as a var so tests can
// substitute a fake without network access.
var metadataLookup = arxiv.FetchByID

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Papers     []types.PaperRecord
}

// Total returns the total number of inputs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any inputs failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetch resolves one input, downloads its PDF under cfg.PapersDir/raw/,
// writes a YAML metadata sidecar, and catalogs the paper. An existing PDF
// skips the download. For arXiv inputs a metadata lookup failure degrades
// to a minimal record with a warning; the download still proceeds.
func Fetch(ctx context.Context, input string, cfg types.FetchConfig, lib Cataloger, w io.Writer) (rec types.PaperRecord, skipped bool, err error) {
	ref, err := Resolve(input)
	if err != nil {
		return types.PaperRecord{}, false, err
	}

	client := &http.Client{Timeout: downloadTimeout(cfg)}
	pdfPath := filepath.Join(cfg.PapersDir, rawDir, ref.ID+".pdf")
	metaPath := filepath.Join(cfg.PapersDir, metadataDir, ref.ID+".yaml")

	rec = types.PaperRecord{ArxivID: ref.ID, Title: ref.ID, PDFURL: ref.URL}
	if ref.Kind == KindArxiv {
		got, lookupErr := metadataLookup(ctx, ref.ID, types.SearchConfig{HTTPConfig: cfg.HTTPConfig})
		if lookupErr != nil {
			fmt.Fprintf(w, "  warning: arXiv metadata fetch failed: %v\n", lookupErr)
		} else {
			rec = got
			if rec.PDFURL != "" {
				ref.URL = rec.PDFURL
			}
		}
	}

	// Skip if the PDF already exists.
	if _, statErr := os.Stat(pdfPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", ref.ID)
		return rec, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.PapersDir, rawDir),
		filepath.Join(cfg.PapersDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.PaperRecord{}, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s (%s)\n", ref.ID, ref.Kind)
	if err := downloadFile(ctx, client, ref.URL, pdfPath, cfg); err != nil {
		return types.PaperRecord{}, false, err
	}

	if ref.Kind == KindArxiv && cfg.WithSource {
		srcPath := filepath.Join(cfg.PapersDir, sourceDir, ref.ID+".tar.gz")
		if err := os.MkdirAll(filepath.Dir(srcPath), 0o755); err != nil {
			return types.PaperRecord{}, false, fmt.Errorf("creating directory %s: %w", filepath.Dir(srcPath), err)
		}
		fmt.Fprintf(w, "downloading source: %s\n", ref.ID)
		if err := downloadFile(ctx, client, arxiv.SourceURL(ref.ID), srcPath, cfg); err != nil {
			fmt.Fprintf(w, "  warning: source download failed: %v\n", err)
		}
	}

	if err := writeMetadata(rec, metaPath); err != nil {
		return types.PaperRecord{}, false, fmt.Errorf("writing metadata for %s: %w", ref.ID, err)
	}

	if lib != nil {
		entry := types.LibraryEntry{
			ArxivID:   ref.ID,
			Title:     rec.Title,
			Authors:   rec.Authors,
			Abstract:  rec.Abstract,
			Published: rec.Published,
			PDFPath:   pdfPath,
		}
		if ref.Kind == KindArxiv {
			entry.BibTeX = arxiv.BibTeX(rec)
		}
		if err := lib.Add(ctx, entry); err != nil {
			fmt.Fprintf(w, "  warning: cataloging failed: %v\n", err)
		}
	}

	return rec, false, nil
}

// Batch processes multiple inputs, printing per-item status and returning
// a summary. It continues after individual failures.
func Batch(ctx context.Context, inputs []string, cfg types.FetchConfig, lib Cataloger, w io.Writer) BatchResult {
	var result BatchResult
	for _, input := range inputs {
		rec, wasSkipped, err := Fetch(ctx, input, cfg, lib, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", input, err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Downloaded++
		}
		result.Papers = append(result.Papers, rec)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath through a temporary file so a
// failed download never leaves a partial PDF behind.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.FetchConfig) error {
	const op = "download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errdefs.FromStatus(op, req.URL.Host, resp.StatusCode, body)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMetadata writes the paper record to a YAML sidecar.
func writeMetadata(rec types.PaperRecord, path string) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func downloadTimeout(cfg types.FetchConfig) time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return 60 * time.Second
}
