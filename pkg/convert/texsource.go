// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/labmate/internal/texsrc"
	"github.com/pdiddy/labmate/pkg/arxiv"
	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// FromTeXSource downloads the arXiv e-print archive for idOrURL, flattens
// the LaTeX source, and converts it with pandoc. A missing pandoc binary
// is reported before any download happens. Progress lines go to w.
func FromTeXSource(ctx context.Context, idOrURL string, cfg types.ConvertConfig, client *http.Client, w io.Writer) (string, error) {
	const op = "convert tex source"

	id, ok := arxiv.ExtractID(idOrURL)
	if !ok {
		return "", errdefs.New(errdefs.ErrRequest, op, "not an arXiv identifier: %s", idOrURL)
	}

	pandoc := texsrc.NewPandoc(cfg.PandocPath)
	if !pandoc.Available() {
		return "", errdefs.New(errdefs.ErrNotFound, op, "pandoc binary %q not found on PATH", pandoc.Path)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	workDir, err := os.MkdirTemp("", "labmate-texsrc-*")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer os.RemoveAll(workDir)

	archivePath := filepath.Join(workDir, id)
	fmt.Fprintf(w, "downloading source for %s\n", id)
	if err := downloadSource(ctx, client, arxiv.SourceURL(id), archivePath); err != nil {
		return "", err
	}

	srcDir := filepath.Join(workDir, "src")
	paths, err := texsrc.Unpack(archivePath, srcDir)
	if err != nil {
		return "", err
	}

	mainPath, err := texsrc.SelectMain(paths, os.ReadFile)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(srcDir, mainPath)
	if err != nil {
		rel = filepath.Base(mainPath)
	}
	fmt.Fprintf(w, "flattening %s\n", rel)

	flat, err := texsrc.Flatten(srcDir, rel)
	if err != nil {
		return "", err
	}

	flatPath := filepath.Join(workDir, "flattened.tex")
	if err := os.WriteFile(flatPath, []byte(flat), 0o644); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	fmt.Fprintf(w, "running pandoc\n")
	md, err := pandoc.Convert(ctx, flatPath)
	if err != nil {
		return "", err
	}
	if md == "" {
		return "", errdefs.New(errdefs.ErrFormat, op, "pandoc produced no output for %s", id)
	}
	return md, nil
}

// downloadSource fetches the e-print archive to destPath.
func downloadSource(ctx context.Context, client *http.Client, srcURL, destPath string) error {
	const op = "download e-print"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errdefs.FromStatus(op, "arxiv", resp.StatusCode, body)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	return f.Close()
}
