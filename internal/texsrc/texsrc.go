// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package texsrc turns an arXiv e-print archive into a single flattened
// LaTeX document: unpack the archive, pick the main file, inline includes,
// and strip comments. The result is what pandoc consumes.
package texsrc

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/labmate/pkg/errdefs"
)

// gzipMagic identifies a gzip stream. E-print payloads come as gzipped
// tarballs, single gzipped TeX files, or occasionally bare TeX.
var gzipMagic = []byte{0x1f, 0x8b}

// Unpack extracts the e-print archive at archivePath into destDir and
// returns the extracted file paths. Entries that would escape destDir are
// rejected. A payload that is not a tar archive is written as a single
// main.tex.
func Unpack(archivePath, destDir string) ([]string, error) {
	const op = "unpack e-print"

	data, err := os.ReadFile(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.Wrap(errdefs.ErrNotFound, op, err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if bytes.HasPrefix(data, gzipMagic) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errdefs.Wrap(errdefs.ErrFormat, op, err)
		}
		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, errdefs.Wrap(errdefs.ErrFormat, op, err)
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paths, err := untar(data, destDir)
	if err == nil {
		return paths, nil
	}

	// Not a tarball: treat the payload as a single TeX source.
	single := filepath.Join(destDir, "main.tex")
	if err := os.WriteFile(single, data, 0o644); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return []string{single}, nil
}

func untar(data []byte, destDir string) ([]string, error) {
	tr := tar.NewReader(bytes.NewReader(data))
	var paths []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(paths) == 0 {
				return nil, err
			}
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}

		name := filepath.Clean(hdr.Name)
		if name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			continue
		}
		target := filepath.Join(destDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
			}
			f, err := os.Create(target)
			if err != nil {
				return nil, fmt.Errorf("creating %s: %w", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return nil, fmt.Errorf("extracting %s: %w", target, err)
			}
			if err := f.Close(); err != nil {
				return nil, fmt.Errorf("closing %s: %w", target, err)
			}
			paths = append(paths, target)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("empty archive")
	}
	return paths, nil
}

// SelectMain picks the main TeX file among candidates. A file named
// main.tex wins outright; otherwise candidates score +10 for containing
// \documentclass and +10 for \begin{document}, ties going to the shortest
// path. readFile is injected so tests can run without a filesystem.
func SelectMain(texPaths []string, readFile func(string) ([]byte, error)) (string, error) {
	const op = "select main tex"

	var candidates []string
	for _, p := range texPaths {
		if strings.EqualFold(filepath.Ext(p), ".tex") {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return "", errdefs.New(errdefs.ErrNotFound, op, "no .tex files in archive")
	}

	for _, p := range candidates {
		if filepath.Base(p) == "main.tex" {
			return p, nil
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := scoreTex(candidates[i], readFile), scoreTex(candidates[j], readFile)
		if si != sj {
			return si > sj
		}
		return len(candidates[i]) < len(candidates[j])
	})
	return candidates[0], nil
}

func scoreTex(path string, readFile func(string) ([]byte, error)) int {
	data, err := readFile(path)
	if err != nil {
		return 0
	}
	score := 0
	if bytes.Contains(data, []byte(`\documentclass`)) {
		score += 10
	}
	if bytes.Contains(data, []byte(`\begin{document}`)) {
		score += 10
	}
	return score
}

var (
	documentPattern = regexp.MustCompile(`(?s)\\begin\{document\}(.*?)\\end\{document\}`)
	includePattern  = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)
)

// Flatten reads the main TeX file at dir/mainRel, inlines \input and
// \include references recursively, and strips comments. When a document
// environment is present only its body is inlined; the preamble is kept.
func Flatten(dir, mainRel string) (string, error) {
	mainPath := filepath.Join(dir, mainRel)
	data, err := os.ReadFile(mainPath)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrNotFound, "flatten tex", err)
	}
	text := string(data)

	body := text
	if m := documentPattern.FindStringSubmatch(text); m != nil {
		body = m[1]
	}

	seen := map[string]bool{abs(mainPath): true}
	inlined := inlineIncludes(body, filepath.Dir(mainPath), seen)
	if body != text {
		text = strings.Replace(text, body, inlined, 1)
	} else {
		text = inlined
	}

	return stripComments(text), nil
}

// inlineIncludes replaces \input and \include commands with the referenced
// file's content, recursively. Cycles and missing targets are inlined as
// TeX comments so the surrounding document still converts.
func inlineIncludes(text, baseDir string, seen map[string]bool) string {
	return includePattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(includePattern.FindStringSubmatch(match)[1])

		candidate := filepath.Join(baseDir, name)
		if filepath.Ext(candidate) == "" {
			if _, err := os.Stat(candidate); err != nil {
				candidate += ".tex"
			}
		}
		key := abs(candidate)
		if seen[key] {
			return fmt.Sprintf("%% cyclic include: %s\n", name)
		}

		data, err := os.ReadFile(candidate)
		if err != nil {
			return fmt.Sprintf("%% missing include: %s\n", name)
		}

		seen[key] = true
		inlined := inlineIncludes(string(data), filepath.Dir(candidate), seen)
		delete(seen, key)
		return inlined
	})
}

// stripComments removes full comment lines and trailing % comments while
// preserving escaped \% sequences.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "%") {
			continue
		}
		if i := unescapedPercent(line); i >= 0 {
			line = line[:i]
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// unescapedPercent returns the index of the first % not preceded by a
// backslash, or -1.
func unescapedPercent(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != '%' {
			continue
		}
		if i > 0 && line[i-1] == '\\' {
			continue
		}
		return i
	}
	return -1
}

func abs(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}
