// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// NativeConverter extracts text in-process with the ledongthuc/pdf parser.
// The output is text content with page markers, not layout: headings and
// tables survive only as plain lines. Richer structure comes from the
// markitdown backend or from TeX source conversion.
type NativeConverter struct{}

// Convert extracts per-page text from the PDF at pdfPath and joins the
// pages with <!-- page N --> markers.
func (NativeConverter) Convert(pdfPath string) (out string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", pdfPath, r)
		}
	}()

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Unreadable pages degrade to a gap, not a failure.
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return joinPages(pages), nil
}

// joinPages assembles page texts into one Markdown document, marking each
// non-empty page and collapsing blank-line runs.
func joinPages(pages []string) string {
	var b strings.Builder
	for i, text := range pages {
		text = collapseBlankRuns(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "<!-- page %d -->\n\n", i+1)
		b.WriteString(text)
	}
	return b.String()
}

// collapseBlankRuns trims the text and folds runs of blank lines into one.
func collapseBlankRuns(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.Join(out, "\n")
}
