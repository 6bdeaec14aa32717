// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/labmate/pkg/types"
)

// BibTeX renders rec as a @misc entry. Missing pieces degrade: no author
// becomes "unknown" in the key, a zero publication date omits the year.
func BibTeX(rec types.PaperRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@misc{%s,\n", bibtexKey(rec))
	fmt.Fprintf(&b, "  title = {%s},\n", rec.Title)
	if len(rec.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(rec.Authors, " and "))
	}
	if !rec.Published.IsZero() {
		fmt.Fprintf(&b, "  year = {%d},\n", rec.Published.Year())
	}
	if rec.ArxivID != "" {
		fmt.Fprintf(&b, "  eprint = {%s},\n", rec.ArxivID)
		fmt.Fprintf(&b, "  archivePrefix = {arXiv},\n")
		if rec.PrimaryCategory != "" {
			fmt.Fprintf(&b, "  primaryClass = {%s},\n", rec.PrimaryCategory)
		}
	}
	fmt.Fprintf(&b, "  url = {%s},\n", rec.AbstractURL)
	b.WriteString("}\n")
	return b.String()
}

// bibtexKey derives the citation key: the first author's lowercased last
// name, the publication year, and up to 32 characters of the simplified
// title.
func bibtexKey(rec types.PaperRecord) string {
	last := "unknown"
	if len(rec.Authors) > 0 {
		if fields := strings.Fields(rec.Authors[0]); len(fields) > 0 {
			if s := simplify(fields[len(fields)-1]); s != "" {
				last = s
			}
		}
	}

	year := ""
	if !rec.Published.IsZero() {
		year = strconv.Itoa(rec.Published.Year())
	}

	title := simplify(rec.Title)
	if len(title) > 32 {
		title = title[:32]
	}
	return last + year + title
}

// simplify lowercases s and strips everything but ASCII letters and digits.
func simplify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
