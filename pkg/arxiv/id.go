// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"regexp"
	"strings"
)

// URL bases for canonical arXiv pages.
const (
	absBase    = "https://arxiv.org/abs/"
	pdfBase    = "https://arxiv.org/pdf/"
	eprintBase = "https://arxiv.org/e-print/"
)

// idPattern matches a bare new-style arXiv identifier, optionally with an
// "arXiv:" prefix and a version suffix (e.g. "arXiv:2301.07041v2").
var idPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5})(?:v\d+)?$`)

// urlPattern matches abs, pdf, and html arXiv URLs.
var urlPattern = regexp.MustCompile(`arxiv\.org/(?:abs|pdf|html)/(\d{4}\.\d{4,5})(?:v\d+)?`)

// ExtractID recognizes an arXiv identifier in s: a bare ID, an arXiv:
// prefixed ID, or an abs/pdf/html URL. The returned ID is version-stripped.
func ExtractID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if m := idPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := urlPattern.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// AbstractURL returns the canonical abstract page for an arXiv ID.
func AbstractURL(id string) string { return absBase + id }

// PDFURL returns the direct PDF URL for an arXiv ID.
func PDFURL(id string) string { return pdfBase + id + ".pdf" }

// SourceURL returns the e-print source archive URL for an arXiv ID.
func SourceURL(id string) string { return eprintBase + id }
