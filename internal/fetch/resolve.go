// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/pdiddy/labmate/pkg/arxiv"
	"github.com/pdiddy/labmate/pkg/errdefs"
)

// RefKind classifies a fetch input.
type RefKind string

const (
	KindArxiv RefKind = "arxiv"
	KindURL   RefKind = "url"
)

// Ref is a resolved fetch target: an arXiv paper or a direct PDF URL.
type Ref struct {
	Kind RefKind

	// ID is the arXiv identifier for KindArxiv, or a URL-derived slug for
	// KindURL. It names the downloaded files and keys the catalog.
	ID string

	// URL is the PDF download URL.
	URL string
}

// Resolve classifies input: an arXiv identifier or arXiv URL in any
// recognized form, otherwise a direct http(s) URL. Anything else fails
// with ErrRequest.
func Resolve(input string) (Ref, error) {
	const op = "resolve fetch target"

	if id, ok := arxiv.ExtractID(input); ok {
		return Ref{Kind: KindArxiv, ID: id, URL: arxiv.PDFURL(id)}, nil
	}

	u, err := url.Parse(strings.TrimSpace(input))
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return Ref{Kind: KindURL, ID: urlSlug(u), URL: u.String()}, nil
	}
	return Ref{}, errdefs.New(errdefs.ErrRequest, op,
		"not an arXiv identifier or http(s) URL: %q", input)
}

// urlSlug derives a filesystem-safe stem for a URL download: the last
// path segment without its extension, or a content hash of the URL when
// the path carries no usable name.
func urlSlug(u *url.URL) string {
	base := path.Base(u.Path)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = sanitizeSlug(base)
	if base != "" && base != "." && base != "/" {
		return base
	}
	sum := sha256.Sum256([]byte(u.String()))
	return fmt.Sprintf("url-%x", sum[:6])
}

// sanitizeSlug keeps letters, digits, dot, dash, and underscore.
func sanitizeSlug(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}
