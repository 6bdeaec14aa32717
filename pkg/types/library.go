// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LibraryEntry is one row of the local paper catalog.
type LibraryEntry struct {
	// ArxivID is the catalog key (e.g. "2301.07041"), or a content-derived
	// slug for papers fetched from direct URLs.
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Published is the publication date, zero when unknown.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// PDFPath is the local path to the downloaded PDF.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// MarkdownPath is the local path to the converted Markdown, if any.
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`

	// BibTeX is the generated citation entry, if any.
	BibTeX string `json:"bibtex,omitempty" yaml:"bibtex,omitempty"`

	// AddedAt records when the entry was first cataloged.
	AddedAt time.Time `json:"added_at" yaml:"added_at"`
}
