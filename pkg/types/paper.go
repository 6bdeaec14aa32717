// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the labmate toolkit:
// paper records returned by search, summarization results, catalog entries,
// and the configuration structs consumed by each component.
package types

import "time"

// PaperRecord describes one arXiv paper. Search and metadata lookups return
// records in API order; a record has no identity beyond its URLs.
type PaperRecord struct {
	// ArxivID is the version-stripped arXiv identifier (e.g. "2301.07041").
	ArxivID string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title with internal whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// AbstractURL is the canonical abstract page (https://arxiv.org/abs/<id>).
	AbstractURL string `json:"abstract_url" yaml:"abstract_url"`

	// PDFURL is the direct PDF download URL.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Published is the first submission date.
	Published time.Time `json:"published,omitempty" yaml:"published,omitempty"`

	// Updated is the date of the latest version, if reported.
	Updated time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`

	// PrimaryCategory is the primary arXiv category (e.g. "cs.CL").
	PrimaryCategory string `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
}
