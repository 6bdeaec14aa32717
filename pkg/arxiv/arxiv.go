// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv queries the arXiv API: free-text search, metadata lookup by
// identifier, canonical URL construction, and BibTeX rendering.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/labmate/internal/httputil"
	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// apiBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

const defaultMaxResults = 10

// Search sends one query to the arXiv API and returns records in the API's
// relevance order, at most cfg.MaxResults of them. A max of zero returns an
// empty list without touching the network; negative values fall back to the
// default of 10. Entries without a recognizable identifier or title are
// dropped.
func Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	const op = "arxiv search"

	maxResults := cfg.MaxResults
	if maxResults == 0 {
		return []types.PaperRecord{}, nil
	}
	if maxResults < 0 {
		maxResults = defaultMaxResults
	}

	q := buildQuery(query)
	if q == "" {
		return nil, errdefs.New(errdefs.ErrRequest, op, "empty query")
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		apiBase, q, maxResults)

	feed, err := fetchFeed(ctx, op, reqURL, cfg)
	if err != nil {
		return nil, err
	}

	records := make([]types.PaperRecord, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		rec, ok := entryRecord(entry)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	if len(records) > maxResults {
		records = records[:maxResults]
	}
	return records, nil
}

// FetchByID looks up one paper's metadata through the id_list endpoint.
// Unknown identifiers produce ErrNotFound: arXiv answers those with an
// error entry instead of an empty feed.
func FetchByID(ctx context.Context, arxivID string, cfg types.SearchConfig) (types.PaperRecord, error) {
	const op = "arxiv metadata"

	id, ok := ExtractID(arxivID)
	if !ok {
		return types.PaperRecord{}, errdefs.New(errdefs.ErrRequest, op, "not an arXiv identifier: %s", arxivID)
	}

	reqURL := fmt.Sprintf("%s?id_list=%s", apiBase, id)
	feed, err := fetchFeed(ctx, op, reqURL, cfg)
	if err != nil {
		return types.PaperRecord{}, err
	}

	for _, entry := range feed.Entries {
		rec, ok := entryRecord(entry)
		if !ok {
			continue
		}
		if rec.ArxivID == id {
			return rec, nil
		}
	}
	return types.PaperRecord{}, errdefs.New(errdefs.ErrNotFound, op, "no entry for %s", id)
}

// fetchFeed performs the GET and decodes the Atom feed. Retrying is opt-in
// through cfg.MaxRetries and covers only 429 responses.
func fetchFeed(ctx context.Context, op, reqURL string, cfg types.SearchConfig) (*atomFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, httpClient(cfg.HTTPConfig), req, cfg.MaxRetries, io.Discard)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errdefs.FromStatus(op, "arxiv", resp.StatusCode, body)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, errdefs.Wrap(errdefs.ErrParse, op, err)
	}
	return &feed, nil
}

// buildQuery constructs the search_query parameter from free text: terms
// are escaped individually and joined with "+" under the all: field.
func buildQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	for i, t := range terms {
		terms[i] = url.QueryEscape(t)
	}
	return "all:" + strings.Join(terms, "+")
}

// httpClient builds a client honoring cfg.Timeout (default 30 s).
func httpClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID              string       `xml:"id"`
	Title           string       `xml:"title"`
	Summary         string       `xml:"summary"`
	Published       string       `xml:"published"`
	Updated         string       `xml:"updated"`
	Authors         []atomAuthor `xml:"author"`
	Links           []atomLink   `xml:"link"`
	PrimaryCategory atomCategory `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// entryRecord shapes one Atom entry into a PaperRecord. Entries without a
// recognizable ID or a title (arXiv reports bad id_list lookups as error
// entries) report ok == false.
func entryRecord(entry atomEntry) (types.PaperRecord, bool) {
	id, ok := ExtractID(entry.ID)
	if !ok {
		return types.PaperRecord{}, false
	}

	rec := types.PaperRecord{
		ArxivID:         id,
		Title:           collapseSpace(entry.Title),
		Abstract:        collapseSpace(entry.Summary),
		AbstractURL:     AbstractURL(id),
		PDFURL:          PDFURL(id),
		PrimaryCategory: entry.PrimaryCategory.Term,
	}
	if rec.Title == "" {
		return types.PaperRecord{}, false
	}

	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		rec.Published = t
	}
	if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
		rec.Updated = t
	}
	// Prefer the PDF link the feed reports over the constructed URL.
	for _, l := range entry.Links {
		if l.Title == "pdf" && l.Href != "" {
			rec.PDFURL = l.Href
		}
	}
	return rec, true
}

// collapseSpace trims s and folds internal whitespace runs into single
// spaces. arXiv wraps long titles and abstracts with newline plus indent.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
