// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// fakeCatalog serves fixed entries without a database.
type fakeCatalog struct {
	entries []types.LibraryEntry
	err     error
}

func (f *fakeCatalog) List(_ context.Context, limit int) ([]types.LibraryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeCatalog) Get(_ context.Context, arxivID string) (types.LibraryEntry, error) {
	if f.err != nil {
		return types.LibraryEntry{}, f.err
	}
	for _, e := range f.entries {
		if e.ArxivID == arxivID {
			return e, nil
		}
	}
	return types.LibraryEntry{}, errdefs.New(errdefs.ErrNotFound, "library get", "no entry for %s", arxivID)
}

func (f *fakeCatalog) SearchText(_ context.Context, query string, _ int) ([]types.LibraryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var hits []types.LibraryEntry
	for _, e := range f.entries {
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			hits = append(hits, e)
		}
	}
	return hits, nil
}

func testHandler(cat Catalog) http.Handler {
	return New(cat, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, testHandler(&fakeCatalog{}), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestListPapers(t *testing.T) {
	cat := &fakeCatalog{entries: []types.LibraryEntry{
		{ArxivID: "2301.07041", Title: "Attention Is All You Need"},
		{ArxivID: "2106.09685", Title: "LoRA"},
	}}
	h := testHandler(cat)

	rec := doRequest(t, h, "/api/papers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var entries []types.LibraryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d", len(entries))
	}

	rec = doRequest(t, h, "/api/papers?limit=1")
	entries = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("limited entries = %d", len(entries))
	}
}

func TestGetPaper(t *testing.T) {
	cat := &fakeCatalog{entries: []types.LibraryEntry{
		{ArxivID: "2301.07041", Title: "Attention Is All You Need"},
	}}
	h := testHandler(cat)

	rec := doRequest(t, h, "/api/papers/2301.07041")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entry types.LibraryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry.Title != "Attention Is All You Need" {
		t.Errorf("entry = %+v", entry)
	}

	rec = doRequest(t, h, "/api/papers/9999.00000")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	cat := &fakeCatalog{entries: []types.LibraryEntry{
		{ArxivID: "2301.07041", Title: "Attention Is All You Need"},
		{ArxivID: "2106.09685", Title: "LoRA"},
	}}
	h := testHandler(cat)

	rec := doRequest(t, h, "/api/search?q=attention")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []types.LibraryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ArxivID != "2301.07041" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	rec := doRequest(t, testHandler(&fakeCatalog{}), "/api/search")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing query parameter") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCatalogFailure(t *testing.T) {
	rec := doRequest(t, testHandler(&fakeCatalog{err: errors.New("database locked")}), "/api/papers")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "database locked") {
		t.Error("internal error detail leaked to client")
	}
}
