// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists the local paper catalog in SQLite with an FTS5
// index over titles and abstracts.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.LibraryConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = types.DefaultLibraryConfig().Path
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			arxiv_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			published TEXT,
			pdf_path TEXT,
			markdown_path TEXT,
			bibtex TEXT,
			added_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Add upserts one catalog entry keyed by its arXiv ID (or URL slug). A
// re-fetch refreshes metadata and paths but keeps the original added_at.
func (s *Store) Add(ctx context.Context, e types.LibraryEntry) error {
	authors, err := json.Marshal(e.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}

	addedAt := e.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (arxiv_id, title, authors, abstract, published, pdf_path, markdown_path, bibtex, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(arxiv_id) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			abstract = excluded.abstract,
			published = excluded.published,
			pdf_path = excluded.pdf_path,
			markdown_path = excluded.markdown_path,
			bibtex = excluded.bibtex`,
		e.ArxivID, e.Title, string(authors), e.Abstract,
		timeColumn(e.Published), e.PDFPath, e.MarkdownPath, e.BibTeX,
		addedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting %s: %w", e.ArxivID, err)
	}
	return nil
}

// Get returns one entry by ID. Unknown IDs produce ErrNotFound.
func (s *Store) Get(ctx context.Context, arxivID string) (types.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT arxiv_id, title, authors, abstract, published, pdf_path, markdown_path, bibtex, added_at
		 FROM papers WHERE arxiv_id = ?`, arxivID)

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return types.LibraryEntry{}, errdefs.New(errdefs.ErrNotFound, "library get", "no entry for %s", arxivID)
	}
	if err != nil {
		return types.LibraryEntry{}, fmt.Errorf("reading %s: %w", arxivID, err)
	}
	return e, nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]types.LibraryEntry, error) {
	q := `SELECT arxiv_id, title, authors, abstract, published, pdf_path, markdown_path, bibtex, added_at
	      FROM papers ORDER BY added_at DESC, arxiv_id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// SearchText runs a full-text query over titles and abstracts, best match
// first.
func (s *Store) SearchText(ctx context.Context, query string, limit int) ([]types.LibraryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.arxiv_id, p.title, p.authors, p.abstract, p.published, p.pdf_path, p.markdown_path, p.bibtex, p.added_at
		 FROM papers_fts f
		 JOIN papers p ON p.rowid = f.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY f.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching papers: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// SetMarkdownPath records the converted Markdown location for one entry.
func (s *Store) SetMarkdownPath(ctx context.Context, arxivID, path string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET markdown_path = ? WHERE arxiv_id = ?`, path, arxivID)
	if err != nil {
		return fmt.Errorf("updating %s: %w", arxivID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errdefs.New(errdefs.ErrNotFound, "library update", "no entry for %s", arxivID)
	}
	return nil
}

// Remove deletes one entry. Unknown IDs produce ErrNotFound.
func (s *Store) Remove(ctx context.Context, arxivID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE arxiv_id = ?`, arxivID)
	if err != nil {
		return fmt.Errorf("removing %s: %w", arxivID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errdefs.New(errdefs.ErrNotFound, "library remove", "no entry for %s", arxivID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (types.LibraryEntry, error) {
	var e types.LibraryEntry
	var authors, published, pdfPath, markdownPath, bibtex sql.NullString
	var addedAt string

	err := row.Scan(&e.ArxivID, &e.Title, &authors, &e.Abstract,
		&published, &pdfPath, &markdownPath, &bibtex, &addedAt)
	if err != nil {
		return types.LibraryEntry{}, err
	}

	if authors.Valid && authors.String != "" {
		if err := json.Unmarshal([]byte(authors.String), &e.Authors); err != nil {
			return types.LibraryEntry{}, fmt.Errorf("decoding authors: %w", err)
		}
	}
	if published.Valid && published.String != "" {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			e.Published = t
		}
	}
	e.PDFPath = pdfPath.String
	e.MarkdownPath = markdownPath.String
	e.BibTeX = bibtex.String
	if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
		e.AddedAt = t
	}
	return e, nil
}

func collectEntries(rows *sql.Rows) ([]types.LibraryEntry, error) {
	entries := []types.LibraryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// timeColumn renders a time for storage; zero times store as empty.
func timeColumn(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
