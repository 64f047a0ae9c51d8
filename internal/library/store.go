// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library maintains a local SQLite index of downloaded records
// so past downloads can be listed and searched offline.
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

	"github.com/pdiddy/zenodo-cli/pkg/types"
)

const dbFile = "library.db"

// DefaultDir returns the default library directory,
// ~/.local/share/zenodo-cli.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zenodo-cli"
	}
	return filepath.Join(home, ".local", "share", "zenodo-cli")
}

// Store manages the library SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the library database at dir/library.db,
// creating the schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS records (
			record_id INTEGER PRIMARY KEY,
			title TEXT,
			creators TEXT,
			doi TEXT,
			concept_doi TEXT,
			version TEXT,
			publication_date TEXT,
			description TEXT,
			files INTEGER,
			dest_path TEXT,
			fetched_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE records_fts USING fts5(title, description, content=records, content_rowid=record_id)`,
			`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
				INSERT INTO records_fts(rowid, title, description) VALUES (new.record_id, new.title, new.description);
			END`,
			`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, description) VALUES('delete', old.record_id, old.title, old.description);
			END`,
			`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
				INSERT INTO records_fts(records_fts, rowid, title, description) VALUES('delete', old.record_id, old.title, old.description);
				INSERT INTO records_fts(rowid, title, description) VALUES (new.record_id, new.title, new.description);
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

// Add upserts a downloaded record. Re-downloading the same record
// replaces the stored row.
func (s *Store) Add(ctx context.Context, entry types.LibraryEntry) error {
	creatorsJSON, _ := json.Marshal(entry.Creators)
	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (record_id, title, creators, doi, concept_doi, version,
			publication_date, description, files, dest_path, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(record_id) DO UPDATE SET
			title=excluded.title, creators=excluded.creators, doi=excluded.doi,
			concept_doi=excluded.concept_doi, version=excluded.version,
			publication_date=excluded.publication_date, description=excluded.description,
			files=excluded.files, dest_path=excluded.dest_path, fetched_at=excluded.fetched_at`,
		entry.RecordID, entry.Title, string(creatorsJSON), entry.DOI, entry.ConceptDOI,
		entry.Version, entry.PublicationDate, entry.Description, entry.Files,
		entry.DestPath, fetchedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting record %d: %w", entry.RecordID, err)
	}
	return nil
}

// List returns indexed records, most recently fetched first.
func (s *Store) List(ctx context.Context, limit int) ([]types.LibraryEntry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, title, creators, doi, concept_doi, version,
			publication_date, description, files, dest_path, fetched_at
		 FROM records ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Search matches the FTS5 index over title and description and joins
// back to the records table.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]types.LibraryEntry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.record_id, r.title, r.creators, r.doi, r.concept_doi, r.version,
			r.publication_date, r.description, r.files, r.dest_path, r.fetched_at
		 FROM records_fts
		 JOIN records r ON r.record_id = records_fts.rowid
		 WHERE records_fts MATCH ?
		 ORDER BY records_fts.rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching library: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]types.LibraryEntry, error) {
	var entries []types.LibraryEntry
	for rows.Next() {
		var (
			e            types.LibraryEntry
			creatorsJSON sql.NullString
			fetchedAt    sql.NullString
		)
		if err := rows.Scan(
			&e.RecordID, &e.Title, &creatorsJSON, &e.DOI, &e.ConceptDOI, &e.Version,
			&e.PublicationDate, &e.Description, &e.Files, &e.DestPath, &fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if creatorsJSON.Valid {
			json.Unmarshal([]byte(creatorsJSON.String), &e.Creators)
		}
		if fetchedAt.Valid {
			if t, err := time.Parse(time.RFC3339, fetchedAt.String); err == nil {
				e.FetchedAt = t
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
