// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists crawl history in SQLite. A completed query is
// recorded with the publications it produced, so interrupted batches can
// resume without re-fetching and the workbook can be rebuilt offline.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/dblp-crawler/internal/dblp"
	"github.com/pdiddy/dblp-crawler/pkg/types"
)

// Store manages the crawl history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the schema
// if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
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
		`CREATE TABLE IF NOT EXISTS queries (
			keyword TEXT NOT NULL,
			venue TEXT NOT NULL,
			year TEXT NOT NULL,
			status TEXT NOT NULL,
			hits INTEGER NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (keyword, venue, year)
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			keyword TEXT NOT NULL,
			venue_filter TEXT NOT NULL,
			year_filter TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			venue TEXT,
			year TEXT,
			url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_query
			ON publications(keyword, venue_filter, year_filter)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one completed query and its publications in a transaction,
// replacing any earlier attempt at the same query.
func (s *Store) Record(q dblp.Query, status dblp.Status, pubs []types.Publication) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	venue, year := q.Venue.String(), q.Year.String()

	if _, err := tx.Exec(
		`DELETE FROM publications WHERE keyword = ? AND venue_filter = ? AND year_filter = ?`,
		q.Keyword, venue, year,
	); err != nil {
		return fmt.Errorf("clearing old publications: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO queries (keyword, venue, year, status, hits, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(keyword, venue, year) DO UPDATE SET
			status=excluded.status, hits=excluded.hits, fetched_at=excluded.fetched_at`,
		q.Keyword, venue, year, status.String(), len(pubs), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("upserting query: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO publications (keyword, venue_filter, year_filter, title, authors, venue, year, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pubs {
		if _, err := stmt.Exec(q.Keyword, venue, year, p.Title, p.Authors, p.Venue, p.Year, p.URL); err != nil {
			return fmt.Errorf("inserting publication %q: %w", p.Title, err)
		}
	}

	return tx.Commit()
}

// Completed returns the stored publications for q when a usable outcome is
// on record. Exhausted queries report ok=false so a resumed run retries
// them.
func (s *Store) Completed(q dblp.Query) ([]types.Publication, bool, error) {
	venue, year := q.Venue.String(), q.Year.String()

	var status string
	err := s.db.QueryRow(
		`SELECT status FROM queries WHERE keyword = ? AND venue = ? AND year = ?`,
		q.Keyword, venue, year,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up query: %w", err)
	}
	if status == dblp.StatusExhausted.String() {
		return nil, false, nil
	}

	pubs, err := s.queryPublications(
		`SELECT title, authors, venue, year, url FROM publications
		 WHERE keyword = ? AND venue_filter = ? AND year_filter = ? ORDER BY rowid`,
		q.Keyword, venue, year,
	)
	if err != nil {
		return nil, false, err
	}
	return pubs, true, nil
}

// Keywords lists the distinct keywords on record, in first-seen order.
func (s *Store) Keywords() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT keyword FROM publications GROUP BY keyword ORDER BY min(rowid)`)
	if err != nil {
		return nil, fmt.Errorf("listing keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// Publications returns every stored publication for a keyword, in the
// order the crawler recorded them.
func (s *Store) Publications(keyword string) ([]types.Publication, error) {
	return s.queryPublications(
		`SELECT title, authors, venue, year, url FROM publications
		 WHERE keyword = ? ORDER BY rowid`,
		keyword,
	)
}

func (s *Store) queryPublications(query string, args ...interface{}) ([]types.Publication, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var pubs []types.Publication
	for rows.Next() {
		var p types.Publication
		if err := rows.Scan(&p.Title, &p.Authors, &p.Venue, &p.Year, &p.URL); err != nil {
			return nil, fmt.Errorf("scanning publication: %w", err)
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}
