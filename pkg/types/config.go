// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the per-request transport timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "dblp-crawler/0.1 (mailto:someone@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the retrying DBLP search client.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxHits is the number of hits requested per query (default 100).
	// DBLP caps a single page at 1000; the client never paginates past
	// the first page.
	MaxHits int `json:"max_hits" yaml:"max_hits"`

	// MaxRetries bounds the retry budget per query. A query is attempted
	// at most MaxRetries+1 times (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Backoff is the initial backoff before the first retry; it doubles
	// on every consecutive failure of the same query (default 5s).
	Backoff time.Duration `json:"backoff" yaml:"backoff"`

	// Delay is the fixed inter-query pacing applied after a successful
	// fetch, independent of retry backoff (default 5s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// PaceAllOutcomes also applies Delay after empty and exhausted
	// outcomes. Off by default: empty queries skip ahead immediately.
	PaceAllOutcomes bool `json:"pace_all_outcomes" yaml:"pace_all_outcomes"`
}

// BibtexConfig holds settings for the best-effort citation record downloads.
type BibtexConfig struct {
	// Enabled turns on one BibTeX download per fetched publication.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory citation records are written to.
	Dir string `json:"dir" yaml:"dir"`
}

// StoreConfig holds settings for the crawl history database.
type StoreConfig struct {
	// Path is the SQLite database file (default <outdir>/crawl.db).
	Path string `json:"path" yaml:"path"`

	// Resume skips queries already completed in an earlier run and
	// reloads their stored publications instead of re-fetching.
	Resume bool `json:"resume" yaml:"resume"`
}

// ReportConfig holds settings for the spreadsheet and manifest output.
type ReportConfig struct {
	// WorkbookPath is the Excel workbook file (default <outdir>/results.xlsx).
	WorkbookPath string `json:"workbook_path" yaml:"workbook_path"`

	// ManifestPath is the YAML run manifest file (default <outdir>/run.yaml).
	ManifestPath string `json:"manifest_path" yaml:"manifest_path"`
}
