// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the dblp-crawler pipeline.
package types

// Publication is the canonical form of one DBLP search hit. Fields that are
// missing or unparsable upstream degrade to the empty string; a Publication
// never carries partial-parse errors.
type Publication struct {
	// Title is the publication title as returned by DBLP.
	Title string `json:"title" yaml:"title"`

	// Authors is the comma-joined author list in source order.
	Authors string `json:"authors" yaml:"authors"`

	// Venue is the publication venue (conference or journal key).
	Venue string `json:"venue" yaml:"venue"`

	// Year is the publication year, kept as a string to match the API.
	Year string `json:"year" yaml:"year"`

	// URL points at the DBLP record page; may be empty.
	URL string `json:"url" yaml:"url"`
}
