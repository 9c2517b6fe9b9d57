// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"fmt"
	"strings"
)

// Filter selects a value for one query dimension, or matches everything.
// The zero value is the wildcard. Keeping the wildcard in the type instead
// of an "all" string sentinel means the core never compares magic strings;
// the CLI maps the user-facing token at the boundary.
type Filter struct {
	value string
}

// Exact returns a filter matching a single value.
func Exact(v string) Filter { return Filter{value: v} }

// Wildcard returns the match-everything filter.
func Wildcard() Filter { return Filter{} }

// ParseFilter maps the user-facing "all" token (case-insensitive) to the
// wildcard and anything else to an exact filter.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return Wildcard()
	}
	return Exact(s)
}

// IsWildcard reports whether the filter matches everything.
func (f Filter) IsWildcard() bool { return f.value == "" }

// Value returns the filtered value; empty for the wildcard.
func (f Filter) Value() string { return f.value }

// String renders the filter for logs and store keys, using "all" for the
// wildcard.
func (f Filter) String() string {
	if f.IsWildcard() {
		return "all"
	}
	return f.value
}

// Query is one (keyword, venue, year) combination submitted to the search
// API. Queries are transient: built from loop variables, used once, never
// mutated.
type Query struct {
	Keyword string
	Venue   Filter
	Year    Filter
}

// Validate reports configuration errors that make the query unsendable.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Keyword) == "" {
		return fmt.Errorf("query keyword must not be empty")
	}
	return nil
}

// String renders the query for log lines.
func (q Query) String() string {
	return fmt.Sprintf("%q %s %s", q.Keyword, q.Venue, q.Year)
}

// queryString builds the DBLP q parameter: the keyword, a stream filter
// clause when a venue is set, and a year clause when a year is set.
func (q Query) queryString() string {
	parts := []string{q.Keyword}
	if !q.Venue.IsWildcard() {
		parts = append(parts, "streamid:conf/"+strings.ToLower(q.Venue.Value())+":")
	}
	if !q.Year.IsWildcard() {
		parts = append(parts, "year:"+q.Year.Value()+":")
	}
	return strings.Join(parts, " ")
}
