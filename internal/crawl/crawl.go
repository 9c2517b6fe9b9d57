// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl walks the keyword × year × venue product, one query at a
// time, and aggregates whatever each fetch returns. The batch never fails
// as a whole: every error is scoped to a single query or a single record
// download, surfaced through the logger, and the aggregation comes back
// structurally complete.
package crawl

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dblp-crawler/internal/dblp"
	"github.com/pdiddy/dblp-crawler/pkg/types"
)

// Aggregation maps each keyword to its ordered result list. Keywords keeps
// the input order so report sheets come out deterministic. Results are
// appended in query iteration order and never mutated after insertion.
// Overlapping queries can produce duplicate entries; the crawler does not
// deduplicate.
type Aggregation struct {
	Keywords []string
	Results  map[string][]types.Publication
}

// NewAggregation returns an empty aggregation covering keywords.
func NewAggregation(keywords []string) *Aggregation {
	return &Aggregation{
		Keywords: keywords,
		Results:  make(map[string][]types.Publication, len(keywords)),
	}
}

// Add appends pubs to the keyword's result list.
func (a *Aggregation) Add(keyword string, pubs []types.Publication) {
	a.Results[keyword] = append(a.Results[keyword], pubs...)
}

// Total returns the number of aggregated publications across all keywords.
func (a *Aggregation) Total() int {
	n := 0
	for _, pubs := range a.Results {
		n += len(pubs)
	}
	return n
}

// Fetcher is the single-query client the crawler drives. *dblp.Client
// implements it; tests substitute a mock.
type Fetcher interface {
	Fetch(ctx context.Context, q dblp.Query) (dblp.Outcome, error)
}

// History records completed queries so a later run can resume without
// re-fetching. Implementations must treat exhausted queries as incomplete.
type History interface {
	// Completed returns the stored publications and ok=true when q
	// already has a usable outcome on record.
	Completed(q dblp.Query) ([]types.Publication, bool, error)

	// Record stores the outcome of q, replacing any earlier attempt.
	Record(q dblp.Query, status dblp.Status, pubs []types.Publication) error
}

// Config assembles the crawler's collaborators. Bibtex and History are
// optional; nil disables the corresponding behavior.
type Config struct {
	Fetcher Fetcher
	Bibtex  *BibtexDownloader
	History History
	Resume  bool
	Logger  zerolog.Logger
}

// Crawler runs the batch. Strictly sequential: one request in flight at a
// time, because the upstream rate limit is global and per-query backoff
// state stays trivial that way.
type Crawler struct {
	fetcher Fetcher
	bibtex  *BibtexDownloader
	history History
	resume  bool
	log     zerolog.Logger
}

// New builds a Crawler from cfg.
func New(cfg Config) *Crawler {
	return &Crawler{
		fetcher: cfg.Fetcher,
		bibtex:  cfg.Bibtex,
		history: cfg.History,
		resume:  cfg.Resume,
		log:     cfg.Logger,
	}
}

// Run iterates keyword, then year, then venue — the nesting order is a
// contract, matching the order results land in each keyword's list. It
// returns early only when ctx ends; the aggregation is valid either way.
func (c *Crawler) Run(ctx context.Context, keywords []string, venues, years []dblp.Filter) *Aggregation {
	agg := NewAggregation(keywords)

	for _, keyword := range keywords {
		for _, year := range years {
			for _, venue := range venues {
				if ctx.Err() != nil {
					c.log.Warn().Err(ctx.Err()).Msg("crawl interrupted")
					return agg
				}
				q := dblp.Query{Keyword: keyword, Venue: venue, Year: year}
				c.runQuery(ctx, q, agg)
			}
		}
	}
	return agg
}

func (c *Crawler) runQuery(ctx context.Context, q dblp.Query, agg *Aggregation) {
	if c.resume && c.history != nil {
		pubs, ok, err := c.history.Completed(q)
		if err != nil {
			c.log.Warn().Stringer("query", q).Err(err).Msg("history lookup failed")
		} else if ok {
			c.log.Info().Stringer("query", q).Int("hits", len(pubs)).Msg("already fetched, reusing stored results")
			agg.Add(q.Keyword, pubs)
			return
		}
	}

	out, err := c.fetcher.Fetch(ctx, q)
	if err != nil {
		// Unsendable query (configuration error); skip it.
		c.log.Error().Stringer("query", q).Err(err).Msg("query rejected")
		return
	}

	agg.Add(q.Keyword, out.Publications)

	if c.history != nil {
		if err := c.history.Record(q, out.Status, out.Publications); err != nil {
			c.log.Warn().Stringer("query", q).Err(err).Msg("recording query failed")
		}
	}

	if c.bibtex != nil {
		for _, p := range out.Publications {
			c.bibtex.Fetch(ctx, p.URL, p.Title)
		}
	}
}
