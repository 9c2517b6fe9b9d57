// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dblp implements the retrying client for the DBLP publication
// search API. One Client is constructed per run and holds the shared
// transport, logger, and fetch configuration; there is no package-level
// mutable state.
package dblp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dblp-crawler/pkg/types"
)

// searchAPIBase is the DBLP publication search endpoint. Declared as a var
// so tests can substitute an httptest server.
var searchAPIBase = "https://dblp.org/search/publ/api"

const (
	defaultMaxHits    = 100
	defaultMaxRetries = 5
	defaultBackoff    = 5 * time.Second
)

// Status classifies the outcome of one logical query.
type Status int

const (
	// StatusOK means the query returned hits (possibly zero after
	// normalization).
	StatusOK Status = iota

	// StatusEmpty means the API reported zero total hits. Terminal, not
	// an error, and never retried.
	StatusEmpty

	// StatusExhausted means the retry budget ran out before a usable
	// response arrived. The query is abandoned; the batch continues.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome is the result of one logical query. Rate limiting is handled
// inside the client and never appears here.
type Outcome struct {
	Status       Status
	Publications []types.Publication

	// Attempts counts HTTP attempts made for this query, for logging.
	Attempts int
}

// Client issues queries against the DBLP search API with bounded retries
// and exponential backoff.
type Client struct {
	http *http.Client
	cfg  types.FetchConfig
	log  zerolog.Logger

	// sleep waits for a duration or until the context ends. Tests swap
	// in a recorder to observe delays without real sleeping.
	sleep func(context.Context, time.Duration) error
}

// NewClient builds a Client, applying defaults for unset fetch settings.
func NewClient(h *http.Client, cfg types.FetchConfig, logger zerolog.Logger) *Client {
	if cfg.MaxHits <= 0 {
		cfg.MaxHits = defaultMaxHits
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	return &Client{http: h, cfg: cfg, log: logger, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Fetch runs one logical query through the retry loop. The returned error
// is non-nil only for unsendable queries (empty keyword); every transport
// or response problem is absorbed into the Outcome and logged.
func (c *Client) Fetch(ctx context.Context, q Query) (Outcome, error) {
	if err := q.Validate(); err != nil {
		return Outcome{}, err
	}

	params := url.Values{
		"q":      {q.queryString()},
		"format": {"json"},
		"h":      {strconv.Itoa(c.cfg.MaxHits)},
	}
	reqURL := searchAPIBase + "?" + params.Encode()

	state := newRetryState(c.cfg.Backoff)
	attempts := 0

	for {
		attempts++
		res := c.attempt(ctx, reqURL)

		switch res.kind {
		case attemptOK:
			c.log.Info().Stringer("query", q).Int("hits", len(res.pubs)).Msg("fetched")
			return c.paced(ctx, Outcome{Status: StatusOK, Publications: res.pubs, Attempts: attempts}), nil

		case attemptEmpty:
			c.log.Info().Stringer("query", q).Msg("no results")
			return c.paced(ctx, Outcome{Status: StatusEmpty, Attempts: attempts}), nil

		case attemptMalformed:
			// Non-retryable: the server answered, the body just did not
			// match the expected shape.
			c.log.Warn().Stringer("query", q).Err(res.err).Msg("malformed response, keeping what parsed")
			return c.paced(ctx, Outcome{Status: StatusEmpty, Attempts: attempts}), nil

		case attemptRateLimited:
			var st step
			state, st = state.rateLimited(res.hint, c.cfg.MaxRetries)
			c.log.Warn().Stringer("query", q).Dur("retry_after", st.sleep).Int("attempt", attempts).Msg("rate limited")
			if !st.retry {
				c.log.Error().Stringer("query", q).Int("attempts", attempts).Msg("retry budget exhausted, skipping")
				return c.paced(ctx, Outcome{Status: StatusExhausted, Attempts: attempts}), nil
			}
			if err := c.sleep(ctx, st.sleep); err != nil {
				return Outcome{Status: StatusExhausted, Attempts: attempts}, nil
			}

		case attemptFailed:
			var st step
			state, st = state.transportError(c.cfg.MaxRetries)
			c.log.Warn().Stringer("query", q).Err(res.err).Int("attempt", attempts).Dur("backoff", st.sleep).Msg("fetch failed")
			if !st.retry {
				c.log.Error().Stringer("query", q).Int("attempts", attempts).Msg("retry budget exhausted, skipping")
				return c.paced(ctx, Outcome{Status: StatusExhausted, Attempts: attempts}), nil
			}
			if err := c.sleep(ctx, st.sleep); err != nil {
				return Outcome{Status: StatusExhausted, Attempts: attempts}, nil
			}
		}
	}
}

// paced applies the fixed inter-query delay that keeps the batch inside
// the API's ambient rate limit. Successful fetches always pace; other
// outcomes pace only when PaceAllOutcomes is set.
func (c *Client) paced(ctx context.Context, out Outcome) Outcome {
	if c.cfg.Delay <= 0 {
		return out
	}
	if out.Status == StatusOK || c.cfg.PaceAllOutcomes {
		c.sleep(ctx, c.cfg.Delay)
	}
	return out
}

type attemptKind int

const (
	attemptOK attemptKind = iota
	attemptEmpty
	attemptRateLimited
	attemptFailed
	attemptMalformed
)

type attemptResult struct {
	kind attemptKind
	pubs []types.Publication

	// hint is the server-supplied Retry-After, rate-limited only.
	hint time.Duration
	err  error
}

// attempt performs a single HTTP round trip and classifies the result.
func (c *Client) attempt(ctx context.Context, reqURL string) attemptResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return attemptResult{kind: attemptFailed, err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return attemptResult{kind: attemptFailed, err: fmt.Errorf("search request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return attemptResult{kind: attemptRateLimited, hint: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return attemptResult{kind: attemptFailed, err: fmt.Errorf("search API returned HTTP %d", resp.StatusCode)}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return attemptResult{kind: attemptMalformed, err: fmt.Errorf("parsing search response: %w", err)}
	}

	if sr.Result.Hits.Total == "0" {
		return attemptResult{kind: attemptEmpty}
	}

	pubs := make([]types.Publication, 0, len(sr.Result.Hits.Hit))
	for _, h := range sr.Result.Hits.Hit {
		pubs = append(pubs, h.publication())
	}
	return attemptResult{kind: attemptOK, pubs: pubs}
}

// parseRetryAfter reads an integer-seconds Retry-After value; 0 when the
// header is absent or not a plain number.
func parseRetryAfter(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
