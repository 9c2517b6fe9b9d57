// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/dblp-crawler/pkg/types"
)

const sampleTwoHits = `{
  "result": {
    "hits": {
      "@total": "2",
      "hit": [
        {"info": {
          "title": "Paper A",
          "authors": {"author": [{"text": "Ann"}, {"text": "Ben"}]},
          "venue": "ICLR",
          "year": "2024",
          "url": "https://dblp.org/rec/conf/iclr/a24"
        }},
        {"info": {
          "title": "Paper B",
          "authors": {"author": {"text": "Cid"}},
          "venue": "ICLR",
          "year": "2024"
        }}
      ]
    }
  }
}`

const sampleZeroHits = `{"result": {"hits": {"@total": "0"}}}`

func testFetchConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "test/0.1"},
		MaxHits:    100,
		MaxRetries: 5,
		Backoff:    time.Millisecond,
	}
}

// newTestClient points the client at ts and swaps the sleep hook for a
// recorder so delays are observable without real waiting.
func newTestClient(t *testing.T, ts *httptest.Server, cfg types.FetchConfig) (*Client, *[]time.Duration) {
	t.Helper()

	old := searchAPIBase
	searchAPIBase = ts.URL
	t.Cleanup(func() { searchAPIBase = old })

	c := NewClient(ts.Client(), cfg, zerolog.Nop())
	sleeps := &[]time.Duration{}
	c.sleep = func(_ context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return c, sleeps
}

func TestFetchSuccess(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		if r.URL.Query().Get("h") != "100" {
			t.Errorf("h = %q, want 100", r.URL.Query().Get("h"))
		}
		fmt.Fprint(w, sampleTwoHits)
	}))
	defer ts.Close()

	c, sleeps := newTestClient(t, ts, testFetchConfig())
	out, err := c.Fetch(context.Background(), Query{Keyword: "data distillation", Venue: Exact("ICLR"), Year: Exact("2024")})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if out.Status != StatusOK {
		t.Errorf("Status = %v, want ok", out.Status)
	}
	if out.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", out.Attempts)
	}
	if len(out.Publications) != 2 {
		t.Fatalf("len(Publications) = %d, want 2", len(out.Publications))
	}
	if out.Publications[0].Authors != "Ann, Ben" {
		t.Errorf("Authors = %q", out.Publications[0].Authors)
	}
	if out.Publications[1].Authors != "Cid" {
		t.Errorf("single-author Authors = %q", out.Publications[1].Authors)
	}
	if gotQuery != "data distillation streamid:conf/iclr: year:2024:" {
		t.Errorf("q = %q", gotQuery)
	}
	if len(*sleeps) != 0 {
		t.Errorf("no sleeps expected with zero delay, got %v", *sleeps)
	}
}

func TestFetchRateLimitedOnceThenOK(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, sampleTwoHits)
	}))
	defer ts.Close()

	c, sleeps := newTestClient(t, ts, testFetchConfig())
	out, err := c.Fetch(context.Background(), Query{Keyword: "kw"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if out.Status != StatusOK {
		t.Errorf("Status = %v, want ok", out.Status)
	}
	if out.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", out.Attempts)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 7*time.Second {
		t.Errorf("sleeps = %v, want exactly the Retry-After hint", *sleeps)
	}
}

func TestFetchRateLimitedWithoutHintUsesBackoff(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, sampleTwoHits)
	}))
	defer ts.Close()

	cfg := testFetchConfig()
	cfg.Backoff = 3 * time.Millisecond
	c, sleeps := newTestClient(t, ts, cfg)
	out, err := c.Fetch(context.Background(), Query{Keyword: "kw"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if out.Status != StatusOK {
		t.Errorf("Status = %v, want ok", out.Status)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 3*time.Millisecond {
		t.Errorf("sleeps = %v, want the configured backoff", *sleeps)
	}
}

func TestFetchTransportFailureExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	cfg := testFetchConfig()
	cfg.MaxRetries = 3
	c, sleeps := newTestClient(t, ts, cfg)
	out, err := c.Fetch(context.Background(), Query{Keyword: "kw"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if out.Status != StatusExhausted {
		t.Errorf("Status = %v, want exhausted", out.Status)
	}
	// 1 initial + 3 retries = 4 attempts.
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Errorf("HTTP attempts = %d, want 4", got)
	}
	if out.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", out.Attempts)
	}
	if len(*sleeps) != 3 {
		t.Fatalf("len(sleeps) = %d, want 3", len(*sleeps))
	}
	for i := 1; i < len(*sleeps); i++ {
		if (*sleeps)[i] < (*sleeps)[i-1] {
			t.Errorf("delays shrank: %v", *sleeps)
		}
	}
}

func TestFetchZeroTotalIsEmptyNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, sampleZeroHits)
	}))
	defer ts.Close()

	c, sleeps := newTestClient(t, ts, testFetchConfig())
	out, err := c.Fetch(context.Background(), Query{Keyword: "nothing matches this"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if out.Status != StatusEmpty {
		t.Errorf("Status = %v, want empty", out.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("HTTP attempts = %d, want 1", got)
	}
	if len(*sleeps) != 0 {
		t.Errorf("empty result should not consume backoff, slept %v", *sleeps)
	}
}

func TestFetchMalformedBodyNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"result": {"hits": {"@total": ["not", "a", "string"]}}}`)
	}))
	defer ts.Close()

	c, _ := newTestClient(t, ts, testFetchConfig())
	out, err := c.Fetch(context.Background(), Query{Keyword: "kw"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if out.Status != StatusEmpty {
		t.Errorf("Status = %v, want empty", out.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("HTTP attempts = %d, want 1 (malformed is non-retryable)", got)
	}
}

func TestFetchPacesAfterSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleTwoHits)
	}))
	defer ts.Close()

	cfg := testFetchConfig()
	cfg.Delay = 5 * time.Millisecond
	c, sleeps := newTestClient(t, ts, cfg)
	if _, err := c.Fetch(context.Background(), Query{Keyword: "kw"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(*sleeps) != 1 || (*sleeps)[0] != 5*time.Millisecond {
		t.Errorf("sleeps = %v, want the inter-query delay", *sleeps)
	}
}

func TestFetchEmptySkipsPacingUnlessConfigured(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleZeroHits)
	}))
	defer ts.Close()

	cfg := testFetchConfig()
	cfg.Delay = 5 * time.Millisecond
	c, sleeps := newTestClient(t, ts, cfg)
	if _, err := c.Fetch(context.Background(), Query{Keyword: "kw"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(*sleeps) != 0 {
		t.Errorf("empty outcome should skip pacing by default, slept %v", *sleeps)
	}

	cfg.PaceAllOutcomes = true
	c, sleeps = newTestClient(t, ts, cfg)
	if _, err := c.Fetch(context.Background(), Query{Keyword: "kw"}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 5*time.Millisecond {
		t.Errorf("pace-all should pace empty outcomes, slept %v", *sleeps)
	}
}

func TestFetchRejectsEmptyKeyword(t *testing.T) {
	c := NewClient(http.DefaultClient, testFetchConfig(), zerolog.Nop())
	if _, err := c.Fetch(context.Background(), Query{Keyword: ""}); err == nil {
		t.Error("empty keyword should be rejected before any request")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"7", 7 * time.Second},
		{" 12 ", 12 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseRetryAfter(tt.input); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
