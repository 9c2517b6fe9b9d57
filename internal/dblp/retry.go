// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import "time"

// retryState tracks the retry budget and backoff for a single query. State
// is created fresh per query and never carried across queries, so one slow
// query cannot inflate the next one's delays. The transitions are pure:
// the fetch loop owns all sleeping and I/O.
type retryState struct {
	// attempt counts failed attempts so far.
	attempt int

	// backoff is the delay the next generic failure would sleep.
	backoff time.Duration
}

func newRetryState(base time.Duration) retryState {
	return retryState{backoff: base}
}

// step tells the fetch loop what to do after a failed attempt.
type step struct {
	// sleep is how long to wait before the next attempt.
	sleep time.Duration

	// retry is false once the budget is exhausted.
	retry bool
}

// rateLimited consumes one retry slot for an HTTP 429. The sleep is the
// server-supplied hint when present, otherwise the current backoff. The
// backoff doubles either way, so delays stay non-decreasing even when the
// server stops sending hints.
func (s retryState) rateLimited(hint time.Duration, maxRetries int) (retryState, step) {
	sleep := s.backoff
	if hint > 0 {
		sleep = hint
	}
	next := retryState{attempt: s.attempt + 1, backoff: s.backoff * 2}
	return next, step{sleep: sleep, retry: next.attempt <= maxRetries}
}

// transportError consumes one retry slot for a timeout, connection error,
// or unexpected status. Sleeps the current backoff, then doubles it.
func (s retryState) transportError(maxRetries int) (retryState, step) {
	sleep := s.backoff
	next := retryState{attempt: s.attempt + 1, backoff: s.backoff * 2}
	return next, step{sleep: sleep, retry: next.attempt <= maxRetries}
}
