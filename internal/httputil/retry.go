// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by network-facing stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the starting backoff for retried requests. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxAttempts = 4

// retryable reports whether a status code is worth another attempt:
// rate limiting and transient upstream failures.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Do executes req, retrying retryable status codes with doubling backoff.
// A Retry-After header in whole seconds overrides the computed delay.
// When maxAttempts is 0 the default (4) is used. If the context is
// cancelled during a wait, ctx.Err() is returned. After the final attempt
// the last response is returned as-is for the caller to inspect.
//
// A request with a body is only retried when req.GetBody is set (as it is
// for requests built from bytes or strings readers); otherwise the first
// response is returned regardless of status.
func Do(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	delay := RetryBaseDelay
	for attempt := 1; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 1 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}
		replayable := req.Body == nil || req.GetBody != nil
		if !retryable(resp.StatusCode) || attempt >= maxAttempts || !replayable {
			return resp, nil
		}

		wait := delay
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, parseErr := strconv.Atoi(s); parseErr == nil && secs >= 0 {
				wait = time.Duration(secs) * time.Second
			}
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}
