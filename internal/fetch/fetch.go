// Package fetch retrieves text for an evidence URL with bounded retries,
// the only blocking operation in the guardrail evaluation engine.
//
// The retry loop is adapted from the teacher's internal/provider/retry.go
// doWithRetry helper (itself built around *http.Client and *http.Request),
// rewritten around the fetcher's own timeout/backoff contract (spec.md
// §4.10) instead of the provider's 429/Retry-After rule.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thinkwright/sentryguard/internal/guarderrors"
	"github.com/thinkwright/sentryguard/internal/obslog"
)

const (
	defaultTimeout = 5 * time.Second
	defaultRetries = 2
	userAgent      = "sentryguard/0.1.0"
)

// Fetcher retrieves the text content of a URL. The hallucination checker
// accepts an alternative Fetcher for testing or to honor caller-specific
// cancellation policies.
type Fetcher func(ctx context.Context, url string) (string, error)

// Default is the production Fetcher: up to 1+retries attempts over HTTP(S),
// sleeping 0.2s·(attempt+1) between failures, logging each failed attempt
// at warning level before raising a single aggregated network error.
func Default(ctx context.Context, url string) (string, error) {
	return withTimeout(ctx, url, defaultTimeout, defaultRetries)
}

// WithTimeout returns a Fetcher using a caller-supplied timeout, keeping the
// default retry count and backoff schedule.
func WithTimeout(timeout time.Duration) Fetcher {
	return func(ctx context.Context, url string) (string, error) {
		return withTimeout(ctx, url, timeout, defaultRetries)
	}
}

func withTimeout(ctx context.Context, url string, timeout time.Duration, retries int) (string, error) {
	var lastErr error
	client := &http.Client{Timeout: timeout}

	for attempt := 0; attempt <= retries; attempt++ {
		body, err := attemptFetch(ctx, client, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		obslog.Warn("web_fetch_failed", "url", url, "attempt", attempt, "error", err.Error())
		if attempt < retries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
			}
		}
	}
	return "", fmt.Errorf("%w: failed to fetch %s: %v", guarderrors.ErrNetwork, url, lastErr)
}

func attemptFetch(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("http %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	// UTF-8 decode with replacement for invalid bytes, per spec.
	return strings.ToValidUTF8(string(body), "�"), nil
}
