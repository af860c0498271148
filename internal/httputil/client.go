// Package httputil provides the hardened HTTP client, the rate-limited
// request scheduler and input sanitization shared by the providers.
package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 30 * time.Second

// MaxBodySize caps how much of a response body is read.
const MaxBodySize = 10 * 1024 * 1024

// NewClient creates a hardened HTTP client with secure defaults.
// A zero timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 6,
		},
	}
}

// NewJSONRequest builds a GET request for a JSON API with the given user
// agent. The URL must be absolute and use HTTPS.
func NewJSONRequest(ctx context.Context, rawURL, userAgent string) (*http.Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	return req, nil
}

// NewImageRequest builds a GET request for a page image.
func NewImageRequest(ctx context.Context, rawURL, userAgent, referer string) (*http.Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,*/*;q=0.8")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	return req, nil
}
