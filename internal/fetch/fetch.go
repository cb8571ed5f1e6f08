// Package fetch resolves forecast image URLs to image bytes. Transient
// failures are retried with backoff; permanent failures degrade to a
// generated placeholder image, so callers always receive valid image data
// and never need a missing-image code path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// userAgent mimics a browser; some upstream map servers reject generic
// client strings.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxImageSize caps a single downloaded image.
const maxImageSize = 50 << 20 // 50 MB

// Options configures retry behavior.
type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration // per attempt
}

// DefaultOptions returns the production retry policy.
func DefaultOptions() Options {
	return Options{
		RetryMax:     3,
		RetryWaitMin: 300 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		Timeout:      10 * time.Second,
	}
}

// Fetcher downloads images over HTTP with bounded retries.
type Fetcher struct {
	client *retryablehttp.Client
	log    *slog.Logger
}

// New builds a Fetcher. Retries cover connection errors and 5xx responses
// per the default retryablehttp policy.
func New(logger *slog.Logger, opts Options) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = nil // retry attempts are logged below instead

	return &Fetcher{client: client, log: logger}
}

// Get downloads url and returns the body bytes. Retries are internal; the
// returned error means the retry budget is exhausted or the failure is not
// transient (e.g. 404).
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("download %s: image exceeds %d bytes", url, int64(maxImageSize))
	}
	return data, nil
}

// GetOrPlaceholder never fails: on any download error it returns a generated
// placeholder image carrying the caption, so the report still renders with
// the correct layout.
func (f *Fetcher) GetOrPlaceholder(ctx context.Context, url, caption string) []byte {
	data, err := f.Get(ctx, url)
	if err == nil {
		return data
	}
	f.log.Warn("image download failed, substituting placeholder", "url", url, "caption", caption, "error", err)
	return Placeholder("Image Not Found:\n" + caption)
}
