package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxConns  = 5
	defaultUserAgent = "Government-Services-Bot/1.0 (Educational Purpose)"
)

// ErrNoContent means the URL yielded no observable content (non-2xx
// response or an empty extraction). It is distinct from an empty string:
// callers must not treat it as "the page is empty".
var ErrNoContent = errors.New("no content observed")

// FetchError wraps a failed fetch with the URL and HTTP status involved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Config controls the fetcher's HTTP behavior.
type Config struct {
	Timeout   time.Duration
	MaxConns  int
	UserAgent string
}

// Fetcher retrieves pages and extracts their normalized text. It owns an
// HTTP client with a bounded connection pool; construct one per owner and
// release it with Close.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher with a dedicated HTTP client.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = defaultMaxConns
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConns,
		MaxIdleConns:        cfg.MaxConns,
		MaxIdleConnsPerHost: cfg.MaxConns,
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		userAgent: cfg.UserAgent,
	}
}

// Close releases the fetcher's idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

// FetchAndExtract retrieves a URL and returns its normalized main-content
// text. A non-2xx response or an empty extraction returns ErrNoContent
// (wrapped in a FetchError); network and parse failures return a
// FetchError with the cause.
func (f *Fetcher) FetchAndExtract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Err: ErrNoContent}
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if text == "" {
		return "", &FetchError{URL: url, Err: ErrNoContent}
	}

	return text, nil
}
