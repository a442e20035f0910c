// Package fetcher provides the shared rate-limited, retrying HTTP client
// used by the feed and market ingestion adapters.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/argusint/argus-cli/internal/resilience"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// HTTPFetcher implements rate-limited GETs with retry on transient errors.
// One limiter per host; public feed endpoints get a conservative default.
type HTTPFetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a new HTTPFetcher with the given options.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "argus-cli/1.0"
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		// 2 req/s per host is plenty for RSS and quote polling.
		lim = rate.NewLimiter(2, 4)
		f.limiters[host] = lim
	}
	return lim
}

// Get fetches rawURL and returns the response body bytes.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = f.opts.MaxRetries

	err := resilience.Do(ctx, retryCfg, rawURL, func(ctx context.Context) error {
		if err := f.limiterFor(rawURL).Wait(ctx); err != nil {
			return eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return eris.Wrap(err, "fetcher: do request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			zap.L().Warn("fetcher: transient status",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
			)
			return resilience.NewTransientError(
				eris.Errorf("http %d from %s", resp.StatusCode, rawURL),
				resp.StatusCode,
			)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return eris.Wrap(err, "fetcher: read body")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}
