// Package feeds ingests the configured RSS/Atom sources and normalizes
// them into NewsItems grouped by category. Source failures are isolated:
// a dead feed logs a warning and contributes nothing, it never aborts the
// cycle or reaches the clustering engine as an error.
package feeds

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/fetcher"
	"github.com/argusint/argus-cli/internal/model"
	"github.com/argusint/argus-cli/internal/resilience"
)

// Adapter fetches all configured sources with bounded concurrency.
type Adapter struct {
	fetch          *fetcher.HTTPFetcher
	sources        []config.FeedSource
	alertKeywords  []string
	maxConcurrency int

	mu       sync.Mutex
	breakers map[string]*resilience.Breaker
}

// NewAdapter creates a feed adapter for the configured sources.
func NewAdapter(f *fetcher.HTTPFetcher, sources []config.FeedSource, tables *config.Tables, maxConcurrency int) *Adapter {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	lowered := make([]string, len(tables.AlertKeywords))
	for i, kw := range tables.AlertKeywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &Adapter{
		fetch:          f,
		sources:        sources,
		alertKeywords:  lowered,
		maxConcurrency: maxConcurrency,
		breakers:       make(map[string]*resilience.Breaker),
	}
}

func (a *Adapter) breakerFor(source string) *resilience.Breaker {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.breakers[source]
	if !ok {
		b = resilience.NewBreaker(0, 0)
		a.breakers[source] = b
	}
	return b
}

// FetchAll fetches every source concurrently and returns items grouped by
// category, deduplicated by link. It never returns an error: a category
// whose sources all failed is simply absent from the result.
func (a *Adapter) FetchAll(ctx context.Context) map[string][]model.NewsItem {
	var mu sync.Mutex
	byCategory := make(map[string][]model.NewsItem)
	seen := make(map[string]bool)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrency)

	for _, src := range a.sources {
		g.Go(func() error {
			items, err := a.fetchSource(gCtx, src)
			switch {
			case errors.Is(err, resilience.ErrSourceOpen):
				zap.L().Debug("feeds: skipping source, breaker open",
					zap.String("source", src.Name),
				)
			case err != nil:
				zap.L().Warn("feeds: source failed",
					zap.String("source", src.Name),
					zap.String("category", src.Category),
					zap.Error(err),
				)
			}

			mu.Lock()
			for _, it := range items {
				if seen[it.Link] {
					continue
				}
				seen[it.Link] = true
				byCategory[src.Category] = append(byCategory[src.Category], it)
			}
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only observes ctx cancellation.
	_ = g.Wait()

	return byCategory
}

// fetchSource fetches one source. Returns ErrSourceOpen when the source's
// breaker is open and the fetch was skipped for this cycle.
func (a *Adapter) fetchSource(ctx context.Context, src config.FeedSource) ([]model.NewsItem, error) {
	breaker := a.breakerFor(src.Name)
	if !breaker.Allow() {
		return nil, resilience.ErrSourceOpen
	}

	body, err := a.fetch.Get(ctx, src.URL)
	breaker.Record(src.Name, err)
	if err != nil {
		return nil, eris.Wrap(err, "feeds: fetch source")
	}

	entries, err := parseFeed(body, time.Now().UTC())
	if err != nil {
		return nil, eris.Wrap(err, "feeds: parse feed")
	}

	items := make([]model.NewsItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, model.NewsItem{
			Source:      src.Name,
			Title:       e.Title,
			Link:        e.Link,
			PublishedAt: e.PublishedAt,
			IsAlert:     a.isAlert(e.Title),
		})
	}
	return items, nil
}

func (a *Adapter) isAlert(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range a.alertKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
