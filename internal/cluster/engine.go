// Package cluster groups near-duplicate news items into clustered events.
// Clustering is recomputed from scratch on the full corpus each cycle; a
// cluster is a derived view, not persisted identity.
package cluster

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
)

const defaultTier = 4

// Engine clusters news items using token-overlap similarity.
type Engine struct {
	cfg       config.ClusterConfig
	stopwords map[string]struct{}
	lexicon   map[string]float64
	tiers     map[string]int
}

// NewEngine builds an engine from config and the injected keyword tables.
func NewEngine(cfg config.ClusterConfig, tables *config.Tables, tiers map[string]int) *Engine {
	stopwords := make(map[string]struct{}, len(tables.Stopwords))
	for _, w := range tables.Stopwords {
		stopwords[w] = struct{}{}
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = 0.5
	}
	if cfg.MaxTopSources <= 0 {
		cfg.MaxTopSources = 5
	}
	if cfg.MinWindowHours <= 0 {
		cfg.MinWindowHours = 0.25
	}
	return &Engine{
		cfg:       cfg,
		stopwords: stopwords,
		lexicon:   tables.SentimentLexicon,
		tiers:     tiers,
	}
}

type protoCluster struct {
	seedTokens []string
	items      []model.NewsItem
}

// Cluster groups the items into clustered events. Items are processed in
// chronological order so the earliest report seeds its cluster; each item
// joins the first cluster whose seed it is similar enough to. The output
// is a partition: every item lands in exactly one cluster.
func (e *Engine) Cluster(items []model.NewsItem, now time.Time) []model.ClusteredEvent {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]model.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].Link < sorted[j].Link
		}
		return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
	})

	var protos []*protoCluster
	for _, item := range sorted {
		tokens := Normalize(item.Title, e.stopwords)

		joined := false
		for _, pc := range protos {
			if Similarity(tokens, pc.seedTokens) >= e.cfg.SimilarityThreshold {
				pc.items = append(pc.items, item)
				joined = true
				break
			}
		}
		if !joined {
			protos = append(protos, &protoCluster{seedTokens: tokens, items: []model.NewsItem{item}})
		}
	}

	events := make([]model.ClusteredEvent, 0, len(protos))
	for _, pc := range protos {
		events = append(events, e.build(pc, now))
	}
	return events
}

func (e *Engine) build(pc *protoCluster, now time.Time) model.ClusteredEvent {
	items := pc.items

	primary := items[0]
	for _, it := range items[1:] {
		pt, ct := e.tierOf(primary.Source), e.tierOf(it.Source)
		if ct < pt || (ct == pt && it.PublishedAt.Before(primary.PublishedAt)) {
			primary = it
		}
	}

	firstSeen := items[0].PublishedAt
	lastUpdated := items[0].PublishedAt
	isAlert := false
	distinct := make(map[string]model.NewsItem, len(items))
	for _, it := range items {
		if it.PublishedAt.Before(firstSeen) {
			firstSeen = it.PublishedAt
		}
		if it.PublishedAt.After(lastUpdated) {
			lastUpdated = it.PublishedAt
		}
		if it.IsAlert {
			isAlert = true
		}
		// Keep the most recent item per source for the top-sources list.
		if prev, ok := distinct[it.Source]; !ok || it.PublishedAt.After(prev.PublishedAt) {
			distinct[it.Source] = it
		}
	}

	velocity := e.velocity(items, len(distinct), firstSeen, lastUpdated, now)

	ev := model.ClusteredEvent{
		ID:            fingerprint(pc.seedTokens),
		PrimaryTitle:  primary.Title,
		PrimarySource: primary.Source,
		PrimaryLink:   primary.Link,
		SourceCount:   len(distinct),
		TopSources:    e.topSources(distinct),
		Items:         items,
		FirstSeen:     firstSeen,
		LastUpdated:   lastUpdated,
		IsAlert:       isAlert,
		Velocity:      &velocity,
	}
	return ev
}

func (e *Engine) tierOf(source string) int {
	if t, ok := e.tiers[source]; ok {
		return t
	}
	return defaultTier
}

// topSources returns up to MaxTopSources distinct sources ordered by tier,
// most recent first within a tier.
func (e *Engine) topSources(distinct map[string]model.NewsItem) []model.ClusterSource {
	sources := make([]model.ClusterSource, 0, len(distinct))
	recency := make(map[string]time.Time, len(distinct))
	for name, it := range distinct {
		sources = append(sources, model.ClusterSource{
			Name: name,
			Tier: e.tierOf(name),
			URL:  it.Link,
		})
		recency[name] = it.PublishedAt
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Tier != sources[j].Tier {
			return sources[i].Tier < sources[j].Tier
		}
		ti, tj := recency[sources[i].Name], recency[sources[j].Name]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return sources[i].Name < sources[j].Name
	})

	if len(sources) > e.cfg.MaxTopSources {
		sources = sources[:e.cfg.MaxTopSources]
	}
	return sources
}

// fingerprint derives a stable cluster id from the seed's token set so the
// same corpus always yields the same ids.
func fingerprint(tokens []string) string {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)

	h := fnv.New64a()
	for _, t := range sorted {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
