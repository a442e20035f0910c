// Package pipeline orchestrates one full analysis cycle: fetch the three
// streams, update baselines, cluster the corpus, run the correlation
// detector and hotspot scorer, then publish the result for the API layer.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/argusint/argus-cli/internal/baseline"
	"github.com/argusint/argus-cli/internal/cluster"
	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/correlate"
	"github.com/argusint/argus-cli/internal/feeds"
	"github.com/argusint/argus-cli/internal/hotspot"
	"github.com/argusint/argus-cli/internal/markets"
	"github.com/argusint/argus-cli/internal/model"
	"github.com/argusint/argus-cli/internal/store"
)

// Engine wires the stream adapters to the analysis engines and owns the
// published State.
type Engine struct {
	cfg      *config.Config
	store    store.Store
	feeds    *feeds.Adapter
	markets  *markets.Client
	baseline *baseline.Engine
	cluster  *cluster.Engine
	detector *correlate.Detector
	scorer   *hotspot.Scorer
	hotspots []model.Hotspot

	nowFunc func() time.Time

	// runMu makes cycles single-flight: a slow cycle causes the next
	// tick to be skipped rather than stacking up.
	runMu sync.Mutex

	stateMu sync.RWMutex
	state   State
	corpus  []model.NewsItem
}

// New creates a pipeline engine with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	feedAdapter *feeds.Adapter,
	marketClient *markets.Client,
	baselineEngine *baseline.Engine,
	clusterEngine *cluster.Engine,
	detector *correlate.Detector,
	scorer *hotspot.Scorer,
	hotspots []model.Hotspot,
) *Engine {
	return &Engine{
		cfg:      cfg,
		store:    st,
		feeds:    feedAdapter,
		markets:  marketClient,
		baseline: baselineEngine,
		cluster:  clusterEngine,
		detector: detector,
		scorer:   scorer,
		hotspots: hotspots,
		nowFunc:  time.Now,
		state:    State{Deviations: make(map[string]model.DeviationResult)},
	}
}

// State returns a copy of the latest published cycle state.
func (e *Engine) State() State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return cloneState(e.state)
}

// SignalHistory returns the detector's bounded signal history, newest last.
func (e *Engine) SignalHistory() []model.CorrelationSignal {
	return e.detector.History()
}

// HotspotNews returns the drill-down items for one hotspot from the last
// cycle's corpus. The bool reports whether the hotspot id exists.
func (e *Engine) HotspotNews(id string) ([]model.NewsItem, bool) {
	e.stateMu.RLock()
	corpus := append([]model.NewsItem(nil), e.corpus...)
	hotspots := e.state.Hotspots
	e.stateMu.RUnlock()

	for _, h := range hotspots {
		if h.ID == id {
			return e.scorer.RelatedNews(h, corpus, e.nowFunc().UTC()), true
		}
	}
	return nil, false
}

// RunCycle executes one full analysis cycle. If a cycle is already in
// flight this call returns immediately without doing work.
func (e *Engine) RunCycle(ctx context.Context) {
	if !e.runMu.TryLock() {
		zap.L().Warn("pipeline: cycle still running, skipping tick")
		return
	}
	defer e.runMu.Unlock()

	now := e.nowFunc().UTC()
	start := time.Now()

	// The three streams are independent; fetch them concurrently. Each
	// adapter degrades to partial or empty results instead of failing.
	var (
		grouped     map[string][]model.NewsItem
		quotes      []model.MarketQuote
		predictions []model.PredictionMarket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grouped = e.feeds.FetchAll(gctx)
		return nil
	})
	g.Go(func() error {
		quotes = e.markets.Quotes(gctx)
		return nil
	})
	g.Go(func() error {
		predictions = e.markets.Predictions(gctx)
		return nil
	})
	_ = g.Wait()

	var corpus []model.NewsItem
	deviations := make(map[string]model.DeviationResult, len(grouped))
	for category, items := range grouped {
		corpus = append(corpus, items...)
		b := e.baseline.UpdateBaseline(ctx, "news:"+category, len(items))
		deviations[category] = e.baseline.CalculateDeviation(len(items), b)
	}

	events := e.cluster.Cluster(corpus, now)

	// The detector and the hotspot scorer both run on the finished
	// cluster set, never on a partial one. Scoring works on a fresh copy
	// so hotspot slices published in earlier states are never written to
	// while handlers read them.
	signals := e.detector.Analyze(events, predictions, quotes)
	e.hotspots = e.scorer.UpdateActivity(append([]model.Hotspot(nil), e.hotspots...), corpus, now)

	e.stateMu.Lock()
	e.state = State{
		Events:      events,
		Deviations:  deviations,
		Signals:     signals,
		Markets:     quotes,
		Predictions: predictions,
		Hotspots:    e.hotspots,
		LastCycle:   now,
		CycleCount:  e.state.CycleCount + 1,
	}
	e.corpus = append([]model.NewsItem(nil), corpus...)
	e.stateMu.Unlock()

	zap.L().Info("pipeline: cycle complete",
		zap.Int("items", len(corpus)),
		zap.Int("events", len(events)),
		zap.Int("signals", len(signals)),
		zap.Int("markets", len(quotes)),
		zap.Int("predictions", len(predictions)),
		zap.Duration("took", time.Since(start)),
	)
}

// RefreshMarkets re-fetches only the market streams and republishes state.
// Runs between full cycles so quote data stays fresher than the news loop.
func (e *Engine) RefreshMarkets(ctx context.Context) {
	quotes := e.markets.Quotes(ctx)
	predictions := e.markets.Predictions(ctx)
	if len(quotes) == 0 && len(predictions) == 0 {
		return
	}

	e.stateMu.Lock()
	if len(quotes) > 0 {
		e.state.Markets = quotes
	}
	if len(predictions) > 0 {
		e.state.Predictions = predictions
	}
	e.stateMu.Unlock()
}

// Snapshot persists the current state as a playback frame and prunes
// frames past the retention window.
func (e *Engine) Snapshot(ctx context.Context) error {
	state := e.State()
	if state.CycleCount == 0 {
		return nil
	}

	snap := model.PlaybackSnapshot{
		ID:            uuid.New().String(),
		Timestamp:     e.nowFunc().UTC(),
		Events:        state.Events,
		MarketPrices:  make(map[string]float64, len(state.Markets)),
		Predictions:   make([]model.PredictionPrice, 0, len(state.Predictions)),
		HotspotLevels: make(map[string]model.ActivityLevel, len(state.Hotspots)),
	}
	for _, m := range state.Markets {
		snap.MarketPrices[m.Symbol] = m.Price
	}
	for _, p := range state.Predictions {
		snap.Predictions = append(snap.Predictions, model.PredictionPrice{Title: p.Title, YesPrice: p.YesPrice})
	}
	for _, h := range state.Hotspots {
		snap.HotspotLevels[h.ID] = h.Activity.Level
	}

	if err := e.store.SaveSnapshot(ctx, snap); err != nil {
		return eris.Wrap(err, "pipeline: save snapshot")
	}

	if hours := e.cfg.Retention.SnapshotHours; hours > 0 {
		cutoff := e.nowFunc().UTC().Add(-time.Duration(hours) * time.Hour)
		deleted, err := e.store.DeleteSnapshotsBefore(ctx, cutoff)
		if err != nil {
			zap.L().Warn("pipeline: snapshot retention sweep failed", zap.Error(err))
		} else if deleted > 0 {
			zap.L().Debug("pipeline: pruned snapshots", zap.Int("deleted", deleted))
		}
	}

	return nil
}

// Run drives the engine until the context is cancelled: a full cycle per
// feed interval, a market refresh per market interval, and a playback
// snapshot per snapshot interval. The first cycle runs immediately.
func (e *Engine) Run(ctx context.Context) error {
	e.RunCycle(ctx)
	if err := e.Snapshot(ctx); err != nil {
		zap.L().Warn("pipeline: initial snapshot failed", zap.Error(err))
	}

	feedTicker := time.NewTicker(e.cfg.Intervals.FeedInterval())
	defer feedTicker.Stop()
	marketTicker := time.NewTicker(e.cfg.Intervals.MarketInterval())
	defer marketTicker.Stop()
	snapTicker := time.NewTicker(time.Duration(e.cfg.Intervals.SnapshotSecs) * time.Second)
	defer snapTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-feedTicker.C:
			e.RunCycle(ctx)
		case <-marketTicker.C:
			e.RefreshMarkets(ctx)
		case <-snapTicker.C:
			if err := e.Snapshot(ctx); err != nil {
				zap.L().Warn("pipeline: snapshot failed", zap.Error(err))
			}
		}
	}
}
