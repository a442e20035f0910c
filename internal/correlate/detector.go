// Package correlate detects cross-stream correlation signals: prediction
// markets moving ahead of news, velocity spikes, markets diverging in
// silence, and independent-source convergence on one story.
//
// All state (previous snapshot, dedupe set, signal history) is owned by
// the Detector instance; constructing a new Detector gives a clean slate.
package correlate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
)

// titleKeyLen is how many characters of a prediction title form its
// cross-cycle matching key.
const titleKeyLen = 40

// streamSnapshot is the per-cycle view the detector diffs against.
// Exactly one previous snapshot is retained, replaced wholesale.
type streamSnapshot struct {
	topicScores      map[string]float64
	predictionPrices map[string]float64
	marketChanges    map[string]float64
	takenAt          time.Time
}

// Detector maintains rolling cross-stream state and emits typed signals.
type Detector struct {
	cfg     config.DetectorConfig
	topics  Topics
	nowFunc func() time.Time

	prev    *streamSnapshot
	dedupe  map[string]time.Time // dedupe key -> expiry
	history []model.CorrelationSignal
}

// NewDetector creates a detector with empty state.
func NewDetector(cfg config.DetectorConfig, topics Topics) *Detector {
	if cfg.PredictionShiftMin <= 0 {
		cfg.PredictionShiftMin = 5.0
	}
	if cfg.LowCoverageScore <= 0 {
		cfg.LowCoverageScore = 10.0
	}
	if cfg.VelocitySpikeScore <= 0 {
		cfg.VelocitySpikeScore = 15.0
	}
	if cfg.EquityDivergencePct <= 0 {
		cfg.EquityDivergencePct = 3.0
	}
	if cfg.CryptoDivergencePct <= 0 {
		cfg.CryptoDivergencePct = 5.0
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = 0.6
	}
	if cfg.DedupeWindowMins <= 0 {
		cfg.DedupeWindowMins = 30
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 100
	}
	return &Detector{
		cfg:     cfg,
		topics:  topics,
		nowFunc: time.Now,
		dedupe:  make(map[string]time.Time),
	}
}

// Analyze runs one detection cycle over the complete cluster set plus the
// market and prediction snapshots. It must be called after clustering has
// finished for the cycle. Total: returns nil (no signals) rather than an
// error for any input, including empty ones.
func (d *Detector) Analyze(events []model.ClusteredEvent, predictions []model.PredictionMarket, markets []model.MarketQuote) []model.CorrelationSignal {
	now := d.nowFunc().UTC()
	d.sweepDedupe(now)

	current := &streamSnapshot{
		topicScores:      d.extractTopicScores(events),
		predictionPrices: predictionPrices(predictions),
		marketChanges:    marketChanges(markets),
		takenAt:          now,
	}

	// Cold start: need two cycles to diff.
	if d.prev == nil {
		d.prev = current
		return nil
	}

	var candidates []model.CorrelationSignal
	candidates = append(candidates, d.detectPredictionShifts(current, predictions, now)...)
	candidates = append(candidates, d.detectVelocitySpikes(current, now)...)
	candidates = append(candidates, d.detectSilentDivergence(current, markets, now)...)
	candidates = append(candidates, d.detectConvergence(events, now)...)
	candidates = append(candidates, d.detectTriangulation(events, now)...)

	emitted := d.filter(candidates, now)

	// The snapshot swap happens regardless of what was emitted.
	d.prev = current

	d.history = append(d.history, emitted...)
	if len(d.history) > d.cfg.MaxHistory {
		d.history = d.history[len(d.history)-d.cfg.MaxHistory:]
	}

	if len(emitted) > 0 {
		zap.L().Info("correlate: signals emitted",
			zap.Int("count", len(emitted)),
			zap.Int("candidates", len(candidates)),
		)
	}

	return emitted
}

// filter applies dedupe, one-signal-per-type, and the confidence floor.
// Only signals that actually survive are recorded in the dedupe set.
func (d *Detector) filter(candidates []model.CorrelationSignal, now time.Time) []model.CorrelationSignal {
	window := time.Duration(d.cfg.DedupeWindowMins) * time.Minute
	seenType := make(map[model.SignalType]bool)

	var emitted []model.CorrelationSignal
	for _, sig := range candidates {
		if sig.Confidence < d.cfg.ConfidenceFloor {
			continue
		}
		if seenType[sig.Type] {
			continue
		}

		key := dedupeKey(sig)
		if expiry, ok := d.dedupe[key]; ok && now.Before(expiry) {
			continue
		}

		seenType[sig.Type] = true
		d.dedupe[key] = now.Add(window)
		emitted = append(emitted, sig)
	}
	return emitted
}

// History returns the bounded signal history, newest last.
func (d *Detector) History() []model.CorrelationSignal {
	out := make([]model.CorrelationSignal, len(d.history))
	copy(out, d.history)
	return out
}

// Reset clears all detector state.
func (d *Detector) Reset() {
	d.prev = nil
	d.dedupe = make(map[string]time.Time)
	d.history = nil
}

func (d *Detector) sweepDedupe(now time.Time) {
	for key, expiry := range d.dedupe {
		if !now.Before(expiry) {
			delete(d.dedupe, key)
		}
	}
}

// dedupeKey keys a candidate by type, subject, and its magnitude rounded
// to one decimal, so an unchanged condition does not re-fire within the
// dedupe window.
func dedupeKey(sig model.CorrelationSignal) string {
	value := sig.Data.PredictionShift + sig.Data.MarketChange + sig.Data.NewsVelocity
	return fmt.Sprintf("%s|%s|%.1f", sig.Type, sig.Title, value)
}

// titleKey truncates and folds a prediction title into its matching key.
func titleKey(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	runes := []rune(lower)
	if len(runes) > titleKeyLen {
		runes = runes[:titleKeyLen]
	}
	return string(runes)
}

func predictionPrices(predictions []model.PredictionMarket) map[string]float64 {
	prices := make(map[string]float64, len(predictions))
	for _, p := range predictions {
		prices[titleKey(p.Title)] = p.YesPrice
	}
	return prices
}

func marketChanges(markets []model.MarketQuote) map[string]float64 {
	changes := make(map[string]float64, len(markets))
	for _, m := range markets {
		changes[m.Symbol] = m.ChangePct
	}
	return changes
}

func newSignal(t model.SignalType, title, description string, confidence float64, now time.Time, data model.SignalData) model.CorrelationSignal {
	return model.CorrelationSignal{
		ID:          uuid.New().String(),
		Type:        t,
		Title:       title,
		Description: description,
		Confidence:  confidence,
		Timestamp:   now,
		Data:        data,
	}
}

// sortedKeys yields map keys in a stable order so a cycle's candidate
// order (and therefore first-found-wins de-spam) is deterministic.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
