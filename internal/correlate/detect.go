package correlate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/argusint/argus-cli/internal/model"
)

// convergenceWindow is how recent items must be to count toward a
// convergence signal.
const convergenceWindow = 30 * time.Minute

// detectPredictionShifts finds prediction markets that moved hard between
// cycles while related news coverage stayed quiet: the market knows
// something the wires haven't printed yet.
func (d *Detector) detectPredictionShifts(current *streamSnapshot, predictions []model.PredictionMarket, now time.Time) []model.CorrelationSignal {
	titles := make(map[string]string, len(predictions))
	for _, p := range predictions {
		titles[titleKey(p.Title)] = p.Title
	}

	var signals []model.CorrelationSignal
	for _, key := range sortedKeys(current.predictionPrices) {
		prevPrice, ok := d.prev.predictionPrices[key]
		if !ok {
			continue
		}

		shift := current.predictionPrices[key] - prevPrice
		if math.Abs(shift) < d.cfg.PredictionShiftMin {
			continue
		}

		title := titles[key]
		related := d.relatedTopics(title)
		coverage := 0.0
		for _, topic := range related {
			coverage += current.topicScores[topic]
		}
		if coverage >= d.cfg.LowCoverageScore {
			continue
		}

		confidence := math.Min(0.5+math.Abs(shift)/20, 0.9)
		signals = append(signals, newSignal(
			model.SignalPredictionLeadsNews,
			fmt.Sprintf("Prediction market moved: %s", title),
			fmt.Sprintf("Yes price shifted %+.1f points with little related news coverage", shift),
			confidence,
			now,
			model.SignalData{
				PredictionShift: shift,
				NewsVelocity:    coverage,
				RelatedTopics:   related,
			},
		))
	}
	return signals
}

// detectVelocitySpikes finds topics whose activity score jumped past both
// the absolute threshold and twice its previous-cycle score.
func (d *Detector) detectVelocitySpikes(current *streamSnapshot, now time.Time) []model.CorrelationSignal {
	var signals []model.CorrelationSignal
	for _, topic := range sortedKeys(current.topicScores) {
		score := current.topicScores[topic]
		if score < d.cfg.VelocitySpikeScore {
			continue
		}
		if score <= 2*d.prev.topicScores[topic] {
			continue
		}

		confidence := math.Min(0.65+score/100, 0.9)
		signals = append(signals, newSignal(
			model.SignalVelocitySpike,
			fmt.Sprintf("Coverage spike: %s", topic),
			fmt.Sprintf("Topic activity score %.1f, more than double the previous cycle", score),
			confidence,
			now,
			model.SignalData{
				NewsVelocity:  score,
				RelatedTopics: []string{topic},
			},
		))
	}
	return signals
}

// detectSilentDivergence finds markets moving hard while the news corpus
// barely mentions them.
func (d *Detector) detectSilentDivergence(current *streamSnapshot, markets []model.MarketQuote, now time.Time) []model.CorrelationSignal {
	var signals []model.CorrelationSignal
	for _, m := range markets {
		threshold := d.cfg.EquityDivergencePct
		if m.IsCrypto {
			threshold = d.cfg.CryptoDivergencePct
		}
		if math.Abs(m.ChangePct) < threshold {
			continue
		}

		coverage := current.topicScores[strings.ToLower(m.Name)]
		for _, alias := range d.topics.MarketAliases[m.Symbol] {
			coverage += current.topicScores[alias]
		}
		if coverage >= d.cfg.LowCoverageScore {
			continue
		}

		confidence := math.Min(0.5+math.Abs(m.ChangePct)/10, 0.85)
		signals = append(signals, newSignal(
			model.SignalSilentDivergence,
			fmt.Sprintf("Silent move: %s %+.1f%%", m.Symbol, m.ChangePct),
			fmt.Sprintf("%s moved %+.1f%% with almost no news coverage", m.Name, m.ChangePct),
			confidence,
			now,
			model.SignalData{MarketChange: m.ChangePct},
		))
	}
	return signals
}

// detectConvergence finds clusters where at least three items landed in
// the last half hour across at least three distinct outlet categories.
func (d *Detector) detectConvergence(events []model.ClusteredEvent, now time.Time) []model.CorrelationSignal {
	cutoff := now.Add(-convergenceWindow)

	var signals []model.CorrelationSignal
	for _, ev := range events {
		recent := 0
		cats := make(map[model.SourceCategory]bool)
		for _, it := range ev.Items {
			if it.PublishedAt.Before(cutoff) {
				continue
			}
			recent++
			cats[d.categoryOf(it.Source)] = true
		}
		if recent < 3 || len(cats) < 3 {
			continue
		}

		signals = append(signals, newSignal(
			model.SignalConvergence,
			fmt.Sprintf("Source convergence: %s", ev.PrimaryTitle),
			fmt.Sprintf("%d reports across %d source categories in 30 minutes", recent, len(cats)),
			0.75,
			now,
			model.SignalData{NewsVelocity: float64(recent)},
		))
	}
	return signals
}

// detectTriangulation finds clusters confirmed simultaneously by wire,
// government, and intel-adjacent sources. Fixed high confidence: that
// combination rarely lies.
func (d *Detector) detectTriangulation(events []model.ClusteredEvent, now time.Time) []model.CorrelationSignal {
	var signals []model.CorrelationSignal
	for _, ev := range events {
		cats := make(map[model.SourceCategory]bool)
		for _, it := range ev.Items {
			cats[d.categoryOf(it.Source)] = true
		}
		if !cats[model.SourceWire] || !cats[model.SourceGov] || !cats[model.SourceIntel] {
			continue
		}

		signals = append(signals, newSignal(
			model.SignalTriangulation,
			fmt.Sprintf("Triangulated: %s", ev.PrimaryTitle),
			"Wire, government, and intel sources all reporting the same story",
			0.9,
			now,
			model.SignalData{NewsVelocity: float64(ev.SourceCount)},
		))
	}
	return signals
}
