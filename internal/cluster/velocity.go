package cluster

import (
	"time"

	"github.com/argusint/argus-cli/internal/model"
)

// velocity computes the activity metrics for one cluster.
func (e *Engine) velocity(items []model.NewsItem, distinctSources int, firstSeen, lastUpdated, now time.Time) model.VelocityMetrics {
	hours := now.Sub(firstSeen).Hours()
	if hours < e.cfg.MinWindowHours {
		// Floor the window so a brand-new cluster doesn't divide by ~zero.
		hours = e.cfg.MinWindowHours
	}
	perHour := float64(distinctSources) / hours

	level := model.VelocityNormal
	switch {
	case perHour >= e.cfg.SpikePerHour:
		level = model.VelocitySpike
	case perHour >= e.cfg.ElevatedPerHour:
		level = model.VelocityElevated
	}

	score, sentiment := e.sentiment(items)

	return model.VelocityMetrics{
		SourcesPerHour: perHour,
		Level:          level,
		Trend:          trend(items, firstSeen, lastUpdated),
		Sentiment:      sentiment,
		SentimentScore: score,
	}
}

// trend compares arrival counts in the first and second halves of the
// cluster's window. Within ±20% of each other counts as stable.
func trend(items []model.NewsItem, firstSeen, lastUpdated time.Time) model.Trend {
	if len(items) < 2 || !lastUpdated.After(firstSeen) {
		return model.TrendStable
	}

	mid := firstSeen.Add(lastUpdated.Sub(firstSeen) / 2)
	var firstHalf, secondHalf float64
	for _, it := range items {
		if it.PublishedAt.After(mid) {
			secondHalf++
		} else {
			firstHalf++
		}
	}

	switch {
	case secondHalf > firstHalf*1.2:
		return model.TrendRising
	case secondHalf < firstHalf*0.8:
		return model.TrendFalling
	default:
		return model.TrendStable
	}
}

// sentiment scores the cluster's headlines against the lexicon. The score
// is the average weight of matched words, so it stays in [-1, 1].
func (e *Engine) sentiment(items []model.NewsItem) (float64, model.Sentiment) {
	var total float64
	var matched int
	for _, it := range items {
		for _, tok := range Normalize(it.Title, e.stopwords) {
			if w, ok := e.lexicon[tok]; ok {
				total += w
				matched++
			}
		}
	}

	if matched == 0 {
		return 0, model.SentimentNeutral
	}

	score := total / float64(matched)
	switch {
	case score <= -0.2:
		return score, model.SentimentNegative
	case score >= 0.2:
		return score, model.SentimentPositive
	default:
		return score, model.SentimentNeutral
	}
}
