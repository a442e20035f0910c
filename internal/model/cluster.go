package model

import "time"

// VelocityLevel classifies how fast a story is accumulating sources.
type VelocityLevel string

const (
	VelocityNormal   VelocityLevel = "normal"
	VelocityElevated VelocityLevel = "elevated"
	VelocitySpike    VelocityLevel = "spike"
)

// Trend describes whether coverage is accelerating or tailing off.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

// Sentiment is the coarse tone of a cluster's headlines.
type Sentiment string

const (
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentPositive Sentiment = "positive"
)

// VelocityMetrics holds the derived activity metrics for a cluster.
type VelocityMetrics struct {
	SourcesPerHour float64       `json:"sources_per_hour"`
	Level          VelocityLevel `json:"level"`
	Trend          Trend         `json:"trend"`
	Sentiment      Sentiment     `json:"sentiment"`
	SentimentScore float64       `json:"sentiment_score"`
}

// ClusterSource is one outlet covering a clustered story.
type ClusterSource struct {
	Name string `json:"name"`
	Tier int    `json:"tier"`
	URL  string `json:"url"`
}

// ClusteredEvent groups near-duplicate news items reporting the same
// underlying story. It is a derived view recomputed from the full item
// set each cycle, never mutated incrementally.
//
// Invariant: SourceCount equals the number of distinct Source values in
// Items, and every ingested item belongs to exactly one cluster.
type ClusteredEvent struct {
	ID            string           `json:"id"`
	PrimaryTitle  string           `json:"primary_title"`
	PrimarySource string           `json:"primary_source"`
	PrimaryLink   string           `json:"primary_link"`
	SourceCount   int              `json:"source_count"`
	TopSources    []ClusterSource  `json:"top_sources"`
	Items         []NewsItem       `json:"items"`
	FirstSeen     time.Time        `json:"first_seen"`
	LastUpdated   time.Time        `json:"last_updated"`
	IsAlert       bool             `json:"is_alert"`
	Velocity      *VelocityMetrics `json:"velocity,omitempty"`
}
