package model

import "time"

// SourceCategory buckets a news source by what kind of outlet it is.
// Used by the correlation detector to judge how independent a cluster's
// coverage is (a wire service and a government feed agreeing means more
// than two blogs agreeing).
type SourceCategory string

const (
	SourceWire       SourceCategory = "wire"
	SourceGov        SourceCategory = "gov"
	SourceIntel      SourceCategory = "intel"
	SourceMainstream SourceCategory = "mainstream"
	SourceMarket     SourceCategory = "market"
	SourceTech       SourceCategory = "tech"
	SourceOther      SourceCategory = "other"
)

// NewsItem is a single normalized feed entry. Immutable once ingested;
// Link doubles as the unique id.
type NewsItem struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	IsAlert     bool      `json:"is_alert"`
}

// Age returns how old the item is relative to now.
func (n NewsItem) Age(now time.Time) time.Duration {
	return now.Sub(n.PublishedAt)
}
