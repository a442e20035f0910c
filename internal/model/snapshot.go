package model

import "time"

// PredictionPrice is the compact prediction entry stored in a snapshot.
type PredictionPrice struct {
	Title    string  `json:"title"`
	YesPrice float64 `json:"yes_price"`
}

// PlaybackSnapshot is a periodic capture of derived state for later
// scrub-through playback. Only coarse hotspot levels are kept; full
// hotspot state is recomputable.
type PlaybackSnapshot struct {
	ID            string                   `json:"id"`
	Timestamp     time.Time                `json:"timestamp"`
	Events        []ClusteredEvent         `json:"events"`
	MarketPrices  map[string]float64       `json:"market_prices"`
	Predictions   []PredictionPrice        `json:"predictions"`
	HotspotLevels map[string]ActivityLevel `json:"hotspot_levels"`
}
