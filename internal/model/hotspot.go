package model

// ActivityLevel is the discrete severity of a hotspot.
type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityElevated ActivityLevel = "elevated"
	ActivityHigh     ActivityLevel = "high"
)

// Hotspot is a fixed geographic point of interest. The static fields come
// from configuration; Activity is recomputed from the live news corpus
// every cycle and never persisted except as a coarse level snapshot.
type Hotspot struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Lat      float64  `json:"lat" yaml:"lat"`
	Lon      float64  `json:"lon" yaml:"lon"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Agencies []string `json:"agencies,omitempty" yaml:"agencies,omitempty"`

	Activity HotspotActivity `json:"activity" yaml:"-"`
}

// HotspotActivity is the derived per-cycle state of a hotspot.
type HotspotActivity struct {
	Level        ActivityLevel `json:"level"`
	Status       string        `json:"status"`
	HasBreaking  bool          `json:"has_breaking"`
	MatchedCount int           `json:"matched_count"`
	Score        float64       `json:"score"`
}
