package model

import "time"

// Baseline is the rolling volume history for one category key
// (e.g. "news:geopolitics"). Mean and Variance are maintained with an
// exponentially decayed update so old activity fades out.
type Baseline struct {
	Key       string    `json:"key"`
	Mean      float64   `json:"mean"`
	Variance  float64   `json:"variance"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeviationLevel classifies how abnormal the current volume is.
type DeviationLevel string

const (
	DeviationNormal   DeviationLevel = "normal"
	DeviationElevated DeviationLevel = "elevated"
	DeviationSpike    DeviationLevel = "spike"
	DeviationQuiet    DeviationLevel = "quiet"
)

// DeviationResult is the pure output of comparing a count to a baseline.
// Not persisted.
type DeviationResult struct {
	ZScore        float64        `json:"z_score"`
	PercentChange float64        `json:"percent_change"`
	Level         DeviationLevel `json:"level"`
}
