package model

import "time"

// SignalType identifies the kind of cross-stream correlation detected.
type SignalType string

const (
	SignalPredictionLeadsNews SignalType = "prediction_leads_news"
	SignalNewsLeadsMarkets    SignalType = "news_leads_markets"
	SignalSilentDivergence    SignalType = "silent_divergence"
	SignalVelocitySpike       SignalType = "velocity_spike"
	SignalConvergence         SignalType = "convergence"
	SignalTriangulation       SignalType = "triangulation"
)

// SignalData carries the type-specific numbers behind a signal.
type SignalData struct {
	NewsVelocity    float64  `json:"news_velocity,omitempty"`
	MarketChange    float64  `json:"market_change,omitempty"`
	PredictionShift float64  `json:"prediction_shift,omitempty"`
	RelatedTopics   []string `json:"related_topics,omitempty"`
}

// CorrelationSignal is one detected cross-stream event, e.g. a prediction
// market moving before news coverage catches up.
type CorrelationSignal struct {
	ID          string     `json:"id"`
	Type        SignalType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Confidence  float64    `json:"confidence"`
	Timestamp   time.Time  `json:"timestamp"`
	Data        SignalData `json:"data"`
}
