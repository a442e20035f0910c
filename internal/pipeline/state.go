package pipeline

import (
	"time"

	"github.com/argusint/argus-cli/internal/model"
)

// State is the dashboard-facing view of the latest completed cycle.
// Returned by value so readers never share slices with a running cycle.
type State struct {
	Events      []model.ClusteredEvent          `json:"events"`
	Deviations  map[string]model.DeviationResult `json:"deviations"`
	Signals     []model.CorrelationSignal       `json:"signals"`
	Markets     []model.MarketQuote             `json:"markets"`
	Predictions []model.PredictionMarket        `json:"predictions"`
	Hotspots    []model.Hotspot                 `json:"hotspots"`
	LastCycle   time.Time                       `json:"last_cycle"`
	CycleCount  int                             `json:"cycle_count"`
}

func cloneState(s State) State {
	out := State{
		LastCycle:  s.LastCycle,
		CycleCount: s.CycleCount,
	}
	out.Events = append([]model.ClusteredEvent(nil), s.Events...)
	out.Signals = append([]model.CorrelationSignal(nil), s.Signals...)
	out.Markets = append([]model.MarketQuote(nil), s.Markets...)
	out.Predictions = append([]model.PredictionMarket(nil), s.Predictions...)
	out.Hotspots = append([]model.Hotspot(nil), s.Hotspots...)
	if s.Deviations != nil {
		out.Deviations = make(map[string]model.DeviationResult, len(s.Deviations))
		for k, v := range s.Deviations {
			out.Deviations[k] = v
		}
	}
	return out
}
