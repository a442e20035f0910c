// Package monitoring gathers operational health metrics for the status
// endpoint and the status command.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/argusint/argus-cli/internal/model"
	"github.com/argusint/argus-cli/internal/pipeline"
	"github.com/argusint/argus-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of system health.
type MetricsSnapshot struct {
	// Cycle metrics.
	CycleCount    int       `json:"cycle_count"`
	LastCycle     time.Time `json:"last_cycle"`
	CycleAgeSecs  float64   `json:"cycle_age_secs"`
	EventCount    int       `json:"event_count"`
	SignalCount   int       `json:"signal_count"`
	MarketCount   int       `json:"market_count"`
	HotspotLevels map[model.ActivityLevel]int `json:"hotspot_levels"`

	// Persistence metrics.
	BaselineCount  int        `json:"baseline_count"`
	SnapshotCount  int        `json:"snapshot_count"`
	OldestSnapshot *time.Time `json:"oldest_snapshot,omitempty"`
	NewestSnapshot *time.Time `json:"newest_snapshot,omitempty"`

	CollectedAt time.Time `json:"collected_at"`
}

// StateProvider is the slice of the pipeline engine the collector needs.
type StateProvider interface {
	State() pipeline.State
}

// Collector gathers metrics from the live engine state and the store.
type Collector struct {
	store    store.Store
	provider StateProvider
	nowFunc  func() time.Time
}

// NewCollector creates a metrics collector. provider may be nil when
// running a one-shot command with no live engine.
func NewCollector(st store.Store, provider StateProvider) *Collector {
	return &Collector{store: st, provider: provider, nowFunc: time.Now}
}

// Collect gathers a metrics snapshot.
func (c *Collector) Collect(ctx context.Context) (*MetricsSnapshot, error) {
	now := c.nowFunc().UTC()
	snap := &MetricsSnapshot{
		HotspotLevels: make(map[model.ActivityLevel]int),
		CollectedAt:   now,
	}

	if c.provider != nil {
		state := c.provider.State()
		snap.CycleCount = state.CycleCount
		snap.LastCycle = state.LastCycle
		if !state.LastCycle.IsZero() {
			snap.CycleAgeSecs = now.Sub(state.LastCycle).Seconds()
		}
		snap.EventCount = len(state.Events)
		snap.SignalCount = len(state.Signals)
		snap.MarketCount = len(state.Markets)
		for _, h := range state.Hotspots {
			snap.HotspotLevels[h.Activity.Level]++
		}
	}

	baselines, err := c.store.ListBaselines(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list baselines")
	}
	snap.BaselineCount = len(baselines)

	snapshots, err := c.store.ListSnapshots(ctx, 0)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list snapshots")
	}
	snap.SnapshotCount = len(snapshots)
	if len(snapshots) > 0 {
		// ListSnapshots returns newest first.
		newest := snapshots[0].Timestamp
		oldest := snapshots[len(snapshots)-1].Timestamp
		snap.NewestSnapshot = &newest
		snap.OldestSnapshot = &oldest
	}

	return snap, nil
}
