// Package baseline maintains rolling per-category volume baselines and
// scores how far the current cycle deviates from them.
package baseline

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
	"github.com/argusint/argus-cli/internal/store"
)

// epsilon guards the z-score division when variance collapses to zero.
const epsilon = 0.0001

// zCap keeps the z-score finite when the epsilon guard kicks in.
const zCap = 25.0

// Engine owns the durable baseline state. UpdateBaseline is the only
// mutation point; everything else is pure computation.
type Engine struct {
	cfg     config.BaselineConfig
	store   store.Store
	nowFunc func() time.Time
}

// NewEngine creates a baseline engine backed by the given store.
func NewEngine(cfg config.BaselineConfig, st store.Store) *Engine {
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		cfg.Alpha = 0.3
	}
	if cfg.SpikeZ <= 0 {
		cfg.SpikeZ = 2.5
	}
	if cfg.ElevatedZ <= 0 {
		cfg.ElevatedZ = 1.5
	}
	if cfg.QuietZ <= 0 {
		cfg.QuietZ = 1.5
	}
	if cfg.ColdStartVariance <= 0 {
		cfg.ColdStartVariance = 25.0
	}
	return &Engine{cfg: cfg, store: st, nowFunc: time.Now}
}

// UpdateBaseline folds the latest raw count for a category key into its
// rolling baseline and persists the result. Absent or unreadable persisted
// state is treated as cold-start; persistence failures degrade to a warning
// and the in-memory result is still returned. Never returns an error.
func (e *Engine) UpdateBaseline(ctx context.Context, key string, currentCount int) model.Baseline {
	now := e.nowFunc().UTC()
	count := float64(currentCount)

	prev, err := e.store.GetBaseline(ctx, key)
	if err != nil {
		zap.L().Warn("baseline: load failed, treating as cold-start",
			zap.String("key", key),
			zap.Error(err),
		)
		prev = nil
	}

	var b model.Baseline
	if prev == nil {
		// Cold start: the first observation is the baseline, with wide
		// uncertainty so early deviations don't read as spikes.
		b = model.Baseline{
			Key:       key,
			Mean:      count,
			Variance:  e.cfg.ColdStartVariance,
			Count:     1,
			UpdatedAt: now,
		}
	} else {
		alpha := e.cfg.Alpha
		delta := count - prev.Mean
		b = model.Baseline{
			Key:       key,
			Mean:      prev.Mean + alpha*delta,
			Variance:  (1 - alpha) * (prev.Variance + alpha*delta*delta),
			Count:     prev.Count + 1,
			UpdatedAt: now,
		}
	}

	if err := e.store.SaveBaseline(ctx, b); err != nil {
		zap.L().Warn("baseline: save failed, continuing with in-memory state",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return b
}

// CalculateDeviation scores a raw count against a baseline. Pure; never
// divides by zero and never produces NaN or Inf.
func (e *Engine) CalculateDeviation(currentCount int, b model.Baseline) model.DeviationResult {
	count := float64(currentCount)

	stddev := math.Sqrt(math.Max(b.Variance, 0))
	if stddev < epsilon {
		stddev = epsilon
	}

	z := (count - b.Mean) / stddev
	z = math.Max(-zCap, math.Min(zCap, z))

	pct := (count - b.Mean) / math.Max(b.Mean, 1) * 100

	level := model.DeviationNormal
	switch {
	case z >= e.cfg.SpikeZ:
		level = model.DeviationSpike
	case z >= e.cfg.ElevatedZ:
		level = model.DeviationElevated
	case z <= -e.cfg.QuietZ:
		level = model.DeviationQuiet
	}

	return model.DeviationResult{
		ZScore:        z,
		PercentChange: pct,
		Level:         level,
	}
}
