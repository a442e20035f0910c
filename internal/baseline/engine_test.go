package baseline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/model"
)

// memStore is an in-memory Store with switchable failures.
type memStore struct {
	baselines map[string]model.Baseline
	getErr    error
	saveErr   error
}

func newMemStore() *memStore {
	return &memStore{baselines: make(map[string]model.Baseline)}
}

func (m *memStore) SaveBaseline(_ context.Context, b model.Baseline) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.baselines[b.Key] = b
	return nil
}

func (m *memStore) GetBaseline(_ context.Context, key string) (*model.Baseline, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.baselines[key]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memStore) ListBaselines(_ context.Context) ([]model.Baseline, error) {
	var out []model.Baseline
	for _, b := range m.baselines {
		out = append(out, b)
	}
	return out, nil
}

func (m *memStore) SaveSnapshot(context.Context, model.PlaybackSnapshot) error { return nil }
func (m *memStore) GetSnapshot(context.Context, string) (*model.PlaybackSnapshot, error) {
	return nil, nil
}
func (m *memStore) ListSnapshots(context.Context, int) ([]model.PlaybackSnapshot, error) {
	return nil, nil
}
func (m *memStore) DeleteSnapshotsBefore(context.Context, time.Time) (int, error) { return 0, nil }
func (m *memStore) Migrate(context.Context) error                                 { return nil }
func (m *memStore) Close() error                                                  { return nil }

func newTestEngine(st *memStore) *Engine {
	return NewEngine(config.BaselineConfig{}, st)
}

func TestUpdateBaseline_ColdStart(t *testing.T) {
	st := newMemStore()
	e := newTestEngine(st)

	b := e.UpdateBaseline(context.Background(), "news:geopolitics", 12)

	assert.Equal(t, 12.0, b.Mean)
	assert.Equal(t, 25.0, b.Variance)
	assert.Equal(t, 1, b.Count)

	// Persisted too.
	saved, err := st.GetBaseline(context.Background(), "news:geopolitics")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 12.0, saved.Mean)
}

func TestUpdateBaseline_EWMAMath(t *testing.T) {
	st := newMemStore()
	st.baselines["news:finance"] = model.Baseline{
		Key: "news:finance", Mean: 10.0, Variance: 4.0, Count: 5,
	}
	e := newTestEngine(st)

	b := e.UpdateBaseline(context.Background(), "news:finance", 20)

	// delta = 10; mean = 10 + 0.3*10 = 13
	assert.InDelta(t, 13.0, b.Mean, 0.001)
	// variance = 0.7 * (4 + 0.3*100) = 0.7 * 34 = 23.8
	assert.InDelta(t, 23.8, b.Variance, 0.001)
	assert.Equal(t, 6, b.Count)
}

func TestUpdateBaseline_GetFailureFallsBackToColdStart(t *testing.T) {
	st := newMemStore()
	st.getErr = errors.New("disk gone")
	e := newTestEngine(st)

	b := e.UpdateBaseline(context.Background(), "news:tech", 7)

	assert.Equal(t, 7.0, b.Mean)
	assert.Equal(t, 1, b.Count)
}

func TestUpdateBaseline_SaveFailureStillReturnsState(t *testing.T) {
	st := newMemStore()
	st.saveErr = errors.New("readonly fs")
	e := newTestEngine(st)

	b := e.UpdateBaseline(context.Background(), "news:tech", 7)
	assert.Equal(t, 7.0, b.Mean)
}

func TestCalculateDeviation_AtMeanIsNormal(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 10, Variance: 4, Count: 10}

	d := e.CalculateDeviation(10, b)

	assert.Equal(t, 0.0, d.ZScore)
	assert.Equal(t, 0.0, d.PercentChange)
	assert.Equal(t, model.DeviationNormal, d.Level)
}

func TestCalculateDeviation_Spike(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 10, Variance: 4, Count: 10}

	d := e.CalculateDeviation(20, b)

	// z = (20-10)/2 = 5
	assert.InDelta(t, 5.0, d.ZScore, 0.001)
	// pct = 10/10*100 = 100
	assert.InDelta(t, 100.0, d.PercentChange, 0.001)
	assert.Equal(t, model.DeviationSpike, d.Level)
}

func TestCalculateDeviation_Elevated(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 10, Variance: 4, Count: 10}

	// z = (14-10)/2 = 2: above 1.5, below 2.5.
	d := e.CalculateDeviation(14, b)
	assert.Equal(t, model.DeviationElevated, d.Level)
}

func TestCalculateDeviation_Quiet(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 10, Variance: 4, Count: 10}

	// z = (6-10)/2 = -2
	d := e.CalculateDeviation(6, b)
	assert.Equal(t, model.DeviationQuiet, d.Level)
}

func TestCalculateDeviation_ZeroVarianceClampsZ(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 10, Variance: 0, Count: 10}

	d := e.CalculateDeviation(100, b)

	assert.Equal(t, 25.0, d.ZScore)
	assert.False(t, d.ZScore != d.ZScore, "z must not be NaN")
	assert.Equal(t, model.DeviationSpike, d.Level)
}

func TestCalculateDeviation_ZeroMeanPercentGuard(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 0, Variance: 4, Count: 3}

	// pct divides by max(mean, 1), so 5 items over a zero mean is +500%.
	d := e.CalculateDeviation(5, b)
	assert.InDelta(t, 500.0, d.PercentChange, 0.001)
}

func TestCalculateDeviation_NegativeZClampedSymmetrically(t *testing.T) {
	e := newTestEngine(newMemStore())
	b := model.Baseline{Mean: 1000, Variance: 0, Count: 10}

	d := e.CalculateDeviation(0, b)
	assert.Equal(t, -25.0, d.ZScore)
	assert.Equal(t, model.DeviationQuiet, d.Level)
}
