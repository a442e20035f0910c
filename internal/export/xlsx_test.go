package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/argusint/argus-cli/internal/model"
)

func sampleSnapshots() []model.PlaybackSnapshot {
	taken := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return []model.PlaybackSnapshot{
		{
			ID:        "snap-1",
			Timestamp: taken,
			Events: []model.ClusteredEvent{
				{
					PrimaryTitle:  "Fed raises rates",
					PrimarySource: "Reuters",
					SourceCount:   3,
					Velocity: &model.VelocityMetrics{
						SourcesPerHour: 4.5,
						Trend:          model.TrendRising,
						Sentiment:      model.SentimentNegative,
					},
				},
			},
			MarketPrices:  map[string]float64{"SPY": 512.5, "GLD": 214.2},
			Predictions:   []model.PredictionPrice{{Title: "Will the Fed cut?", YesPrice: 47}},
			HotspotLevels: map[string]model.ActivityLevel{"telaviv": model.ActivityHigh},
		},
	}
}

func TestWriteXLSX_SheetsAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sampleSnapshots()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 4)

	events := f.Sheet["Events"]
	require.NotNil(t, events)
	// Header plus one event row.
	require.Len(t, events.Rows, 2)
	assert.Equal(t, "Fed raises rates", events.Rows[1].Cells[2].Value)
	assert.Equal(t, "Reuters", events.Rows[1].Cells[3].Value)
	assert.Equal(t, "rising", events.Rows[1].Cells[6].Value)

	markets := f.Sheet["Markets"]
	require.NotNil(t, markets)
	// Header plus two symbols, sorted: GLD then SPY.
	require.Len(t, markets.Rows, 3)
	assert.Equal(t, "GLD", markets.Rows[1].Cells[2].Value)
	assert.Equal(t, "SPY", markets.Rows[2].Cells[2].Value)

	predictions := f.Sheet["Predictions"]
	require.NotNil(t, predictions)
	require.Len(t, predictions.Rows, 2)
	assert.Equal(t, "47.0", predictions.Rows[1].Cells[3].Value)

	hotspots := f.Sheet["Hotspots"]
	require.NotNil(t, hotspots)
	require.Len(t, hotspots.Rows, 2)
	assert.Equal(t, "telaviv", hotspots.Rows[1].Cells[2].Value)
	assert.Equal(t, "high", hotspots.Rows[1].Cells[3].Value)
}

func TestWriteXLSX_EmptyInputStillWritesHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	for _, sheet := range f.Sheets {
		assert.Len(t, sheet.Rows, 1, "sheet %s should have only its header", sheet.Name)
	}
}
