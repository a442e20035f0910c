package markets

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/fetcher"
)

func newTestClient(srv *httptest.Server, cfg config.MarketsConfig) *Client {
	if cfg.QuoteURL == "" {
		cfg.QuoteURL = srv.URL + "/chart"
	}
	if cfg.CryptoURL == "" {
		cfg.CryptoURL = srv.URL + "/crypto"
	}
	if cfg.PredictionURL == "" {
		cfg.PredictionURL = srv.URL + "/markets"
	}
	return NewClient(fetcher.New(fetcher.Options{MaxRetries: 1}), cfg)
}

func chartJSON(symbol string, price, prevClose float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{
		"symbol":%q,"shortName":"%s Fund","regularMarketPrice":%f,"chartPreviousClose":%f
	}}]}}`, symbol, symbol, price, prevClose)
}

func TestQuotes_EquityChangePct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON("SPY", 97.0, 100.0))
	}))
	defer srv.Close()

	c := newTestClient(srv, config.MarketsConfig{Symbols: []string{"SPY"}})
	quotes := c.Quotes(context.Background())

	require.Len(t, quotes, 1)
	q := quotes[0]
	assert.Equal(t, "SPY", q.Symbol)
	assert.Equal(t, 97.0, q.Price)
	// (97-100)/100*100 = -3%
	assert.InDelta(t, -3.0, q.ChangePct, 0.001)
	assert.False(t, q.IsCrypto)
}

func TestQuotes_FailedSymbolSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chart/BAD" {
			http.Error(w, "no such symbol", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, chartJSON("SPY", 100.0, 100.0))
	}))
	defer srv.Close()

	c := newTestClient(srv, config.MarketsConfig{Symbols: []string{"BAD", "SPY"}})
	quotes := c.Quotes(context.Background())

	require.Len(t, quotes, 1)
	assert.Equal(t, "SPY", quotes[0].Symbol)
}

func TestQuotes_CryptoFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bitcoin":{"usd":65000,"usd_24h_change":-6.2}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, config.MarketsConfig{CryptoIDs: []string{"bitcoin"}})
	quotes := c.Quotes(context.Background())

	require.Len(t, quotes, 1)
	q := quotes[0]
	assert.Equal(t, "BTC", q.Symbol)
	assert.True(t, q.IsCrypto)
	assert.InDelta(t, -6.2, q.ChangePct, 0.001)
}

func TestPredictions_PointsConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"question":"Will the Fed cut rates in March?","outcomePrices":"[\"0.47\", \"0.53\"]","volumeNum":120000,"endDate":"2026-03-31T00:00:00Z"},
			{"question":"Broken market","outcomePrices":"not json","volumeNum":5},
			{"question":"","outcomePrices":"[\"0.10\"]"}
		]`)
	}))
	defer srv.Close()

	c := newTestClient(srv, config.MarketsConfig{})
	preds := c.Predictions(context.Background())

	require.Len(t, preds, 1)
	p := preds[0]
	assert.Equal(t, "Will the Fed cut rates in March?", p.Title)
	// 0.47 becomes 47 points.
	assert.InDelta(t, 47.0, p.YesPrice, 0.001)
	assert.Equal(t, 120000.0, p.Volume)
	assert.Equal(t, 2026, p.EndDate.Year())
}

func TestPredictions_FetchFailureDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv, config.MarketsConfig{})
	assert.Nil(t, c.Predictions(context.Background()))
}

func TestFirstOutcomePrice(t *testing.T) {
	v, ok := firstOutcomePrice(`["0.47", "0.53"]`)
	assert.True(t, ok)
	assert.InDelta(t, 0.47, v, 0.001)

	_, ok = firstOutcomePrice(`[]`)
	assert.False(t, ok)

	_, ok = firstOutcomePrice(`nonsense`)
	assert.False(t, ok)

	_, ok = firstOutcomePrice(`["abc"]`)
	assert.False(t, ok)
}
