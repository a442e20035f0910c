// Package markets fetches equity/crypto quotes and prediction-market
// snapshots. Like the feed adapter, failures degrade to empty slices so
// the correlation detector always runs on whatever subset arrived.
package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/argusint/argus-cli/internal/config"
	"github.com/argusint/argus-cli/internal/fetcher"
	"github.com/argusint/argus-cli/internal/model"
)

// cryptoSymbols maps provider coin ids to display symbols.
var cryptoSymbols = map[string]string{
	"bitcoin":  "BTC",
	"ethereum": "ETH",
	"solana":   "SOL",
}

// Client fetches market and prediction snapshots.
type Client struct {
	fetch *fetcher.HTTPFetcher
	cfg   config.MarketsConfig
}

// NewClient creates a markets client.
func NewClient(f *fetcher.HTTPFetcher, cfg config.MarketsConfig) *Client {
	return &Client{fetch: f, cfg: cfg}
}

// chartResponse is the slice of the quote provider's chart payload we need.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Quotes fetches the configured equity symbols plus crypto prices.
// Individual symbol failures are logged and skipped.
func (c *Client) Quotes(ctx context.Context) []model.MarketQuote {
	var quotes []model.MarketQuote

	for _, symbol := range c.cfg.Symbols {
		q, err := c.quote(ctx, symbol)
		if err != nil {
			zap.L().Warn("markets: quote fetch failed",
				zap.String("symbol", symbol),
				zap.Error(err),
			)
			continue
		}
		quotes = append(quotes, q)
	}

	quotes = append(quotes, c.cryptoQuotes(ctx)...)
	return quotes
}

func (c *Client) quote(ctx context.Context, symbol string) (model.MarketQuote, error) {
	u := fmt.Sprintf("%s/%s?range=1d&interval=5m", c.cfg.QuoteURL, url.PathEscape(symbol))
	body, err := c.fetch.Get(ctx, u)
	if err != nil {
		return model.MarketQuote{}, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.MarketQuote{}, err
	}
	if len(resp.Chart.Result) == 0 {
		return model.MarketQuote{}, fmt.Errorf("markets: empty chart result for %s", symbol)
	}

	meta := resp.Chart.Result[0].Meta
	changePct := 0.0
	if meta.ChartPreviousClose > 0 {
		changePct = (meta.RegularMarketPrice - meta.ChartPreviousClose) / meta.ChartPreviousClose * 100
	}

	name := meta.ShortName
	if name == "" {
		name = symbol
	}
	return model.MarketQuote{
		Symbol:    meta.Symbol,
		Name:      name,
		Price:     meta.RegularMarketPrice,
		ChangePct: changePct,
	}, nil
}

func (c *Client) cryptoQuotes(ctx context.Context) []model.MarketQuote {
	if len(c.cfg.CryptoIDs) == 0 {
		return nil
	}

	u := fmt.Sprintf("%s?ids=%s&vs_currencies=usd&include_24hr_change=true",
		c.cfg.CryptoURL, url.QueryEscape(strings.Join(c.cfg.CryptoIDs, ",")))
	body, err := c.fetch.Get(ctx, u)
	if err != nil {
		zap.L().Warn("markets: crypto fetch failed", zap.Error(err))
		return nil
	}

	var resp map[string]struct {
		USD       float64 `json:"usd"`
		USDChange float64 `json:"usd_24h_change"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Warn("markets: crypto decode failed", zap.Error(err))
		return nil
	}

	var quotes []model.MarketQuote
	for _, id := range c.cfg.CryptoIDs {
		entry, ok := resp[id]
		if !ok {
			continue
		}
		symbol := cryptoSymbols[id]
		if symbol == "" {
			symbol = strings.ToUpper(id)
		}
		quotes = append(quotes, model.MarketQuote{
			Symbol:    symbol,
			Name:      id,
			Price:     entry.USD,
			ChangePct: entry.USDChange,
			IsCrypto:  true,
		})
	}
	return quotes
}

// predictionEntry is the slice of the prediction provider's payload we need.
// Outcome prices arrive as a JSON array encoded inside a string.
type predictionEntry struct {
	Question      string  `json:"question"`
	OutcomePrices string  `json:"outcomePrices"`
	Volume        float64 `json:"volumeNum"`
	EndDate       string  `json:"endDate"`
}

// Predictions fetches the open prediction markets. Failure degrades to nil.
func (c *Client) Predictions(ctx context.Context) []model.PredictionMarket {
	u := c.cfg.PredictionURL + "?closed=false&order=volumeNum&ascending=false&limit=50"
	body, err := c.fetch.Get(ctx, u)
	if err != nil {
		zap.L().Warn("markets: prediction fetch failed", zap.Error(err))
		return nil
	}

	var entries []predictionEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		zap.L().Warn("markets: prediction decode failed", zap.Error(err))
		return nil
	}

	var preds []model.PredictionMarket
	for _, e := range entries {
		yes, ok := firstOutcomePrice(e.OutcomePrices)
		if !ok || e.Question == "" {
			continue
		}
		p := model.PredictionMarket{
			Title:    e.Question,
			YesPrice: yes * 100, // provider quotes 0-1, we score in points
			Volume:   e.Volume,
		}
		if t, err := time.Parse(time.RFC3339, e.EndDate); err == nil {
			p.EndDate = t.UTC()
		}
		preds = append(preds, p)
	}
	return preds
}

// firstOutcomePrice extracts the "yes" price from the string-encoded
// outcome array, e.g. "[\"0.47\", \"0.53\"]".
func firstOutcomePrice(encoded string) (float64, bool) {
	var prices []string
	if err := json.Unmarshal([]byte(encoded), &prices); err != nil || len(prices) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(prices[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
