package model

import "time"

// MarketQuote is one equity/crypto price snapshot.
type MarketQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	IsCrypto  bool    `json:"is_crypto"`
}

// PredictionMarket is one prediction-market contract snapshot.
// YesPrice is quoted in probability points on a 0-100 scale.
type PredictionMarket struct {
	Title    string    `json:"title"`
	YesPrice float64   `json:"yes_price"`
	Volume   float64   `json:"volume,omitempty"`
	EndDate  time.Time `json:"end_date,omitempty"`
}
