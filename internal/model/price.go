package model

import (
	"encoding/json"
	"time"
)

// PricePoint is a single observed best-bid/ask price for a symbol.
// Immutable once created; the ingestion loop produces them and the
// sliding window eventually evicts them by age.
type PricePoint struct {
	TS     time.Time `json:"timestamp"`
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
}

// Quote is a best-bid/ask response entry from the market-data source.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// JSON returns the JSON-encoded point (errors ignored for hot-path usage).
func (p *PricePoint) JSON() []byte {
	b, _ := json.Marshal(p)
	return b
}
