package model

import "encoding/json"

// HoldingsSnapshot is a viewer-facing valuation of one held asset,
// derived from order-gateway holdings and the latest known price.
type HoldingsSnapshot struct {
	Asset    string          `json:"asset"`
	Quantity float64         `json:"quantity"`
	USDValue float64         `json:"usd_value"`
	Detail   json.RawMessage `json:"detail,omitempty"`
}
