// Package holdings values order-gateway holdings against the latest known
// prices into viewer-facing snapshots.
package holdings

import (
	"encoding/json"
	"sort"
	"strconv"

	"cryptotrader/internal/model"
	"cryptotrader/pkg/robinhood"
)

// Build derives one HoldingsSnapshot per holding. latest maps trading
// symbols ("BTC-USD") to the most recent observed price; holdings are
// keyed by asset code ("BTC"), so each asset is matched against its USD
// pair. Assets without a known price are still listed, valued at 0, with
// the raw holding preserved in Detail.
func Build(held []robinhood.Holding, latest map[string]float64) []model.HoldingsSnapshot {
	out := make([]model.HoldingsSnapshot, 0, len(held))
	for _, h := range held {
		qty, err := strconv.ParseFloat(h.TotalQuantity, 64)
		if err != nil {
			// Malformed quantity from upstream: skip rather than value garbage.
			continue
		}
		price := latest[h.AssetCode+"-USD"]
		detail, _ := json.Marshal(h)
		out = append(out, model.HoldingsSnapshot{
			Asset:    h.AssetCode,
			Quantity: qty,
			USDValue: qty * price,
			Detail:   detail,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}
