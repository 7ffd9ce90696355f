package robinhood

import "encoding/json"

// paginated is the common list envelope the trading API wraps results in.
type paginated[T any] struct {
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

// Account is the crypto trading account record.
type Account struct {
	AccountNumber       string `json:"account_number"`
	Status              string `json:"status"`
	BuyingPower         string `json:"buying_power"`
	BuyingPowerCurrency string `json:"buying_power_currency"`
}

// TradingPair describes one tradable symbol.
type TradingPair struct {
	Symbol       string `json:"symbol"`
	AssetCode    string `json:"asset_code"`
	QuoteCode    string `json:"quote_code"`
	Status       string `json:"status"`
	MinOrderSize string `json:"min_order_size"`
	MaxOrderSize string `json:"max_order_size"`
}

// Holding is one held asset as reported by the trading API.
// Quantities are decimal strings on the wire.
type Holding struct {
	AssetCode                   string `json:"asset_code"`
	TotalQuantity               string `json:"total_quantity"`
	QuantityAvailableForTrading string `json:"quantity_available_for_trading"`
}

// OrderConfig is the per-type order configuration. Market buys carry only
// the asset quantity; limit sells add the limit price (6 decimal places).
type OrderConfig struct {
	AssetQuantity string `json:"asset_quantity"`
	LimitPrice    string `json:"limit_price,omitempty"`
}

// Order is an order record returned on placement.
type Order struct {
	ID            string          `json:"id"`
	ClientOrderID string          `json:"client_order_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Type          string          `json:"type"`
	State         string          `json:"state"`
	CreatedAt     string          `json:"created_at"`
	Raw           json.RawMessage `json:"-"`
}

// bidAskEntry is one raw best-bid/ask result. Price arrives as a JSON
// number or a decimal string depending on endpoint version, so it is
// parsed leniently and non-numeric entries are dropped by the caller.
type bidAskEntry struct {
	Symbol string      `json:"symbol"`
	Price  json.Number `json:"price"`
}
