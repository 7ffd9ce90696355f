// Package robinhood is a minimal client for the Robinhood Crypto trading
// API. Every request carries an ed25519 detached signature over
// apiKey+timestamp+path+method+body in the x-api-key / x-signature /
// x-timestamp headers, with the 64-byte secret key supplied base64-encoded.
package robinhood

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cryptotrader/internal/model"
)

const defaultBaseURL = "https://trading.robinhood.com"

// Config configures the client. APIKey and Base64PrivateKey are required.
type Config struct {
	APIKey           string
	Base64PrivateKey string
	BaseURL          string        // default: https://trading.robinhood.com
	Timeout          time.Duration // default: 10s
}

// Client signs and issues requests against the crypto trading API.
type Client struct {
	apiKey     string
	privateKey ed25519.PrivateKey
	baseURL    string
	httpClient *http.Client

	// now is swappable for deterministic signature tests.
	now func() time.Time
}

// New validates the credentials and returns a ready client.
// A malformed or wrong-length private key is a configuration error and
// must abort startup.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("robinhood: api key is required")
	}
	keyBytes, err := base64.StdEncoding.DecodeString(cfg.Base64PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("robinhood: decode private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("robinhood: invalid private key length %d, must be exactly %d bytes",
			len(keyBytes), ed25519.PrivateKeySize)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		privateKey: ed25519.PrivateKey(keyBytes),
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}, nil
}

// signHeaders builds the three auth headers for one request.
// path must include the query string; it is part of the signed message.
func (c *Client) signHeaders(method, path, body string) map[string]string {
	ts := strconv.FormatInt(c.now().Unix(), 10)
	message := c.apiKey + ts + path + method + body
	sig := ed25519.Sign(c.privateKey, []byte(message))
	return map[string]string{
		"x-api-key":   c.apiKey,
		"x-signature": base64.StdEncoding.EncodeToString(sig),
		"x-timestamp": ts,
	}
}

// do issues one signed request and returns the response body.
// Non-2xx responses and transport failures come back as errors; the
// caller's cycle logs and skips, the next cycle is the retry.
func (c *Client) do(ctx context.Context, method, path, body string) ([]byte, error) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("robinhood: build request: %w", err)
	}
	for k, v := range c.signHeaders(method, path, body) {
		req.Header.Set(k, v)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("robinhood: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("robinhood: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("robinhood: %s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	return data, nil
}

// GetAccount returns the crypto trading account.
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/crypto/trading/accounts/", "")
	if err != nil {
		return nil, err
	}
	var acct Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, fmt.Errorf("robinhood: decode account: %w", err)
	}
	return &acct, nil
}

// GetTradingPairs returns trading pairs, optionally filtered by symbol.
func (c *Client) GetTradingPairs(ctx context.Context, symbols ...string) ([]TradingPair, error) {
	path := "/api/v1/crypto/trading/trading_pairs/" + multiQuery("symbol", symbols)
	data, err := c.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}
	var page paginated[TradingPair]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("robinhood: decode trading pairs: %w", err)
	}
	return page.Results, nil
}

// GetHoldings returns current holdings, optionally filtered by asset code.
func (c *Client) GetHoldings(ctx context.Context, assetCodes ...string) ([]Holding, error) {
	path := "/api/v1/crypto/trading/holdings/" + multiQuery("asset_code", assetCodes)
	data, err := c.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}
	var page paginated[Holding]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("robinhood: decode holdings: %w", err)
	}
	return page.Results, nil
}

// GetBestBidAsk returns the current best bid/ask price per symbol.
// Entries whose price is not numeric are dropped, never defaulted.
func (c *Client) GetBestBidAsk(ctx context.Context, symbols []string) ([]model.Quote, error) {
	path := "/api/v1/crypto/marketdata/best_bid_ask/" + multiQuery("symbol", symbols)
	data, err := c.do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, err
	}
	var page paginated[bidAskEntry]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("robinhood: decode best bid/ask: %w", err)
	}
	quotes := make([]model.Quote, 0, len(page.Results))
	for _, e := range page.Results {
		price, err := strconv.ParseFloat(e.Price.String(), 64)
		if err != nil || e.Symbol == "" {
			continue
		}
		quotes = append(quotes, model.Quote{Symbol: e.Symbol, Price: price})
	}
	return quotes, nil
}

// PlaceOrder submits an order. The config is keyed as "{type}_order_config"
// in the request body, matching the trading API contract.
func (c *Client) PlaceOrder(ctx context.Context, clientOrderID, side, orderType, symbol string, config OrderConfig) (*Order, error) {
	payload := map[string]any{
		"client_order_id":           clientOrderID,
		"side":                      side,
		"type":                      orderType,
		"symbol":                    symbol,
		orderType + "_order_config": config,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("robinhood: encode order: %w", err)
	}
	data, err := c.do(ctx, http.MethodPost, "/api/v1/crypto/trading/orders/", string(body))
	if err != nil {
		return nil, err
	}
	var order Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("robinhood: decode order: %w", err)
	}
	order.Raw = data
	return &order, nil
}

// CancelOrder requests cancellation of an order by id. The API replies
// with a small acknowledgment payload, returned raw.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	path := "/api/v1/crypto/trading/orders/" + url.PathEscape(orderID) + "/cancel/"
	data, err := c.do(ctx, http.MethodPost, path, "")
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// multiQuery builds "?key=a&key=b" for repeated query parameters.
func multiQuery(key string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	q := url.Values{}
	for _, v := range values {
		q.Add(key, v)
	}
	return "?" + q.Encode()
}
