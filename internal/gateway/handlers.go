package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"cryptotrader/pkg/robinhood"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broker is the slice of the trading API the REST surface needs.
type Broker interface {
	GetAccount(ctx context.Context) (*robinhood.Account, error)
	GetTradingPairs(ctx context.Context, symbols ...string) ([]robinhood.TradingPair, error)
	PlaceOrder(ctx context.Context, clientOrderID, side, orderType, symbol string, config robinhood.OrderConfig) (*robinhood.Order, error)
	CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}

// PriceSource provides the latest known price per symbol.
type PriceSource interface {
	LatestPrice(symbol string) (float64, bool)
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// orderRequest is the POST /api/orders body.
type orderRequest struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, broker Broker, prices PriceSource, symbols []string, processStart time.Time) {
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		hub.HandleWSRequest(conn)
	})

	mux.HandleFunc("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.LatestRecommendations())
	})

	mux.HandleFunc("/api/holdings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.LatestHoldings())
	})

	mux.HandleFunc("/api/current-price", func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			writeError(w, http.StatusBadRequest, "symbol query parameter is required")
			return
		}
		price, ok := prices.LatestPrice(symbol)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no recent price for %s", symbol))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"symbol": symbol,
			"price":  price,
		})
	})

	mux.HandleFunc("/api/trading-pairs", func(w http.ResponseWriter, r *http.Request) {
		pairs, err := broker.GetTradingPairs(r.Context(), symbols...)
		if err != nil {
			writeError(w, http.StatusBadGateway, "trading pairs fetch failed: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, pairs)
	})

	mux.HandleFunc("/api/account", func(w http.ResponseWriter, r *http.Request) {
		account, err := broker.GetAccount(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, "account fetch failed: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, account)
	})

	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			SetCORS(w)
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		handlePlaceOrder(w, r, broker, prices)
	})

	// POST /api/orders/{id}/cancel
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
		orderID := strings.TrimSuffix(rest, "/cancel")
		if orderID == "" || orderID == rest {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		result, err := broker.CancelOrder(r.Context(), orderID)
		if err != nil {
			writeError(w, http.StatusBadGateway, "cancel failed: "+err.Error())
			return
		}
		log.Printf("[gateway] cancel requested for order %s", orderID)
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")
		w.Write(result)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"ws_clients": hub.ClientCount(),
			"uptime_sec": int64(time.Since(processStart).Seconds()),
			"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

// handlePlaceOrder validates the request and places a buy (market) or
// sell (limit at the latest price, 6 decimal places) order.
func handlePlaceOrder(w http.ResponseWriter, r *http.Request, broker Broker, prices PriceSource) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Side != "buy" && req.Side != "sell" {
		writeError(w, http.StatusBadRequest, "side must be buy or sell")
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil || !qty.IsPositive() {
		writeError(w, http.StatusBadRequest, "quantity must be a positive decimal")
		return
	}

	pairs, err := broker.GetTradingPairs(r.Context(), req.Symbol)
	if err != nil {
		writeError(w, http.StatusBadGateway, "trading pair lookup failed: "+err.Error())
		return
	}
	if len(pairs) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown trading pair: %s", req.Symbol))
		return
	}

	config := robinhood.OrderConfig{AssetQuantity: qty.String()}
	orderType := "market"
	if req.Side == "sell" {
		price, ok := prices.LatestPrice(req.Symbol)
		if !ok {
			writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("no recent price for %s", req.Symbol))
			return
		}
		orderType = "limit"
		config.LimitPrice = decimal.NewFromFloat(price).Round(6).String()
	}

	order, err := broker.PlaceOrder(r.Context(), uuid.NewString(), req.Side, orderType, req.Symbol, config)
	if err != nil {
		writeError(w, http.StatusBadGateway, "order placement failed: "+err.Error())
		return
	}

	log.Printf("[gateway] placed %s %s order for %s qty=%s", req.Side, orderType, req.Symbol, qty)
	writeJSON(w, http.StatusCreated, order)
}
