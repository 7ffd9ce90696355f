// Command tradectl is a small operator CLI for the crypto trading API:
// account, pairs, holdings, buy, sell, cancel.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cryptotrader/config"
	"cryptotrader/pkg/robinhood"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: tradectl [-config file] <command> [args]

commands:
  account                     show account number, status and buying power
  pairs [SYMBOL ...]          show trading pairs (default: configured symbols)
  holdings [ASSET ...]        show current holdings
  price SYMBOL                show the best bid/ask price
  buy SYMBOL QUANTITY         place a market buy order
  sell SYMBOL QUANTITY        place a limit sell order at the current price
  cancel ORDER_ID             cancel an open order
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)

	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	broker, err := robinhood.New(robinhood.Config{
		APIKey:           cfg.Robinhood.APIKey,
		Base64PrivateKey: cfg.Robinhood.Base64PrivateKey,
		BaseURL:          cfg.Robinhood.BaseURL,
	})
	if err != nil {
		log.Fatalf("trading api init failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "account":
		showAccount(ctx, broker)
	case "pairs":
		symbols := rest
		if len(symbols) == 0 {
			symbols = cfg.Trading.Symbols
		}
		showPairs(ctx, broker, symbols)
	case "holdings":
		showHoldings(ctx, broker, rest)
	case "price":
		if len(rest) != 1 {
			usage()
		}
		showPrice(ctx, broker, strings.ToUpper(rest[0]))
	case "buy":
		if len(rest) != 2 {
			usage()
		}
		placeBuy(ctx, broker, strings.ToUpper(rest[0]), rest[1])
	case "sell":
		if len(rest) != 2 {
			usage()
		}
		placeSell(ctx, broker, strings.ToUpper(rest[0]), rest[1])
	case "cancel":
		if len(rest) != 1 {
			usage()
		}
		cancelOrder(ctx, broker, rest[0])
	default:
		usage()
	}
}

func showAccount(ctx context.Context, broker *robinhood.Client) {
	account, err := broker.GetAccount(ctx)
	if err != nil {
		log.Fatalf("account fetch failed: %v", err)
	}
	fmt.Printf("Account Number: %s\n", account.AccountNumber)
	fmt.Printf("Status:         %s\n", account.Status)
	fmt.Printf("Buying Power:   %s %s\n", account.BuyingPower, account.BuyingPowerCurrency)
}

func showPairs(ctx context.Context, broker *robinhood.Client, symbols []string) {
	pairs, err := broker.GetTradingPairs(ctx, symbols...)
	if err != nil {
		log.Fatalf("trading pairs fetch failed: %v", err)
	}
	for _, p := range pairs {
		fmt.Printf("%s  status=%s  min=%s  max=%s\n", p.Symbol, p.Status, p.MinOrderSize, p.MaxOrderSize)
	}
}

func showHoldings(ctx context.Context, broker *robinhood.Client, assetCodes []string) {
	held, err := broker.GetHoldings(ctx, assetCodes...)
	if err != nil {
		log.Fatalf("holdings fetch failed: %v", err)
	}
	if len(held) == 0 {
		fmt.Println("no holdings")
		return
	}
	for _, h := range held {
		fmt.Printf("%s  quantity=%s  tradable=%s\n", h.AssetCode, h.TotalQuantity, h.QuantityAvailableForTrading)
	}
}

func showPrice(ctx context.Context, broker *robinhood.Client, symbol string) {
	quotes, err := broker.GetBestBidAsk(ctx, []string{symbol})
	if err != nil {
		log.Fatalf("price fetch failed: %v", err)
	}
	if len(quotes) == 0 {
		log.Fatalf("no price for %s", symbol)
	}
	fmt.Printf("%s  %v\n", quotes[0].Symbol, quotes[0].Price)
}

func parseQuantity(s string) decimal.Decimal {
	qty, err := decimal.NewFromString(s)
	if err != nil || !qty.IsPositive() {
		log.Fatalf("quantity must be a positive decimal, got %q", s)
	}
	return qty
}

func placeBuy(ctx context.Context, broker *robinhood.Client, symbol, quantity string) {
	qty := parseQuantity(quantity)
	order, err := broker.PlaceOrder(ctx, uuid.NewString(), "buy", "market", symbol,
		robinhood.OrderConfig{AssetQuantity: qty.String()})
	if err != nil {
		log.Fatalf("order placement failed: %v", err)
	}
	printOrder(order)
}

func placeSell(ctx context.Context, broker *robinhood.Client, symbol, quantity string) {
	qty := parseQuantity(quantity)

	quotes, err := broker.GetBestBidAsk(ctx, []string{symbol})
	if err != nil || len(quotes) == 0 {
		log.Fatalf("no current price for %s, cannot set limit", symbol)
	}
	limit := decimal.NewFromFloat(quotes[0].Price).Round(6)

	order, err := broker.PlaceOrder(ctx, uuid.NewString(), "sell", "limit", symbol,
		robinhood.OrderConfig{AssetQuantity: qty.String(), LimitPrice: limit.String()})
	if err != nil {
		log.Fatalf("order placement failed: %v", err)
	}
	fmt.Printf("limit price: %s\n", limit)
	printOrder(order)
}

func cancelOrder(ctx context.Context, broker *robinhood.Client, orderID string) {
	result, err := broker.CancelOrder(ctx, orderID)
	if err != nil {
		log.Fatalf("cancellation failed: %v", err)
	}
	var pretty map[string]interface{}
	if json.Unmarshal(result, &pretty) == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Println(string(result))
}

func printOrder(order *robinhood.Order) {
	fmt.Println("order placed:")
	fmt.Printf("  id:     %s\n", order.ID)
	fmt.Printf("  symbol: %s\n", order.Symbol)
	fmt.Printf("  side:   %s %s\n", order.Side, order.Type)
	fmt.Printf("  state:  %s\n", order.State)
}
