// Package decision classifies each symbol's recent price window into a
// buy/sell/hold recommendation with a human-readable rationale.
//
// Recommendations are advisory: nothing here ever talks to the order
// gateway, and nothing here returns an error. Missing data means the
// symbol is absent from the output for that cycle.
package decision

import (
	"time"

	"cryptotrader/internal/indicator"
	"cryptotrader/internal/model"
	"cryptotrader/internal/window"
)

// MinSamples is the minimum number of points inside the analysis horizon
// a symbol needs before any recommendation is emitted for it.
const MinSamples = 30

const (
	shortPeriod     = 5
	longPeriod      = 30
	bollingerPeriod = 20

	// volatility threshold as a fraction of the latest price
	thresholdRatio = 0.0002
)

// Engine runs the rule table over per-symbol price windows.
type Engine struct {
	analysisHorizon time.Duration
}

// New creates an Engine that considers points at most analysisHorizon old.
func New(analysisHorizon time.Duration) *Engine {
	return &Engine{analysisHorizon: analysisHorizon}
}

// Evaluate classifies a single price series (most-recent last).
// ok is false when the series has fewer than MinSamples points.
func Evaluate(symbol string, prices []float64) (model.Recommendation, bool) {
	if len(prices) < MinSamples {
		return model.Recommendation{}, false
	}

	latest := prices[len(prices)-1]
	shortAvg, _ := indicator.SMA(prices, shortPeriod)
	longAvg, _ := indicator.SMA(prices, longPeriod)
	emaShort, _ := indicator.EMA(prices, shortPeriod)
	rsi, _ := indicator.RSI(prices)
	volatility := indicator.StdDev(prices[len(prices)-shortPeriod:])
	upper, lower, _ := indicator.Bollinger(prices, bollingerPeriod)

	in := ruleInput{
		IndicatorSet: model.IndicatorSet{
			Latest:       latest,
			ShortTermAvg: shortAvg,
			LongTermAvg:  longAvg,
			EMAShort:     emaShort,
			RSI:          rsi,
			Volatility:   volatility,
			UpperBand:    upper,
			LowerBand:    lower,
		},
		Threshold: thresholdRatio * latest,
	}

	rec := model.Recommendation{
		Symbol:     symbol,
		Action:     model.ActionHold,
		Rationale:  holdRationale,
		Indicators: in.IndicatorSet,
	}
	for _, r := range ruleTable {
		if r.when(in) {
			rec.Action = r.action
			rec.Rationale = r.rationale
			break
		}
	}
	return rec, true
}

// EvaluateAll rebuilds the symbol → recommendation mapping from scratch.
// Symbols without enough data inside the analysis horizon are simply
// absent, not errors.
func (e *Engine) EvaluateAll(win *window.Window, symbols []string, now time.Time) map[string]model.Recommendation {
	out := make(map[string]model.Recommendation, len(symbols))
	since := now.Add(-e.analysisHorizon)
	for _, sym := range symbols {
		prices := win.Prices(sym, since)
		if rec, ok := Evaluate(sym, prices); ok {
			out[sym] = rec
		}
	}
	return out
}
