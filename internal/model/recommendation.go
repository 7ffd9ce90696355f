package model

import (
	"encoding/json"
	"math"
)

// Action is the discrete trading action a symbol is classified into.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// IndicatorSet holds the derived values the decision engine computed for
// one symbol's window. Surfaced to viewers alongside the recommendation.
type IndicatorSet struct {
	Latest       float64 `json:"latest"`
	ShortTermAvg float64 `json:"short_term_avg"`
	LongTermAvg  float64 `json:"long_term_avg"`
	EMAShort     float64 `json:"ema_short"`
	RSI          float64 `json:"rsi"`
	Volatility   float64 `json:"volatility"`
	UpperBand    float64 `json:"upper_band"`
	LowerBand    float64 `json:"lower_band"`
}

// jsonFloat renders non-finite values as null. RSI is NaN on a flat
// window and the sentinel must survive JSON encoding, not break it.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (s IndicatorSet) MarshalJSON() ([]byte, error) {
	type wire struct {
		Latest       jsonFloat `json:"latest"`
		ShortTermAvg jsonFloat `json:"short_term_avg"`
		LongTermAvg  jsonFloat `json:"long_term_avg"`
		EMAShort     jsonFloat `json:"ema_short"`
		RSI          jsonFloat `json:"rsi"`
		Volatility   jsonFloat `json:"volatility"`
		UpperBand    jsonFloat `json:"upper_band"`
		LowerBand    jsonFloat `json:"lower_band"`
	}
	return json.Marshal(wire{
		Latest:       jsonFloat(s.Latest),
		ShortTermAvg: jsonFloat(s.ShortTermAvg),
		LongTermAvg:  jsonFloat(s.LongTermAvg),
		EMAShort:     jsonFloat(s.EMAShort),
		RSI:          jsonFloat(s.RSI),
		Volatility:   jsonFloat(s.Volatility),
		UpperBand:    jsonFloat(s.UpperBand),
		LowerBand:    jsonFloat(s.LowerBand),
	})
}

// Recommendation classifies one symbol for one decision cycle.
// Rebuilt wholesale each cycle; it has no identity across cycles.
type Recommendation struct {
	Symbol     string       `json:"symbol"`
	Action     Action       `json:"action"`
	Rationale  string       `json:"rationale"`
	Indicators IndicatorSet `json:"indicators"`
}
