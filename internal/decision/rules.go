package decision

import "cryptotrader/internal/model"

// ruleInput is everything a rule predicate may consult for one symbol.
type ruleInput struct {
	model.IndicatorSet
	Threshold float64
}

// rule pairs a predicate with the classification it produces.
type rule struct {
	when      func(in ruleInput) bool
	action    model.Action
	rationale string
}

// ruleTable is evaluated top to bottom, first match wins. The ordering is
// load-bearing: trend+low-volatility outranks RSI extremes, which outrank
// Bollinger breakouts. Reordering produces materially different signals.
var ruleTable = []rule{
	{
		when: func(in ruleInput) bool {
			return in.Latest > in.ShortTermAvg && in.Volatility < in.Threshold
		},
		action:    model.ActionBuy,
		rationale: "stable upward trend, low volatility",
	},
	{
		when: func(in ruleInput) bool {
			return in.Latest < in.ShortTermAvg && in.Volatility < in.Threshold
		},
		action:    model.ActionSell,
		rationale: "stable downward trend, low volatility",
	},
	{
		when:      func(in ruleInput) bool { return in.RSI < 30 },
		action:    model.ActionBuy,
		rationale: "oversold - potential reversal up",
	},
	{
		when:      func(in ruleInput) bool { return in.RSI > 70 },
		action:    model.ActionSell,
		rationale: "overbought - potential reversal down",
	},
	{
		when: func(in ruleInput) bool {
			return in.Latest > in.UpperBand && in.Volatility > in.Threshold
		},
		action:    model.ActionSell,
		rationale: "high volatility above upper band - correction likely",
	},
	{
		when: func(in ruleInput) bool {
			return in.Latest < in.LowerBand && in.Volatility > in.Threshold
		},
		action:    model.ActionBuy,
		rationale: "high volatility below lower band - correction likely",
	},
}

// holdRationale is the fallback when no rule matches.
const holdRationale = "uncertain trend"
