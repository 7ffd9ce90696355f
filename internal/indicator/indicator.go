// Package indicator provides pure, stateless technical indicator functions
// over an ordered price series (most-recent sample last).
//
// Every function that needs a minimum sample count reports readiness through
// a second return value instead of an error: below-threshold series are a
// normal condition for a freshly started window, not a failure.
package indicator

import "math"

// SMA returns the arithmetic mean of the last period elements.
// ok is false when the series is shorter than period.
func SMA(series []float64, period int) (float64, bool) {
	if period <= 0 || len(series) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// EMA returns the exponential moving average with smoothing k = 2/(period+1).
// Seeded with the simple average of the first period elements, then applied
// left-to-right over the remaining elements in input order.
// ok is false when the series is shorter than period.
func EMA(series []float64, period int) (float64, bool) {
	if period <= 0 || len(series) < period {
		return 0, false
	}
	k := 2.0 / float64(period+1)
	seed := 0.0
	for _, v := range series[:period] {
		seed += v
	}
	ema := seed / float64(period)
	for _, v := range series[period:] {
		ema = v*k + ema*(1-k)
	}
	return ema, true
}

// StdDev returns the population standard deviation (divide by N) of the
// whole slice. An empty series yields 0.
func StdDev(series []float64) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range series {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range series {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(n))
}

// Bollinger returns the Bollinger bands: SMA(series, period) plus/minus
// twice the population standard deviation of the last period elements.
// ok is false when the series is shorter than period.
func Bollinger(series []float64, period int) (upper, lower float64, ok bool) {
	ma, ok := SMA(series, period)
	if !ok {
		return 0, 0, false
	}
	sd := StdDev(series[len(series)-period:])
	return ma + 2*sd, ma - 2*sd, true
}

// RSIPeriod is the fixed sample count RSI evaluates.
const RSIPeriod = 14

// RSI returns the 14-sample relative strength index over the LEADING
// samples of the series: gains and losses are summed from the pairwise
// differences at indices 1..13, regardless of how long the series is.
// This positional behavior is intentional and pinned by tests; a
// trailing-window variant would produce materially different signals.
//
// Both averages divide by 14. When avgLoss is zero the division follows
// IEEE-754: positive gains push rs to +Inf and RSI to 100, an all-flat
// leading window yields NaN. Callers must treat those as sentinels, not
// errors. ok is false when the series is shorter than 14.
func RSI(series []float64) (float64, bool) {
	if len(series) < RSIPeriod {
		return 0, false
	}
	gains, losses := 0.0, 0.0
	for i := 1; i < RSIPeriod; i++ {
		diff := series[i] - series[i-1]
		if diff > 0 {
			gains += diff
		} else {
			losses -= diff
		}
	}
	avgGain := gains / RSIPeriod
	avgLoss := losses / RSIPeriod
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}
