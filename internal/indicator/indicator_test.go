package indicator

import (
	"math"
	"testing"
)

func TestSMA_Basic(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5}
	got, ok := SMA(series, 5)
	if !ok {
		t.Fatal("expected ok for len==period")
	}
	if got != 3 {
		t.Errorf("expected 3, got %v", got)
	}

	// Trailing window only
	got, ok = SMA(series, 2)
	if !ok || got != 4.5 {
		t.Errorf("expected trailing mean 4.5, got %v (ok=%v)", got, ok)
	}
}

func TestSMA_InsufficientData(t *testing.T) {
	for n := 0; n < 5; n++ {
		series := make([]float64, n)
		if _, ok := SMA(series, 5); ok {
			t.Errorf("expected not-ok for len=%d period=5", n)
		}
	}
}

func TestEMA_SeedAndRecurrence(t *testing.T) {
	// Seed = mean(first 3) = 2. k = 2/4 = 0.5.
	// ema = 10*0.5 + 2*0.5 = 6, then 20*0.5 + 6*0.5 = 13.
	series := []float64{1, 2, 3, 10, 20}
	got, ok := EMA(series, 3)
	if !ok {
		t.Fatal("expected ok")
	}
	if math.Abs(got-13) > 1e-12 {
		t.Errorf("expected 13, got %v", got)
	}
}

func TestEMA_ExactlyPeriodSamples(t *testing.T) {
	// No recurrence steps: EMA equals the seed average.
	got, ok := EMA([]float64{2, 4, 6}, 3)
	if !ok || got != 4 {
		t.Errorf("expected seed average 4, got %v (ok=%v)", got, ok)
	}
}

func TestEMA_InsufficientData(t *testing.T) {
	if _, ok := EMA([]float64{1, 2}, 3); ok {
		t.Error("expected not-ok below period")
	}
}

func TestStdDev_ConstantSeriesIsZero(t *testing.T) {
	series := []float64{7.5, 7.5, 7.5, 7.5}
	if got := StdDev(series); got != 0 {
		t.Errorf("expected 0 for constant series, got %v", got)
	}
}

func TestStdDev_Population(t *testing.T) {
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2 (divide by N).
	series := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := StdDev(series); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected population stddev 2, got %v", got)
	}
}

func TestBollinger(t *testing.T) {
	series := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	upper, lower, ok := Bollinger(series, 8)
	if !ok {
		t.Fatal("expected ok")
	}
	// mean = 5, stddev = 2 → bands at 9 and 1.
	if math.Abs(upper-9) > 1e-12 || math.Abs(lower-1) > 1e-12 {
		t.Errorf("expected bands (9, 1), got (%v, %v)", upper, lower)
	}

	if _, _, ok := Bollinger(series[:5], 8); ok {
		t.Error("expected not-ok below period")
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	series := make([]float64, 13)
	if _, ok := RSI(series); ok {
		t.Error("expected not-ok for 13 samples")
	}
}

func TestRSI_MidpointWhenGainsEqualLosses(t *testing.T) {
	// Alternating +1/-1 deltas over the leading 14 samples:
	// 13 deltas, 7 gains of 1 and 6 losses of 1... adjust so sums match.
	// Use +1,-1 pairs then a flat tail: 6 gains, 6 losses, 1 flat delta.
	series := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 11, 10, 10}
	got, ok := RSI(series)
	if !ok {
		t.Fatal("expected ok")
	}
	if math.Abs(got-50) > 1e-12 {
		t.Errorf("expected exactly 50 when avgGain==avgLoss, got %v", got)
	}
}

func TestRSI_SaturatesAt100WithNoLosses(t *testing.T) {
	series := make([]float64, 14)
	for i := range series {
		series[i] = 100 + float64(i)
	}
	got, ok := RSI(series)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != 100 {
		t.Errorf("expected saturation at 100 when avgLoss==0, got %v", got)
	}
}

func TestRSI_FlatLeadingWindowIsNaN(t *testing.T) {
	// Zero gains and zero losses: 0/0 must pass through as NaN,
	// never panic or error.
	series := make([]float64, 14)
	for i := range series {
		series[i] = 42
	}
	got, ok := RSI(series)
	if !ok {
		t.Fatal("expected ok")
	}
	if !math.IsNaN(got) {
		t.Errorf("expected NaN for flat leading window, got %v", got)
	}
}

func TestRSI_UsesLeadingSamplesOnly(t *testing.T) {
	// The first 14 samples rise steadily; everything after crashes.
	// A trailing-window implementation would report oversold here.
	series := make([]float64, 0, 40)
	for i := 0; i < 14; i++ {
		series = append(series, 100+float64(i))
	}
	for i := 0; i < 26; i++ {
		series = append(series, 50-float64(i))
	}
	got, ok := RSI(series)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != 100 {
		t.Errorf("expected RSI 100 from the leading rise, got %v", got)
	}
}

func TestRSI_OnlyThirteenDeltasCounted(t *testing.T) {
	// The delta between samples 13 and 14 must not contribute: loop covers
	// indices 1..13 relative to the slice start.
	up := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23}
	withCrashAfter := append(append([]float64{}, up...), 1)
	a, _ := RSI(up)
	b, _ := RSI(withCrashAfter)
	if a != b {
		t.Errorf("sample 15 leaked into RSI: %v vs %v", a, b)
	}
}
