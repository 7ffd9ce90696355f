// Package window maintains the bounded recent price history per symbol.
//
// One writer (the ingestion loop) appends and prunes; the decision engine
// and the gateway read concurrently. Readers get copies, so a window
// mutating between two reads is at worst a freshness issue, never a
// correctness one.
package window

import (
	"sync"
	"time"

	"cryptotrader/internal/model"
)

// Window is a per-symbol, insertion-ordered price series with age-based
// eviction from the head. Retention is by time, not by count.
type Window struct {
	mu      sync.RWMutex
	horizon time.Duration
	points  map[string][]model.PricePoint
}

// New creates a Window that retains points no older than horizon.
func New(horizon time.Duration) *Window {
	return &Window{
		horizon: horizon,
		points:  make(map[string][]model.PricePoint),
	}
}

// Horizon returns the configured retention horizon.
func (w *Window) Horizon() time.Duration { return w.horizon }

// Append adds a point to the tail of its symbol's series. O(1) amortized.
func (w *Window) Append(p model.PricePoint) {
	w.mu.Lock()
	w.points[p.Symbol] = append(w.points[p.Symbol], p)
	w.mu.Unlock()
}

// Prune evicts points older than now minus the horizon, strictly from the
// head of each series. Calling it again with the same now removes nothing.
func (w *Window) Prune(now time.Time) {
	cutoff := now.Add(-w.horizon)
	w.mu.Lock()
	defer w.mu.Unlock()
	for sym, pts := range w.points {
		i := 0
		for i < len(pts) && pts[i].TS.Before(cutoff) {
			i++
		}
		if i == 0 {
			continue
		}
		if i == len(pts) {
			delete(w.points, sym)
			continue
		}
		// Re-slice onto a fresh backing array so evicted points are
		// actually released.
		kept := make([]model.PricePoint, len(pts)-i)
		copy(kept, pts[i:])
		w.points[sym] = kept
	}
}

// View returns a copy of the symbol's points with TS >= since, in
// insertion order. The read path never mutates the window.
func (w *Window) View(symbol string, since time.Time) []model.PricePoint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	pts := w.points[symbol]
	i := 0
	for i < len(pts) && pts[i].TS.Before(since) {
		i++
	}
	if i == len(pts) {
		return nil
	}
	out := make([]model.PricePoint, len(pts)-i)
	copy(out, pts[i:])
	return out
}

// Prices returns just the price values of View(symbol, since).
func (w *Window) Prices(symbol string, since time.Time) []float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	pts := w.points[symbol]
	i := 0
	for i < len(pts) && pts[i].TS.Before(since) {
		i++
	}
	if i == len(pts) {
		return nil
	}
	out := make([]float64, len(pts)-i)
	for j, p := range pts[i:] {
		out[j] = p.Price
	}
	return out
}

// Len returns the number of retained points for a symbol.
func (w *Window) Len(symbol string) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.points[symbol])
}

// Size returns the total number of retained points across all symbols.
func (w *Window) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, pts := range w.points {
		n += len(pts)
	}
	return n
}

// Snapshot returns every retained point across all symbols in insertion
// order per symbol. Used by the persistence layer's full flush.
func (w *Window) Snapshot() []model.PricePoint {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]model.PricePoint, 0, 256)
	for _, pts := range w.points {
		out = append(out, pts...)
	}
	return out
}

// Restore replaces the window contents with previously persisted points,
// preserving their order. Called once at startup before ingestion begins.
func (w *Window) Restore(points []model.PricePoint) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.points = make(map[string][]model.PricePoint)
	for _, p := range points {
		w.points[p.Symbol] = append(w.points[p.Symbol], p)
	}
}
