package window

import (
	"testing"
	"time"

	"cryptotrader/internal/model"
)

func pt(sym string, ts time.Time, price float64) model.PricePoint {
	return model.PricePoint{TS: ts, Symbol: sym, Price: price}
}

func TestAppendAndView(t *testing.T) {
	w := New(2 * time.Hour)
	now := time.Now().UTC()

	w.Append(pt("BTC-USD", now.Add(-3*time.Minute), 100))
	w.Append(pt("BTC-USD", now.Add(-2*time.Minute), 101))
	w.Append(pt("BTC-USD", now.Add(-1*time.Minute), 102))
	w.Append(pt("ETH-USD", now.Add(-1*time.Minute), 50))

	got := w.View("BTC-USD", now.Add(-10*time.Minute))
	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	if got[0].Price != 100 || got[2].Price != 102 {
		t.Errorf("insertion order not preserved: %+v", got)
	}

	// since filter cuts the oldest point
	got = w.View("BTC-USD", now.Add(-150*time.Second))
	if len(got) != 2 || got[0].Price != 101 {
		t.Errorf("expected points newer than since, got %+v", got)
	}

	if w.Len("ETH-USD") != 1 {
		t.Errorf("expected 1 ETH point, got %d", w.Len("ETH-USD"))
	}
}

func TestViewDoesNotAliasInternalState(t *testing.T) {
	w := New(time.Hour)
	now := time.Now().UTC()
	w.Append(pt("BTC-USD", now, 100))

	got := w.View("BTC-USD", time.Time{})
	got[0].Price = -1

	again := w.View("BTC-USD", time.Time{})
	if again[0].Price != 100 {
		t.Errorf("read path mutated the window: %v", again[0].Price)
	}
}

func TestPruneEvictsOnlyExpired(t *testing.T) {
	w := New(time.Hour)
	now := time.Now().UTC()

	w.Append(pt("BTC-USD", now.Add(-90*time.Minute), 1))
	w.Append(pt("BTC-USD", now.Add(-61*time.Minute), 2))
	w.Append(pt("BTC-USD", now.Add(-30*time.Minute), 3))
	w.Append(pt("BTC-USD", now.Add(-1*time.Minute), 4))

	w.Prune(now)

	got := w.View("BTC-USD", time.Time{})
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
	cutoff := now.Add(-time.Hour)
	for _, p := range got {
		if p.TS.Before(cutoff) {
			t.Errorf("retained point older than horizon: %v", p.TS)
		}
	}
	if got[0].Price != 3 || got[1].Price != 4 {
		t.Errorf("wrong survivors: %+v", got)
	}
}

func TestPruneIdempotent(t *testing.T) {
	w := New(time.Hour)
	now := time.Now().UTC()
	w.Append(pt("BTC-USD", now.Add(-2*time.Hour), 1))
	w.Append(pt("BTC-USD", now.Add(-30*time.Minute), 2))

	w.Prune(now)
	first := w.Len("BTC-USD")
	w.Prune(now)
	second := w.Len("BTC-USD")

	if first != 1 || second != 1 {
		t.Errorf("prune not idempotent: %d then %d", first, second)
	}
}

func TestPruneDropsFullyExpiredSymbol(t *testing.T) {
	w := New(time.Hour)
	now := time.Now().UTC()
	w.Append(pt("DOGE-USD", now.Add(-3*time.Hour), 0.1))

	w.Prune(now)
	if w.Len("DOGE-USD") != 0 {
		t.Errorf("expected symbol fully evicted")
	}
	if w.Size() != 0 {
		t.Errorf("expected empty window, size=%d", w.Size())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	w := New(time.Hour)
	now := time.Now().UTC()
	w.Append(pt("BTC-USD", now.Add(-2*time.Minute), 100))
	w.Append(pt("BTC-USD", now.Add(-1*time.Minute), 101))
	w.Append(pt("ETH-USD", now.Add(-1*time.Minute), 50))

	snap := w.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 points in snapshot, got %d", len(snap))
	}

	restored := New(time.Hour)
	restored.Restore(snap)
	if restored.Len("BTC-USD") != 2 || restored.Len("ETH-USD") != 1 {
		t.Errorf("restore lost points: BTC=%d ETH=%d",
			restored.Len("BTC-USD"), restored.Len("ETH-USD"))
	}
	prices := restored.Prices("BTC-USD", time.Time{})
	if len(prices) != 2 || prices[0] != 100 || prices[1] != 101 {
		t.Errorf("restore broke ordering: %v", prices)
	}
}
