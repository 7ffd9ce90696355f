package holdings

import (
	"testing"

	"cryptotrader/pkg/robinhood"
)

func TestBuild(t *testing.T) {
	held := []robinhood.Holding{
		{AssetCode: "ETH", TotalQuantity: "2.5"},
		{AssetCode: "BTC", TotalQuantity: "0.1"},
		{AssetCode: "DOGE", TotalQuantity: "1000"},
		{AssetCode: "XRP", TotalQuantity: "oops"},
	}
	latest := map[string]float64{
		"BTC-USD": 60000,
		"ETH-USD": 3000,
	}

	snaps := Build(held, latest)
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots (malformed quantity dropped), got %d", len(snaps))
	}

	// Sorted by asset code.
	if snaps[0].Asset != "BTC" || snaps[1].Asset != "DOGE" || snaps[2].Asset != "ETH" {
		t.Errorf("wrong order: %+v", snaps)
	}
	if snaps[0].USDValue != 6000 {
		t.Errorf("expected BTC value 6000, got %v", snaps[0].USDValue)
	}
	if snaps[2].USDValue != 7500 {
		t.Errorf("expected ETH value 7500, got %v", snaps[2].USDValue)
	}

	// Unpriced asset listed with zero value, raw holding preserved.
	if snaps[1].USDValue != 0 || snaps[1].Quantity != 1000 {
		t.Errorf("expected unpriced DOGE at value 0: %+v", snaps[1])
	}
	if len(snaps[1].Detail) == 0 {
		t.Error("expected raw holding in Detail")
	}
}

func TestBuild_Empty(t *testing.T) {
	if got := Build(nil, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}
