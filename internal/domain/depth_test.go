package domain_test

import (
	"testing"

	"prosperity_go/internal/domain"
)

func TestDepthBestPrices(t *testing.T) {
	d := &domain.OrderDepth{
		BuyOrders:  map[int]int{9998: 5, 9999: 3, 9995: 10},
		SellOrders: map[int]int{10002: 4, 10001: 6, 10005: 2},
	}

	bid, ok := d.BestBid()
	if !ok || bid != 9999 {
		t.Errorf("BestBid = %d, %v; want 9999, true", bid, ok)
	}
	ask, ok := d.BestAsk()
	if !ok || ask != 10001 {
		t.Errorf("BestAsk = %d, %v; want 10001, true", ask, ok)
	}

	mid, ok := d.Mid()
	if !ok || mid != 10000 {
		t.Errorf("Mid = %.2f, %v; want 10000, true", mid, ok)
	}
	spread, ok := d.Spread()
	if !ok || spread != 2 {
		t.Errorf("Spread = %.2f, %v; want 2, true", spread, ok)
	}

	if got := d.BidVolume(); got != 18 {
		t.Errorf("BidVolume = %d; want 18", got)
	}
	if got := d.AskVolume(); got != 12 {
		t.Errorf("AskVolume = %d; want 12", got)
	}
}

func TestDepthOneSided(t *testing.T) {
	d := &domain.OrderDepth{BuyOrders: map[int]int{100: 1}}

	if _, ok := d.BestAsk(); ok {
		t.Error("BestAsk on empty sell side should be undefined")
	}
	if _, ok := d.Mid(); ok {
		t.Error("Mid on one-sided book should be undefined")
	}
	if _, ok := d.Microprice(); ok {
		t.Error("Microprice on one-sided book should be undefined")
	}
	if d.Empty() {
		t.Error("one-sided book is not empty")
	}

	var nilDepth *domain.OrderDepth
	if !nilDepth.Empty() {
		t.Error("nil depth should report empty")
	}
}

func TestMicroprice(t *testing.T) {
	// bid=100 (vol 3), ask=104 (vol 1):
	// micro = (100*1 + 104*3) / 4 = 103 -> leans toward the thin ask side.
	d := &domain.OrderDepth{
		BuyOrders:  map[int]int{100: 3},
		SellOrders: map[int]int{104: 1},
	}
	micro, ok := d.Microprice()
	if !ok || micro != 103 {
		t.Errorf("Microprice = %.2f, %v; want 103, true", micro, ok)
	}
}

func TestMicropriceZeroVolumeFallsBackToMid(t *testing.T) {
	// Degenerate by construction: levels exist but carry zero quantity.
	d := &domain.OrderDepth{
		BuyOrders:  map[int]int{100: 0},
		SellOrders: map[int]int{104: 0},
	}
	micro, ok := d.Microprice()
	if !ok || micro != 102 {
		t.Errorf("Microprice = %.2f, %v; want mid 102, true", micro, ok)
	}
}

func TestNormalizeFlipsNegativeQuantities(t *testing.T) {
	d := &domain.OrderDepth{
		BuyOrders:  map[int]int{100: 3},
		SellOrders: map[int]int{104: -7},
	}
	d.Normalize()
	if d.SellOrders[104] != 7 {
		t.Errorf("ask qty = %d, want 7", d.SellOrders[104])
	}
	if d.BuyOrders[100] != 3 {
		t.Errorf("bid qty = %d, want 3 untouched", d.BuyOrders[100])
	}

	var nilDepth *domain.OrderDepth
	nilDepth.Normalize() // must not panic
}
