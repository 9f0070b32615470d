package signal_test

import (
	"math"
	"testing"

	"prosperity_go/internal/config"
	"prosperity_go/internal/domain"
	"prosperity_go/internal/history"
	"prosperity_go/internal/signal"
)

func TestMomentum(t *testing.T) {
	// Window 4 over [100, 102, 104, 106]:
	// returns 2/100, 2/102, 2/104 -> mean ~ 0.01926
	prices := []float64{90, 100, 102, 104, 106}
	got := signal.Momentum(prices, 4, 0)
	want := (2.0/100 + 2.0/102 + 2.0/104) / 3
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Momentum = %v, want %v", got, want)
	}
}

func TestMomentumShortHistoryIsZero(t *testing.T) {
	if got := signal.Momentum([]float64{100, 101}, 5, 0); got != 0 {
		t.Errorf("Momentum = %v, want 0 below window", got)
	}
}

func TestMomentumThresholdTilts(t *testing.T) {
	rising := []float64{100, 101, 102, 103, 104}
	falling := []float64{104, 103, 102, 101, 100}
	flat := []float64{100, 100, 100, 100, 100}

	if got := signal.Momentum(rising, 5, 0.001); got != 1 {
		t.Errorf("rising tilt = %v, want +1", got)
	}
	if got := signal.Momentum(falling, 5, 0.001); got != -1 {
		t.Errorf("falling tilt = %v, want -1", got)
	}
	if got := signal.Momentum(flat, 5, 0.001); got != 0 {
		t.Errorf("flat tilt = %v, want 0", got)
	}
}

func TestImbalance(t *testing.T) {
	d := &domain.OrderDepth{
		BuyOrders:  map[int]int{99: 30},
		SellOrders: map[int]int{101: 10},
	}
	if got := signal.Imbalance(d); got != 0.5 {
		t.Errorf("Imbalance = %v, want 0.5", got)
	}

	if got := signal.Imbalance(&domain.OrderDepth{}); got != 0 {
		t.Errorf("Imbalance on empty book = %v, want 0", got)
	}
}

func TestVolatility(t *testing.T) {
	// Sample stdev of [2, 4, 4, 4, 5, 5, 7, 9] is ~2.138
	samples := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := signal.Volatility(samples, 8)
	if math.Abs(got-2.13809) > 1e-4 {
		t.Errorf("Volatility = %v, want ~2.138", got)
	}

	if got := signal.Volatility([]float64{5}, 10); got != 0 {
		t.Errorf("Volatility with one sample = %v, want 0", got)
	}
	if got := signal.Volatility(nil, 10); got != 0 {
		t.Errorf("Volatility with no samples = %v, want 0", got)
	}
}

func inst() config.Instrument {
	c, _ := config.Default().Instrument("RAINFOREST_RESIN")
	return c
}

func TestAdaptiveSpread(t *testing.T) {
	c := inst() // base 1.5, skew 0.3, limit 50, band [1, 20]

	// Flat: base * (1+0) * (1-0) = 1.5
	if got := signal.AdaptiveSpread(c, 0, 0); got != 1.5 {
		t.Errorf("flat spread = %v, want 1.5", got)
	}

	// Volatile widens; inventory narrows.
	wide := signal.AdaptiveSpread(c, 1.0, 0)
	if wide != 3.0 {
		t.Errorf("volatile spread = %v, want 3.0", wide)
	}
	skewed := signal.AdaptiveSpread(c, 1.0, 50)
	if !(skewed < wide) {
		t.Errorf("full inventory should narrow: %v !< %v", skewed, wide)
	}

	// Clamped to the band.
	if got := signal.AdaptiveSpread(c, 100, 0); got != 20 {
		t.Errorf("clamped spread = %v, want max 20", got)
	}
}

func TestClassify(t *testing.T) {
	c := inst() // reference price 10000

	calm := history.NewSeries(100)
	for i := 0; i < 20; i++ {
		calm.Append(10000, 2, 10)
	}
	atRef := &domain.OrderDepth{BuyOrders: map[int]int{9999: 1}, SellOrders: map[int]int{10001: 1}}
	if got := signal.Classify(c, atRef, calm); got != signal.RegimeStable {
		t.Errorf("Classify = %v, want stable", got)
	}

	// Mid far from the reference price: trending.
	away := &domain.OrderDepth{BuyOrders: map[int]int{10099: 1}, SellOrders: map[int]int{10101: 1}}
	if got := signal.Classify(c, away, calm); got != signal.RegimeTrending {
		t.Errorf("Classify = %v, want trending", got)
	}

	// Violent return swings plus a blown-out spread: volatile.
	wild := history.NewSeries(100)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			wild.Append(10000, 2, 10)
		} else {
			wild.Append(10400, 2, 10)
		}
	}
	blownOut := &domain.OrderDepth{BuyOrders: map[int]int{9800: 1}, SellOrders: map[int]int{10210: 1}}
	if got := signal.Classify(c, blownOut, wild); got != signal.RegimeVolatile {
		t.Errorf("Classify = %v, want volatile", got)
	}
}

func TestClassifyThresholdsComeFromDescriptor(t *testing.T) {
	c := inst()

	// Mid 10020 is inside the default 50-tick trend band but outside a
	// tightened one.
	near := &domain.OrderDepth{BuyOrders: map[int]int{10019: 1}, SellOrders: map[int]int{10021: 1}}
	calm := history.NewSeries(100)
	calm.Append(10020, 2, 10)

	if got := signal.Classify(c, near, calm); got != signal.RegimeStable {
		t.Errorf("Classify = %v, want stable with the default band", got)
	}
	c.RegimeTrendBand = 10
	if got := signal.Classify(c, near, calm); got != signal.RegimeTrending {
		t.Errorf("Classify = %v, want trending with the tight band", got)
	}
}

func TestComputeBundlesSignals(t *testing.T) {
	c := inst()
	s := history.NewSeries(100)
	for i := 0; i < 30; i++ {
		s.Append(10000, 2, 20)
	}
	d := &domain.OrderDepth{
		BuyOrders:  map[int]int{9999: 15},
		SellOrders: map[int]int{10001: 5},
	}

	set := signal.Compute(c, d, s, 10)
	if set.Imbalance != 0.5 {
		t.Errorf("Imbalance = %v, want 0.5", set.Imbalance)
	}
	if set.Momentum != 0 {
		t.Errorf("Momentum = %v, want 0 on flat history", set.Momentum)
	}
	if set.Spread < c.MinSpread || set.Spread > c.MaxSpread {
		t.Errorf("Spread %v outside [%v, %v]", set.Spread, c.MinSpread, c.MaxSpread)
	}
	if set.Regime != signal.RegimeStable {
		t.Errorf("Regime = %v, want stable", set.Regime)
	}
}
