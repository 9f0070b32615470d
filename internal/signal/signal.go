// Package signal derives per-tick trading signals from the current book and
// retained history: momentum, order imbalance, volatility, an adaptive quote
// spread and a coarse market-regime classification.
package signal

import (
	"math"

	"prosperity_go/internal/config"
	"prosperity_go/internal/domain"
	"prosperity_go/internal/history"
	"prosperity_go/pkg/safe"
)

// Regime is a stateless per-tick market classification. It carries no
// transition memory; every tick reclassifies from scratch.
type Regime int

const (
	RegimeStable Regime = iota
	RegimeTrending
	RegimeVolatile
)

func (r Regime) String() string {
	switch r {
	case RegimeTrending:
		return "trending"
	case RegimeVolatile:
		return "volatile"
	default:
		return "stable"
	}
}

// Set is the full signal output for one instrument on one tick.
type Set struct {
	Momentum   float64
	Imbalance  float64
	Volatility float64 // stdev of trailing spread samples
	Spread     float64 // adaptive quote half-width
	Regime     Regime
}

// Compute derives all signals. Missing data resolves to neutral values, never
// an error: momentum is 0 below the window, volatility is 0 below two
// samples, imbalance is 0 on an empty book.
func Compute(inst config.Instrument, depth *domain.OrderDepth, s *history.Series, position int) Set {
	set := Set{
		Momentum:   Momentum(s.Prices, inst.MomentumWindow, inst.MomentumThreshold),
		Imbalance:  Imbalance(depth),
		Volatility: Volatility(s.Spreads, inst.VolatilityWindow),
	}
	set.Spread = AdaptiveSpread(inst, set.Volatility, position)
	set.Regime = Classify(inst, depth, s)
	return set
}

// Momentum is the mean of successive relative price changes over the trailing
// window, 0 when history is shorter than the window. A positive threshold
// collapses the value to a discrete {-1, 0, +1} tilt.
func Momentum(prices []float64, window int, threshold float64) float64 {
	if window < 2 || len(prices) < window {
		return 0
	}
	tail := prices[len(prices)-window:]
	var sum float64
	n := 0
	for i := 0; i < len(tail)-1; i++ {
		if tail[i] == 0 {
			continue
		}
		sum += (tail[i+1] - tail[i]) / tail[i]
		n++
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)

	if threshold <= 0 {
		return mean
	}
	switch {
	case mean > threshold:
		return 1
	case mean < -threshold:
		return -1
	default:
		return 0
	}
}

// Imbalance is (bidVol - askVol) / (bidVol + askVol), 0 when both are 0.
func Imbalance(depth *domain.OrderDepth) float64 {
	bidVol := depth.BidVolume()
	askVol := depth.AskVolume()
	if bidVol+askVol == 0 {
		return 0
	}
	return float64(bidVol-askVol) / float64(bidVol+askVol)
}

// Volatility is the sample standard deviation of the trailing window, 0 when
// fewer than two samples exist.
func Volatility(samples []float64, window int) float64 {
	if window > len(samples) {
		window = len(samples)
	}
	if window < 2 {
		return 0
	}
	tail := samples[len(samples)-window:]
	var mean float64
	for _, v := range tail {
		mean += v
	}
	mean /= float64(len(tail))

	var variance float64
	for _, v := range tail {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(tail) - 1)
	return math.Sqrt(variance)
}

// AdaptiveSpread widens the base spread under volatility and narrows it as
// inventory builds, clamped to the instrument's [MinSpread, MaxSpread] band.
func AdaptiveSpread(inst config.Instrument, volatility float64, position int) float64 {
	utilization := float64(safe.AbsInt(position)) / float64(inst.Limit)
	spread := inst.BaseSpread * (1 + volatility) * (1 - inst.InventorySkew*utilization)
	return safe.Clamp(spread, inst.MinSpread, inst.MaxSpread)
}

// Classify buckets the market as stable, trending or volatile from measured
// return variance, spread magnitude and mid deviation from the instrument's
// reference price. The thresholds come off the descriptor; return variance
// is the stdev of successive relative mid changes, the other two bounds are
// absolute tick distances.
func Classify(inst config.Instrument, depth *domain.OrderDepth, s *history.Series) Regime {
	returnVol := returnStdev(s.Prices)
	spread, _ := depth.Spread()
	if returnVol > inst.RegimeVolStdev && spread > inst.RegimeVolSpread {
		return RegimeVolatile
	}

	mid, ok := depth.Mid()
	if !ok {
		mid, ok = s.LastPrice()
	}
	if ok && inst.DefaultPrice > 0 && math.Abs(mid-inst.DefaultPrice) > inst.RegimeTrendBand {
		return RegimeTrending
	}
	return RegimeStable
}

// returnStdev is the stdev of successive relative price changes over the full
// retained history.
func returnStdev(prices []float64) float64 {
	if len(prices) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 0; i < len(prices)-1; i++ {
		if prices[i] == 0 {
			continue
		}
		returns = append(returns, (prices[i+1]-prices[i])/prices[i])
	}
	return Volatility(returns, len(returns))
}
