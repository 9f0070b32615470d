// Package fair derives a fair price per instrument from the current book and
// retained history, or from a derivative relationship to another instrument.
package fair

import (
	"math"

	"prosperity_go/internal/config"
	"prosperity_go/internal/domain"
	"prosperity_go/internal/history"
)

// Input bundles everything an estimator may consult for one instrument on one
// tick. UnderlyingMid is only meaningful for derivative instruments and is
// resolved by the caller (it may come from the underlying's book or its
// configured default).
type Input struct {
	Depth         *domain.OrderDepth
	History       *history.Series
	UnderlyingMid float64
}

// Estimator computes a fair price. Implementations are pure; all state they
// read arrives through Input.
type Estimator interface {
	Estimate(in Input) float64
}

// ForInstrument selects the estimation strategy for a descriptor: strike-based
// instruments price off their underlying, everything else blends book and
// history estimators.
func ForInstrument(inst config.Instrument) Estimator {
	if inst.Derivative() {
		return Voucher{Strike: inst.Strike, TimeValue: inst.TimeValue}
	}
	return Blend{
		MicroWeight:  inst.MicroWeight,
		EMAWeight:    inst.EMAWeight,
		SMAWeight:    inst.SMAWeight,
		EMADecay:     inst.EMADecay,
		SMAWindow:    inst.SMAWindow,
		DefaultPrice: inst.DefaultPrice,
	}
}

// Blend combines three estimators with fixed weights: the book microprice,
// a geometrically-decayed average of the full retained history (newest
// samples weighted most) and a simple moving average of the most recent
// SMAWindow samples.
type Blend struct {
	MicroWeight  float64
	EMAWeight    float64
	SMAWeight    float64
	EMADecay     float64
	SMAWindow    int
	DefaultPrice float64
}

// Estimate returns the weighted blend. With no history it falls back to the
// book mid, and to DefaultPrice when the book is one-sided or empty.
func (b Blend) Estimate(in Input) float64 {
	if in.History == nil || in.History.Len() == 0 {
		if mid, ok := in.Depth.Mid(); ok {
			return mid
		}
		return b.DefaultPrice
	}

	micro, ok := in.Depth.Microprice()
	if !ok {
		// One-sided book mid-tick: lean on the last observed mid so the
		// blend stays defined.
		micro, _ = in.History.LastPrice()
	}

	ema := decayedMean(in.History.Prices, b.EMADecay)
	sma := trailingMean(in.History.Prices, b.SMAWindow)

	return b.MicroWeight*micro + b.EMAWeight*ema + b.SMAWeight*sma
}

// Voucher prices an option-like instrument: intrinsic value against the
// underlying's mid, floored at zero, scaled by a time-value factor standing
// in for the remaining session fraction.
type Voucher struct {
	Strike    int
	TimeValue float64
}

// Estimate returns max(U - K, 0) * TimeValue.
func (v Voucher) Estimate(in Input) float64 {
	return math.Max(in.UnderlyingMid-float64(v.Strike), 0) * v.TimeValue
}

// decayedMean is the weighted average of samples with weight decay^age,
// age 0 being the newest sample.
func decayedMean(samples []float64, decay float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum, weightSum float64
	weight := 1.0
	for i := len(samples) - 1; i >= 0; i-- {
		sum += samples[i] * weight
		weightSum += weight
		weight *= decay
	}
	return sum / weightSum
}

// trailingMean averages the newest window samples, clipped to what exists.
func trailingMean(samples []float64, window int) float64 {
	if len(samples) == 0 {
		return 0
	}
	if window > len(samples) {
		window = len(samples)
	}
	var sum float64
	for _, v := range samples[len(samples)-window:] {
		sum += v
	}
	return sum / float64(window)
}
