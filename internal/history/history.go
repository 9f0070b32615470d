// Package history maintains the bounded rolling series that form the only
// state surviving across ticks.
package history

import (
	"prosperity_go/internal/domain"
)

// Series holds parallel rolling samples for one instrument: mid prices,
// bid/ask spreads and total book volume. All three advance together and are
// FIFO-capped at the same length.
type Series struct {
	Prices  []float64
	Spreads []float64
	Volumes []float64

	maxLen int
}

// NewSeries creates an empty series bounded at maxLen samples.
func NewSeries(maxLen int) *Series {
	return &Series{maxLen: maxLen}
}

// Append records one tick's samples, evicting the oldest when full.
func (s *Series) Append(mid, spread, volume float64) {
	s.Prices = append(s.Prices, mid)
	s.Spreads = append(s.Spreads, spread)
	s.Volumes = append(s.Volumes, volume)
	if len(s.Prices) > s.maxLen {
		s.Prices = s.Prices[1:]
		s.Spreads = s.Spreads[1:]
		s.Volumes = s.Volumes[1:]
	}
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return len(s.Prices)
}

// Cap returns the configured bound.
func (s *Series) Cap() int {
	return s.maxLen
}

// LastPrice returns the most recent mid, or false when empty.
func (s *Series) LastPrice() (float64, bool) {
	if len(s.Prices) == 0 {
		return 0, false
	}
	return s.Prices[len(s.Prices)-1], true
}

// Book is the engine's carried-forward state: one Series per instrument.
// It is created empty on the first tick, mutated in place during a tick and
// serialized out at the tick boundary. Never shared across sessions.
type Book struct {
	maxLen int
	series map[string]*Series
}

// NewBook creates an empty state book with the given per-series bound.
func NewBook(maxLen int) *Book {
	return &Book{
		maxLen: maxLen,
		series: make(map[string]*Series),
	}
}

// Series returns the rolling series for a symbol, creating it on first use.
func (b *Book) Series(symbol string) *Series {
	s, ok := b.series[symbol]
	if !ok {
		s = NewSeries(b.maxLen)
		b.series[symbol] = s
	}
	return s
}

// Symbols returns the symbols with at least one retained sample.
func (b *Book) Symbols() []string {
	out := make([]string, 0, len(b.series))
	for sym, s := range b.series {
		if s.Len() > 0 {
			out = append(out, sym)
		}
	}
	return out
}

// Update appends the tick's mid, spread and total volume for a symbol.
// When either book side is empty there is no mid to record and the series is
// left untouched; no synthetic fill is ever appended.
func (b *Book) Update(symbol string, depth *domain.OrderDepth) {
	mid, ok := depth.Mid()
	if !ok {
		return
	}
	spread, _ := depth.Spread()
	volume := float64(depth.BidVolume() + depth.AskVolume())
	b.Series(symbol).Append(mid, spread, volume)
}
