// Package engine orchestrates the per-tick decision pipeline: rolling-history
// maintenance, fair-value estimation, signal computation and quote generation
// under position limits.
package engine

import (
	"prosperity_go/internal/config"
	"prosperity_go/internal/domain"
	"prosperity_go/internal/fair"
	"prosperity_go/internal/history"
	"prosperity_go/internal/obs"
	"prosperity_go/internal/quote"
	"prosperity_go/internal/signal"
	"prosperity_go/internal/state"
)

// Trader is the quoting engine for one session. It is single-threaded by
// contract: the harness invokes Run once per tick and never concurrently.
// All cross-tick state travels through the opaque blob; a Trader instance
// itself holds only configuration and wiring.
type Trader struct {
	cfg        *config.Config
	estimators map[string]fair.Estimator
	emitter    obs.Emitter
}

// Option configures a Trader.
type Option func(*Trader)

// WithEmitter routes tick decisions to an observer. The default discards
// them.
func WithEmitter(e obs.Emitter) Option {
	return func(t *Trader) { t.emitter = e }
}

// New builds a Trader from a validated configuration, selecting a fair-value
// strategy per instrument up front.
func New(cfg *config.Config, opts ...Option) *Trader {
	t := &Trader{
		cfg:        cfg,
		estimators: make(map[string]fair.Estimator, len(cfg.Instruments)),
		emitter:    obs.Noop{},
	}
	for _, inst := range cfg.Instruments {
		t.estimators[inst.Symbol] = fair.ForInstrument(inst)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run executes one tick: decode carried state, walk the configured
// instruments through the pipeline, encode state back out. It always returns
// a (possibly empty) order set, a zero conversions value and a valid blob;
// no market-data condition escapes as a failure.
func (t *Trader) Run(st domain.TradingState) (map[string][]domain.Order, int, string) {
	book := state.Decode(st.TraderData, t.cfg.Session.HistoryCap)
	result := make(map[string][]domain.Order)

	for _, inst := range t.cfg.Instruments {
		depth, ok := st.OrderDepths[inst.Symbol]
		if !ok {
			// Instrument absent this tick: no orders, history untouched.
			continue
		}

		// History first: fair value sees the tick's own mid.
		book.Update(inst.Symbol, depth)

		if depth.Empty() {
			continue
		}

		series := book.Series(inst.Symbol)
		position := st.PositionOf(inst.Symbol)

		fv := t.estimators[inst.Symbol].Estimate(fair.Input{
			Depth:         depth,
			History:       series,
			UnderlyingMid: t.underlyingMid(inst, st, book),
		})

		signals := signal.Compute(inst, depth, series, position)

		orders := quote.Generate(quote.Request{
			Symbol:    inst.Symbol,
			Depth:     depth,
			Fair:      fv,
			Signals:   signals,
			Position:  position,
			Timestamp: st.Timestamp,
			Inst:      inst,
			Session:   t.cfg.Session,
		})
		if len(orders) > 0 {
			result[inst.Symbol] = orders
		}

		t.emitter.EmitTick(obs.TickDecision{
			Timestamp:  st.Timestamp,
			Symbol:     inst.Symbol,
			Position:   position,
			Fair:       fv,
			Momentum:   signals.Momentum,
			Imbalance:  signals.Imbalance,
			Volatility: signals.Volatility,
			Spread:     signals.Spread,
			Regime:     signals.Regime.String(),
			Orders:     orders,
		})
	}

	return result, 0, state.Encode(book)
}

// underlyingMid resolves the reference price a derivative instrument prices
// against: the underlying's live mid, then its last recorded mid, then its
// configured default.
func (t *Trader) underlyingMid(inst config.Instrument, st domain.TradingState, book *history.Book) float64 {
	if !inst.Derivative() {
		return 0
	}
	if depth, ok := st.OrderDepths[inst.Underlying]; ok {
		if mid, ok := depth.Mid(); ok {
			return mid
		}
	}
	if mid, ok := book.Series(inst.Underlying).LastPrice(); ok {
		return mid
	}
	under, ok := t.cfg.Instrument(inst.Underlying)
	if !ok {
		return 0
	}
	return under.DefaultPrice
}
