package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"prosperity_go/internal/config"
	"prosperity_go/internal/engine"
	"prosperity_go/internal/exchange"
)

// Replayer drives the quoting engine over a recorded session, fills its
// orders on the paper exchange, and accumulates a PnL report.
type Replayer struct {
	cfg    *config.Config
	trader *engine.Trader
	paper  *exchange.Paper
	log    *slog.Logger
}

// NewReplayer builds a replayer around an already-constructed trader.
func NewReplayer(cfg *config.Config, trader *engine.Trader, log *slog.Logger) *Replayer {
	if log == nil {
		log = slog.Default()
	}
	return &Replayer{
		cfg:    cfg,
		trader: trader,
		paper:  exchange.NewPaper(log),
		log:    log,
	}
}

// Run replays every tick from the source in order. Positions feed back
// from the paper fills, and the tracker blob is carried between ticks the
// way the venue would carry it.
func (r *Replayer) Run(ctx context.Context, source Source) (*Report, error) {
	states, err := source.Ticks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var curve []decimal.Decimal
	blob := ""
	fills := 0
	for _, st := range states {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		st.Position = r.paper.Positions()
		st.TraderData = blob

		result, _, nextBlob := r.trader.Run(st)
		blob = nextBlob

		tickFills := r.paper.Apply(st.Timestamp, st.OrderDepths, result)
		fills += len(tickFills)

		equity := decimal.NewFromFloat(r.paper.MarkToMarket(st.OrderDepths))
		curve = append(curve, equity)

		r.log.Debug("replayed tick",
			slog.Int64("ts", st.Timestamp),
			slog.Int("fills", len(tickFills)),
			slog.String("equity", equity.StringFixed(2)))
	}

	report := &Report{
		Ticks:     len(states),
		Fills:     fills,
		FinalCash: decimal.NewFromInt(r.paper.Cash()),
		Positions: r.paper.Positions(),
	}
	if len(curve) > 0 {
		report.FinalEquity = curve[len(curve)-1]
	}
	report.MaxDrawdown = drawdown(curve)
	return report, nil
}
