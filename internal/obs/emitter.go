// Package obs is the engine's observability boundary. The core emits
// structured tick-decision events through an Emitter it never depends on;
// the default emitter does nothing.
package obs

import (
	"log/slog"

	"prosperity_go/internal/domain"
)

// TickDecision is one instrument's full decision record for one tick.
type TickDecision struct {
	Timestamp  int64          `json:"timestamp"`
	Symbol     string         `json:"symbol"`
	Position   int            `json:"position"`
	Fair       float64        `json:"fair"`
	Momentum   float64        `json:"momentum"`
	Imbalance  float64        `json:"imbalance"`
	Volatility float64        `json:"volatility"`
	Spread     float64        `json:"spread"`
	Regime     string         `json:"regime"`
	Orders     []domain.Order `json:"orders"`
}

// Emitter receives decision events. Implementations must not block the tick.
type Emitter interface {
	EmitTick(d TickDecision)
}

// Noop discards every event. It is the engine's default.
type Noop struct{}

func (Noop) EmitTick(TickDecision) {}

// Logger emits decisions as structured log records.
type Logger struct {
	log *slog.Logger
}

// NewLogger wraps a slog logger as an emitter.
func NewLogger(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) EmitTick(d TickDecision) {
	l.log.Debug("tick decision",
		slog.Int64("ts", d.Timestamp),
		slog.String("symbol", d.Symbol),
		slog.Int("position", d.Position),
		slog.Float64("fair", d.Fair),
		slog.Float64("momentum", d.Momentum),
		slog.Float64("imbalance", d.Imbalance),
		slog.Float64("spread", d.Spread),
		slog.String("regime", d.Regime),
		slog.Int("orders", len(d.Orders)),
	)
}

// Multi fans one event out to several emitters in order.
type Multi []Emitter

func (m Multi) EmitTick(d TickDecision) {
	for _, e := range m {
		e.EmitTick(d)
	}
}
