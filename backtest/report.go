package backtest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Report summarizes one backtest run.
type Report struct {
	Ticks       int
	Fills       int
	FinalCash   decimal.Decimal
	FinalEquity decimal.Decimal
	MaxDrawdown decimal.Decimal
	Positions   map[string]int
}

// String renders the report for the CLI.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ticks=%d fills=%d cash=%s equity=%s maxDrawdown=%s",
		r.Ticks, r.Fills, r.FinalCash.StringFixed(2), r.FinalEquity.StringFixed(2), r.MaxDrawdown.StringFixed(2))

	if len(r.Positions) > 0 {
		symbols := make([]string, 0, len(r.Positions))
		for symbol := range r.Positions {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		b.WriteString(" open=[")
		for i, symbol := range symbols {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s:%d", symbol, r.Positions[symbol])
		}
		b.WriteString("]")
	}
	return b.String()
}

// drawdown returns the largest peak-to-trough equity drop in the curve.
func drawdown(curve []decimal.Decimal) decimal.Decimal {
	worst := decimal.Zero
	if len(curve) == 0 {
		return worst
	}
	peak := curve[0]
	for _, eq := range curve[1:] {
		if eq.GreaterThan(peak) {
			peak = eq
			continue
		}
		if dd := peak.Sub(eq); dd.GreaterThan(worst) {
			worst = dd
		}
	}
	return worst
}
