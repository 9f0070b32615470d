// Package risk enforces per-instrument position limits on generated orders.
package risk

// Side distinguishes the direction a quantity moves the position.
type Side int

const (
	Buy Side = iota
	Sell
)

// Clip bounds a requested quantity so the realized position can never leave
// [-limit, +limit]: buys are capped at limit-position, sells at
// limit+position. A result of zero or less means the order must be dropped.
// Clip is stateless and must run on every generated order.
func Clip(side Side, position, limit, requested int) int {
	var headroom int
	if side == Buy {
		headroom = limit - position
	} else {
		headroom = limit + position
	}
	if requested < headroom {
		return requested
	}
	return headroom
}

// Ledger tracks headroom consumed by earlier orders within the same tick, so
// that the sum of all emitted quantities still respects the limit even if
// every order fills.
type Ledger struct {
	Position int
	Limit    int

	pendingBuys  int
	pendingSells int
}

// Take clips a request against the remaining headroom and reserves the
// granted quantity. Returns 0 when nothing can be granted.
func (l *Ledger) Take(side Side, requested int) int {
	if requested <= 0 {
		return 0
	}
	var granted int
	if side == Buy {
		granted = Clip(Buy, l.Position+l.pendingBuys, l.Limit, requested)
		if granted > 0 {
			l.pendingBuys += granted
		}
	} else {
		granted = Clip(Sell, l.Position-l.pendingSells, l.Limit, requested)
		if granted > 0 {
			l.pendingSells += granted
		}
	}
	if granted < 0 {
		return 0
	}
	return granted
}
