package domain

// TradingState is the full per-tick input supplied by the harness.
// Snapshots are fresh each tick and discarded afterwards; the only thing
// that survives ticks is the opaque TraderData blob.
type TradingState struct {
	Timestamp   int64                  `json:"timestamp"`
	OrderDepths map[string]*OrderDepth `json:"order_depths"`
	Position    map[string]int         `json:"position"`
	TraderData  string                 `json:"trader_data"`
}

// PositionOf returns the signed position for a symbol, zero when absent.
func (s TradingState) PositionOf(symbol string) int {
	return s.Position[symbol]
}
