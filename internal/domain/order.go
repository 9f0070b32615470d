package domain

// Order is a single instruction to the exchange for this tick.
// Quantity is signed: positive buys, negative sells. Orders are
// fire-and-forget; nothing tracks them after the tick ends.
type Order struct {
	Symbol   string `json:"symbol"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// IsBuy reports whether the order adds to the position.
func (o Order) IsBuy() bool {
	return o.Quantity > 0
}
