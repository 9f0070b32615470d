package domain

// OrderDepth is one instrument's resting liquidity for a single tick.
// Keys are integer tick prices, values are strictly positive quantities.
// A nil or empty side means no resting liquidity on that side this tick.
type OrderDepth struct {
	BuyOrders  map[int]int `json:"buy_orders"`
	SellOrders map[int]int `json:"sell_orders"`
}

// BestBid returns the highest resting buy price.
func (d *OrderDepth) BestBid() (int, bool) {
	if d == nil || len(d.BuyOrders) == 0 {
		return 0, false
	}
	best := 0
	first := true
	for price := range d.BuyOrders {
		if first || price > best {
			best = price
			first = false
		}
	}
	return best, true
}

// BestAsk returns the lowest resting sell price.
func (d *OrderDepth) BestAsk() (int, bool) {
	if d == nil || len(d.SellOrders) == 0 {
		return 0, false
	}
	best := 0
	first := true
	for price := range d.SellOrders {
		if first || price < best {
			best = price
			first = false
		}
	}
	return best, true
}

// BidVolume returns the total resting buy quantity.
func (d *OrderDepth) BidVolume() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, qty := range d.BuyOrders {
		total += qty
	}
	return total
}

// AskVolume returns the total resting sell quantity.
func (d *OrderDepth) AskVolume() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, qty := range d.SellOrders {
		total += qty
	}
	return total
}

// Mid returns the average of best bid and best ask.
// Undefined (false) when either side is empty.
func (d *OrderDepth) Mid() (float64, bool) {
	bid, okB := d.BestBid()
	ask, okA := d.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return float64(bid+ask) / 2, true
}

// Spread returns best ask minus best bid, or false when either side is empty.
func (d *OrderDepth) Spread() (float64, bool) {
	bid, okB := d.BestBid()
	ask, okA := d.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	return float64(ask - bid), true
}

// Microprice weights each side's best price by the opposite side's resting
// volume, reflecting where the book is likely to move.
// Falls back to the plain mid when combined volume is zero; undefined (false)
// when either side is empty.
func (d *OrderDepth) Microprice() (float64, bool) {
	bid, okB := d.BestBid()
	ask, okA := d.BestAsk()
	if !okB || !okA {
		return 0, false
	}
	bidVol := d.BidVolume()
	askVol := d.AskVolume()
	if bidVol+askVol == 0 {
		return float64(bid+ask) / 2, true
	}
	return (float64(bid)*float64(askVol) + float64(ask)*float64(bidVol)) / float64(bidVol+askVol), true
}

// Normalize coerces quantities to the positive-only convention. Some feeds
// report resting sell quantities negative.
func (d *OrderDepth) Normalize() {
	if d == nil {
		return
	}
	for price, qty := range d.BuyOrders {
		if qty < 0 {
			d.BuyOrders[price] = -qty
		}
	}
	for price, qty := range d.SellOrders {
		if qty < 0 {
			d.SellOrders[price] = -qty
		}
	}
}

// Empty reports whether the book has no resting liquidity on either side.
func (d *OrderDepth) Empty() bool {
	return d == nil || (len(d.BuyOrders) == 0 && len(d.SellOrders) == 0)
}
