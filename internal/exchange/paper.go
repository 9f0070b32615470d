package exchange

import (
	"log/slog"
	"sort"
	"sync"

	"prosperity_go/internal/domain"
	"prosperity_go/pkg/safe"
)

// Fill represents a simulated order fill. Quantity is signed the same way
// as orders: positive bought, negative sold.
type Fill struct {
	Symbol    string
	Price     int
	Quantity  int
	Timestamp int64
}

// Paper simulates execution against the visible book. Orders that cross
// resting liquidity fill against it level by level; liquidity consumed by
// one order is gone for the next order in the same tick. Anything that
// does not cross is assumed to go unfilled, which makes the simulation
// conservative for resting quotes.
type Paper struct {
	mu        sync.Mutex
	positions map[string]int
	cash      int64
	fills     []Fill
	log       *slog.Logger
}

// NewPaper creates a paper executor with flat positions and zero cash.
func NewPaper(log *slog.Logger) *Paper {
	if log == nil {
		log = slog.Default()
	}
	return &Paper{
		positions: make(map[string]int),
		log:       log,
	}
}

// Apply matches one tick's orders against that tick's depths and returns
// the resulting fills. The input depths are never mutated; matching runs
// against a private copy so earlier orders in the batch consume liquidity
// from later ones.
func (p *Paper) Apply(ts int64, depths map[string]*domain.OrderDepth, orders map[string][]domain.Order) []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()

	var tickFills []Fill
	for symbol, list := range orders {
		depth, ok := depths[symbol]
		if !ok || depth == nil {
			continue
		}
		working := cloneDepth(depth)
		for _, order := range list {
			for _, f := range p.match(ts, order, working) {
				tickFills = append(tickFills, f)
				p.settle(f)
			}
		}
	}
	p.fills = append(p.fills, tickFills...)
	return tickFills
}

// match walks the opposing side of the book from the best price outward,
// fills the order against every level it crosses, and removes the consumed
// quantity from the working book.
func (p *Paper) match(ts int64, order domain.Order, depth *domain.OrderDepth) []Fill {
	var fills []Fill
	remaining := safe.AbsInt(order.Quantity)

	if order.IsBuy() {
		asks := sortedPrices(depth.SellOrders, true)
		for _, price := range asks {
			if remaining == 0 || price > order.Price {
				break
			}
			qty := safe.MinInt(remaining, depth.SellOrders[price])
			if qty == 0 {
				continue
			}
			fills = append(fills, Fill{Symbol: order.Symbol, Price: price, Quantity: qty, Timestamp: ts})
			remaining -= qty
			consume(depth.SellOrders, price, qty)
		}
	} else {
		bids := sortedPrices(depth.BuyOrders, false)
		for _, price := range bids {
			if remaining == 0 || price < order.Price {
				break
			}
			qty := safe.MinInt(remaining, depth.BuyOrders[price])
			if qty == 0 {
				continue
			}
			fills = append(fills, Fill{Symbol: order.Symbol, Price: price, Quantity: -qty, Timestamp: ts})
			remaining -= qty
			consume(depth.BuyOrders, price, qty)
		}
	}
	return fills
}

func cloneDepth(d *domain.OrderDepth) *domain.OrderDepth {
	out := &domain.OrderDepth{
		BuyOrders:  make(map[int]int, len(d.BuyOrders)),
		SellOrders: make(map[int]int, len(d.SellOrders)),
	}
	for price, qty := range d.BuyOrders {
		out.BuyOrders[price] = qty
	}
	for price, qty := range d.SellOrders {
		out.SellOrders[price] = qty
	}
	return out
}

func consume(levels map[int]int, price, qty int) {
	levels[price] -= qty
	if levels[price] <= 0 {
		delete(levels, price)
	}
}

// settle applies a fill to positions and cash. Buys spend cash, sells
// raise it.
func (p *Paper) settle(f Fill) {
	p.positions[f.Symbol] += f.Quantity
	p.cash = safe.SafeAdd(p.cash, safe.SafeMul(int64(-f.Quantity), int64(f.Price)))

	p.log.Debug("paper fill",
		slog.String("symbol", f.Symbol),
		slog.Int("price", f.Price),
		slog.Int("qty", f.Quantity),
		slog.Int("position", p.positions[f.Symbol]))
}

// Position returns the current holding for a symbol.
func (p *Paper) Position(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positions[symbol]
}

// Positions returns a copy of every non-flat holding.
func (p *Paper) Positions() map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int, len(p.positions))
	for symbol, pos := range p.positions {
		if pos != 0 {
			out[symbol] = pos
		}
	}
	return out
}

// Cash returns realized cash flow from all fills so far.
func (p *Paper) Cash() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cash
}

// Fills returns all fills recorded so far.
func (p *Paper) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}

// MarkToMarket values open positions at the given mids and returns total
// equity. Symbols without a defined mid are valued at zero.
func (p *Paper) MarkToMarket(depths map[string]*domain.OrderDepth) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	equity := float64(p.cash)
	for symbol, pos := range p.positions {
		if pos == 0 {
			continue
		}
		depth, ok := depths[symbol]
		if !ok || depth == nil {
			continue
		}
		if mid, ok := depth.Mid(); ok {
			equity += float64(pos) * mid
		}
	}
	return equity
}

func sortedPrices(levels map[int]int, ascending bool) []int {
	prices := make([]int, 0, len(levels))
	for price := range levels {
		prices = append(prices, price)
	}
	if ascending {
		sort.Ints(prices)
	} else {
		sort.Sort(sort.Reverse(sort.IntSlice(prices)))
	}
	return prices
}
