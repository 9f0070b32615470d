// Package quote turns fair value and signals into concrete orders: resting
// two-sided quotes, opportunistic liquidity taking and inventory flattening.
package quote

import (
	"math"

	"prosperity_go/internal/config"
	"prosperity_go/internal/domain"
	"prosperity_go/internal/risk"
	"prosperity_go/internal/signal"
	"prosperity_go/pkg/safe"
)

// Request carries one instrument's inputs for one tick of quote generation.
type Request struct {
	Symbol    string
	Depth     *domain.OrderDepth
	Fair      float64
	Signals   signal.Set
	Position  int
	Timestamp int64
	Inst      config.Instrument
	Session   config.Session
}

// Generate produces the tick's orders for one instrument. Flattening, when
// triggered, preempts everything else. Liquidity taking reserves position
// headroom before resting quotes do, so a cheap book is taken at full size;
// the total quantity granted per side always respects the limit even if every
// order fills.
func Generate(req Request) []domain.Order {
	ledger := &risk.Ledger{Position: req.Position, Limit: req.Inst.Limit}

	if pastEnd := req.Timestamp >= req.Session.EndOfSession; pastEnd || overThreshold(req) {
		if req.Position == 0 {
			return nil
		}
		return flatten(req, ledger)
	}

	taking := takeLiquidity(req, ledger)
	resting := restingQuotes(req, ledger)
	return append(resting, taking...)
}

func overThreshold(req Request) bool {
	return float64(safe.AbsInt(req.Position)) > req.Inst.FlattenRatio*float64(req.Inst.Limit)
}

// flatten emits the single order that fully closes the position, priced at
// the best opposing resting level, or aggressively off fair value when that
// side is empty.
func flatten(req Request, ledger *risk.Ledger) []domain.Order {
	if req.Position > 0 {
		price, ok := req.Depth.BestBid()
		if !ok {
			price = roundPrice(req.Fair - req.Inst.FlattenOffset)
		}
		qty := ledger.Take(risk.Sell, req.Position)
		if qty <= 0 {
			return nil
		}
		return []domain.Order{{Symbol: req.Symbol, Price: price, Quantity: -qty}}
	}

	price, ok := req.Depth.BestAsk()
	if !ok {
		price = roundPrice(req.Fair + req.Inst.FlattenOffset)
	}
	qty := ledger.Take(risk.Buy, -req.Position)
	if qty <= 0 {
		return nil
	}
	return []domain.Order{{Symbol: req.Symbol, Price: price, Quantity: qty}}
}

// takeLiquidity crosses the book when the far side is mispriced against fair
// value, capped by resting quantity and remaining headroom. In a volatile
// regime the margins double.
func takeLiquidity(req Request, ledger *risk.Ledger) []domain.Order {
	discount := req.Inst.TakeDiscount
	premium := req.Inst.TakePremium
	if req.Signals.Regime == signal.RegimeVolatile {
		discount = 1 - 2*(1-discount)
		premium = 1 + 2*(premium-1)
	}

	var orders []domain.Order

	if ask, ok := req.Depth.BestAsk(); ok && float64(ask) < req.Fair*discount {
		if !req.Inst.MomentumGate || req.Signals.Momentum >= 0 {
			qty := ledger.Take(risk.Buy, req.Depth.SellOrders[ask])
			if qty > 0 {
				orders = append(orders, domain.Order{Symbol: req.Symbol, Price: ask, Quantity: qty})
			}
		}
	}

	if bid, ok := req.Depth.BestBid(); ok && float64(bid) > req.Fair*premium {
		if !req.Inst.MomentumGate || req.Signals.Momentum <= 0 {
			qty := ledger.Take(risk.Sell, req.Depth.BuyOrders[bid])
			if qty > 0 {
				orders = append(orders, domain.Order{Symbol: req.Symbol, Price: bid, Quantity: -qty})
			}
		}
	}

	return orders
}

// restingQuotes places the two-sided market around fair value, shifted by a
// bounded blend of momentum and imbalance so prices can never invert.
func restingQuotes(req Request, ledger *risk.Ledger) []domain.Order {
	adj := safe.Clamp(0.5*req.Signals.Momentum+0.5*req.Signals.Imbalance, -1, 1)
	spread := req.Signals.Spread

	buyPrice := roundPrice(req.Fair - spread*(1-adj))
	sellPrice := roundPrice(req.Fair + spread*(1+adj))

	phase := 1.0
	if req.Timestamp < req.Session.EarlyPhaseUntil {
		phase = req.Session.EarlyBoost
	}
	base := int(math.Round((req.Inst.SizeBase + req.Inst.SizeImbalanceBoost*math.Abs(req.Signals.Imbalance)) * phase))

	var orders []domain.Order
	if qty := ledger.Take(risk.Buy, base); qty > 0 {
		orders = append(orders, domain.Order{Symbol: req.Symbol, Price: buyPrice, Quantity: qty})
	}
	if qty := ledger.Take(risk.Sell, base); qty > 0 {
		orders = append(orders, domain.Order{Symbol: req.Symbol, Price: sellPrice, Quantity: -qty})
	}
	return orders
}

func roundPrice(v float64) int {
	return int(math.Round(v))
}
