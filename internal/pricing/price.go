package pricing

import "github.com/noobiecoder75/bookinggpt-pricing/internal/quote"

// markupFor resolves the effective markup value and type for one item under
// the given strategy.
func markupFor(it quote.LineItem, q quote.Quote, strategy quote.Strategy) (float64, quote.MarkupType) {
	switch strategy {
	case quote.StrategyIndividual:
		return it.MarkupValue, it.EffectiveMarkupType()
	case quote.StrategyMixed:
		if it.MarkupValue != 0 {
			return it.MarkupValue, it.EffectiveMarkupType()
		}
		return q.GlobalMarkupPercent, quote.MarkupPercentage
	default:
		return q.GlobalMarkupPercent, quote.MarkupPercentage
	}
}

// ItemPrice computes the sell price of one line item: base cost times
// quantity plus the resolved markup. A fixed markup is added once per item,
// independent of quantity. Passing includeQuantity=false prices a single
// unit, which display callers use for per-unit figures.
func ItemPrice(it quote.LineItem, q quote.Quote, strategy quote.Strategy, includeQuantity bool) float64 {
	base := it.Cost
	if includeQuantity {
		base = it.Cost * float64(it.EffectiveQuantity())
	}
	markup, markupType := markupFor(it, q, strategy)
	amount := markup
	if markupType == quote.MarkupPercentage {
		amount = base * markup / 100
	}
	return base + amount
}

// DisplayPrice returns the per-day figure the itinerary renderer shows for a
// line item: hotel stays spanning more than one day display their price
// divided evenly across the span, everything else displays the full price.
func DisplayPrice(it quote.LineItem, q quote.Quote, strategy quote.Strategy) float64 {
	price := ItemPrice(it, q, strategy, true)
	if IsMultiDay(it) {
		return price / float64(it.Span())
	}
	return price
}
