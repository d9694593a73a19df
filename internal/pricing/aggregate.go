package pricing

import "github.com/noobiecoder75/bookinggpt-pricing/internal/quote"

// Options tunes aggregation. The zero value matches the historical call
// sites: discount applied, quantities included.
type Options struct {
	// SkipDiscount leaves the quote-level discount out of the total.
	SkipDiscount bool
	// ExcludeQuantity prices every item as a single unit.
	ExcludeQuantity bool
}

// Total is the aggregated sell price of a quote. Placeholder marks the
// legacy fallback for item-less quotes, where the "total" is actually the
// quote's global markup percentage rather than a monetary amount.
type Total struct {
	Amount      float64 `json:"amount"`
	Placeholder bool    `json:"placeholder"`
}

// QuoteTotal sums the priced, normalized items of a quote and applies the
// discount. An empty quote returns the global markup percentage flagged as a
// placeholder: historically callers stored the markup there before any items
// existed, and that numeric contract is preserved, but the flag lets new
// callers tell the two cases apart.
func QuoteTotal(q quote.Quote, opts Options) Total {
	if len(q.Items) == 0 {
		return Total{Amount: q.GlobalMarkupPercent, Placeholder: true}
	}
	strategy := ResolveStrategy(q)
	var sum float64
	for _, it := range Normalize(q.Items) {
		sum += ItemPrice(it.LineItem, q, strategy, !opts.ExcludeQuantity)
	}
	if !opts.SkipDiscount {
		sum *= 1 - q.DiscountPercent/100
	}
	return Total{Amount: sum}
}
