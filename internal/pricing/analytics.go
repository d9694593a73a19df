package pricing

import "github.com/noobiecoder75/bookinggpt-pricing/internal/quote"

// AverageMarkup reports the effective average markup percentage of a quote.
// Under the global strategy it is the declared global percentage by
// definition, whatever the items contain. Otherwise it is derived from the
// normalized items as the priced uplift over the summed base cost; a zero
// base yields zero rather than a division error.
func AverageMarkup(q quote.Quote) float64 {
	strategy := ResolveStrategy(q)
	if strategy == quote.StrategyGlobal {
		return q.GlobalMarkupPercent
	}
	var sumBase, sumPriced float64
	for _, it := range Normalize(q.Items) {
		sumBase += it.Cost * float64(it.EffectiveQuantity())
		sumPriced += ItemPrice(it.LineItem, q, strategy, true)
	}
	if sumBase == 0 {
		return 0
	}
	return (sumPriced - sumBase) / sumBase * 100
}
