// Package pricing turns a quote's line items into sell prices under a
// configurable markup policy. Every function is a pure computation over the
// caller's snapshot; inputs are never mutated and nothing here performs I/O.
package pricing

import "github.com/noobiecoder75/bookinggpt-pricing/internal/quote"

// ResolveStrategy decides which markup policy governs the quote.
// An explicitly declared strategy always wins, even when the item data looks
// inconsistent with it. Without a declaration an empty quote resolves to
// global, a quote with any per-item markup resolves to individual, and
// everything else resolves to global. Mixed is never inferred; only an
// explicit declaration selects it.
func ResolveStrategy(q quote.Quote) quote.Strategy {
	if s := quote.ParseStrategy(string(q.MarkupStrategy)); s != "" {
		return s
	}
	if len(q.Items) == 0 {
		return quote.StrategyGlobal
	}
	for _, it := range q.Items {
		if it.MarkupValue != 0 {
			return quote.StrategyIndividual
		}
	}
	return quote.StrategyGlobal
}
