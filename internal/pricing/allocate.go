package pricing

import "github.com/noobiecoder75/bookinggpt-pricing/internal/quote"

// DayTotal attributes item prices to a single itinerary day from the quote's
// raw, unexpanded item list. An item belongs to the day when it starts there
// or when it is multi-day and the day falls inside its span. Multi-day items
// contribute an even share of their price per covered day, so summing
// DayTotal over a stay's span reproduces the stay's full priced amount.
func DayTotal(items []quote.LineItem, q quote.Quote, dayIndex int, opts Options) float64 {
	selected := make([]quote.LineItem, 0, len(items))
	for _, it := range items {
		if itemCoversDay(it, dayIndex) {
			selected = append(selected, it)
		}
	}
	return dayAllocation(selected, q, opts, func(it NormalizedItem) int {
		return it.Span()
	})
}

// FilteredDayTotal serves callers that already expanded a multi-day item
// into one copy per displayed day. Those copies carry the stay's full span
// in OriginalSpanDays, which becomes the divisor; everything else follows
// the same core as DayTotal, so the two entry points agree numerically when
// fed equivalent data.
func FilteredDayTotal(dayItems []quote.LineItem, q quote.Quote, opts Options) float64 {
	return dayAllocation(dayItems, q, opts, func(it NormalizedItem) int {
		if it.OriginalSpanDays > 1 {
			return it.OriginalSpanDays
		}
		return it.Span()
	})
}

// dayAllocation is the shared allocation core: normalize the day's items, price
// each survivor, and divide multi-day prices by the span the selector
// resolves. Spans are guarded so a malformed marker never divides by zero.
func dayAllocation(items []quote.LineItem, q quote.Quote, opts Options, span func(NormalizedItem) int) float64 {
	strategy := ResolveStrategy(q)
	var sum float64
	for _, it := range Normalize(items) {
		price := ItemPrice(it.LineItem, q, strategy, !opts.ExcludeQuantity)
		if it.MultiDay || it.OriginalSpanDays > 1 {
			if days := span(it); days > 0 {
				sum += price / float64(days)
				continue
			}
			continue
		}
		sum += price
	}
	return sum
}

func itemCoversDay(it quote.LineItem, dayIndex int) bool {
	if it.DayIndex == dayIndex {
		return true
	}
	if !IsMultiDay(it) {
		return false
	}
	return dayIndex >= it.DayIndex && dayIndex <= it.DayIndex+it.Span()-1
}
