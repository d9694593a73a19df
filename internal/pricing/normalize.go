package pricing

import "github.com/noobiecoder75/bookinggpt-pricing/internal/quote"

// NormalizedItem is a line item tagged with its multi-day classification.
type NormalizedItem struct {
	quote.LineItem
	MultiDay bool
}

// IsMultiDay reports whether the item's cost logically covers more than one
// itinerary day. Only hotel stays qualify; the span is resolved through the
// canonical duration rule, so nights-style and date-pair snapshots behave
// identically to spanDays ones.
func IsMultiDay(it quote.LineItem) bool {
	return it.IsHotel() && it.Span() > 1
}

// Normalize deduplicates repeated references to the same multi-day item,
// keeping the first occurrence of each id. Single-day items pass through
// untouched: distinct line items may legitimately share a cost or a name, so
// they are never collapsed by id. Each surviving item carries its multi-day
// flag so callers do not re-derive it.
func Normalize(items []quote.LineItem) []NormalizedItem {
	out := make([]NormalizedItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		multiDay := IsMultiDay(it)
		if multiDay && it.ID != "" {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
		}
		out = append(out, NormalizedItem{LineItem: it, MultiDay: multiDay})
	}
	return out
}
