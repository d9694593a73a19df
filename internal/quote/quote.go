package quote

import (
	"strings"
	"time"
)

// Strategy selects which markup values apply when pricing a quote.
type Strategy string

const (
	// StrategyGlobal applies the quote-level markup percentage to every item.
	StrategyGlobal Strategy = "global"
	// StrategyIndividual applies each item's own markup value and type.
	StrategyIndividual Strategy = "individual"
	// StrategyMixed prefers the item markup and falls back to the global
	// percentage for items without one. It is only ever selected explicitly.
	StrategyMixed Strategy = "mixed"
)

// MarkupType distinguishes percentage markups from flat amounts.
type MarkupType string

const (
	// MarkupPercentage marks up the base cost by a percentage.
	MarkupPercentage MarkupType = "percentage"
	// MarkupFixed adds a flat amount once per line item.
	MarkupFixed MarkupType = "fixed"
)

// ItemType categorises a quote line item.
type ItemType string

const (
	ItemFlight   ItemType = "flight"
	ItemHotel    ItemType = "hotel"
	ItemTour     ItemType = "tour"
	ItemTransfer ItemType = "transfer"
)

// LineItem is one priced component of a quote. For multi-night hotel stays
// Cost is the total cost of the stay, not per night.
type LineItem struct {
	ID          string     `json:"id"`
	ItemType    ItemType   `json:"itemType"`
	Cost        float64    `json:"cost"`
	Quantity    int        `json:"quantity"`
	MarkupValue float64    `json:"markupValue"`
	MarkupType  MarkupType `json:"markupType"`
	DayIndex    int        `json:"dayIndex"`

	// Duration may arrive under several legacy shapes. SpanDays is canonical;
	// Nights and the check-in/check-out pair are accepted on ingestion and
	// folded into it by Span / Canonicalize.
	SpanDays int        `json:"spanDays"`
	Nights   int        `json:"nights,omitempty"`
	CheckIn  *time.Time `json:"checkIn,omitempty"`
	CheckOut *time.Time `json:"checkOut,omitempty"`

	// OriginalSpanDays is set on copies of a multi-day item that were expanded
	// into one entry per displayed day. It preserves the full span so per-day
	// allocation can still divide by the right number of days.
	OriginalSpanDays int `json:"originalSpanDays,omitempty"`
}

// Quote is an immutable pricing snapshot supplied by the persistence layer.
type Quote struct {
	ID                  string     `json:"id"`
	GlobalMarkupPercent float64    `json:"globalMarkupPercent"`
	DiscountPercent     float64    `json:"discountPercent"`
	MarkupStrategy      Strategy   `json:"markupStrategy,omitempty"`
	Items               []LineItem `json:"items"`
}

// Span resolves the canonical number of days this item's cost covers.
// SpanDays wins when set; otherwise the nights field, then the date pair.
// The result is never less than one.
func (it LineItem) Span() int {
	if it.SpanDays > 1 {
		return it.SpanDays
	}
	if it.Nights > 1 {
		return it.Nights
	}
	if it.CheckIn != nil && it.CheckOut != nil {
		if days := daysBetween(*it.CheckIn, *it.CheckOut); days > 1 {
			return days
		}
	}
	return 1
}

// IsHotel reports whether the item is a hotel stay, ignoring case so
// uncanonicalized snapshots behave the same as canonical ones.
func (it LineItem) IsHotel() bool {
	return strings.EqualFold(string(it.ItemType), string(ItemHotel))
}

// EffectiveQuantity returns the quantity with the documented default of one.
func (it LineItem) EffectiveQuantity() int {
	if it.Quantity < 1 {
		return 1
	}
	return it.Quantity
}

// EffectiveMarkupType returns the markup type, defaulting to percentage.
func (it LineItem) EffectiveMarkupType() MarkupType {
	if strings.EqualFold(string(it.MarkupType), string(MarkupFixed)) {
		return MarkupFixed
	}
	return MarkupPercentage
}

// Canonicalize returns a copy with the duration synonyms collapsed into
// SpanDays and defaults applied, so downstream consumers share one
// resolution rule. The receiver is not modified.
func (it LineItem) Canonicalize() LineItem {
	out := it
	out.SpanDays = it.Span()
	out.Nights = 0
	out.CheckIn = nil
	out.CheckOut = nil
	out.Quantity = it.EffectiveQuantity()
	out.MarkupType = it.EffectiveMarkupType()
	out.ItemType = ItemType(strings.ToLower(strings.TrimSpace(string(it.ItemType))))
	return out
}

// Canonicalize returns a copy of the quote with every item canonicalized and
// the strategy normalised to lower case.
func (q Quote) Canonicalize() Quote {
	out := q
	out.MarkupStrategy = ParseStrategy(string(q.MarkupStrategy))
	if len(q.Items) == 0 {
		return out
	}
	items := make([]LineItem, len(q.Items))
	for i, it := range q.Items {
		items[i] = it.Canonicalize()
	}
	out.Items = items
	return out
}

// ParseStrategy maps free-form strategy text onto a known Strategy.
// Unknown or empty input yields the empty Strategy, meaning "not declared".
func ParseStrategy(value string) Strategy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(StrategyGlobal):
		return StrategyGlobal
	case string(StrategyIndividual):
		return StrategyIndividual
	case string(StrategyMixed):
		return StrategyMixed
	default:
		return Strategy("")
	}
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay) / (24 * time.Hour))
}
