package pricing

import (
	"math"
	"testing"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestItemPricePercentageMarkup(t *testing.T) {
	item := quote.LineItem{Cost: 100, Quantity: 2, MarkupValue: 10, MarkupType: quote.MarkupPercentage}
	got := ItemPrice(item, quote.Quote{}, quote.StrategyIndividual, true)
	if got != 220 {
		t.Fatalf("expected 220, got %v", got)
	}
}

func TestItemPriceFixedMarkupIsPerItemNotPerUnit(t *testing.T) {
	item := quote.LineItem{Cost: 100, Quantity: 3, MarkupValue: 15, MarkupType: quote.MarkupFixed}
	got := ItemPrice(item, quote.Quote{}, quote.StrategyIndividual, true)
	if got != 315 {
		t.Fatalf("expected 315, got %v", got)
	}
}

func TestItemPriceGlobalStrategyIgnoresItemMarkup(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 20}
	item := quote.LineItem{Cost: 50, Quantity: 1, MarkupValue: 99, MarkupType: quote.MarkupFixed}
	got := ItemPrice(item, q, quote.StrategyGlobal, true)
	if got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
}

func TestItemPriceMixedFallsBackToGlobal(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 10}
	withOwn := quote.LineItem{Cost: 100, MarkupValue: 25, MarkupType: quote.MarkupPercentage}
	withoutOwn := quote.LineItem{Cost: 100}
	if got := ItemPrice(withOwn, q, quote.StrategyMixed, true); got != 125 {
		t.Fatalf("expected own markup to win, got %v", got)
	}
	if got := ItemPrice(withoutOwn, q, quote.StrategyMixed, true); got != 110 {
		t.Fatalf("expected global fallback 110, got %v", got)
	}
}

func TestItemPriceExcludingQuantity(t *testing.T) {
	item := quote.LineItem{Cost: 100, Quantity: 4, MarkupValue: 10, MarkupType: quote.MarkupPercentage}
	got := ItemPrice(item, quote.Quote{}, quote.StrategyIndividual, false)
	if got != 110 {
		t.Fatalf("expected single-unit price 110, got %v", got)
	}
}

func TestItemPriceDefaultsMissingFields(t *testing.T) {
	// quantity and markup type absent: quantity defaults to 1, type to percentage
	item := quote.LineItem{Cost: 80, MarkupValue: 10}
	got := ItemPrice(item, quote.Quote{}, quote.StrategyIndividual, true)
	if got != 88 {
		t.Fatalf("expected 88, got %v", got)
	}
}

func TestDisplayPriceDividesHotelStayAcrossSpan(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 10}
	stay := quote.LineItem{ID: "h1", ItemType: quote.ItemHotel, Cost: 300, SpanDays: 3}
	got := DisplayPrice(stay, q, quote.StrategyGlobal)
	if !almostEqual(got, 110, 1e-9) {
		t.Fatalf("expected per-day display price 110, got %v", got)
	}

	flight := quote.LineItem{ID: "f1", ItemType: quote.ItemFlight, Cost: 300}
	if got := DisplayPrice(flight, q, quote.StrategyGlobal); got != 330 {
		t.Fatalf("expected full price 330 for single-day item, got %v", got)
	}
}
