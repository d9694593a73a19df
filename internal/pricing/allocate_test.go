package pricing

import (
	"testing"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

func TestDayTotalSumOverSpanReproducesFullPrice(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 17}
	stay := quote.LineItem{ID: "h1", ItemType: quote.ItemHotel, Cost: 433, DayIndex: 2, SpanDays: 3}
	items := []quote.LineItem{stay}

	full := ItemPrice(stay, q, quote.StrategyGlobal, true)
	var sum float64
	for day := 2; day <= 4; day++ {
		sum += DayTotal(items, q, day, Options{})
	}
	if !almostEqual(sum, full, 1e-6) {
		t.Fatalf("day sum %v must reproduce full price %v", sum, full)
	}
}

func TestDayTotalSelectsItemsForDay(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 10}
	items := []quote.LineItem{
		{ID: "f1", ItemType: quote.ItemFlight, Cost: 200, DayIndex: 0},
		{ID: "h1", ItemType: quote.ItemHotel, Cost: 300, DayIndex: 0, SpanDays: 3},
		{ID: "t1", ItemType: quote.ItemTour, Cost: 50, DayIndex: 2},
	}

	// day 0: full flight price plus one third of the stay
	day0 := DayTotal(items, q, 0, Options{})
	if !almostEqual(day0, 220+110, 1e-9) {
		t.Fatalf("day 0: expected 330, got %v", day0)
	}
	// day 2: tour plus the stay's last covered day
	day2 := DayTotal(items, q, 2, Options{})
	if !almostEqual(day2, 55+110, 1e-9) {
		t.Fatalf("day 2: expected 165, got %v", day2)
	}
	// day 3: outside every span
	if day3 := DayTotal(items, q, 3, Options{}); day3 != 0 {
		t.Fatalf("day 3: expected 0, got %v", day3)
	}
}

func TestDayTotalDeduplicatesRepeatedStayReferences(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 10}
	stay := quote.LineItem{ID: "h1", ItemType: quote.ItemHotel, Cost: 300, DayIndex: 0, SpanDays: 3}
	items := []quote.LineItem{stay, stay, stay}
	got := DayTotal(items, q, 1, Options{})
	if !almostEqual(got, 110, 1e-9) {
		t.Fatalf("expected one per-day share 110, got %v", got)
	}
}

func TestFilteredDayTotalUsesOriginalSpanMarker(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 10}
	// caller already expanded the 3-day stay; this is the one copy for a day
	copyForDay := quote.LineItem{
		ID: "h1", ItemType: quote.ItemHotel, Cost: 300,
		DayIndex: 1, SpanDays: 1, OriginalSpanDays: 3,
	}
	got := FilteredDayTotal([]quote.LineItem{copyForDay}, q, Options{})
	if !almostEqual(got, 110, 1e-9) {
		t.Fatalf("expected marker-divided share 110, got %v", got)
	}
}

func TestBothCallFormsAgreeOnEquivalentData(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 12, MarkupStrategy: quote.StrategyGlobal}
	stay := quote.LineItem{ID: "h1", ItemType: quote.ItemHotel, Cost: 275, DayIndex: 3, SpanDays: 4}
	tour := quote.LineItem{ID: "t1", ItemType: quote.ItemTour, Cost: 60, DayIndex: 4}

	raw := DayTotal([]quote.LineItem{stay, tour}, q, 4, Options{})

	expandedStay := stay
	expandedStay.SpanDays = 1
	expandedStay.DayIndex = 4
	expandedStay.OriginalSpanDays = 4
	expanded := FilteredDayTotal([]quote.LineItem{expandedStay, tour}, q, Options{})

	if !almostEqual(raw, expanded, 1e-6) {
		t.Fatalf("call forms diverge: raw %v vs expanded %v", raw, expanded)
	}
}

func TestFilteredDayTotalGuardsZeroSpanMarker(t *testing.T) {
	q := quote.Quote{GlobalMarkupPercent: 10}
	valid := quote.LineItem{ID: "t1", ItemType: quote.ItemTour, Cost: 50, DayIndex: 0}
	got := FilteredDayTotal([]quote.LineItem{valid}, q, Options{})
	if !almostEqual(got, 55, 1e-9) {
		t.Fatalf("expected 55, got %v", got)
	}
}
