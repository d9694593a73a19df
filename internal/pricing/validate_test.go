package pricing

import (
	"testing"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

func TestValidateConsistencyWithinTolerance(t *testing.T) {
	q := quote.Quote{Items: []quote.LineItem{
		{ID: "a", Cost: 100, Quantity: 2, MarkupValue: 10, MarkupType: quote.MarkupPercentage},
	}}
	res := ValidateConsistency(q, 220.005, 0.01)
	if !res.Valid {
		t.Fatalf("expected valid within tolerance, diff %v", res.Difference)
	}
	res = ValidateConsistency(q, 221, 0.01)
	if res.Valid {
		t.Fatal("expected mismatch outside tolerance")
	}
	if !almostEqual(res.Difference, 1, 1e-9) {
		t.Fatalf("expected difference 1, got %v", res.Difference)
	}
}

func TestValidateConsistencyDefaultTolerance(t *testing.T) {
	q := quote.Quote{Items: []quote.LineItem{{ID: "a", Cost: 100}}}
	res := ValidateConsistency(q, 100.005, 0)
	if !res.Valid {
		t.Fatal("non-positive tolerance must fall back to the default")
	}
}

func TestValidateHotelPricingFlagsImplausibleCosts(t *testing.T) {
	q := quote.Quote{Items: []quote.LineItem{
		{ID: "cheap", ItemType: quote.ItemHotel, Cost: 5},
		{ID: "fine", ItemType: quote.ItemHotel, Cost: 180},
		{ID: "dear", ItemType: quote.ItemHotel, Cost: 2500},
		{ID: "flight", ItemType: quote.ItemFlight, Cost: 99999},
	}}
	warnings := ValidateHotelPricing(q, AdvisoryBounds{})
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	for _, w := range warnings {
		if w.Severity != SeverityWarning {
			t.Fatalf("severity is always warning in the current contract, got %q", w.Severity)
		}
	}
	if warnings[0].ItemID != "cheap" || warnings[1].ItemID != "dear" {
		t.Fatalf("unexpected flagged items: %+v", warnings)
	}
}

func TestValidateHotelPricingCustomBounds(t *testing.T) {
	q := quote.Quote{Items: []quote.LineItem{
		{ID: "h1", ItemType: quote.ItemHotel, Cost: 1200},
	}}
	if got := ValidateHotelPricing(q, AdvisoryBounds{HotelCostMax: 2000}); len(got) != 0 {
		t.Fatalf("expected no warnings under widened bounds, got %+v", got)
	}
}

func TestValidateHotelPricingNeverAltersTotals(t *testing.T) {
	q := quote.Quote{Items: []quote.LineItem{
		{ID: "h1", ItemType: quote.ItemHotel, Cost: 5000},
	}}
	before := QuoteTotal(q, Options{})
	_ = ValidateHotelPricing(q, AdvisoryBounds{})
	after := QuoteTotal(q, Options{})
	if before != after {
		t.Fatal("advisory scan must not change computed totals")
	}
}
