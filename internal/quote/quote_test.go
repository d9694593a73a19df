package quote

import (
	"testing"
	"time"
)

func TestSpanPrefersCanonicalField(t *testing.T) {
	item := LineItem{SpanDays: 3, Nights: 5}
	if got := item.Span(); got != 3 {
		t.Fatalf("expected span 3, got %d", got)
	}
}

func TestSpanFallsBackToNights(t *testing.T) {
	item := LineItem{Nights: 4}
	if got := item.Span(); got != 4 {
		t.Fatalf("expected span 4, got %d", got)
	}
}

func TestSpanFromDatePair(t *testing.T) {
	checkIn := time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 7, 13, 11, 0, 0, 0, time.UTC)
	item := LineItem{CheckIn: &checkIn, CheckOut: &checkOut}
	if got := item.Span(); got != 3 {
		t.Fatalf("expected span 3 from dates, got %d", got)
	}
}

func TestSpanNeverBelowOne(t *testing.T) {
	if got := (LineItem{SpanDays: -2}).Span(); got != 1 {
		t.Fatalf("expected span 1, got %d", got)
	}
}

func TestCanonicalizeCollapsesSynonyms(t *testing.T) {
	checkIn := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC)
	item := LineItem{ItemType: "Hotel", Nights: 0, CheckIn: &checkIn, CheckOut: &checkOut}
	got := item.Canonicalize()
	if got.SpanDays != 2 {
		t.Fatalf("expected canonical span 2, got %d", got.SpanDays)
	}
	if got.Nights != 0 || got.CheckIn != nil || got.CheckOut != nil {
		t.Fatal("expected synonym fields to be cleared")
	}
	if got.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", got.Quantity)
	}
	if got.MarkupType != MarkupPercentage {
		t.Fatalf("expected default markup type percentage, got %q", got.MarkupType)
	}
	if got.ItemType != ItemHotel {
		t.Fatalf("expected normalised item type hotel, got %q", got.ItemType)
	}
	if item.SpanDays != 0 {
		t.Fatal("canonicalize must not mutate the receiver")
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"global":     StrategyGlobal,
		"Individual": StrategyIndividual,
		" MIXED ":    StrategyMixed,
		"percent":    Strategy(""),
		"":           Strategy(""),
	}
	for input, want := range cases {
		if got := ParseStrategy(input); got != want {
			t.Fatalf("ParseStrategy(%q) = %q, want %q", input, got, want)
		}
	}
}
