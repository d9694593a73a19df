package pricing

import (
	"testing"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

func TestIsMultiDayOnlyForHotels(t *testing.T) {
	if !IsMultiDay(quote.LineItem{ItemType: quote.ItemHotel, SpanDays: 3}) {
		t.Fatal("hotel spanning 3 days must be multi-day")
	}
	if IsMultiDay(quote.LineItem{ItemType: quote.ItemHotel, SpanDays: 1}) {
		t.Fatal("single-night hotel is not multi-day")
	}
	if IsMultiDay(quote.LineItem{ItemType: quote.ItemTour, SpanDays: 3}) {
		t.Fatal("non-hotel items are never multi-day")
	}
	if !IsMultiDay(quote.LineItem{ItemType: quote.ItemHotel, Nights: 2}) {
		t.Fatal("nights-style duration must classify as multi-day")
	}
}

func TestNormalizeDropsRepeatedMultiDayReferences(t *testing.T) {
	stay := quote.LineItem{ID: "h1", ItemType: quote.ItemHotel, Cost: 300, SpanDays: 3}
	got := Normalize([]quote.LineItem{stay, stay, stay})
	if len(got) != 1 {
		t.Fatalf("expected a single surviving item, got %d", len(got))
	}
	if !got[0].MultiDay {
		t.Fatal("survivor must be tagged multi-day")
	}
}

func TestNormalizeKeepsDuplicateSingleDayItems(t *testing.T) {
	transfer := quote.LineItem{ID: "t1", ItemType: quote.ItemTransfer, Cost: 40}
	got := Normalize([]quote.LineItem{transfer, transfer})
	if len(got) != 2 {
		t.Fatalf("single-day items must not be deduplicated, got %d", len(got))
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	items := []quote.LineItem{
		{ID: "f1", ItemType: quote.ItemFlight, Cost: 500},
		{ID: "h1", ItemType: quote.ItemHotel, Cost: 300, SpanDays: 2},
		{ID: "h1", ItemType: quote.ItemHotel, Cost: 300, SpanDays: 2},
		{ID: "x1", ItemType: quote.ItemTour, Cost: 90},
	}
	got := Normalize(items)
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	wantIDs := []string{"f1", "h1", "x1"}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}
