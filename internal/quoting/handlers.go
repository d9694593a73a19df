package quoting

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/common"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/pricing"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

// Handler wires the quoting service to HTTP.
type Handler struct {
	Svc       *Service
	Validate  *validator.Validate
	Tolerance float64
}

type itemPayload struct {
	ID               string     `json:"id"`
	ItemType         string     `json:"itemType" validate:"omitempty,oneof=flight hotel tour transfer"`
	Cost             float64    `json:"cost"`
	Quantity         int        `json:"quantity" validate:"gte=0"`
	MarkupValue      float64    `json:"markupValue"`
	MarkupType       string     `json:"markupType" validate:"omitempty,oneof=percentage fixed"`
	DayIndex         int        `json:"dayIndex" validate:"gte=0"`
	SpanDays         int        `json:"spanDays" validate:"gte=0"`
	Nights           int        `json:"nights" validate:"gte=0"`
	CheckIn          *time.Time `json:"checkIn"`
	CheckOut         *time.Time `json:"checkOut"`
	OriginalSpanDays int        `json:"originalSpanDays" validate:"gte=0"`
}

type quotePayload struct {
	ID                  string        `json:"id"`
	GlobalMarkupPercent float64       `json:"globalMarkupPercent"`
	DiscountPercent     float64       `json:"discountPercent" validate:"gte=0,lte=100"`
	MarkupStrategy      string        `json:"markupStrategy" validate:"omitempty,oneof=global individual mixed"`
	Items               []itemPayload `json:"items" validate:"dive"`
}

func itemsToDomain(payload []itemPayload) []quote.LineItem {
	items := make([]quote.LineItem, 0, len(payload))
	for _, it := range payload {
		items = append(items, quote.LineItem{
			ID:               it.ID,
			ItemType:         quote.ItemType(it.ItemType),
			Cost:             it.Cost,
			Quantity:         it.Quantity,
			MarkupValue:      it.MarkupValue,
			MarkupType:       quote.MarkupType(it.MarkupType),
			DayIndex:         it.DayIndex,
			SpanDays:         it.SpanDays,
			Nights:           it.Nights,
			CheckIn:          it.CheckIn,
			CheckOut:         it.CheckOut,
			OriginalSpanDays: it.OriginalSpanDays,
		})
	}
	return items
}

func (p quotePayload) toDomain() quote.Quote {
	return quote.Quote{
		ID:                  p.ID,
		GlobalMarkupPercent: p.GlobalMarkupPercent,
		DiscountPercent:     p.DiscountPercent,
		MarkupStrategy:      quote.ParseStrategy(p.MarkupStrategy),
		Items:               itemsToDomain(p.Items),
	}
}

func (h *Handler) decodeQuote(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := common.DecodeJSON(r, dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			var verr validator.ValidationErrors
			if errors.As(err, &verr) {
				fields := make([]string, 0, len(verr))
				for _, fe := range verr {
					fields = append(fields, fe.Namespace())
				}
				common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "payload failed validation", fields)
				return false
			}
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
			return false
		}
	}
	return true
}

// Price returns the full priced breakdown for a quote snapshot.
func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quoting service not configured", nil)
		return
	}
	var payload quotePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	q := Ingest(payload.toDomain())
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Svc.Breakdown(r.Context(), q)})
}

// Total returns the quote total. Query parameters includeDiscount and
// includeQuantity (both default true) control the aggregation.
func (h *Handler) Total(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quoting service not configured", nil)
		return
	}
	var payload quotePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	opts := pricing.Options{
		SkipDiscount:    !common.ParseBoolDefault(r.URL.Query().Get("includeDiscount"), true),
		ExcludeQuantity: !common.ParseBoolDefault(r.URL.Query().Get("includeQuantity"), true),
	}
	q := Ingest(payload.toDomain())
	total, cached := h.Svc.Total(r.Context(), q, opts)
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"quoteId":     q.ID,
			"total":       total.Amount,
			"placeholder": total.Placeholder,
			"cached":      cached,
		},
	})
}

// DayTotal returns the allocated total for one itinerary day of a full quote.
func (h *Handler) DayTotal(w http.ResponseWriter, r *http.Request) {
	var payload quotePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	day := common.AtoiDefault(chi.URLParam(r, "day"), -1)
	if day < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid day index", nil)
		return
	}
	q := payload.toDomain().Canonicalize()
	total := pricing.DayTotal(q.Items, q, day, dayOptions(r))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"dayIndex": day, "total": total},
	})
}

type expandedDayPayload struct {
	Quote    quotePayload  `json:"quote"`
	DayItems []itemPayload `json:"dayItems" validate:"dive"`
}

// ExpandedDayTotal prices a pre-expanded per-day item list, where multi-day
// stays arrive as one copy per day carrying originalSpanDays.
func (h *Handler) ExpandedDayTotal(w http.ResponseWriter, r *http.Request) {
	var payload expandedDayPayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	q := payload.Quote.toDomain().Canonicalize()
	dayItems := itemsToDomain(payload.DayItems)
	for i := range dayItems {
		dayItems[i] = dayItems[i].Canonicalize()
	}
	total := pricing.FilteredDayTotal(dayItems, q, dayOptions(r))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"total": total},
	})
}

// AverageMarkup returns the effective average markup percentage for a quote.
func (h *Handler) AverageMarkup(w http.ResponseWriter, r *http.Request) {
	var payload quotePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	q := payload.toDomain().Canonicalize()
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"averageMarkupPercent": pricing.AverageMarkup(q)},
	})
}

type validatePayload struct {
	Quote         quotePayload `json:"quote"`
	ObservedTotal float64      `json:"observedTotal"`
	Tolerance     *float64     `json:"tolerance" validate:"omitempty,gte=0"`
}

// ValidateTotals checks a caller-supplied total against the recomputed one.
func (h *Handler) ValidateTotals(w http.ResponseWriter, r *http.Request) {
	var payload validatePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	tolerance := common.ParseFloatDefault(r.URL.Query().Get("tolerance"), h.Tolerance)
	if payload.Tolerance != nil {
		tolerance = *payload.Tolerance
	}
	q := payload.Quote.toDomain().Canonicalize()
	result := pricing.ValidateConsistency(q, payload.ObservedTotal, tolerance)
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Advisory runs plausibility checks over a quote's hotel items.
func (h *Handler) Advisory(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quoting service not configured", nil)
		return
	}
	var payload quotePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	q := payload.toDomain().Canonicalize()
	warnings := pricing.ValidateHotelPricing(q, h.Svc.bounds())
	if warnings == nil {
		warnings = []pricing.Warning{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"warnings": warnings}})
}

// Recompute enqueues an asynchronous recomputation of the quote's totals.
func (h *Handler) Recompute(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quoting service not configured", nil)
		return
	}
	var payload quotePayload
	if !h.decodeQuote(w, r, &payload) {
		return
	}
	q := Ingest(payload.toDomain())
	if err := h.Svc.EnqueueRecompute(r.Context(), q); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{
		"data": map[string]any{"quoteId": q.ID, "status": "queued"},
	})
}

// InvalidateCache drops every cached total for a quote id.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quoting service not configured", nil)
		return
	}
	quoteID := chi.URLParam(r, "id")
	if err := h.Svc.Invalidate(r.Context(), quoteID); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"quoteId": quoteID, "invalidated": true},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if appErr, ok := common.AsAppError(err); ok {
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

// Routes mounts the quoting endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/quotes/price", h.Price)
	r.Post("/quotes/total", h.Total)
	r.Post("/quotes/days/{day}", h.DayTotal)
	r.Post("/quotes/day-expanded", h.ExpandedDayTotal)
	r.Post("/quotes/average-markup", h.AverageMarkup)
	r.Post("/quotes/validate", h.ValidateTotals)
	r.Post("/quotes/advisory", h.Advisory)
	r.Post("/quotes/recompute", h.Recompute)
	r.Delete("/quotes/{id}/cache", h.InvalidateCache)
}

func dayOptions(r *http.Request) pricing.Options {
	return pricing.Options{
		SkipDiscount:    true,
		ExcludeQuantity: !common.ParseBoolDefault(r.URL.Query().Get("includeQuantity"), true),
	}
}
