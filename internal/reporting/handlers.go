package reporting

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/common"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

// Handler wires batch reporting to HTTP.
type Handler struct {
	Svc       *Service
	MaxQuotes int
}

const defaultMaxQuotes = 200

// Batch aggregates a posted batch of quote snapshots into one report.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "reporting service not configured", nil)
		return
	}
	var payload struct {
		Quotes []quote.Quote `json:"quotes"`
	}
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if len(payload.Quotes) == 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "at least one quote is required", nil)
		return
	}
	max := h.MaxQuotes
	if max <= 0 {
		max = defaultMaxQuotes
	}
	if len(payload.Quotes) > max {
		common.JSONError(w, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE", "too many quotes in one batch", map[string]any{"max": max})
		return
	}
	report, cached := h.Svc.Batch(r.Context(), payload.Quotes)
	common.JSON(w, http.StatusOK, map[string]any{
		"data": report,
		"meta": map[string]any{"cached": cached},
	})
}

// Routes mounts the reporting endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/reports/batch", h.Batch)
}
