package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{
		R:   client,
		TTL: time.Minute,
		Now: func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func batchFixture() []quote.Quote {
	return []quote.Quote{
		{
			ID:                  "q-1",
			GlobalMarkupPercent: 10,
			Items: []quote.LineItem{
				{ID: "flight-1", ItemType: quote.ItemFlight, Cost: 100, Quantity: 2},
			},
		},
		{
			ID:             "q-2",
			MarkupStrategy: quote.StrategyIndividual,
			Items: []quote.LineItem{
				{ID: "hotel-1", ItemType: quote.ItemHotel, Cost: 200, SpanDays: 2, MarkupValue: 20},
			},
		},
		{ID: "q-empty", GlobalMarkupPercent: 15},
	}
}

func TestBatchAggregates(t *testing.T) {
	svc := newTestService(t)
	report, cached := svc.Batch(context.Background(), batchFixture())

	require.False(t, cached)
	require.Len(t, report.Quotes, 3)
	require.InDelta(t, 220.0, report.Quotes[0].Total, 1e-9)
	require.InDelta(t, 240.0, report.Quotes[1].Total, 1e-9)
	require.True(t, report.Quotes[2].Placeholder)
	require.InDelta(t, 15.0, report.Quotes[2].Total, 1e-9)

	require.InDelta(t, 460.0, report.CombinedTotal, 1e-9)
	require.Equal(t, 1, report.PlaceholderCount)
	require.InDelta(t, 15.0, report.MeanMarkupPercent, 1e-9)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), report.GeneratedAt)
}

func TestBatchServedFromCache(t *testing.T) {
	svc := newTestService(t)
	quotes := batchFixture()

	first, cached := svc.Batch(context.Background(), quotes)
	require.False(t, cached)

	second, cached := svc.Batch(context.Background(), quotes)
	require.True(t, cached)
	require.Equal(t, first.CombinedTotal, second.CombinedTotal)
	require.Equal(t, first.GeneratedAt, second.GeneratedAt)
}

func TestBatchDifferentQuotesMissCache(t *testing.T) {
	svc := newTestService(t)
	quotes := batchFixture()

	_, cached := svc.Batch(context.Background(), quotes)
	require.False(t, cached)

	quotes[0].GlobalMarkupPercent = 12
	_, cached = svc.Batch(context.Background(), quotes)
	require.False(t, cached)
}

func TestBatchEndpoint(t *testing.T) {
	svc := newTestService(t)
	h := &Handler{Svc: svc}
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)

	body, err := json.Marshal(map[string]any{"quotes": batchFixture()})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.InDelta(t, 460.0, envelope.Data.CombinedTotal, 1e-9)
}

func TestBatchEndpointRejectsEmpty(t *testing.T) {
	h := &Handler{Svc: newTestService(t)}
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/batch", bytes.NewReader([]byte(`{"quotes":[]}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchEndpointEnforcesLimit(t *testing.T) {
	h := &Handler{Svc: newTestService(t), MaxQuotes: 2}
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)

	body, err := json.Marshal(map[string]any{"quotes": batchFixture()})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
