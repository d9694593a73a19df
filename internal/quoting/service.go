// Package quoting orchestrates the pricing engine for HTTP callers: it
// produces full quote breakdowns, maintains the explicit total cache, and
// feeds the asynchronous recompute queue.
package quoting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/common"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/lock"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/obs"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/pricing"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/queue"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

// TaskRecompute is the queue task kind for asynchronous total recomputation.
const TaskRecompute = "quote:recompute"

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Service prices caller-owned quote snapshots. Totals are cached in Redis
// under a fingerprint of the snapshot, so a stale entry can never be served
// for changed inputs; invalidation only reclaims space and forces fresh
// placement. Computation itself never touches shared state.
type Service struct {
	R       *redis.Client
	TTL     time.Duration
	Queue   *queue.Enqueuer
	Bounds  pricing.AdvisoryBounds
	Lock    *lock.Locker
	LockTTL time.Duration
}

// ItemBreakdown is the priced view of one normalized line item.
type ItemBreakdown struct {
	ItemID       string         `json:"itemId"`
	ItemType     quote.ItemType `json:"itemType"`
	MultiDay     bool           `json:"multiDay"`
	SpanDays     int            `json:"spanDays"`
	Quantity     int            `json:"quantity"`
	Price        float64        `json:"price"`
	DisplayPrice float64        `json:"displayPrice"`
}

// DayBreakdown is the allocated total for one itinerary day.
type DayBreakdown struct {
	DayIndex int     `json:"dayIndex"`
	Total    float64 `json:"total"`
}

// Breakdown is the full derived view of a quote snapshot.
type Breakdown struct {
	QuoteID              string            `json:"quoteId"`
	Strategy             quote.Strategy    `json:"strategy"`
	Subtotal             float64           `json:"subtotal"`
	Total                float64           `json:"total"`
	PlaceholderTotal     bool              `json:"placeholderTotal"`
	DiscountPercent      float64           `json:"discountPercent"`
	AverageMarkupPercent float64           `json:"averageMarkupPercent"`
	Items                []ItemBreakdown   `json:"items"`
	Days                 []DayBreakdown    `json:"days"`
	Warnings             []pricing.Warning `json:"warnings,omitempty"`
}

// Ingest canonicalizes a snapshot and assigns an id when the caller did not
// supply one, so cache keys and logs always have something to hang onto.
func Ingest(q quote.Quote) quote.Quote {
	out := q.Canonicalize()
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	return out
}

// Breakdown computes the complete derived view of one quote snapshot.
func (s *Service) Breakdown(ctx context.Context, q quote.Quote) Breakdown {
	start := time.Now()
	strategy := pricing.ResolveStrategy(q)

	normalized := pricing.Normalize(q.Items)
	items := make([]ItemBreakdown, 0, len(normalized))
	var subtotal float64
	minDay, maxDay := 0, -1
	for _, it := range normalized {
		price := pricing.ItemPrice(it.LineItem, q, strategy, true)
		subtotal += price
		items = append(items, ItemBreakdown{
			ItemID:       it.ID,
			ItemType:     it.ItemType,
			MultiDay:     it.MultiDay,
			SpanDays:     it.Span(),
			Quantity:     it.EffectiveQuantity(),
			Price:        price,
			DisplayPrice: pricing.DisplayPrice(it.LineItem, q, strategy),
		})
		last := it.DayIndex + it.Span() - 1
		if maxDay < 0 || it.DayIndex < minDay {
			minDay = it.DayIndex
		}
		if last > maxDay {
			maxDay = last
		}
	}

	var days []DayBreakdown
	for day := minDay; day <= maxDay; day++ {
		days = append(days, DayBreakdown{
			DayIndex: day,
			Total:    pricing.DayTotal(q.Items, q, day, pricing.Options{}),
		})
	}

	total := pricing.QuoteTotal(q, pricing.Options{})
	warnings := pricing.ValidateHotelPricing(q, s.bounds())

	b := Breakdown{
		QuoteID:              q.ID,
		Strategy:             strategy,
		Subtotal:             subtotal,
		Total:                total.Amount,
		PlaceholderTotal:     total.Placeholder,
		DiscountPercent:      q.DiscountPercent,
		AverageMarkupPercent: pricing.AverageMarkup(q),
		Items:                items,
		Days:                 days,
		Warnings:             warnings,
	}
	observeCompute(strategy, "ok", time.Since(start))
	if len(warnings) > 0 && obs.AdvisoryWarningsTotal != nil {
		obs.AdvisoryWarningsTotal.Add(float64(len(warnings)))
	}
	return b
}

// Total returns the quote total, serving from the cache when a matching
// fingerprint exists. The second return reports a cache hit. Cache failures
// degrade to recomputation; they are never surfaced to the caller.
func (s *Service) Total(ctx context.Context, q quote.Quote, opts pricing.Options) (pricing.Total, bool) {
	key, ok := s.totalKey(q, opts)
	if ok {
		if cached, hit := s.getCachedTotal(ctx, key); hit {
			recordCache("hit")
			return cached, true
		}
		recordCache("miss")
	}
	start := time.Now()
	total := pricing.QuoteTotal(q, opts)
	observeCompute(pricing.ResolveStrategy(q), "ok", time.Since(start))
	if ok {
		s.storeTotal(ctx, q.ID, key, total)
	}
	return total, false
}

// Invalidate drops every cached total for the quote id.
func (s *Service) Invalidate(ctx context.Context, quoteID string) error {
	if s == nil || s.R == nil {
		return nil
	}
	if quoteID == "" {
		return common.NewAppError("BAD_REQUEST", "quote id required", http.StatusBadRequest, ErrInvalidInput)
	}
	setKey := keyQuoteIndex(quoteID)
	keys, err := s.R.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(keys) > 0 {
		if err := s.R.Del(ctx, keys...).Err(); err != nil {
			return err
		}
	}
	return s.R.Del(ctx, setKey).Err()
}

// EnqueueRecompute schedules an asynchronous recomputation that warms the
// total cache for the snapshot.
func (s *Service) EnqueueRecompute(ctx context.Context, q quote.Quote) error {
	if s == nil || s.Queue == nil {
		return errors.New("quoting service queue not configured")
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return err
	}
	fp, err := common.FingerprintJSON(q)
	if err != nil {
		return err
	}
	err = s.Queue.Enqueue(ctx, queue.Task{
		Kind:           TaskRecompute,
		Payload:        payload,
		IdempotencyKey: q.ID + ":" + fp,
	})
	if err != nil {
		return common.NewAppError("QUEUE_UNAVAILABLE", "unable to enqueue recompute", http.StatusServiceUnavailable, err)
	}
	return nil
}

// HandleRecompute is the worker-side handler for TaskRecompute: it drops the
// quote's stale cache entries and recomputes the discounted total into a
// fresh one.
func (s *Service) HandleRecompute(ctx context.Context, payload []byte) error {
	var q quote.Quote
	if err := json.Unmarshal(payload, &q); err != nil {
		recordRecompute("bad_payload")
		return fmt.Errorf("decode recompute payload: %w", err)
	}
	q = Ingest(q)
	recompute := func(ctx context.Context) error {
		if err := s.Invalidate(ctx, q.ID); err != nil {
			return err
		}
		_, _ = s.Total(ctx, q, pricing.Options{})
		return nil
	}
	var err error
	if s.Lock != nil {
		err = s.Lock.WithLock(ctx, lock.RecomputeKey(q.ID), s.LockTTL, recompute)
	} else {
		err = recompute(ctx)
	}
	if err != nil {
		recordRecompute("error")
		return err
	}
	recordRecompute("ok")
	return nil
}

func (s *Service) bounds() pricing.AdvisoryBounds {
	if s == nil {
		return pricing.AdvisoryBounds{}
	}
	return s.Bounds
}

func (s *Service) totalKey(q quote.Quote, opts pricing.Options) (string, bool) {
	if s == nil || s.R == nil || s.TTL <= 0 || q.ID == "" {
		return "", false
	}
	fp, err := common.FingerprintJSON(struct {
		Quote quote.Quote     `json:"quote"`
		Opts  pricing.Options `json:"opts"`
	}{q, opts})
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("quote:total:%s:%s", q.ID, fp), true
}

func (s *Service) getCachedTotal(ctx context.Context, key string) (pricing.Total, bool) {
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return pricing.Total{}, false
	}
	var total pricing.Total
	if err := json.Unmarshal(data, &total); err != nil {
		return pricing.Total{}, false
	}
	return total, true
}

func (s *Service) storeTotal(ctx context.Context, quoteID, key string, total pricing.Total) {
	data, err := json.Marshal(total)
	if err != nil {
		return
	}
	if err := s.R.Set(ctx, key, data, s.TTL).Err(); err != nil {
		return
	}
	setKey := keyQuoteIndex(quoteID)
	_ = s.R.SAdd(ctx, setKey, key).Err()
	_ = s.R.Expire(ctx, setKey, s.TTL).Err()
}

func keyQuoteIndex(quoteID string) string {
	return "quote:total:index:" + quoteID
}

func observeCompute(strategy quote.Strategy, result string, elapsed time.Duration) {
	if obs.QuoteComputeTotal != nil {
		obs.QuoteComputeTotal.WithLabelValues(string(strategy), result).Inc()
	}
	if obs.QuoteComputeDuration != nil {
		obs.QuoteComputeDuration.Observe(obs.DurationMillis(elapsed))
	}
}

func recordCache(result string) {
	if obs.QuoteCacheTotal != nil {
		obs.QuoteCacheTotal.WithLabelValues(result).Inc()
	}
}

func recordRecompute(result string) {
	if obs.RecomputeTasksTotal != nil {
		obs.RecomputeTasksTotal.WithLabelValues(result).Inc()
	}
}
