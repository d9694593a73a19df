// Package reporting aggregates pricing results across batches of quotes for
// agency-level summaries.
package reporting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/common"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/pricing"
	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

// QuoteSummary is one quote's contribution to a batch report.
type QuoteSummary struct {
	QuoteID              string  `json:"quoteId"`
	Total                float64 `json:"total"`
	Placeholder          bool    `json:"placeholder"`
	AverageMarkupPercent float64 `json:"averageMarkupPercent"`
}

// Report is the aggregate over a batch of quotes. Placeholder totals are
// markup percentages, not money, so they are counted but never summed into
// CombinedTotal.
type Report struct {
	Quotes            []QuoteSummary `json:"quotes"`
	CombinedTotal     float64        `json:"combinedTotal"`
	MeanMarkupPercent float64        `json:"meanMarkupPercent"`
	PlaceholderCount  int            `json:"placeholderCount"`
	GeneratedAt       time.Time      `json:"generatedAt"`
}

// Service computes batch reports, caching them in Redis under a fingerprint
// of the batch so identical requests are served without recomputation.
type Service struct {
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Batch aggregates the given quotes. The second return reports a cache hit.
func (s *Service) Batch(ctx context.Context, quotes []quote.Quote) (Report, bool) {
	key, ok := s.cacheKey(quotes)
	if ok {
		if cached, hit := s.getCached(ctx, key); hit {
			return cached, true
		}
	}

	report := Report{
		Quotes:      make([]QuoteSummary, 0, len(quotes)),
		GeneratedAt: s.now().UTC(),
	}
	var markupSum float64
	var priced int
	for _, q := range quotes {
		q = q.Canonicalize()
		total := pricing.QuoteTotal(q, pricing.Options{})
		summary := QuoteSummary{
			QuoteID:              q.ID,
			Total:                total.Amount,
			Placeholder:          total.Placeholder,
			AverageMarkupPercent: pricing.AverageMarkup(q),
		}
		report.Quotes = append(report.Quotes, summary)
		if total.Placeholder {
			report.PlaceholderCount++
			continue
		}
		report.CombinedTotal += total.Amount
		markupSum += summary.AverageMarkupPercent
		priced++
	}
	if priced > 0 {
		report.MeanMarkupPercent = markupSum / float64(priced)
	}

	if ok {
		s.store(ctx, key, report)
	}
	return report, false
}

func (s *Service) cacheKey(quotes []quote.Quote) (string, bool) {
	if s == nil || s.R == nil || s.TTL <= 0 {
		return "", false
	}
	fp, err := common.FingerprintJSON(quotes)
	if err != nil {
		return "", false
	}
	return "report:batch:" + fp, true
}

func (s *Service) getCached(ctx context.Context, key string) (Report, bool) {
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return Report{}, false
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return Report{}, false
	}
	return report, true
}

func (s *Service) store(ctx context.Context, key string, report Report) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
