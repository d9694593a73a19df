package pricing

import (
	"fmt"
	"math"

	"github.com/noobiecoder75/bookinggpt-pricing/internal/quote"
)

// DefaultTolerance is the consistency tolerance used when callers pass a
// non-positive one.
const DefaultTolerance = 0.01

// SeverityWarning labels advisory findings. An "error" severity is reserved
// in the contract but nothing emits it today.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Default plausibility bounds for hotel stay costs.
const (
	DefaultHotelCostMin = 10
	DefaultHotelCostMax = 1000
)

// ConsistencyResult compares a displayed total against a fresh computation.
type ConsistencyResult struct {
	Valid      bool    `json:"valid"`
	Difference float64 `json:"difference"`
	Expected   float64 `json:"expected"`
	Observed   float64 `json:"observed"`
}

// Warning flags a line item whose data looks suspicious. Warnings are
// advisory only and never change a computed total.
type Warning struct {
	ItemID   string `json:"itemId"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}

// AdvisoryBounds configures the plausibility window for hotel costs.
type AdvisoryBounds struct {
	HotelCostMin float64
	HotelCostMax float64
}

// withDefaults fills unset bounds.
func (b AdvisoryBounds) withDefaults() AdvisoryBounds {
	if b.HotelCostMin <= 0 {
		b.HotelCostMin = DefaultHotelCostMin
	}
	if b.HotelCostMax <= 0 {
		b.HotelCostMax = DefaultHotelCostMax
	}
	return b
}

// ValidateConsistency recomputes the quote total and checks the observed
// value against it within the tolerance.
func ValidateConsistency(q quote.Quote, observedTotal, tolerance float64) ConsistencyResult {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	expected := QuoteTotal(q, Options{}).Amount
	diff := observedTotal - expected
	return ConsistencyResult{
		Valid:      math.Abs(diff) <= tolerance,
		Difference: diff,
		Expected:   expected,
		Observed:   observedTotal,
	}
}

// ValidateHotelPricing scans hotel items for implausible costs. The scan is
// purely informational: it neither blocks computation nor rejects input.
func ValidateHotelPricing(q quote.Quote, bounds AdvisoryBounds) []Warning {
	bounds = bounds.withDefaults()
	var warnings []Warning
	for _, it := range q.Items {
		if !it.IsHotel() {
			continue
		}
		switch {
		case it.Cost > bounds.HotelCostMax:
			warnings = append(warnings, Warning{
				ItemID:   it.ID,
				Issue:    fmt.Sprintf("hotel cost %.2f exceeds plausible maximum %.2f", it.Cost, bounds.HotelCostMax),
				Severity: SeverityWarning,
			})
		case it.Cost < bounds.HotelCostMin:
			warnings = append(warnings, Warning{
				ItemID:   it.ID,
				Issue:    fmt.Sprintf("hotel cost %.2f is below plausible minimum %.2f", it.Cost, bounds.HotelCostMin),
				Severity: SeverityWarning,
			})
		}
	}
	return warnings
}
