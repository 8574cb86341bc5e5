package recon

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Config holds the matching tolerances, score weights, and acceptance
// threshold. An invalid Config is a caller bug and is rejected when the
// Matcher is constructed, never discovered mid-run.
type Config struct {
	// AmountWeight, DateWeight, and VendorWeight blend the component
	// scores. They must be non-negative and sum to 1.
	AmountWeight float64
	DateWeight   float64
	VendorWeight float64

	// AmountTolerance is the absolute difference that still counts as a
	// perfect amount match (bank postings round).
	AmountTolerance decimal.Decimal

	// MaxAmountDelta is the difference at which the amount score reaches
	// zero; the score decays linearly between the tolerance and here.
	MaxAmountDelta decimal.Decimal

	// MaxDateDeltaDays is the day window at which the date score reaches
	// zero. Receipts and bank postings can lag by several days.
	MaxDateDeltaDays int

	// AcceptThreshold is the minimum blended score for a pair to be
	// committed; everything below goes to manual review.
	AcceptThreshold float64
}

// DefaultConfig returns a balanced configuration: amount dominates, dates
// may lag a few days, vendor text is a corroborating signal.
func DefaultConfig() Config {
	return Config{
		AmountWeight:     0.5,
		DateWeight:       0.3,
		VendorWeight:     0.2,
		AmountTolerance:  decimal.NewFromFloat(0.01),
		MaxAmountDelta:   decimal.NewFromInt(1),
		MaxDateDeltaDays: 5,
		AcceptThreshold:  0.75,
	}
}

// Validate rejects configurations that would make scores degenerate.
func (c Config) Validate() error {
	if c.AmountWeight < 0 || c.DateWeight < 0 || c.VendorWeight < 0 {
		return fmt.Errorf("weights must be non-negative, got amount=%v date=%v vendor=%v",
			c.AmountWeight, c.DateWeight, c.VendorWeight)
	}
	if sum := c.AmountWeight + c.DateWeight + c.VendorWeight; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	if c.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance must not be negative, got %v", c.AmountTolerance)
	}
	if c.MaxAmountDelta.LessThanOrEqual(c.AmountTolerance) {
		return fmt.Errorf("max amount delta %v must exceed the tolerance %v", c.MaxAmountDelta, c.AmountTolerance)
	}
	if c.MaxDateDeltaDays <= 0 {
		return fmt.Errorf("max date delta must be positive, got %d days", c.MaxDateDeltaDays)
	}
	if c.AcceptThreshold <= 0 || c.AcceptThreshold > 1 {
		return fmt.Errorf("accept threshold must be in (0, 1], got %v", c.AcceptThreshold)
	}
	return nil
}
