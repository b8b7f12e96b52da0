package rateconfig

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrConfigMissing   = errors.New("loan configuration not set")
	ErrInvalidBounds   = errors.New("minimum amount must be positive and not exceed maximum amount")
	ErrInvalidRate     = errors.New("interest rate must not be negative")
	ErrInvalidDuration = errors.New("duration must be at least one month")
	ErrInvalidFreq     = errors.New("compound frequency must be MONTHLY, QUARTERLY or ANNUALLY")
)

// CompoundFrequency determines how often interest compounds and how far
// apart schedule installments fall.
type CompoundFrequency string

const (
	CompoundMonthly   CompoundFrequency = "MONTHLY"
	CompoundQuarterly CompoundFrequency = "QUARTERLY"
	CompoundAnnually  CompoundFrequency = "ANNUALLY"
)

// Valid reports whether the frequency is one of the known values
func (f CompoundFrequency) Valid() bool {
	switch f {
	case CompoundMonthly, CompoundQuarterly, CompoundAnnually:
		return true
	}
	return false
}

// PeriodsPerYear returns the number of compounding periods per year.
// Unknown frequencies fall back to monthly.
func (f CompoundFrequency) PeriodsPerYear() int {
	switch f {
	case CompoundQuarterly:
		return 4
	case CompoundAnnually:
		return 1
	default:
		return 12
	}
}

// IntervalMonths returns the number of months between two installments.
// Unknown frequencies fall back to monthly.
func (f CompoundFrequency) IntervalMonths() int {
	switch f {
	case CompoundQuarterly:
		return 3
	case CompoundAnnually:
		return 12
	default:
		return 1
	}
}

// RateConfig holds the system-wide lending parameters. Exactly one active
// instance exists; its absence is an error condition, never a default.
type RateConfig struct {
	ID                  uuid.UUID         `json:"id"`
	MinAmount           decimal.Decimal   `json:"min_amount"`
	MaxAmount           decimal.Decimal   `json:"max_amount"`
	InterestRatePercent decimal.Decimal   `json:"interest_rate_percent"`
	DurationMonths      int               `json:"duration_months"`
	CompoundFrequency   CompoundFrequency `json:"compound_frequency"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// New creates a validated rate configuration
func New(minAmount, maxAmount, interestRatePercent decimal.Decimal, durationMonths int, freq CompoundFrequency) (*RateConfig, error) {
	if minAmount.LessThanOrEqual(decimal.Zero) || minAmount.GreaterThan(maxAmount) {
		return nil, ErrInvalidBounds
	}
	if interestRatePercent.IsNegative() {
		return nil, ErrInvalidRate
	}
	if durationMonths <= 0 {
		return nil, ErrInvalidDuration
	}
	if !freq.Valid() {
		return nil, ErrInvalidFreq
	}

	return &RateConfig{
		ID:                  uuid.New(),
		MinAmount:           minAmount,
		MaxAmount:           maxAmount,
		InterestRatePercent: interestRatePercent,
		DurationMonths:      durationMonths,
		CompoundFrequency:   freq,
		UpdatedAt:           time.Now(),
	}, nil
}

// AllowsPrincipal reports whether a requested principal falls inside the
// configured amount bounds.
func (c *RateConfig) AllowsPrincipal(principal decimal.Decimal) bool {
	return principal.GreaterThanOrEqual(c.MinAmount) && principal.LessThanOrEqual(c.MaxAmount)
}
