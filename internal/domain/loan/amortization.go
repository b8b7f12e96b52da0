package loan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundflow-lending-core/internal/domain/rateconfig"
)

// Installment is one row of a loan's amortization schedule. The sequence is
// finite and fully materialized; it is persisted as a snapshot on the loan.
type Installment struct {
	Index                 int             `json:"installment"`
	DueDate               time.Time       `json:"due_date"`
	TotalAmount           decimal.Decimal `json:"total_installment"`
	PrincipalPortion      decimal.Decimal `json:"principal_payment"`
	InterestPortion       decimal.Decimal `json:"interest_payment"`
	RemainingBalanceAfter decimal.Decimal `json:"remaining_balance"`
}

// ComputeInstallment returns the fixed monthly installment (EMI) for a
// reducing-balance loan compounded monthly:
//
//	EMI = P*r*(1+r)^n / ((1+r)^n - 1), r = annual rate / 100 / 12
//
// A zero rate degenerates to principal/term. Rounded half-up to 2 decimals.
func ComputeInstallment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, ErrInvalidTerm
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	r := annualRatePercent.InexactFloat64() / 100 / 12
	return round2(rawInstallment(principal.InexactFloat64(), r, termMonths)), nil
}

// ComputeInstallmentWithFrequency computes the EMI with the periodic rate
// derived from the compound frequency (monthly=12, quarterly=4, annually=1
// periods per year) instead of a flat monthly rate.
func ComputeInstallmentWithFrequency(principal, annualRatePercent decimal.Decimal, termMonths int, freq rateconfig.CompoundFrequency) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, ErrInvalidTerm
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}

	r := annualRatePercent.InexactFloat64() / 100 / float64(freq.PeriodsPerYear())
	return round2(rawInstallment(principal.InexactFloat64(), r, termMonths)), nil
}

// GenerateSchedule materializes the full amortization schedule. The interval
// between installments follows the compound frequency (1, 3 or 12 months),
// the installment count is ceil(term/interval), and the periodic rate is
// (annual rate / 100) / (12 / interval). The installment amount is the
// constant EMI computed once for that count, not recomputed per row. Due
// dates advance interval*30 days per installment; the 30-day month is a
// deliberate simplification, not calendar arithmetic.
func GenerateSchedule(principal, annualRatePercent decimal.Decimal, termMonths int, startDate time.Time, freq rateconfig.CompoundFrequency) ([]Installment, error) {
	if termMonths <= 0 {
		return nil, ErrInvalidTerm
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	interval := freq.IntervalMonths()
	n := (termMonths + interval - 1) / interval
	r := annualRatePercent.InexactFloat64() / 100 / (12 / float64(interval))

	// The unrounded EMI drives the iteration; each row is rounded for display
	emi := rawInstallment(principal.InexactFloat64(), r, n)

	schedule := make([]Installment, 0, n)
	balance := principal.InexactFloat64()
	dueDate := startDate

	for i := 1; i <= n; i++ {
		interest := balance * r
		principalPortion := emi - interest
		balance -= principalPortion
		dueDate = dueDate.AddDate(0, 0, interval*30)

		schedule = append(schedule, Installment{
			Index:                 i,
			DueDate:               dueDate,
			TotalAmount:           round2(emi),
			PrincipalPortion:      round2(principalPortion),
			InterestPortion:       round2(interest),
			RemainingBalanceAfter: round2(math.Max(balance, 0)),
		})
	}

	return schedule, nil
}

func rawInstallment(principal, periodicRate float64, periods int) float64 {
	if periodicRate == 0 {
		return principal / float64(periods)
	}
	compounded := math.Pow(1+periodicRate, float64(periods))
	return principal * periodicRate * compounded / (compounded - 1)
}

// round2 rounds half-up to 2 decimal places
func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
