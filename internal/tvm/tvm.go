// Package tvm implements the time-value-of-money primitives: simple and
// compound interest, single-sum present worth and uniform-series factors.
package tvm

import (
	"math"

	"github.com/Simplici0/plantecon/internal/econ"
)

// SimpleResult holds a simple-interest calculation.
type SimpleResult struct {
	Principal   float64 `json:"principal"`
	Rate        float64 `json:"rate"`
	Periods     int     `json:"periods"`
	Interest    float64 `json:"interest"`
	TotalAmount float64 `json:"total_amount"`
}

// CompoundResult holds a compound-interest calculation.
type CompoundResult struct {
	Principal   float64 `json:"principal"`
	Rate        float64 `json:"rate"`
	Periods     int     `json:"periods"`
	FutureValue float64 `json:"future_value"`
	Interest    float64 `json:"interest"`
}

func validate(op string, rate float64, periods int) error {
	if err := econ.RequirePeriods(op, "periods", periods); err != nil {
		return err
	}
	return econ.RequireRate(op, "rate", rate)
}

// SimpleInterest computes interest = principal * rate * periods.
func SimpleInterest(principal, rate float64, periods int) (SimpleResult, error) {
	const op = "simple interest"
	if err := econ.RequireNonNegative(op, "principal", principal); err != nil {
		return SimpleResult{}, err
	}
	if err := validate(op, rate, periods); err != nil {
		return SimpleResult{}, err
	}

	interest := principal * rate * float64(periods)
	return SimpleResult{
		Principal:   principal,
		Rate:        rate,
		Periods:     periods,
		Interest:    interest,
		TotalAmount: principal + interest,
	}, nil
}

// CompoundInterest computes futureValue = principal * (1+rate)^periods.
func CompoundInterest(principal, rate float64, periods int) (CompoundResult, error) {
	const op = "compound interest"
	if err := econ.RequireNonNegative(op, "principal", principal); err != nil {
		return CompoundResult{}, err
	}
	if err := validate(op, rate, periods); err != nil {
		return CompoundResult{}, err
	}

	fv := principal * growth(rate, periods)
	return CompoundResult{
		Principal:   principal,
		Rate:        rate,
		Periods:     periods,
		FutureValue: fv,
		Interest:    fv - principal,
	}, nil
}

// PresentWorth discounts a single future sum: futureValue / (1+rate)^periods.
func PresentWorth(futureValue, rate float64, periods int) (float64, error) {
	const op = "present worth"
	if err := econ.RequireFinite(op, "future value", futureValue); err != nil {
		return 0, err
	}
	if err := validate(op, rate, periods); err != nil {
		return 0, err
	}
	return futureValue * DiscountFactor(rate, periods), nil
}

// AnnuityPresentWorth is the present worth of a uniform end-of-period series.
func AnnuityPresentWorth(payment, rate float64, periods int) (float64, error) {
	const op = "annuity present worth"
	if err := econ.RequireFinite(op, "payment", payment); err != nil {
		return 0, err
	}
	factor, err := PresentWorthFactor(rate, periods)
	if err != nil {
		return 0, err
	}
	return payment * factor, nil
}

// AnnuityFutureWorth is the future worth of a uniform end-of-period series.
func AnnuityFutureWorth(payment, rate float64, periods int) (float64, error) {
	const op = "annuity future worth"
	if err := econ.RequireFinite(op, "payment", payment); err != nil {
		return 0, err
	}
	factor, err := FutureWorthFactor(rate, periods)
	if err != nil {
		return 0, err
	}
	return payment * factor, nil
}

// PresentWorthFactor is the uniform-series present worth factor (P/A, i, n):
// ((1+i)^n - 1) / (i (1+i)^n), or n when i = 0.
func PresentWorthFactor(rate float64, periods int) (float64, error) {
	if err := validate("present worth factor", rate, periods); err != nil {
		return 0, err
	}
	if rate == 0 {
		return float64(periods), nil
	}
	return -math.Expm1(-float64(periods)*math.Log1p(rate)) / rate, nil
}

// FutureWorthFactor is the uniform-series compound amount factor (F/A, i, n):
// ((1+i)^n - 1) / i, or n when i = 0.
func FutureWorthFactor(rate float64, periods int) (float64, error) {
	if err := validate("future worth factor", rate, periods); err != nil {
		return 0, err
	}
	if rate == 0 {
		return float64(periods), nil
	}
	return math.Expm1(float64(periods)*math.Log1p(rate)) / rate, nil
}

// DiscountFactor is 1/(1+rate)^year. Callers validate rate > -1.
func DiscountFactor(rate float64, year int) float64 {
	return 1 / growth(rate, year)
}

func growth(rate float64, periods int) float64 {
	return math.Pow(1+rate, float64(periods))
}
