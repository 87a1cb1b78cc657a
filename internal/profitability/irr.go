package profitability

import (
	"fmt"
	"math"

	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// Bounds of the IRR search.
const (
	MinRate       = -0.99
	MaxRate       = 10.0
	MaxIterations = 200
	RateTolerance = 1e-12
)

// scanGrid brackets the first sign change before bisection.
var scanGrid = []float64{
	MinRate, -0.9, -0.75, -0.5, -0.25, -0.1, 0, 0.05, 0.1, 0.15, 0.2, 0.3,
	0.5, 0.75, 1, 1.5, 2, 3, 5, 7.5, MaxRate,
}

// IRRUniform finds the rate at which life equal cash flows exactly repay
// initialInvestment. The result is undefined when no rate in
// [MinRate, MaxRate] solves it.
func IRRUniform(annualCashFlow float64, life int, initialInvestment float64) (econ.Metric, error) {
	const op = "irr"
	if err := econ.RequireFinite(op, "annual cash flow", annualCashFlow); err != nil {
		return econ.Metric{}, err
	}
	if err := econ.RequireNonNegative(op, "initial investment", initialInvestment); err != nil {
		return econ.Metric{}, err
	}
	if err := econ.RequirePeriods(op, "project life", life); err != nil {
		return econ.Metric{}, err
	}

	npv := func(rate float64) float64 {
		factor, err := tvm.PresentWorthFactor(rate, life)
		if err != nil {
			return math.NaN()
		}
		return annualCashFlow*factor - initialInvestment
	}
	scale := initialInvestment + math.Abs(annualCashFlow)*float64(life)
	return solve(npv, scale), nil
}

// IRRSchedule finds the rate at which the discounted cashFlows (year i+1 at
// index i) exactly repay initialInvestment. With more than one sign change
// the lowest root in the search domain is returned.
func IRRSchedule(cashFlows []float64, initialInvestment float64) (econ.Metric, error) {
	const op = "irr schedule"
	if len(cashFlows) == 0 {
		return econ.Metric{}, econ.Domain(op, "cash flows", "must contain at least one year")
	}
	scale := initialInvestment
	for i, cf := range cashFlows {
		if err := econ.RequireFinite(op, fmt.Sprintf("cash flow for year %d", i+1), cf); err != nil {
			return econ.Metric{}, err
		}
		scale += math.Abs(cf)
	}
	if err := econ.RequireNonNegative(op, "initial investment", initialInvestment); err != nil {
		return econ.Metric{}, err
	}

	npv := func(rate float64) float64 {
		sum := 0.0
		for i, cf := range cashFlows {
			sum += cf * tvm.DiscountFactor(rate, i+1)
		}
		return sum - initialInvestment
	}
	return solve(npv, scale), nil
}

// solve brackets a root of f on scanGrid and bisects it. The root is
// accepted only if f is within a tolerance of zero relative to scale.
func solve(f func(float64) float64, scale float64) econ.Metric {
	if scale == 0 {
		return econ.Undefined("every rate gives zero net present value")
	}

	lo, flo := scanGrid[0], f(scanGrid[0])
	hi := math.NaN()
	for _, r := range scanGrid {
		fr := f(r)
		if math.IsNaN(fr) {
			return econ.Undefined("net present value is not defined in the search range")
		}
		if fr == 0 {
			return econ.Defined(r)
		}
		if math.Signbit(fr) != math.Signbit(flo) {
			hi = r
			break
		}
		lo, flo = r, fr
	}
	if math.IsNaN(hi) {
		return econ.Undefined(fmt.Sprintf("no rate between %g%% and %g%% gives zero net present value", MinRate*100, MaxRate*100))
	}

	for i := 0; i < MaxIterations && hi-lo > RateTolerance; i++ {
		mid := lo + (hi-lo)/2
		fm := f(mid)
		if fm == 0 {
			lo, hi = mid, mid
			break
		}
		if math.Signbit(fm) == math.Signbit(flo) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}

	root := lo + (hi-lo)/2
	if math.Abs(f(root)) > 1e-6*math.Max(1, scale) {
		return econ.Undefined("rate search did not converge")
	}
	return econ.Defined(root)
}
