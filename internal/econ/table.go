package econ

import (
	"math"
	"sort"
)

// Tolerance is the absolute tolerance used when comparing computed totals.
const Tolerance = 1e-9

// YearRow is one row of a depreciation schedule: the charge for the year,
// the running total and the residual value at the year's end.
type YearRow struct {
	Year       int     `json:"year"`
	Annual     float64 `json:"annual_amount"`
	Cumulative float64 `json:"cumulative_amount"`
	BookValue  float64 `json:"book_value"`
}

// CashFlowRow is one discounted cash-flow row.
type CashFlowRow struct {
	Year                   int     `json:"year"`
	CashFlow               float64 `json:"cash_flow"`
	DiscountFactor         float64 `json:"discount_factor"`
	PresentValue           float64 `json:"present_value"`
	CumulativePresentValue float64 `json:"cumulative_present_value"`
	CumulativeCashFlow     float64 `json:"cumulative_cash_flow"`
}

// TableOptions controls the shape of generated tables.
type TableOptions struct {
	// IncludeYearZero prepends a year-0 row: zero charge and book value equal
	// to cost for schedules, the initial outlay for cash-flow tables.
	IncludeYearZero bool
}

// DefaultTableOptions is the convention used across all schedules and cash-flow tables.
var DefaultTableOptions = TableOptions{IncludeYearZero: true}

// Inputs is the scalar input set behind a calculation, keyed by parameter name.
type Inputs map[string]float64

// Keys returns the parameter names in sorted order.
func (in Inputs) Keys() []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NearlyEqual compares a and b within Tolerance, scaled for large magnitudes.
func NearlyEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= Tolerance*scale
}
