// Package replacement compares keeping existing equipment against buying
// new, and finds economic life and the best year to replace.
package replacement

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// PresentWorthAnnuityFactor is the P/A factor, n when rate is zero.
func PresentWorthAnnuityFactor(rate float64, periods int) (float64, error) {
	return tvm.PresentWorthFactor(rate, periods)
}

// Recommendation is the outcome of a keep-or-replace comparison.
type Recommendation string

const (
	Replace Recommendation = "Replace"
	Keep    Recommendation = "Keep"
)

// Comparison describes the defender and challenger of a replacement study.
type Comparison struct {
	OldAnnualCost  float64 `json:"old_annual_cost"`
	OldSalvage     float64 `json:"old_salvage"`
	NewCost        float64 `json:"new_cost"`
	NewAnnualCost  float64 `json:"new_annual_cost"`
	NewSalvage     float64 `json:"new_salvage"`
	NewLife        int     `json:"new_life"`
	Rate           float64 `json:"rate"`
	AnalysisPeriod int     `json:"analysis_period"`
}

// Analysis is the result of a keep-or-replace comparison.
type Analysis struct {
	Comparison
	PresentWorthOld         float64        `json:"present_worth_old"`
	PresentWorthNew         float64        `json:"present_worth_new"`
	NetInvestment           float64        `json:"net_investment"`
	NetSavings              float64        `json:"net_savings"`
	AnnualSavings           float64        `json:"annual_savings"`
	EquivalentAnnualCostOld float64        `json:"equivalent_annual_cost_old"`
	EquivalentAnnualCostNew float64        `json:"equivalent_annual_cost_new"`
	Recommendation          Recommendation `json:"recommendation"`
}

func validateRate(op string, rate float64) error {
	if err := econ.RequireFinite(op, "rate", rate); err != nil {
		return err
	}
	if rate < 0 {
		return econ.Domain(op, "rate", "must not be negative")
	}
	return nil
}

// Analyze compares keeping the old equipment for the analysis period with
// buying new. The new option's present worth counts the outlay net of the
// old equipment's salvage. Replace only when net savings are strictly positive.
func Analyze(c Comparison) (Analysis, error) {
	const op = "replacement analysis"
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"old annual cost", c.OldAnnualCost},
		{"old salvage", c.OldSalvage},
		{"new cost", c.NewCost},
		{"new annual cost", c.NewAnnualCost},
		{"new salvage", c.NewSalvage},
	} {
		if err := econ.RequireNonNegative(op, f.name, f.v); err != nil {
			return Analysis{}, err
		}
	}
	if err := validateRate(op, c.Rate); err != nil {
		return Analysis{}, err
	}
	if err := econ.RequirePeriods(op, "new life", c.NewLife); err != nil {
		return Analysis{}, err
	}
	if err := econ.RequirePeriods(op, "analysis period", c.AnalysisPeriod); err != nil {
		return Analysis{}, err
	}

	oldFactor, err := PresentWorthAnnuityFactor(c.Rate, c.AnalysisPeriod)
	if err != nil {
		return Analysis{}, err
	}
	newFactor, err := PresentWorthAnnuityFactor(c.Rate, c.NewLife)
	if err != nil {
		return Analysis{}, err
	}

	netInvestment := c.NewCost - c.OldSalvage
	pwOld := c.OldAnnualCost * oldFactor
	pwNew := netInvestment + c.NewAnnualCost*newFactor - c.NewSalvage*tvm.DiscountFactor(c.Rate, c.NewLife)
	a := Analysis{
		Comparison:              c,
		PresentWorthOld:         pwOld,
		PresentWorthNew:         pwNew,
		NetInvestment:           netInvestment,
		NetSavings:              pwOld - pwNew,
		AnnualSavings:           c.OldAnnualCost - c.NewAnnualCost,
		EquivalentAnnualCostOld: pwOld / oldFactor,
		EquivalentAnnualCostNew: pwNew / newFactor,
		Recommendation:          Keep,
	}
	if a.NetSavings > 0 {
		a.Recommendation = Replace
	}
	return a, nil
}

// LifeRow is the cost of owning equipment for Year years.
type LifeRow struct {
	Year                 int     `json:"year"`
	PresentWorthCosts    float64 `json:"present_worth_costs"`
	PresentWorthSalvage  float64 `json:"present_worth_salvage"`
	TotalPresentWorth    float64 `json:"total_present_worth"`
	EquivalentAnnualCost float64 `json:"equivalent_annual_cost"`
}

// LifeResult is an economic-life study.
type LifeResult struct {
	OptimalLife int       `json:"optimal_economic_life"`
	MinimumEAC  float64   `json:"minimum_equivalent_annual_cost"`
	Table       []LifeRow `json:"eac_analysis"`
}

// EconomicLife converts the cost of owning the equipment through each
// candidate year n into an equivalent annual cost and returns the n with the
// lowest one. salvageByYear[n-1] is the resale value after n years and
// annualCosts[i] is the operating cost of year i+1. Ties go to the shorter life.
func EconomicLife(initialCost float64, salvageByYear, annualCosts []float64, rate float64) (LifeResult, error) {
	const op = "economic life"
	if err := econ.RequireNonNegative(op, "initial cost", initialCost); err != nil {
		return LifeResult{}, err
	}
	if err := validateRate(op, rate); err != nil {
		return LifeResult{}, err
	}
	if len(annualCosts) == 0 {
		return LifeResult{}, econ.Domain(op, "annual costs", "must cover at least one year")
	}
	if len(salvageByYear) != len(annualCosts) {
		return LifeResult{}, econ.Domain(op, "salvage values", fmt.Sprintf("must list %d years to match annual costs", len(annualCosts)))
	}
	for i := range annualCosts {
		if err := econ.RequireNonNegative(op, fmt.Sprintf("annual cost for year %d", i+1), annualCosts[i]); err != nil {
			return LifeResult{}, err
		}
		if err := econ.RequireNonNegative(op, fmt.Sprintf("salvage for year %d", i+1), salvageByYear[i]); err != nil {
			return LifeResult{}, err
		}
	}

	discounted := make([]float64, len(annualCosts))
	for i, c := range annualCosts {
		discounted[i] = c * tvm.DiscountFactor(rate, i+1)
	}
	cum := floats.CumSum(make([]float64, len(discounted)), discounted)

	res := LifeResult{Table: make([]LifeRow, len(annualCosts))}
	for i := range annualCosts {
		n := i + 1
		factor, err := PresentWorthAnnuityFactor(rate, n)
		if err != nil {
			return LifeResult{}, err
		}
		pwSalvage := salvageByYear[i] * tvm.DiscountFactor(rate, n)
		total := initialCost + cum[i] - pwSalvage
		row := LifeRow{
			Year:                 n,
			PresentWorthCosts:    cum[i],
			PresentWorthSalvage:  pwSalvage,
			TotalPresentWorth:    total,
			EquivalentAnnualCost: total / factor,
		}
		res.Table[i] = row
		if i == 0 || row.EquivalentAnnualCost < res.MinimumEAC {
			res.OptimalLife = n
			res.MinimumEAC = row.EquivalentAnnualCost
		}
	}
	return res, nil
}
