package replacement

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// DefaultSalvageDecay is the yearly loss of resale value of equipment kept
// in service while a replacement is deferred.
const DefaultSalvageDecay = 0.10

// TimingStudy describes when existing equipment could be replaced.
type TimingStudy struct {
	// MaxLife is the latest replacement year considered.
	MaxLife int `json:"max_life"`
	// CurrentSalvage is the old equipment's resale value today.
	CurrentSalvage float64 `json:"current_salvage"`
	// OldAnnualCosts[i] is the cost of running the old equipment in year i+1.
	OldAnnualCosts []float64 `json:"old_annual_costs"`
	NewCost        float64   `json:"new_cost"`
	// NewAnnualCosts[i] is the cost of year i+1 of the new equipment's life.
	NewAnnualCosts []float64 `json:"new_annual_costs"`
	// NewSalvage is the new equipment's resale value at the end of its life.
	NewSalvage float64 `json:"new_salvage"`
	Rate       float64 `json:"rate"`
	// SalvageDecay is the yearly fractional loss of the old salvage value.
	SalvageDecay econ.Param `json:"-"`
}

// TimingOption is the cost of replacing after ReplaceAfterYears years.
type TimingOption struct {
	ReplaceAfterYears      int     `json:"replace_after_years"`
	OldSalvage             float64 `json:"old_salvage_value"`
	PresentWorthOldCosts   float64 `json:"present_worth_old_costs"`
	PresentWorthInvestment float64 `json:"present_worth_investment"`
	PresentWorthNewCosts   float64 `json:"present_worth_new_costs"`
	PresentWorthNewSalvage float64 `json:"present_worth_new_salvage"`
	TotalPresentWorth      float64 `json:"total_present_worth"`
}

// TimingResult is the outcome of a replacement timing study.
type TimingResult struct {
	OptimalReplacementYear int                         `json:"optimal_replacement_year"`
	MinimumPresentWorth    float64                     `json:"minimum_present_worth"`
	SalvageDecay           float64                     `json:"salvage_decay"`
	Options                []TimingOption              `json:"options"`
	Defaults               []econ.ConfigurationDefault `json:"defaults,omitempty"`
}

// Timing prices every "replace after k years" option for k = 0..MaxLife
// and returns the cheapest in present-worth terms. The old equipment's
// salvage value shrinks geometrically by SalvageDecay per year of delay.
// Ties go to the earlier replacement.
func Timing(s TimingStudy) (TimingResult, error) {
	const op = "replacement timing"
	if s.MaxLife < 0 {
		return TimingResult{}, econ.Domain(op, "max life", "must not be negative")
	}
	if len(s.OldAnnualCosts) < s.MaxLife {
		return TimingResult{}, econ.Domain(op, "old annual costs", fmt.Sprintf("must cover %d years", s.MaxLife))
	}
	if len(s.NewAnnualCosts) == 0 {
		return TimingResult{}, econ.Domain(op, "new annual costs", "must cover at least one year")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"current salvage", s.CurrentSalvage},
		{"new cost", s.NewCost},
		{"new salvage", s.NewSalvage},
	} {
		if err := econ.RequireNonNegative(op, f.name, f.v); err != nil {
			return TimingResult{}, err
		}
	}
	for i, c := range s.OldAnnualCosts {
		if err := econ.RequireNonNegative(op, fmt.Sprintf("old annual cost for year %d", i+1), c); err != nil {
			return TimingResult{}, err
		}
	}
	for i, c := range s.NewAnnualCosts {
		if err := econ.RequireNonNegative(op, fmt.Sprintf("new annual cost for year %d", i+1), c); err != nil {
			return TimingResult{}, err
		}
	}
	if err := validateRate(op, s.Rate); err != nil {
		return TimingResult{}, err
	}

	res := TimingResult{}
	decay, def := s.SalvageDecay.Resolve("salvage_decay", "old salvage loses 10% per year", DefaultSalvageDecay)
	if def != nil {
		res.Defaults = append(res.Defaults, *def)
	}
	if err := econ.RequireNonNegative(op, "salvage decay", decay); err != nil {
		return TimingResult{}, err
	}
	if decay >= 1 {
		return TimingResult{}, econ.Domain(op, "salvage decay", "must be below 100%")
	}
	res.SalvageDecay = decay

	oldPW := make([]float64, s.MaxLife)
	for i := range oldPW {
		oldPW[i] = s.OldAnnualCosts[i] * tvm.DiscountFactor(s.Rate, i+1)
	}
	oldCum := floats.CumSum(make([]float64, len(oldPW)), oldPW)

	newLife := len(s.NewAnnualCosts)
	res.Options = make([]TimingOption, 0, s.MaxLife+1)
	for k := 0; k <= s.MaxLife; k++ {
		opt := TimingOption{
			ReplaceAfterYears: k,
			OldSalvage:        s.CurrentSalvage * math.Pow(1-decay, float64(k)),
		}
		if k > 0 {
			opt.PresentWorthOldCosts = oldCum[k-1]
		}
		opt.PresentWorthInvestment = (s.NewCost - opt.OldSalvage) * tvm.DiscountFactor(s.Rate, k)
		for i, c := range s.NewAnnualCosts {
			opt.PresentWorthNewCosts += c * tvm.DiscountFactor(s.Rate, k+i+1)
		}
		opt.PresentWorthNewSalvage = s.NewSalvage * tvm.DiscountFactor(s.Rate, k+newLife)
		opt.TotalPresentWorth = opt.PresentWorthOldCosts + opt.PresentWorthInvestment +
			opt.PresentWorthNewCosts - opt.PresentWorthNewSalvage

		if k == 0 || opt.TotalPresentWorth < res.MinimumPresentWorth {
			res.OptimalReplacementYear = k
			res.MinimumPresentWorth = opt.TotalPresentWorth
		}
		res.Options = append(res.Options, opt)
	}
	return res, nil
}
