package costest

import (
	"fmt"
	"math"

	"github.com/Simplici0/plantecon/internal/econ"
)

// WorkingCapitalSplit is the fixed share of working capital held in one component.
type WorkingCapitalSplit struct {
	Component string  `json:"component" yaml:"component"`
	Fraction  float64 `json:"fraction" yaml:"fraction"`
}

// ComponentAmount is one line of a working-capital breakdown.
type ComponentAmount struct {
	Component string  `json:"component"`
	Fraction  float64 `json:"fraction"`
	Amount    float64 `json:"amount"`
}

// WorkingCapital is a working-capital estimate.
type WorkingCapital struct {
	AnnualSales float64           `json:"annual_sales"`
	Factor      float64           `json:"factor"`
	Total       float64           `json:"total_working_capital"`
	Components  []ComponentAmount `json:"components"`
}

// ValidateSplits checks that splits are non-negative and sum to 100%.
func ValidateSplits(op string, splits []WorkingCapitalSplit) error {
	if len(splits) == 0 {
		return econ.Domain(op, "working capital splits", "must list at least one component")
	}
	sum := 0.0
	for _, s := range splits {
		if s.Component == "" {
			return econ.Domain(op, "working capital splits", "component name is required")
		}
		if err := econ.RequireNonNegative(op, "fraction for "+s.Component, s.Fraction); err != nil {
			return err
		}
		sum += s.Fraction
	}
	if math.Abs(sum-1) > 1e-9 {
		return econ.Domain(op, "working capital splits", fmt.Sprintf("must sum to 100%%, got %.6g%%", sum*100))
	}
	return nil
}

// WorkingCapitalEstimate computes total = annualSales * wcFactor and divides
// it across the configured components.
func WorkingCapitalEstimate(annualSales, wcFactor float64, splits []WorkingCapitalSplit) (WorkingCapital, error) {
	const op = "working capital estimate"
	if err := econ.RequireNonNegative(op, "annual sales", annualSales); err != nil {
		return WorkingCapital{}, err
	}
	if err := econ.RequireNonNegative(op, "working capital factor", wcFactor); err != nil {
		return WorkingCapital{}, err
	}
	if err := ValidateSplits(op, splits); err != nil {
		return WorkingCapital{}, err
	}

	total := annualSales * wcFactor
	components := make([]ComponentAmount, len(splits))
	for i, s := range splits {
		components[i] = ComponentAmount{Component: s.Component, Fraction: s.Fraction, Amount: total * s.Fraction}
	}
	return WorkingCapital{
		AnnualSales: annualSales,
		Factor:      wcFactor,
		Total:       total,
		Components:  components,
	}, nil
}

// CapitalInvestment is fixed plus working capital.
type CapitalInvestment struct {
	FixedCapital          float64 `json:"fixed_capital"`
	WorkingCapital        float64 `json:"working_capital"`
	TotalInvestment       float64 `json:"total_investment"`
	FixedCapitalPercent   float64 `json:"fixed_capital_percent"`
	WorkingCapitalPercent float64 `json:"working_capital_percent"`
}

// TotalCapitalInvestment aggregates a fixed-capital figure (a breakdown total
// or a Lang-factor plant cost) with a working-capital estimate.
func TotalCapitalInvestment(fixedCapital float64, wc WorkingCapital) (CapitalInvestment, error) {
	const op = "total capital investment"
	if err := econ.RequireNonNegative(op, "fixed capital", fixedCapital); err != nil {
		return CapitalInvestment{}, err
	}
	if err := econ.RequireNonNegative(op, "working capital", wc.Total); err != nil {
		return CapitalInvestment{}, err
	}

	total := fixedCapital + wc.Total
	if total == 0 {
		return CapitalInvestment{}, econ.Domain(op, "total investment", "must be greater than zero")
	}
	fixedPct := fixedCapital / total * 100
	return CapitalInvestment{
		FixedCapital:          fixedCapital,
		WorkingCapital:        wc.Total,
		TotalInvestment:       total,
		FixedCapitalPercent:   fixedPct,
		WorkingCapitalPercent: 100 - fixedPct,
	}, nil
}

// Factors supplies industry-specific estimating configuration.
type Factors interface {
	LangFactor(industry string) (float64, bool)
	CostFactors(industry string) []CategoryFactor
	WorkingCapitalSplits() []WorkingCapitalSplit
}

// CapitalEstimate is a complete capital estimate for one industry.
type CapitalEstimate struct {
	Industry       string            `json:"industry"`
	Lang           LangResult        `json:"lang"`
	Breakdown      Breakdown         `json:"fixed_capital_breakdown"`
	WorkingCapital WorkingCapital    `json:"working_capital"`
	Investment     CapitalInvestment `json:"investment"`
}

// EstimateCapital derives fixed capital from the industry's Lang factor,
// itemises it with the industry's category factors and adds working capital
// sized from annual sales.
func EstimateCapital(equipmentCost float64, industry string, annualSales, wcFactor float64, factors Factors) (CapitalEstimate, error) {
	const op = "capital estimate"
	langFactor, ok := factors.LangFactor(industry)
	if !ok {
		return CapitalEstimate{}, econ.Domain(op, "industry", fmt.Sprintf("%q has no Lang factor", industry))
	}

	lang, err := LangFactorEstimate(equipmentCost, langFactor)
	if err != nil {
		return CapitalEstimate{}, err
	}
	breakdown, err := DetailedCostBreakdown(equipmentCost, factors.CostFactors(industry))
	if err != nil {
		return CapitalEstimate{}, err
	}
	wc, err := WorkingCapitalEstimate(annualSales, wcFactor, factors.WorkingCapitalSplits())
	if err != nil {
		return CapitalEstimate{}, err
	}
	investment, err := TotalCapitalInvestment(lang.TotalPlantCost, wc)
	if err != nil {
		return CapitalEstimate{}, err
	}

	return CapitalEstimate{
		Industry:       industry,
		Lang:           lang,
		Breakdown:      breakdown,
		WorkingCapital: wc,
		Investment:     investment,
	}, nil
}
