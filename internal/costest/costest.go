// Package costest estimates plant capital cost: Lang-factor scaling,
// capacity scaling, fixed-capital breakdown by category, working capital
// and total capital investment.
package costest

import (
	"fmt"
	"math"

	"github.com/Simplici0/plantecon/internal/econ"
)

// LangResult is a Lang-factor plant cost estimate.
type LangResult struct {
	EquipmentCost       float64 `json:"equipment_cost"`
	LangFactor          float64 `json:"lang_factor"`
	TotalPlantCost      float64 `json:"total_plant_cost"`
	InstallationCost    float64 `json:"installation_cost"`
	EquipmentPercent    float64 `json:"equipment_percent"`
	InstallationPercent float64 `json:"installation_percent"`
}

// LangFactorEstimate computes totalPlantCost = equipmentCost * langFactor.
// The factor must be at least 1, since installed cost cannot be below the
// equipment it contains.
func LangFactorEstimate(equipmentCost, langFactor float64) (LangResult, error) {
	const op = "lang factor estimate"
	if err := econ.RequirePositive(op, "equipment cost", equipmentCost); err != nil {
		return LangResult{}, err
	}
	if err := econ.RequireFinite(op, "lang factor", langFactor); err != nil {
		return LangResult{}, err
	}
	if langFactor < 1 {
		return LangResult{}, econ.Domain(op, "lang factor", "must be at least 1")
	}

	total := equipmentCost * langFactor
	installation := total - equipmentCost
	equipmentPct := equipmentCost / total * 100
	return LangResult{
		EquipmentCost:       equipmentCost,
		LangFactor:          langFactor,
		TotalPlantCost:      total,
		InstallationCost:    installation,
		EquipmentPercent:    equipmentPct,
		InstallationPercent: 100 - equipmentPct,
	}, nil
}

// ScalingResult is a capacity-scaled cost estimate.
type ScalingResult struct {
	BaseCost            float64     `json:"base_cost"`
	BaseCapacity        float64     `json:"base_capacity"`
	NewCapacity         float64     `json:"new_capacity"`
	Exponent            float64     `json:"exponent"`
	CapacityRatio       float64     `json:"capacity_ratio"`
	CostRatio           float64     `json:"cost_ratio"`
	NewCost             float64     `json:"new_cost"`
	CostPerUnitCapacity econ.Metric `json:"cost_per_unit_capacity"`
}

// ScalingLawCost applies newCost = baseCost * (newCapacity/baseCapacity)^exponent.
func ScalingLawCost(baseCost, baseCapacity, newCapacity, exponent float64) (ScalingResult, error) {
	const op = "scaling law cost"
	if err := econ.RequireNonNegative(op, "base cost", baseCost); err != nil {
		return ScalingResult{}, err
	}
	if err := econ.RequireNonNegative(op, "base capacity", baseCapacity); err != nil {
		return ScalingResult{}, err
	}
	if baseCapacity == 0 {
		return ScalingResult{}, econ.Domain(op, "base capacity", "must not be zero")
	}
	if err := econ.RequireNonNegative(op, "new capacity", newCapacity); err != nil {
		return ScalingResult{}, err
	}
	if err := econ.RequireFinite(op, "exponent", exponent); err != nil {
		return ScalingResult{}, err
	}

	if newCapacity == 0 && exponent < 0 {
		return ScalingResult{}, econ.Domain(op, "exponent", "must not be negative when new capacity is zero")
	}

	capacityRatio := newCapacity / baseCapacity
	costRatio := math.Pow(capacityRatio, exponent)
	newCost := baseCost * costRatio

	perUnit := econ.Undefined("new capacity is zero")
	if newCapacity > 0 {
		perUnit = econ.Defined(newCost / newCapacity)
	}

	return ScalingResult{
		BaseCost:            baseCost,
		BaseCapacity:        baseCapacity,
		NewCapacity:         newCapacity,
		Exponent:            exponent,
		CapacityRatio:       capacityRatio,
		CostRatio:           costRatio,
		NewCost:             newCost,
		CostPerUnitCapacity: perUnit,
	}, nil
}

// CategoryFactor is a fixed-capital category priced as a multiple of equipment cost.
type CategoryFactor struct {
	Category   string  `json:"category" yaml:"category"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// CategoryCost is one line of a fixed-capital breakdown.
type CategoryCost struct {
	Category   string  `json:"category"`
	Multiplier float64 `json:"multiplier"`
	Cost       float64 `json:"cost"`
	Percent    float64 `json:"percent"`
}

// Breakdown is a detailed fixed-capital estimate.
type Breakdown struct {
	EquipmentCost     float64        `json:"equipment_cost"`
	Categories        []CategoryCost `json:"categories"`
	TotalFixedCapital float64        `json:"total_fixed_capital"`
}

// CostsByCategory returns the cost of each category.
func (b Breakdown) CostsByCategory() map[string]float64 {
	out := make(map[string]float64, len(b.Categories))
	for _, c := range b.Categories {
		out[c.Category] = c.Cost
	}
	return out
}

// PercentagesByCategory returns each category's share of fixed capital.
func (b Breakdown) PercentagesByCategory() map[string]float64 {
	out := make(map[string]float64, len(b.Categories))
	for _, c := range b.Categories {
		out[c.Category] = c.Percent
	}
	return out
}

// ValidateCategoryFactors checks that factors name distinct categories with
// non-negative multipliers and a positive total.
func ValidateCategoryFactors(op string, factors []CategoryFactor) error {
	if len(factors) == 0 {
		return econ.Domain(op, "cost factors", "must list at least one category")
	}
	seen := make(map[string]bool, len(factors))
	sum := 0.0
	for _, f := range factors {
		if f.Category == "" {
			return econ.Domain(op, "cost factors", "category name is required")
		}
		if seen[f.Category] {
			return econ.Domain(op, "cost factors", fmt.Sprintf("category %q is listed twice", f.Category))
		}
		seen[f.Category] = true
		if err := econ.RequireNonNegative(op, "multiplier for "+f.Category, f.Multiplier); err != nil {
			return err
		}
		sum += f.Multiplier
	}
	if sum <= 0 {
		return econ.Domain(op, "cost factors", "multipliers must not all be zero")
	}
	return nil
}

// DetailedCostBreakdown prices each category as equipmentCost * multiplier.
// The multipliers are industry configuration supplied by the caller.
func DetailedCostBreakdown(equipmentCost float64, factors []CategoryFactor) (Breakdown, error) {
	const op = "detailed cost breakdown"
	if err := econ.RequirePositive(op, "equipment cost", equipmentCost); err != nil {
		return Breakdown{}, err
	}
	if err := ValidateCategoryFactors(op, factors); err != nil {
		return Breakdown{}, err
	}

	lines := make([]CategoryCost, len(factors))
	total := 0.0
	for i, f := range factors {
		cost := equipmentCost * f.Multiplier
		lines[i] = CategoryCost{Category: f.Category, Multiplier: f.Multiplier, Cost: cost}
		total += cost
	}
	for i := range lines {
		lines[i].Percent = lines[i].Cost / total * 100
	}

	return Breakdown{
		EquipmentCost:     equipmentCost,
		Categories:        lines,
		TotalFixedCapital: total,
	}, nil
}
