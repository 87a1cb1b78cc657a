package costest

import (
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/plantecon/internal/econ"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

var standardFactors = []CategoryFactor{
	{Category: "Equipment", Multiplier: 1.0},
	{Category: "Installation", Multiplier: 0.5},
	{Category: "Buildings", Multiplier: 0.3},
	{Category: "Utilities", Multiplier: 0.2},
	{Category: "Engineering", Multiplier: 0.3},
}

var standardSplits = []WorkingCapitalSplit{
	{Component: "Raw Materials", Fraction: 0.4},
	{Component: "Finished Goods", Fraction: 0.3},
	{Component: "Accounts Receivable", Fraction: 0.2},
	{Component: "Cash", Fraction: 0.1},
}

func TestLangFactorEstimate(t *testing.T) {
	r, err := LangFactorEstimate(1_000_000, 4.8)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "total", r.TotalPlantCost, 4_800_000)
	nearlyEqual(t, "installation", r.InstallationCost, 3_800_000)
	nearlyEqual(t, "percent sum", r.EquipmentPercent+r.InstallationPercent, 100)

	unit, err := LangFactorEstimate(250, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "installation at factor 1", unit.InstallationCost, 0)
}

func TestLangFactorEstimateRejects(t *testing.T) {
	cases := []struct {
		equipment, factor float64
	}{
		{0, 4},
		{-10, 4},
		{1000, 0.9},
		{1000, math.NaN()},
	}
	for _, tc := range cases {
		if _, err := LangFactorEstimate(tc.equipment, tc.factor); !errors.Is(err, econ.ErrDomain) {
			t.Fatalf("LangFactorEstimate(%v, %v) err = %v, want domain error", tc.equipment, tc.factor, err)
		}
	}
}

func TestScalingLawCost(t *testing.T) {
	r, err := ScalingLawCost(500000, 1000, 1500, 0.6)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "capacity ratio", r.CapacityRatio, 1.5)
	nearlyEqual(t, "cost ratio", r.CostRatio, math.Pow(1.5, 0.6))
	nearlyEqual(t, "new cost", r.NewCost, 500000*math.Pow(1.5, 0.6))
	perUnit, ok := r.CostPerUnitCapacity.Float()
	if !ok {
		t.Fatalf("expected defined cost per unit")
	}
	nearlyEqual(t, "cost per unit", perUnit, r.NewCost/1500)
}

func TestScalingLawSameCapacityKeepsCost(t *testing.T) {
	for _, exp := range []float64{0.5, 0.6, 0.8, 1} {
		r, err := ScalingLawCost(123456, 40, 40, exp)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		nearlyEqual(t, "new cost", r.NewCost, 123456)
	}
}

func TestScalingLawZeroNewCapacity(t *testing.T) {
	r, err := ScalingLawCost(1000, 10, 0, 0.6)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.CostPerUnitCapacity.State != econ.StateUndefined {
		t.Fatalf("expected undefined cost per unit, got %+v", r.CostPerUnitCapacity)
	}
}

func TestScalingLawRejects(t *testing.T) {
	if _, err := ScalingLawCost(1000, 0, 10, 0.6); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for zero base capacity, got %v", err)
	}
	if _, err := ScalingLawCost(1000, 10, -1, 0.6); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for negative capacity, got %v", err)
	}
}

func TestDetailedCostBreakdown(t *testing.T) {
	b, err := DetailedCostBreakdown(1_000_000, standardFactors)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "total", b.TotalFixedCapital, 2_300_000)

	sum, pct := 0.0, 0.0
	for _, c := range b.Categories {
		sum += c.Cost
		pct += c.Percent
	}
	nearlyEqual(t, "sum of costs", sum, b.TotalFixedCapital)
	nearlyEqual(t, "sum of percents", pct, 100)

	if b.Categories[0].Category != "Equipment" || b.Categories[4].Category != "Engineering" {
		t.Fatalf("category order not preserved: %+v", b.Categories)
	}
	nearlyEqual(t, "installation", b.CostsByCategory()["Installation"], 500_000)
	nearlyEqual(t, "buildings percent", b.PercentagesByCategory()["Buildings"], 0.3/2.3*100)
}

func TestDetailedCostBreakdownRejectsBadFactors(t *testing.T) {
	bad := [][]CategoryFactor{
		nil,
		{{Category: "Equipment", Multiplier: -1}},
		{{Category: "Equipment", Multiplier: 1}, {Category: "Equipment", Multiplier: 0.5}},
		{{Category: "Equipment", Multiplier: 0}},
	}
	for _, factors := range bad {
		if _, err := DetailedCostBreakdown(1000, factors); !errors.Is(err, econ.ErrDomain) {
			t.Fatalf("factors %+v: expected domain error, got %v", factors, err)
		}
	}
}

func TestWorkingCapitalEstimate(t *testing.T) {
	wc, err := WorkingCapitalEstimate(2_000_000, 0.15, standardSplits)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "total", wc.Total, 300_000)
	nearlyEqual(t, "raw materials", wc.Components[0].Amount, 120_000)

	sum := 0.0
	for _, c := range wc.Components {
		sum += c.Amount
	}
	nearlyEqual(t, "component sum", sum, wc.Total)
}

func TestWorkingCapitalSplitsMustSumToOne(t *testing.T) {
	splits := []WorkingCapitalSplit{{Component: "Cash", Fraction: 0.5}, {Component: "Stock", Fraction: 0.4}}
	if _, err := WorkingCapitalEstimate(1000, 0.1, splits); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error, got %v", err)
	}
}

func TestTotalCapitalInvestment(t *testing.T) {
	b, _ := DetailedCostBreakdown(1_000_000, standardFactors)
	wc, _ := WorkingCapitalEstimate(2_000_000, 0.15, standardSplits)

	inv, err := TotalCapitalInvestment(b.TotalFixedCapital, wc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if inv.FixedCapital+inv.WorkingCapital != inv.TotalInvestment {
		t.Fatalf("fixed %v + working %v != total %v", inv.FixedCapital, inv.WorkingCapital, inv.TotalInvestment)
	}
	nearlyEqual(t, "total", inv.TotalInvestment, 2_600_000)
	nearlyEqual(t, "percent sum", inv.FixedCapitalPercent+inv.WorkingCapitalPercent, 100)

	if _, err := TotalCapitalInvestment(0, WorkingCapital{}); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for zero investment, got %v", err)
	}
}

type fakeFactors map[string]float64

func (f fakeFactors) LangFactor(industry string) (float64, bool) {
	v, ok := f[industry]
	return v, ok
}

func (fakeFactors) CostFactors(string) []CategoryFactor { return standardFactors }

func (fakeFactors) WorkingCapitalSplits() []WorkingCapitalSplit { return standardSplits }

func TestEstimateCapital(t *testing.T) {
	factors := fakeFactors{"Fluid Processing": 4.8}

	est, err := EstimateCapital(1_000_000, "Fluid Processing", 2_000_000, 0.15, factors)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "fixed capital", est.Investment.FixedCapital, 4_800_000)
	nearlyEqual(t, "total investment", est.Investment.TotalInvestment, 5_100_000)
	nearlyEqual(t, "breakdown total", est.Breakdown.TotalFixedCapital, 2_300_000)

	if _, err := EstimateCapital(1_000_000, "Unknown", 2_000_000, 0.15, factors); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for unknown industry, got %v", err)
	}
}
