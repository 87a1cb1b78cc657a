package replacement

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

func TestAnalyzeRecommendsReplace(t *testing.T) {
	c := Comparison{
		OldAnnualCost:  50000,
		OldSalvage:     10000,
		NewCost:        100000,
		NewAnnualCost:  20000,
		NewSalvage:     10000,
		NewLife:        10,
		Rate:           0.10,
		AnalysisPeriod: 10,
	}
	a, err := Analyze(c)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	factor := (1 - math.Pow(1.1, -10)) / 0.1
	nearlyEqual(t, "pw old", a.PresentWorthOld, 50000*factor)
	nearlyEqual(t, "pw new", a.PresentWorthNew, 90000+20000*factor-10000/math.Pow(1.1, 10))
	nearlyEqual(t, "net savings", a.NetSavings, a.PresentWorthOld-a.PresentWorthNew)
	nearlyEqual(t, "net investment", a.NetInvestment, 90000)
	nearlyEqual(t, "annual savings", a.AnnualSavings, 30000)
	nearlyEqual(t, "eac old", a.EquivalentAnnualCostOld, 50000)
	if a.Recommendation != Replace {
		t.Fatalf("recommendation = %s, want Replace", a.Recommendation)
	}
}

func TestAnalyzeKeepsOnZeroSavings(t *testing.T) {
	a, err := Analyze(Comparison{OldSalvage: 500, NewCost: 500, NewLife: 5, AnalysisPeriod: 5})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.NetSavings != 0 || a.Recommendation != Keep {
		t.Fatalf("expected Keep at zero savings, got %+v", a)
	}
}

func TestAnalyzeZeroRate(t *testing.T) {
	a, err := Analyze(Comparison{OldAnnualCost: 100, NewCost: 300, NewAnnualCost: 40, NewLife: 5, AnalysisPeriod: 5})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	nearlyEqual(t, "pw old", a.PresentWorthOld, 500)
	nearlyEqual(t, "pw new", a.PresentWorthNew, 500)
	nearlyEqual(t, "eac new", a.EquivalentAnnualCostNew, 100)
}

func TestAnalyzeRejects(t *testing.T) {
	bad := []Comparison{
		{NewLife: 0, AnalysisPeriod: 5},
		{NewLife: 5, AnalysisPeriod: 0},
		{NewLife: 5, AnalysisPeriod: 5, Rate: -0.1},
		{NewLife: 5, AnalysisPeriod: 5, NewCost: -1},
	}
	for _, c := range bad {
		if _, err := Analyze(c); !errors.Is(err, econ.ErrDomain) {
			t.Fatalf("%+v: expected domain error, got %v", c, err)
		}
	}
}

func TestEconomicLife(t *testing.T) {
	salvage := []float64{7000, 5000, 3500, 2500, 1800}
	costs := []float64{1000, 1500, 2200, 3000, 4000}
	r, err := EconomicLife(10000, salvage, costs, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.OptimalLife != 3 {
		t.Fatalf("optimal life = %d, want 3", r.OptimalLife)
	}
	nearlyEqual(t, "minimum eac", r.MinimumEAC, 11200.0/3)
	nearlyEqual(t, "year 1 eac", r.Table[0].EquivalentAnnualCost, 4000)
}

func TestEconomicLifeIsExhaustiveMinimum(t *testing.T) {
	salvage := []float64{80000, 65000, 52000, 41000, 32000, 25000, 19000, 14000}
	costs := []float64{5000, 6500, 8000, 10000, 12500, 15500, 19000, 23000}
	for _, rate := range []float64{0, 0.05, 0.12, 0.3} {
		r, err := EconomicLife(100000, salvage, costs, rate)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		for _, row := range r.Table {
			if r.MinimumEAC > row.EquivalentAnnualCost {
				t.Fatalf("rate %v: chosen eac %v above year %d eac %v", rate, r.MinimumEAC, row.Year, row.EquivalentAnnualCost)
			}
		}
		if r.Table[r.OptimalLife-1].EquivalentAnnualCost != r.MinimumEAC {
			t.Fatalf("rate %v: optimal life does not match minimum", rate)
		}
	}
}

func TestEconomicLifeTiesPickShortest(t *testing.T) {
	r, err := EconomicLife(0, []float64{0, 0, 0}, []float64{100, 100, 100}, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.OptimalLife != 1 {
		t.Fatalf("optimal life = %d, want 1", r.OptimalLife)
	}
}

func TestEconomicLifeRejectsMismatchedInputs(t *testing.T) {
	if _, err := EconomicLife(1000, []float64{1}, []float64{1, 2}, 0.1); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if _, err := EconomicLife(1000, nil, nil, 0.1); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for empty costs, got %v", err)
	}
}

func TestTiming(t *testing.T) {
	s := TimingStudy{
		MaxLife:        3,
		CurrentSalvage: 1000,
		OldAnnualCosts: []float64{100, 200, 5000},
		NewCost:        3000,
		NewAnnualCosts: []float64{50, 50},
	}
	r, err := Timing(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(r.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(r.Options))
	}
	nearlyEqual(t, "replace now", r.Options[0].TotalPresentWorth, 2100)
	nearlyEqual(t, "replace after 1", r.Options[1].TotalPresentWorth, 2300)
	nearlyEqual(t, "salvage after 2", r.Options[2].OldSalvage, 810)
	if r.OptimalReplacementYear != 0 {
		t.Fatalf("optimal year = %d, want 0", r.OptimalReplacementYear)
	}
	if len(r.Defaults) != 1 || r.Defaults[0].Parameter != "salvage_decay" || r.SalvageDecay != DefaultSalvageDecay {
		t.Fatalf("expected salvage decay default, got %+v", r.Defaults)
	}
}

func TestTimingDefersWhenMoneyIsExpensive(t *testing.T) {
	s := TimingStudy{
		MaxLife:        4,
		OldAnnualCosts: []float64{10, 10, 10, 10},
		NewCost:        10000,
		NewAnnualCosts: []float64{10, 10, 10},
		Rate:           0.2,
		SalvageDecay:   econ.Some(0),
	}
	r, err := Timing(s)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, opt := range r.Options {
		if opt.TotalPresentWorth < r.MinimumPresentWorth {
			t.Fatalf("option %d cheaper than chosen", opt.ReplaceAfterYears)
		}
	}
	if r.OptimalReplacementYear != 4 {
		t.Fatalf("optimal year = %d, want 4", r.OptimalReplacementYear)
	}
	if len(r.Defaults) != 0 {
		t.Fatalf("expected no defaults, got %+v", r.Defaults)
	}
}

func TestTimingRejects(t *testing.T) {
	if _, err := Timing(TimingStudy{MaxLife: 3, OldAnnualCosts: []float64{1}, NewAnnualCosts: []float64{1}}); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for short old costs, got %v", err)
	}
	s := TimingStudy{MaxLife: 0, NewAnnualCosts: []float64{1}, SalvageDecay: econ.Some(1)}
	if _, err := Timing(s); !errors.Is(err, econ.ErrDomain) {
		t.Fatalf("expected domain error for full decay, got %v", err)
	}
}
