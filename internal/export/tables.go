package export

import (
	"sort"

	"github.com/Simplici0/plantecon/internal/breakeven"
	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/replacement"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// metricCell writes a defined metric as a number and anything else as its state.
func metricCell(m econ.Metric) any {
	if v, ok := m.Float(); ok {
		return v
	}
	return string(m.State)
}

// DepreciationSheet lists a depreciation schedule.
func DepreciationSheet(name string, rows []econ.YearRow) Sheet {
	s := Sheet{Name: name, Header: []string{"Year", "Annual Amount", "Cumulative Amount", "Book Value"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Year, r.Annual, r.Cumulative, r.BookValue})
	}
	return s
}

// CashFlowSheet lists a discounted cash-flow table.
func CashFlowSheet(name string, rows []econ.CashFlowRow) Sheet {
	s := Sheet{Name: name, Header: []string{"Year", "Cash Flow", "Discount Factor", "Present Value", "Cumulative PV", "Cumulative Cash Flow"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Year, r.CashFlow, r.DiscountFactor, r.PresentValue, r.CumulativePresentValue, r.CumulativeCashFlow})
	}
	return s
}

// GrowthSheet lists a value growth table.
func GrowthSheet(name string, rows []tvm.GrowthRow) Sheet {
	s := Sheet{Name: name, Header: []string{"Year", "Value", "Interest Earned"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Year, r.Value, r.InterestEarned})
	}
	return s
}

// SensitivitySheet lists every sensitivity point, one row per parameter and change.
func SensitivitySheet(name string, res breakeven.SensitivityResult) Sheet {
	s := Sheet{Name: name, Header: []string{"Parameter", "Change %", "Value", "Profit", "Break-even Units"}}
	for _, p := range breakeven.Parameters {
		for _, pt := range res.Series[p] {
			s.Rows = append(s.Rows, []any{string(p), pt.ChangePercent, pt.Value, pt.Profit, metricCell(pt.BreakevenUnits)})
		}
	}
	return s
}

// CurveSheet lists the cost-volume-profit chart points.
func CurveSheet(name string, points []breakeven.CurvePoint) Sheet {
	s := Sheet{Name: name, Header: []string{"Volume", "Revenue", "Fixed Cost", "Variable Cost", "Total Cost", "Profit"}}
	for _, p := range points {
		s.Rows = append(s.Rows, []any{p.Volume, p.Revenue, p.FixedCost, p.VariableCost, p.TotalCost, p.Profit})
	}
	return s
}

// EconomicLifeSheet lists the equivalent annual cost of each candidate life.
func EconomicLifeSheet(name string, rows []replacement.LifeRow) Sheet {
	s := Sheet{Name: name, Header: []string{"Year", "PW Costs", "PW Salvage", "Total PW", "EAC"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Year, r.PresentWorthCosts, r.PresentWorthSalvage, r.TotalPresentWorth, r.EquivalentAnnualCost})
	}
	return s
}

// TimingSheet lists the present worth of each replacement year.
func TimingSheet(name string, opts []replacement.TimingOption) Sheet {
	s := Sheet{Name: name, Header: []string{"Replace After", "Old Salvage", "PW Old Costs", "PW Investment", "PW New Costs", "PW New Salvage", "Total PW"}}
	for _, o := range opts {
		s.Rows = append(s.Rows, []any{o.ReplaceAfterYears, o.OldSalvage, o.PresentWorthOldCosts, o.PresentWorthInvestment, o.PresentWorthNewCosts, o.PresentWorthNewSalvage, o.TotalPresentWorth})
	}
	return s
}

// SummarySheet lists scalar inputs and results as name/value pairs.
func SummarySheet(name string, inputs econ.Inputs, results map[string]string) Sheet {
	s := Sheet{Name: name, Header: []string{"Item", "Value"}}
	for _, k := range inputs.Keys() {
		s.Rows = append(s.Rows, []any{k, inputs[k]})
	}
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.Rows = append(s.Rows, []any{k, results[k]})
	}
	return s
}
