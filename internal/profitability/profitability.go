// Package profitability evaluates capital projects: net present value,
// internal rate of return, ROI, payback and an accept/reject summary.
package profitability

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// NPVResult is the net present value of a uniform annual cash flow.
type NPVResult struct {
	NPV                   float64 `json:"npv"`
	PresentValueOfInflows float64 `json:"present_value_of_inflows"`
	InitialInvestment     float64 `json:"initial_investment"`
	AnnualCashFlow        float64 `json:"annual_cash_flow"`
	DiscountRate          float64 `json:"discount_rate"`
	Life                  int     `json:"project_life"`
	PWFactor              float64 `json:"pw_factor"`
}

// NPVUniform discounts life equal end-of-year cash flows with the annuity factor.
func NPVUniform(annualCashFlow, rate float64, life int, initialInvestment float64) (NPVResult, error) {
	const op = "npv"
	if err := econ.RequireFinite(op, "annual cash flow", annualCashFlow); err != nil {
		return NPVResult{}, err
	}
	if err := econ.RequireNonNegative(op, "initial investment", initialInvestment); err != nil {
		return NPVResult{}, err
	}
	if err := econ.RequireRate(op, "discount rate", rate); err != nil {
		return NPVResult{}, err
	}
	if err := econ.RequirePeriods(op, "project life", life); err != nil {
		return NPVResult{}, err
	}

	factor, err := tvm.PresentWorthFactor(rate, life)
	if err != nil {
		return NPVResult{}, err
	}
	pv := annualCashFlow * factor
	return NPVResult{
		NPV:                   pv - initialInvestment,
		PresentValueOfInflows: pv,
		InitialInvestment:     initialInvestment,
		AnnualCashFlow:        annualCashFlow,
		DiscountRate:          rate,
		Life:                  life,
		PWFactor:              factor,
	}, nil
}

// ScheduleNPV is the net present value of a non-uniform cash-flow sequence.
type ScheduleNPV struct {
	NPV                   float64   `json:"npv"`
	PresentValueOfInflows float64   `json:"present_value_of_inflows"`
	InitialInvestment     float64   `json:"initial_investment"`
	DiscountRate          float64   `json:"discount_rate"`
	PresentValues         []float64 `json:"present_values"`
}

// NPVSchedule discounts cashFlows[i], received at the end of year i+1.
func NPVSchedule(cashFlows []float64, rate, initialInvestment float64) (ScheduleNPV, error) {
	const op = "npv schedule"
	if len(cashFlows) == 0 {
		return ScheduleNPV{}, econ.Domain(op, "cash flows", "must contain at least one year")
	}
	for i, cf := range cashFlows {
		if err := econ.RequireFinite(op, fmt.Sprintf("cash flow for year %d", i+1), cf); err != nil {
			return ScheduleNPV{}, err
		}
	}
	if err := econ.RequireNonNegative(op, "initial investment", initialInvestment); err != nil {
		return ScheduleNPV{}, err
	}
	if err := econ.RequireRate(op, "discount rate", rate); err != nil {
		return ScheduleNPV{}, err
	}

	pvs := make([]float64, len(cashFlows))
	for i, cf := range cashFlows {
		pvs[i] = cf * tvm.DiscountFactor(rate, i+1)
	}
	total := floats.Sum(pvs)
	return ScheduleNPV{
		NPV:                   total - initialInvestment,
		PresentValueOfInflows: total,
		InitialInvestment:     initialInvestment,
		DiscountRate:          rate,
		PresentValues:         pvs,
	}, nil
}

// ROI returns annualProfit as a percentage of totalInvestment, or 0 when
// there is no investment.
func ROI(annualProfit, totalInvestment float64) float64 {
	if totalInvestment == 0 {
		return 0
	}
	return annualProfit / totalInvestment * 100
}

// PaybackPeriod returns the years needed for annualCashFlow to recover
// initialInvestment. A zero cash flow never recovers it (infinite); a
// negative one moves away from recovery (undefined).
func PaybackPeriod(initialInvestment, annualCashFlow float64) (econ.Metric, error) {
	const op = "payback period"
	if err := econ.RequireNonNegative(op, "initial investment", initialInvestment); err != nil {
		return econ.Metric{}, err
	}
	if err := econ.RequireFinite(op, "annual cash flow", annualCashFlow); err != nil {
		return econ.Metric{}, err
	}
	switch {
	case initialInvestment == 0:
		return econ.Defined(0), nil
	case annualCashFlow == 0:
		return econ.Infinite("annual cash flow is zero"), nil
	case annualCashFlow < 0:
		return econ.Undefined("annual cash flow is negative, the investment is never recovered"), nil
	}
	return econ.Defined(initialInvestment / annualCashFlow), nil
}

// Project is a uniform cash-flow investment.
type Project struct {
	InitialInvestment float64 `json:"initial_investment"`
	AnnualCashFlow    float64 `json:"annual_cash_flow"`
	DiscountRate      float64 `json:"discount_rate"`
	Life              int     `json:"project_life"`
}

// CashFlowTable lists the project's cash flows with discount factors and
// running totals. Year 0 carries the initial outlay.
func CashFlowTable(p Project, opts econ.TableOptions) ([]econ.CashFlowRow, error) {
	const op = "cash flow table"
	if err := econ.RequireNonNegative(op, "initial investment", p.InitialInvestment); err != nil {
		return nil, err
	}
	if err := econ.RequireFinite(op, "annual cash flow", p.AnnualCashFlow); err != nil {
		return nil, err
	}
	if err := econ.RequireRate(op, "discount rate", p.DiscountRate); err != nil {
		return nil, err
	}
	if err := econ.RequirePeriods(op, "project life", p.Life); err != nil {
		return nil, err
	}

	n := p.Life + 1
	flows := make([]float64, n)
	factors := make([]float64, n)
	pvs := make([]float64, n)
	flows[0] = -p.InitialInvestment
	for year := 0; year < n; year++ {
		if year > 0 {
			flows[year] = p.AnnualCashFlow
		}
		factors[year] = tvm.DiscountFactor(p.DiscountRate, year)
		pvs[year] = flows[year] * factors[year]
	}
	cumPV := floats.CumSum(make([]float64, n), pvs)
	cumCF := floats.CumSum(make([]float64, n), flows)

	rows := make([]econ.CashFlowRow, 0, n)
	for year := 0; year < n; year++ {
		if year == 0 && !opts.IncludeYearZero {
			continue
		}
		rows = append(rows, econ.CashFlowRow{
			Year:                   year,
			CashFlow:               flows[year],
			DiscountFactor:         factors[year],
			PresentValue:           pvs[year],
			CumulativePresentValue: cumPV[year],
			CumulativeCashFlow:     cumCF[year],
		})
	}
	return rows, nil
}
