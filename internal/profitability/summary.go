package profitability

import (
	"github.com/Simplici0/plantecon/internal/econ"
)

// Decision is an accept/reject verdict on one metric.
type Decision string

const (
	Accept Decision = "Accept"
	Reject Decision = "Reject"
)

func decide(ok bool) Decision {
	if ok {
		return Accept
	}
	return Reject
}

// DecisionPolicy holds the thresholds behind the summary verdicts.
type DecisionPolicy struct {
	// NPVThreshold: accept when NPV is strictly above it.
	NPVThreshold float64
	// IRRHurdle: accept when IRR is strictly above it. Defaults to the discount rate.
	IRRHurdle econ.Param
	// PaybackFraction: accept when payback is at most this share of project life.
	PaybackFraction float64
}

// DefaultPolicy accepts positive NPV, IRR above the discount rate and payback
// within half the project life.
var DefaultPolicy = DecisionPolicy{NPVThreshold: 0, PaybackFraction: 0.5}

// Summary is a complete profitability evaluation of a Project.
type Summary struct {
	Project
	ROIPercent            float64                     `json:"roi_percent"`
	Payback               econ.Metric                 `json:"payback_period"`
	NPV                   float64                     `json:"npv"`
	PresentValueOfInflows float64                     `json:"present_value_of_inflows"`
	IRR                   econ.Metric                 `json:"irr"`
	IRRPercent            econ.Metric                 `json:"irr_percent"`
	NPVDecision           Decision                    `json:"npv_decision"`
	IRRDecision           Decision                    `json:"irr_decision"`
	PaybackDecision       Decision                    `json:"payback_decision"`
	IRRHurdle             float64                     `json:"irr_hurdle"`
	PaybackLimit          float64                     `json:"payback_limit"`
	TotalCashInflow       float64                     `json:"total_cash_inflow"`
	NetProfit             float64                     `json:"net_profit"`
	Defaults              []econ.ConfigurationDefault `json:"defaults,omitempty"`
	Table                 []econ.CashFlowRow          `json:"cash_flow_table"`
}

// Summarize computes every metric for p and judges it against policy.
func Summarize(p Project, policy DecisionPolicy, opts econ.TableOptions) (Summary, error) {
	npv, err := NPVUniform(p.AnnualCashFlow, p.DiscountRate, p.Life, p.InitialInvestment)
	if err != nil {
		return Summary{}, err
	}
	irr, err := IRRUniform(p.AnnualCashFlow, p.Life, p.InitialInvestment)
	if err != nil {
		return Summary{}, err
	}
	payback, err := PaybackPeriod(p.InitialInvestment, p.AnnualCashFlow)
	if err != nil {
		return Summary{}, err
	}
	table, err := CashFlowTable(p, opts)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Project:               p,
		ROIPercent:            ROI(p.AnnualCashFlow, p.InitialInvestment),
		Payback:               payback,
		NPV:                   npv.NPV,
		PresentValueOfInflows: npv.PresentValueOfInflows,
		IRR:                   irr,
		IRRPercent:            irr.Scale(100),
		TotalCashInflow:       p.AnnualCashFlow * float64(p.Life),
		Table:                 table,
	}
	s.NetProfit = s.TotalCashInflow - p.InitialInvestment

	hurdle, def := policy.IRRHurdle.Resolve("irr_hurdle", "discount rate", p.DiscountRate)
	if def != nil {
		s.Defaults = append(s.Defaults, *def)
	}
	s.IRRHurdle = hurdle
	s.PaybackLimit = policy.PaybackFraction * float64(p.Life)

	s.NPVDecision = decide(npv.NPV > policy.NPVThreshold)
	rate, ok := irr.Float()
	s.IRRDecision = decide(ok && rate > hurdle)
	years, ok := payback.Float()
	s.PaybackDecision = decide(ok && years <= s.PaybackLimit)
	return s, nil
}
