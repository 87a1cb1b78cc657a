package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Simplici0/plantecon/internal/breakeven"
	"github.com/Simplici0/plantecon/internal/catalog"
	"github.com/Simplici0/plantecon/internal/costest"
	"github.com/Simplici0/plantecon/internal/depreciation"
	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/export"
	"github.com/Simplici0/plantecon/internal/narrative"
	"github.com/Simplici0/plantecon/internal/profitability"
	"github.com/Simplici0/plantecon/internal/replacement"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// calcOutcome is what a calculator produces from one form submission.
type calcOutcome struct {
	Kind   string
	Title  string
	Result any
	Sheets []export.Sheet
}

type calculator struct {
	Name  string
	Title string
	Topic narrative.Topic
	// Catalog marks forms that offer industry and equipment choices.
	Catalog  bool
	Defaults func(s *server) url.Values
	Run      func(s *server, f *formReader) (calcOutcome, error)
}

var calculators = []calculator{
	{Name: "interest", Title: "Interest & time value", Topic: narrative.Interest, Defaults: interestDefaults, Run: runInterest},
	{Name: "depreciation", Title: "Depreciation", Topic: narrative.Depreciation, Defaults: depreciationDefaults, Run: runDepreciation},
	{Name: "cost", Title: "Cost estimation", Topic: narrative.CostEstimation, Catalog: true, Defaults: costDefaults, Run: runCost},
	{Name: "profitability", Title: "Profitability", Topic: narrative.Profitability, Defaults: profitabilityDefaults, Run: runProfitability},
	{Name: "breakeven", Title: "Break-even", Topic: narrative.Breakeven, Defaults: breakevenDefaults, Run: runBreakeven},
	{Name: "replacement", Title: "Replacement", Topic: narrative.Replacement, Defaults: replacementDefaults, Run: runReplacement},
}

func lookupCalculator(name string) (calculator, bool) {
	for _, c := range calculators {
		if c.Name == name {
			return c, true
		}
	}
	return calculator{}, false
}

func calculatorForTopic(topic narrative.Topic) (calculator, bool) {
	for _, c := range calculators {
		if c.Topic == topic {
			return c, true
		}
	}
	return calculator{}, false
}

// runCalculator reads r's form through calc. Malformed numbers come back as
// *inputError and core precondition failures as econ.ErrDomain.
func (s *server) runCalculator(calc calculator, r *http.Request) (calcOutcome, econ.Inputs, error) {
	f := newFormReader(r)
	out, err := calc.Run(s, f)
	if err != nil {
		return calcOutcome{}, nil, err
	}
	if out.Title == "" {
		out.Title = calc.Title
	}
	if title := f.raw("title"); title != "" {
		out.Title = title
	}
	return out, f.Inputs, nil
}

// statusFor maps a calculation error to the response status.
func statusFor(err error) int {
	var inErr *inputError
	switch {
	case errors.As(err, &inErr):
		return http.StatusBadRequest
	case errors.Is(err, econ.ErrDomain):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func interestDefaults(s *server) url.Values {
	return url.Values{
		"principal":   {"10000"},
		"rate":        {formatFloat(s.defaultRate)},
		"periods":     {strconv.Itoa(s.defaultLife)},
		"growth_mode": {string(tvm.ModeCompound)},
	}
}

type interestResult struct {
	Simple              tvm.SimpleResult   `json:"simple"`
	Compound            tvm.CompoundResult `json:"compound"`
	PresentWorthFactor  float64            `json:"present_worth_factor"`
	FutureWorthFactor   float64            `json:"future_worth_factor"`
	PresentWorth        *float64           `json:"present_worth,omitempty"`
	AnnuityPresentWorth *float64           `json:"annuity_present_worth,omitempty"`
	AnnuityFutureWorth  *float64           `json:"annuity_future_worth,omitempty"`
	GrowthMode          tvm.Mode           `json:"growth_mode"`
	Growth              []tvm.GrowthRow    `json:"growth_table"`
}

func runInterest(_ *server, f *formReader) (calcOutcome, error) {
	principal := f.float("principal")
	rate := f.percent("rate")
	periods := f.integer("periods")
	futureValue := f.optionalFloat("future_value")
	payment := f.optionalFloat("payment")
	mode := tvm.Mode(f.choice("growth_mode", string(tvm.ModeCompound),
		string(tvm.ModeSimple), string(tvm.ModeCompound), string(tvm.ModeAnnuity)))
	if _, ok := payment.Get(); mode == tvm.ModeAnnuity && !ok {
		f.fail("payment is required for an annuity growth table")
	}
	if err := f.err(); err != nil {
		return calcOutcome{}, err
	}

	var res interestResult
	var err error
	if res.Simple, err = tvm.SimpleInterest(principal, rate, periods); err != nil {
		return calcOutcome{}, err
	}
	if res.Compound, err = tvm.CompoundInterest(principal, rate, periods); err != nil {
		return calcOutcome{}, err
	}
	if res.PresentWorthFactor, err = tvm.PresentWorthFactor(rate, periods); err != nil {
		return calcOutcome{}, err
	}
	if res.FutureWorthFactor, err = tvm.FutureWorthFactor(rate, periods); err != nil {
		return calcOutcome{}, err
	}
	if fv, ok := futureValue.Get(); ok {
		pw, err := tvm.PresentWorth(fv, rate, periods)
		if err != nil {
			return calcOutcome{}, err
		}
		res.PresentWorth = &pw
	}
	amount := principal
	if a, ok := payment.Get(); ok {
		apw, err := tvm.AnnuityPresentWorth(a, rate, periods)
		if err != nil {
			return calcOutcome{}, err
		}
		afw, err := tvm.AnnuityFutureWorth(a, rate, periods)
		if err != nil {
			return calcOutcome{}, err
		}
		res.AnnuityPresentWorth, res.AnnuityFutureWorth = &apw, &afw
		if mode == tvm.ModeAnnuity {
			amount = a
		}
	}
	res.GrowthMode = mode
	if res.Growth, err = tvm.GrowthTable(mode, amount, rate, periods); err != nil {
		return calcOutcome{}, err
	}

	return calcOutcome{
		Kind:   "interest",
		Result: res,
		Sheets: []export.Sheet{export.GrowthSheet("Growth", res.Growth)},
	}, nil
}

func depreciationDefaults(s *server) url.Values {
	return url.Values{
		"method":    {string(depreciation.StraightLineMethod)},
		"cost":      {"100000"},
		"salvage":   {"10000"},
		"life":      {strconv.Itoa(s.defaultLife)},
		"timing":    {string(depreciation.DepositThenCompound)},
		"year_zero": {"1"},
	}
}

func runDepreciation(s *server, f *formReader) (calcOutcome, error) {
	methods := make([]string, len(depreciation.Methods))
	for i, m := range depreciation.Methods {
		methods[i] = string(m)
	}
	req := depreciation.Request{
		Method: depreciation.Method(f.choice("method", string(depreciation.StraightLineMethod), methods...)),
		Asset: depreciation.Asset{
			Cost:    f.float("cost"),
			Salvage: f.float("salvage"),
			Life:    f.integer("life"),
		},
		Rate: f.optionalPercent("rate"),
		Timing: depreciation.DepositTiming(f.choice("timing", string(depreciation.DepositThenCompound),
			string(depreciation.DepositThenCompound), string(depreciation.DepositEndOfYear))),
	}
	cfg := depreciation.Config{
		Table:                  econ.TableOptions{IncludeYearZero: f.flag("year_zero", true)},
		DefaultSinkingFundRate: s.defaultRate / 100,
	}
	if err := f.err(); err != nil {
		return calcOutcome{}, err
	}

	sched, err := depreciation.Calculate(req, cfg)
	if err != nil {
		return calcOutcome{}, err
	}
	return calcOutcome{
		Kind:   "depreciation/" + string(req.Method),
		Result: sched,
		Sheets: []export.Sheet{export.DepreciationSheet("Schedule", sched.Table)},
	}, nil
}

func costDefaults(s *server) url.Values {
	return url.Values{
		"mode":           {"lang"},
		"equipment_cost": {"1000000"},
		"base_cost":      {"500000"},
		"base_capacity":  {"1000"},
		"new_capacity":   {"1500"},
		"annual_sales":   {"2000000"},
		"wc_factor":      {"15"},
	}
}

type costResult struct {
	Mode     string                      `json:"mode"`
	Industry string                      `json:"industry,omitempty"`
	Lang     *costest.LangResult         `json:"lang,omitempty"`
	Scaling  *costest.ScalingResult      `json:"scaling,omitempty"`
	Capital  *costest.CapitalEstimate    `json:"capital,omitempty"`
	Defaults []econ.ConfigurationDefault `json:"defaults,omitempty"`
}

func runCost(s *server, f *formReader) (calcOutcome, error) {
	cat, err := s.loadCatalog(f.r.Context())
	if err != nil {
		return calcOutcome{}, err
	}

	mode := f.choice("mode", "lang", "lang", "scaling", "capital")
	res := costResult{Mode: mode}
	var sheets []export.Sheet

	switch mode {
	case "lang":
		equipment := f.float("equipment_cost")
		industry := pick(f.raw("industry"), cat.DefaultIndustry())
		factor := f.optionalFloat("lang_factor")
		if err := f.err(); err != nil {
			return calcOutcome{}, err
		}
		lf, ok := factor.Get()
		if !ok {
			if lf, ok = cat.LangFactor(industry); !ok {
				return calcOutcome{}, econ.Domain("lang factor estimate", "industry", fmt.Sprintf("%q has no Lang factor", industry))
			}
			res.Defaults = append(res.Defaults, econ.ConfigurationDefault{
				Parameter: "lang_factor", Rule: "catalog factor for " + industry, Value: lf,
			})
		}
		lang, err := costest.LangFactorEstimate(equipment, lf)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Industry, res.Lang = industry, &lang

	case "scaling":
		baseCost := f.float("base_cost")
		baseCapacity := f.float("base_capacity")
		newCapacity := f.float("new_capacity")
		equipment := pick(f.raw("equipment"), cat.DefaultEquipment())
		exponent := f.optionalFloat("exponent")
		if err := f.err(); err != nil {
			return calcOutcome{}, err
		}
		exp, ok := exponent.Get()
		if !ok {
			if exp, ok = cat.ScalingExponent(equipment); !ok {
				return calcOutcome{}, econ.Domain("scaling law cost", "equipment", fmt.Sprintf("%q has no scaling exponent", equipment))
			}
			res.Defaults = append(res.Defaults, econ.ConfigurationDefault{
				Parameter: "exponent", Rule: "catalog exponent for " + equipment, Value: exp,
			})
		}
		scaled, err := costest.ScalingLawCost(baseCost, baseCapacity, newCapacity, exp)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Scaling = &scaled

	case "capital":
		equipment := f.float("equipment_cost")
		industry := pick(f.raw("industry"), cat.DefaultIndustry())
		sales := f.float("annual_sales")
		wcFactor := f.percent("wc_factor")
		if err := f.err(); err != nil {
			return calcOutcome{}, err
		}
		est, err := costest.EstimateCapital(equipment, industry, sales, wcFactor, cat)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Industry, res.Capital = industry, &est
		sheets = append(sheets, breakdownSheet(est.Breakdown), workingCapitalSheet(est.WorkingCapital))
	}

	return calcOutcome{Kind: "cost/" + mode, Result: res, Sheets: sheets}, nil
}

func breakdownSheet(b costest.Breakdown) export.Sheet {
	sheet := export.Sheet{Name: "Fixed Capital", Header: []string{"Category", "Multiplier", "Cost", "Percent"}}
	for _, c := range b.Categories {
		sheet.Rows = append(sheet.Rows, []any{c.Category, c.Multiplier, c.Cost, c.Percent})
	}
	sheet.Rows = append(sheet.Rows, []any{"Total", nil, b.TotalFixedCapital, 100.0})
	return sheet
}

func workingCapitalSheet(wc costest.WorkingCapital) export.Sheet {
	sheet := export.Sheet{Name: "Working Capital", Header: []string{"Component", "Fraction", "Amount"}}
	for _, c := range wc.Components {
		sheet.Rows = append(sheet.Rows, []any{c.Component, c.Fraction, c.Amount})
	}
	sheet.Rows = append(sheet.Rows, []any{"Total", 1.0, wc.Total})
	return sheet
}

func profitabilityDefaults(s *server) url.Values {
	return url.Values{
		"initial_investment": {"1000000"},
		"annual_cash_flow":   {"200000"},
		"discount_rate":      {formatFloat(s.defaultRate)},
		"project_life":       {strconv.Itoa(s.defaultLife)},
		"year_zero":          {"1"},
	}
}

type profitabilityResult struct {
	profitability.Summary
	Schedule    *profitability.ScheduleNPV `json:"schedule_npv,omitempty"`
	ScheduleIRR *econ.Metric               `json:"schedule_irr,omitempty"`
}

func runProfitability(_ *server, f *formReader) (calcOutcome, error) {
	project := profitability.Project{
		InitialInvestment: f.float("initial_investment"),
		AnnualCashFlow:    f.float("annual_cash_flow"),
		DiscountRate:      f.percent("discount_rate"),
		Life:              f.integer("project_life"),
	}
	policy := profitability.DefaultPolicy
	if v, ok := f.optionalFloat("npv_threshold").Get(); ok {
		policy.NPVThreshold = v
	}
	policy.IRRHurdle = f.optionalPercent("irr_hurdle")
	if v, ok := f.optionalPercent("payback_limit").Get(); ok {
		policy.PaybackFraction = v
	}
	opts := econ.TableOptions{IncludeYearZero: f.flag("year_zero", true)}
	flows := f.list("cash_flows", false)
	if err := f.err(); err != nil {
		return calcOutcome{}, err
	}

	summary, err := profitability.Summarize(project, policy, opts)
	if err != nil {
		return calcOutcome{}, err
	}
	res := profitabilityResult{Summary: summary}
	if len(flows) > 0 {
		npv, err := profitability.NPVSchedule(flows, project.DiscountRate, project.InitialInvestment)
		if err != nil {
			return calcOutcome{}, err
		}
		irr, err := profitability.IRRSchedule(flows, project.InitialInvestment)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Schedule, res.ScheduleIRR = &npv, &irr
	}

	return calcOutcome{
		Kind:   "profitability",
		Result: res,
		Sheets: []export.Sheet{export.CashFlowSheet("Cash Flow", summary.Table)},
	}, nil
}

func breakevenDefaults(_ *server) url.Values {
	return url.Values{
		"fixed_costs":   {"500000"},
		"price":         {"25"},
		"variable_cost": {"15"},
		"volume":        {"80000"},
		"curve_points":  {"21"},
	}
}

type breakevenResult struct {
	Breakeven   breakeven.Result            `json:"breakeven"`
	Profit      breakeven.Profit            `json:"profit_at_volume"`
	Sensitivity breakeven.SensitivityResult `json:"sensitivity"`
	Curve       breakeven.CurveResult       `json:"curve"`
}

func runBreakeven(_ *server, f *formReader) (calcOutcome, error) {
	base := breakeven.Base{
		FixedCosts:   f.float("fixed_costs"),
		Price:        f.float("price"),
		VariableCost: f.float("variable_cost"),
		Volume:       f.float("volume"),
	}
	pcts := f.list("change_percents", false)
	maxVolume := f.optionalFloat("max_volume")
	points := f.optionalInteger("curve_points", 21)
	if err := f.err(); err != nil {
		return calcOutcome{}, err
	}

	var res breakevenResult
	var err error
	if res.Breakeven, err = breakeven.Units(base.FixedCosts, base.Price, base.VariableCost); err != nil {
		return calcOutcome{}, err
	}
	if res.Profit, err = breakeven.ProfitAtVolume(base.FixedCosts, base.Price, base.VariableCost, base.Volume); err != nil {
		return calcOutcome{}, err
	}
	if res.Sensitivity, err = breakeven.Sensitivity(base, pcts); err != nil {
		return calcOutcome{}, err
	}
	if res.Curve, err = breakeven.Curve(base.FixedCosts, base.Price, base.VariableCost, maxVolume, points); err != nil {
		return calcOutcome{}, err
	}

	return calcOutcome{
		Kind:   "breakeven",
		Result: res,
		Sheets: []export.Sheet{
			export.SensitivitySheet("Sensitivity", res.Sensitivity),
			export.CurveSheet("Curve", res.Curve.Points),
		},
	}, nil
}

func replacementDefaults(s *server) url.Values {
	return url.Values{
		"mode":             {"compare"},
		"rate":             {formatFloat(s.defaultRate)},
		"old_annual_cost":  {"50000"},
		"old_salvage":      {"20000"},
		"new_cost":         {"150000"},
		"new_annual_cost":  {"20000"},
		"new_salvage":      {"15000"},
		"new_life":         {strconv.Itoa(s.defaultLife)},
		"initial_cost":     {"100000"},
		"salvage_values":   {"80000, 65000, 52000, 42000, 34000"},
		"annual_costs":     {"10000, 12000, 15000, 19000, 24000"},
		"max_life":         {"5"},
		"current_salvage":  {"30000"},
		"old_annual_costs": {"30000, 34000, 39000, 45000, 52000"},
		"new_annual_costs": {"12000, 12000, 13000, 14000, 15000"},
	}
}

type replacementResult struct {
	Mode       string                    `json:"mode"`
	Comparison *replacement.Analysis     `json:"comparison,omitempty"`
	Life       *replacement.LifeResult   `json:"economic_life,omitempty"`
	Timing     *replacement.TimingResult `json:"timing,omitempty"`
}

func runReplacement(_ *server, f *formReader) (calcOutcome, error) {
	mode := f.choice("mode", "compare", "compare", "economic_life", "timing")
	res := replacementResult{Mode: mode}
	var sheets []export.Sheet

	switch mode {
	case "compare":
		c := replacement.Comparison{
			OldAnnualCost: f.float("old_annual_cost"),
			OldSalvage:    f.float("old_salvage"),
			NewCost:       f.float("new_cost"),
			NewAnnualCost: f.float("new_annual_cost"),
			NewSalvage:    f.float("new_salvage"),
			NewLife:       f.integer("new_life"),
			Rate:          f.percent("rate"),
		}
		c.AnalysisPeriod = f.optionalInteger("analysis_period", c.NewLife)
		if err := f.err(); err != nil {
			return calcOutcome{}, err
		}
		a, err := replacement.Analyze(c)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Comparison = &a

	case "economic_life":
		initial := f.float("initial_cost")
		salvage := f.list("salvage_values", true)
		costs := f.list("annual_costs", true)
		rate := f.percent("rate")
		if err := f.err(); err != nil {
			return calcOutcome{}, err
		}
		life, err := replacement.EconomicLife(initial, salvage, costs, rate)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Life = &life
		sheets = append(sheets, export.EconomicLifeSheet("Economic Life", life.Table))

	case "timing":
		study := replacement.TimingStudy{
			MaxLife:        f.integer("max_life"),
			CurrentSalvage: f.float("current_salvage"),
			OldAnnualCosts: f.list("old_annual_costs", true),
			NewCost:        f.float("new_cost"),
			NewAnnualCosts: f.list("new_annual_costs", true),
			NewSalvage:     f.float("new_salvage"),
			Rate:           f.percent("rate"),
			SalvageDecay:   f.optionalPercent("salvage_decay"),
		}
		if err := f.err(); err != nil {
			return calcOutcome{}, err
		}
		timing, err := replacement.Timing(study)
		if err != nil {
			return calcOutcome{}, err
		}
		res.Timing = &timing
		sheets = append(sheets, export.TimingSheet("Timing", timing.Options))
	}

	return calcOutcome{Kind: "replacement/" + mode, Result: res, Sheets: sheets}, nil
}

func pick(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// catalogChoices feeds the industry and equipment selects.
type catalogChoices struct {
	Industries       []string
	EquipmentTypes   []string
	DefaultIndustry  string
	DefaultEquipment string
}

func choicesFrom(cat *catalog.Catalog) catalogChoices {
	return catalogChoices{
		Industries:       cat.Industries(),
		EquipmentTypes:   cat.EquipmentTypes(),
		DefaultIndustry:  cat.DefaultIndustry(),
		DefaultEquipment: cat.DefaultEquipment(),
	}
}
