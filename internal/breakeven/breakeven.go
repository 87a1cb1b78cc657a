// Package breakeven finds the volume at which revenue covers fixed and
// variable costs and measures how profit responds to each cost driver.
package breakeven

import (
	"fmt"

	"github.com/Simplici0/plantecon/internal/econ"
)

// Result is a break-even point.
type Result struct {
	FixedCosts              float64 `json:"fixed_costs"`
	Price                   float64 `json:"selling_price_per_unit"`
	VariableCost            float64 `json:"variable_cost_per_unit"`
	Units                   float64 `json:"breakeven_units"`
	Sales                   float64 `json:"breakeven_sales"`
	ContributionMargin      float64 `json:"contribution_margin_per_unit"`
	ContributionMarginRatio float64 `json:"contribution_margin_ratio"`
}

func validateCosts(op string, fixedCosts, price, variableCost float64) error {
	if err := econ.RequireNonNegative(op, "fixed costs", fixedCosts); err != nil {
		return err
	}
	if err := econ.RequireNonNegative(op, "price", price); err != nil {
		return err
	}
	return econ.RequireNonNegative(op, "variable cost", variableCost)
}

// Units returns the break-even volume fixedCosts / (price - variableCost).
func Units(fixedCosts, price, variableCost float64) (Result, error) {
	const op = "breakeven"
	if err := validateCosts(op, fixedCosts, price, variableCost); err != nil {
		return Result{}, err
	}
	if price <= variableCost {
		return Result{}, econ.Domain(op, "price", "must exceed variable cost")
	}

	margin := price - variableCost
	units := fixedCosts / margin
	return Result{
		FixedCosts:              fixedCosts,
		Price:                   price,
		VariableCost:            variableCost,
		Units:                   units,
		Sales:                   units * price,
		ContributionMargin:      margin,
		ContributionMarginRatio: margin / price,
	}, nil
}

// Profit is the income statement at one production volume.
type Profit struct {
	Volume              float64 `json:"production_volume"`
	Revenue             float64 `json:"total_revenue"`
	VariableCosts       float64 `json:"total_variable_costs"`
	FixedCosts          float64 `json:"total_fixed_costs"`
	TotalCost           float64 `json:"total_costs"`
	Profit              float64 `json:"profit"`
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
	TotalContribution   float64 `json:"contribution_margin_total"`
}

// ProfitAtVolume computes revenue, costs and profit at volume units.
func ProfitAtVolume(fixedCosts, price, variableCost, volume float64) (Profit, error) {
	const op = "profit at volume"
	if err := validateCosts(op, fixedCosts, price, variableCost); err != nil {
		return Profit{}, err
	}
	if err := econ.RequireNonNegative(op, "volume", volume); err != nil {
		return Profit{}, err
	}
	return profitAt(fixedCosts, price, variableCost, volume), nil
}

func profitAt(fixedCosts, price, variableCost, volume float64) Profit {
	revenue := volume * price
	variable := volume * variableCost
	total := fixedCosts + variable
	p := Profit{
		Volume:            volume,
		Revenue:           revenue,
		VariableCosts:     variable,
		FixedCosts:        fixedCosts,
		TotalCost:         total,
		Profit:            revenue - total,
		TotalContribution: (price - variableCost) * volume,
	}
	if revenue > 0 {
		p.ProfitMarginPercent = p.Profit / revenue * 100
	}
	return p
}

// CurvePoint is one sample of the cost-volume-profit chart.
type CurvePoint struct {
	Volume       float64 `json:"volume"`
	Revenue      float64 `json:"revenue"`
	FixedCost    float64 `json:"fixed_cost"`
	VariableCost float64 `json:"variable_cost"`
	TotalCost    float64 `json:"total_cost"`
	Profit       float64 `json:"profit"`
}

// CurveResult is a sampled cost-volume-profit chart.
type CurveResult struct {
	Breakeven Result                      `json:"breakeven"`
	MaxVolume float64                     `json:"max_volume"`
	Points    []CurvePoint                `json:"points"`
	Defaults  []econ.ConfigurationDefault `json:"defaults,omitempty"`
}

// Curve samples n volumes from 0 to maxVolume, which defaults to twice the
// break-even volume.
func Curve(fixedCosts, price, variableCost float64, maxVolume econ.Param, n int) (CurveResult, error) {
	const op = "breakeven curve"
	be, err := Units(fixedCosts, price, variableCost)
	if err != nil {
		return CurveResult{}, err
	}
	if n < 2 {
		return CurveResult{}, econ.Domain(op, "points", "must be at least 2")
	}

	res := CurveResult{Breakeven: be}
	limit, def := maxVolume.Resolve("max_volume", "2 x breakeven units", 2*be.Units)
	if def != nil {
		res.Defaults = append(res.Defaults, *def)
	}
	if err := econ.RequireNonNegative(op, "max volume", limit); err != nil {
		return CurveResult{}, err
	}
	res.MaxVolume = limit

	res.Points = make([]CurvePoint, n)
	step := limit / float64(n-1)
	for i := range res.Points {
		v := step * float64(i)
		if i == n-1 {
			v = limit
		}
		p := profitAt(fixedCosts, price, variableCost, v)
		res.Points[i] = CurvePoint{
			Volume:       v,
			Revenue:      p.Revenue,
			FixedCost:    fixedCosts,
			VariableCost: p.VariableCosts,
			TotalCost:    p.TotalCost,
			Profit:       p.Profit,
		}
	}
	return res, nil
}

// Parameter names a sensitivity driver.
type Parameter string

const (
	FixedCosts   Parameter = "fixed_costs"
	Price        Parameter = "price"
	VariableCost Parameter = "variable_cost"
	Volume       Parameter = "volume"
)

// Parameters lists the sensitivity drivers in report order.
var Parameters = []Parameter{FixedCosts, Price, VariableCost, Volume}

// DefaultChangePercents is used when no percentages are supplied.
var DefaultChangePercents = []float64{-20, -10, 0, 10, 20}

// Base is the operating point perturbed by Sensitivity.
type Base struct {
	FixedCosts   float64 `json:"fixed_costs"`
	Price        float64 `json:"price"`
	VariableCost float64 `json:"variable_cost"`
	Volume       float64 `json:"volume"`
}

func (b Base) value(p Parameter) float64 {
	switch p {
	case FixedCosts:
		return b.FixedCosts
	case Price:
		return b.Price
	case VariableCost:
		return b.VariableCost
	default:
		return b.Volume
	}
}

func (b Base) with(p Parameter, v float64) Base {
	switch p {
	case FixedCosts:
		b.FixedCosts = v
	case Price:
		b.Price = v
	case VariableCost:
		b.VariableCost = v
	default:
		b.Volume = v
	}
	return b
}

// SensitivityPoint is profit after changing one parameter by ChangePercent.
type SensitivityPoint struct {
	ChangePercent  float64     `json:"change_percent"`
	Value          float64     `json:"value"`
	Profit         float64     `json:"profit"`
	BreakevenUnits econ.Metric `json:"breakeven_units"`
}

// Skipped is a perturbation that would leave the model's domain.
type Skipped struct {
	Parameter     Parameter `json:"parameter"`
	ChangePercent float64   `json:"change_percent"`
	Reason        string    `json:"reason"`
}

// SensitivityResult holds the base case and one series per parameter.
type SensitivityResult struct {
	Base           Base                             `json:"base"`
	ChangePercents []float64                        `json:"change_percents"`
	BaseBreakeven  Result                           `json:"base_breakeven"`
	BaseProfit     Profit                           `json:"base_profit"`
	Series         map[Parameter][]SensitivityPoint `json:"series"`
	Skipped        []Skipped                        `json:"skipped,omitempty"`
}

// Sensitivity changes each parameter alone by every percentage in pcts and
// records the resulting profit. Changes that would make price fall to or
// below variable cost, or make a quantity negative, are skipped.
func Sensitivity(base Base, pcts []float64) (SensitivityResult, error) {
	const op = "sensitivity"
	if len(pcts) == 0 {
		pcts = DefaultChangePercents
	}
	for _, pct := range pcts {
		if err := econ.RequireFinite(op, "change percent", pct); err != nil {
			return SensitivityResult{}, err
		}
	}
	be, err := Units(base.FixedCosts, base.Price, base.VariableCost)
	if err != nil {
		return SensitivityResult{}, err
	}
	profit, err := ProfitAtVolume(base.FixedCosts, base.Price, base.VariableCost, base.Volume)
	if err != nil {
		return SensitivityResult{}, err
	}

	res := SensitivityResult{
		Base:           base,
		ChangePercents: append([]float64(nil), pcts...),
		BaseBreakeven:  be,
		BaseProfit:     profit,
		Series:         make(map[Parameter][]SensitivityPoint, len(Parameters)),
	}
	for _, param := range Parameters {
		series := make([]SensitivityPoint, 0, len(pcts))
		for _, pct := range pcts {
			v := base.value(param) * (1 + pct/100)
			b := base.with(param, v)
			if v < 0 {
				res.Skipped = append(res.Skipped, Skipped{Parameter: param, ChangePercent: pct, Reason: fmt.Sprintf("%s would be negative", param)})
				continue
			}
			if b.Price <= b.VariableCost {
				res.Skipped = append(res.Skipped, Skipped{Parameter: param, ChangePercent: pct, Reason: "price would not exceed variable cost"})
				continue
			}
			point := SensitivityPoint{
				ChangePercent: pct,
				Value:         v,
				Profit:        profitAt(b.FixedCosts, b.Price, b.VariableCost, b.Volume).Profit,
			}
			if u, err := Units(b.FixedCosts, b.Price, b.VariableCost); err == nil {
				point.BreakevenUnits = econ.Defined(u.Units)
			} else {
				point.BreakevenUnits = econ.Undefined(err.Error())
			}
			series = append(series, point)
		}
		res.Series[param] = series
	}
	return res, nil
}
