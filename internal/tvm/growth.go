package tvm

import (
	"fmt"

	"github.com/Simplici0/plantecon/internal/econ"
)

// Mode selects how a growth table accumulates value.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeCompound Mode = "compound"
	ModeAnnuity  Mode = "annuity"
)

// GrowthRow is the value of an investment at the end of a year.
type GrowthRow struct {
	Year           int     `json:"year"`
	Value          float64 `json:"value"`
	InterestEarned float64 `json:"interest_earned"`
}

// GrowthTable tabulates value by year from year 0 through periods. In annuity
// mode amount is the uniform payment and Value is the present worth of the
// series up to that year.
func GrowthTable(mode Mode, amount, rate float64, periods int) ([]GrowthRow, error) {
	const op = "growth table"
	if err := econ.RequireNonNegative(op, "amount", amount); err != nil {
		return nil, err
	}
	if err := validate(op, rate, periods); err != nil {
		return nil, err
	}

	rows := make([]GrowthRow, 0, periods+1)
	for year := 0; year <= periods; year++ {
		var value float64
		switch mode {
		case ModeSimple:
			value = amount + amount*rate*float64(year)
		case ModeCompound:
			value = amount * growth(rate, year)
		case ModeAnnuity:
			if year > 0 {
				factor, err := PresentWorthFactor(rate, year)
				if err != nil {
					return nil, err
				}
				value = amount * factor
			}
		default:
			return nil, econ.Domain(op, "mode", fmt.Sprintf("%q is not simple, compound or annuity", mode))
		}

		earned := 0.0
		if year > 0 {
			earned = value - amount
		}
		rows = append(rows, GrowthRow{Year: year, Value: value, InterestEarned: earned})
	}
	return rows, nil
}
