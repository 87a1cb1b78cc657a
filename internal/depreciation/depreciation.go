// Package depreciation generates year-indexed depreciation schedules using
// the straight-line, declining-balance, sum-of-years-digits and sinking-fund
// methods.
package depreciation

import (
	"fmt"
	"math"

	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/tvm"
)

// Method names a depreciation method.
type Method string

const (
	StraightLineMethod     Method = "straight_line"
	DecliningBalanceMethod Method = "declining_balance"
	SumOfYearsDigitsMethod Method = "sum_of_years_digits"
	SinkingFundMethod      Method = "sinking_fund"
)

// Methods lists the supported methods in display order.
var Methods = []Method{StraightLineMethod, DecliningBalanceMethod, SumOfYearsDigitsMethod, SinkingFundMethod}

// Asset is the depreciable asset: purchase cost, salvage at end of life and life in years.
type Asset struct {
	Cost    float64 `json:"cost"`
	Salvage float64 `json:"salvage"`
	Life    int     `json:"life"`
}

// Depreciable returns cost - salvage.
func (a Asset) Depreciable() float64 {
	return a.Cost - a.Salvage
}

// DepositTiming controls how the sinking fund accumulates each year.
type DepositTiming string

const (
	// DepositThenCompound adds the payment and then earns a full year of
	// interest on the new balance: balance = (balance + payment)(1+rate).
	DepositThenCompound DepositTiming = "deposit_then_compound"
	// DepositEndOfYear earns interest on the opening balance and deposits at
	// year end: balance = balance(1+rate) + payment. The fund reaches exactly
	// cost - salvage at the end of life.
	DepositEndOfYear DepositTiming = "end_of_year"
)

// Config carries table conventions and the defaults applied to omitted rates.
type Config struct {
	Table econ.TableOptions
	// DefaultSinkingFundRate replaces an omitted sinking-fund interest rate.
	DefaultSinkingFundRate float64
}

// DefaultConfig includes year-0 rows and a 10% default sinking-fund rate.
var DefaultConfig = Config{
	Table:                  econ.DefaultTableOptions,
	DefaultSinkingFundRate: 0.10,
}

// Schedule is the output of every method.
type Schedule struct {
	Method Method `json:"method"`
	Asset  Asset  `json:"asset"`
	// AnnualCharge is the constant charge for straight line, the level payment
	// for sinking fund and the first year's charge for the accelerated methods.
	AnnualCharge      float64                     `json:"annual_charge"`
	Rate              float64                     `json:"rate,omitempty"`
	SumOfYears        int                         `json:"sum_of_years,omitempty"`
	TotalDepreciation float64                     `json:"total_depreciation"`
	Defaults          []econ.ConfigurationDefault `json:"defaults,omitempty"`
	Table             []econ.YearRow              `json:"table"`
}

// FinalBookValue returns the book value in the last row.
func (s Schedule) FinalBookValue() float64 {
	if len(s.Table) == 0 {
		return s.Asset.Cost
	}
	return s.Table[len(s.Table)-1].BookValue
}

// Request selects a method and its optional parameters.
type Request struct {
	Method Method
	Asset  Asset
	// Rate is the declining-balance rate or the sinking-fund interest rate.
	Rate   econ.Param
	Timing DepositTiming
}

// Calculate dispatches req to the selected method.
func Calculate(req Request, cfg Config) (Schedule, error) {
	switch req.Method {
	case StraightLineMethod:
		return StraightLine(req.Asset, cfg)
	case DecliningBalanceMethod:
		return DecliningBalance(req.Asset, req.Rate, cfg)
	case SumOfYearsDigitsMethod:
		return SumOfYearsDigits(req.Asset, cfg)
	case SinkingFundMethod:
		return SinkingFund(req.Asset, req.Rate, req.Timing, cfg)
	default:
		return Schedule{}, econ.Domain("depreciation", "method", fmt.Sprintf("%q is not supported", req.Method))
	}
}

func validateAsset(op string, a Asset) error {
	if err := econ.RequirePositive(op, "purchase cost", a.Cost); err != nil {
		return err
	}
	if err := econ.RequireNonNegative(op, "salvage value", a.Salvage); err != nil {
		return err
	}
	if a.Salvage >= a.Cost {
		return econ.Domain(op, "salvage value", "must be less than purchase cost")
	}
	return econ.RequirePeriods(op, "useful life", a.Life)
}

func newTable(a Asset, opts econ.TableOptions) []econ.YearRow {
	rows := make([]econ.YearRow, 0, a.Life+1)
	if opts.IncludeYearZero {
		rows = append(rows, econ.YearRow{Year: 0, BookValue: a.Cost})
	}
	return rows
}

// closingRow floors the book value at salvage and pins the final year to
// exactly cost - salvage depreciated.
func closingRow(a Asset, year int, charge, cumulative float64) econ.YearRow {
	if year == a.Life {
		return econ.YearRow{Year: year, Annual: charge, Cumulative: a.Depreciable(), BookValue: a.Salvage}
	}
	return econ.YearRow{
		Year:       year,
		Annual:     charge,
		Cumulative: cumulative,
		BookValue:  math.Max(a.Cost-cumulative, a.Salvage),
	}
}

// StraightLine charges (cost - salvage) / life every year.
func StraightLine(a Asset, cfg Config) (Schedule, error) {
	if err := validateAsset("straight line", a); err != nil {
		return Schedule{}, err
	}

	depreciable := a.Depreciable()
	annual := depreciable / float64(a.Life)
	table := newTable(a, cfg.Table)
	for year := 1; year <= a.Life; year++ {
		table = append(table, closingRow(a, year, annual, annual*float64(year)))
	}

	return Schedule{
		Method:            StraightLineMethod,
		Asset:             a,
		AnnualCharge:      annual,
		TotalDepreciation: depreciable,
		Table:             table,
	}, nil
}

// DecliningBalance charges a fixed fraction of the opening book value each
// year, capped so the book value never falls below salvage. An omitted rate
// defaults to 2/life (double-declining balance).
func DecliningBalance(a Asset, rate econ.Param, cfg Config) (Schedule, error) {
	const op = "declining balance"
	if err := validateAsset(op, a); err != nil {
		return Schedule{}, err
	}

	r, def := rate.Resolve("depreciation_rate", "2/life", 2/float64(a.Life))
	if err := econ.RequirePositive(op, "depreciation rate", r); err != nil {
		return Schedule{}, err
	}

	table := newTable(a, cfg.Table)
	bookValue := a.Cost
	total := 0.0
	first := 0.0
	for year := 1; year <= a.Life; year++ {
		charge := math.Min(bookValue*r, bookValue-a.Salvage)
		if charge < 0 {
			charge = 0
		}
		bookValue = math.Max(bookValue-charge, a.Salvage)
		total += charge
		if year == 1 {
			first = charge
		}
		table = append(table, econ.YearRow{
			Year:       year,
			Annual:     charge,
			Cumulative: total,
			BookValue:  bookValue,
		})
	}

	s := Schedule{
		Method:            DecliningBalanceMethod,
		Asset:             a,
		AnnualCharge:      first,
		Rate:              r,
		TotalDepreciation: total,
		Table:             table,
	}
	if def != nil {
		s.Defaults = append(s.Defaults, *def)
	}
	return s, nil
}

// SumOfYearsDigits weights year y by (life - y + 1) / (life(life+1)/2).
func SumOfYearsDigits(a Asset, cfg Config) (Schedule, error) {
	if err := validateAsset("sum of years digits", a); err != nil {
		return Schedule{}, err
	}

	depreciable := a.Depreciable()
	sum := a.Life * (a.Life + 1) / 2
	table := newTable(a, cfg.Table)
	cumulative := 0.0
	first := 0.0
	for year := 1; year <= a.Life; year++ {
		charge := depreciable * float64(a.Life-year+1) / float64(sum)
		cumulative += charge
		if year == 1 {
			first = charge
		}
		table = append(table, closingRow(a, year, charge, cumulative))
	}

	return Schedule{
		Method:            SumOfYearsDigitsMethod,
		Asset:             a,
		AnnualCharge:      first,
		SumOfYears:        sum,
		TotalDepreciation: depreciable,
		Table:             table,
	}, nil
}

// SinkingFund models level annual payments (cost-salvage) * i / ((1+i)^n - 1)
// into an interest-bearing fund; the book value is cost minus the fund
// balance. Each row's annual amount is the growth of the fund that year. An
// omitted rate defaults to cfg.DefaultSinkingFundRate and an empty timing to
// DepositThenCompound.
func SinkingFund(a Asset, rate econ.Param, timing DepositTiming, cfg Config) (Schedule, error) {
	const op = "sinking fund"
	if err := validateAsset(op, a); err != nil {
		return Schedule{}, err
	}

	r, def := rate.Resolve("interest_rate", "configured default interest rate", cfg.DefaultSinkingFundRate)
	if err := econ.RequireNonNegative(op, "interest rate", r); err != nil {
		return Schedule{}, err
	}
	if timing == "" {
		timing = DepositThenCompound
	}
	if timing != DepositThenCompound && timing != DepositEndOfYear {
		return Schedule{}, econ.Domain(op, "deposit timing", fmt.Sprintf("%q is not supported", timing))
	}

	depreciable := a.Depreciable()
	factor, err := tvm.FutureWorthFactor(r, a.Life)
	if err != nil {
		return Schedule{}, err
	}
	payment := depreciable / factor

	table := newTable(a, cfg.Table)
	balance := 0.0
	for year := 1; year <= a.Life; year++ {
		opening := balance
		if timing == DepositEndOfYear {
			balance = balance*(1+r) + payment
		} else {
			balance = (balance + payment) * (1 + r)
		}
		table = append(table, econ.YearRow{
			Year:       year,
			Annual:     balance - opening,
			Cumulative: balance,
			BookValue:  a.Cost - balance,
		})
	}

	s := Schedule{
		Method:            SinkingFundMethod,
		Asset:             a,
		AnnualCharge:      payment,
		Rate:              r,
		TotalDepreciation: depreciable,
		Table:             table,
	}
	if def != nil {
		s.Defaults = append(s.Defaults, *def)
	}
	return s, nil
}
