package main

import (
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/plantecon/internal/econ"
)

var templateFuncs = template.FuncMap{
	"money":   money,
	"number":  number,
	"percent": percent,
	"pctval":  percentValue,
	"metric":  metric,
	"title":   titleize,
}

func rounded(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// money formats an amount with two decimals and thousands separators.
func money(v float64) string {
	r := rounded(v, 2)
	s := humanize.CommafWithDigits(r, 2)
	// Keep cents visible on whole amounts.
	if i := strings.IndexByte(s, '.'); i < 0 {
		s += ".00"
	} else if len(s)-i == 2 {
		s += "0"
	}
	return s
}

// number formats a ratio or factor with up to four decimals.
func number(v float64) string {
	return decimal.NewFromFloat(v).Round(4).String()
}

// percent formats a decimal fraction as a percentage.
func percent(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).Round(2).String() + "%"
}

// percentValue formats a value that is already in percent.
func percentValue(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String() + "%"
}

// metric formats a possibly undefined metric, describing the state when it has no value.
func metric(m econ.Metric, format string) string {
	v, ok := m.Float()
	if !ok {
		if m.State == econ.StateInfinite {
			return "∞ (" + m.Reason + ")"
		}
		return "n/a (" + m.Reason + ")"
	}
	switch format {
	case "percent":
		return percent(v)
	case "number":
		return number(v)
	default:
		return money(v)
	}
}

func titleize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
