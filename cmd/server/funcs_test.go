package main

import (
	"testing"

	"github.com/Simplici0/plantecon/internal/econ"
)

func TestMoney(t *testing.T) {
	cases := map[float64]string{
		130044.6057: "130,044.61",
		1234.5:      "1,234.50",
		1000000:     "1,000,000.00",
		-2500.125:   "-2,500.13",
		0:           "0.00",
	}
	for in, want := range cases {
		if got := money(in); got != want {
			t.Errorf("money(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPercentFormats(t *testing.T) {
	if got := percent(0.15098); got != "15.1%" {
		t.Fatalf("percent(0.15098) = %q", got)
	}
	if got := percentValue(33.3333); got != "33.33%" {
		t.Fatalf("percentValue(33.3333) = %q", got)
	}
	if got := number(5.6502230284); got != "5.6502" {
		t.Fatalf("number(5.6502230284) = %q", got)
	}
}

func TestMetricDescribesMissingValues(t *testing.T) {
	if got := metric(econ.Defined(0.12), "percent"); got != "12%" {
		t.Fatalf("defined metric = %q", got)
	}
	if got := metric(econ.Infinite("zero cash flow"), "number"); got != "∞ (zero cash flow)" {
		t.Fatalf("infinite metric = %q", got)
	}
	if got := metric(econ.Undefined("no sign change"), "percent"); got != "n/a (no sign change)" {
		t.Fatalf("undefined metric = %q", got)
	}
}

func TestTitleize(t *testing.T) {
	if got := titleize("variable_cost"); got != "Variable cost" {
		t.Fatalf("titleize = %q", got)
	}
	if got := titleize(""); got != "" {
		t.Fatalf("titleize empty = %q", got)
	}
}
