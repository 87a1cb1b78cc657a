package main

import (
	"errors"
	"math"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newFormRequest(form url.Values) *formReader {
	req := httptest.NewRequest("POST", "/calc/test", nil)
	req.Form = form
	return newFormReader(req)
}

func TestFormReaderConvertsPercentages(t *testing.T) {
	form := url.Values{}
	form.Set("rate", "12")
	form.Set("principal", "1,000,000")
	form.Set("periods", "10")

	f := newFormRequest(form)
	rate := f.percent("rate")
	principal := f.float("principal")
	periods := f.integer("periods")
	if err := f.err(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if !nearlyEqual(rate, 0.12) {
		t.Fatalf("expected rate 0.12, got %v", rate)
	}
	if principal != 1_000_000 || periods != 10 {
		t.Fatalf("unexpected values: principal=%v periods=%d", principal, periods)
	}
	if !nearlyEqual(f.Inputs["rate"], 0.12) || f.Inputs["periods"] != 10 {
		t.Fatalf("unexpected recorded inputs: %+v", f.Inputs)
	}
}

func TestFormReaderOptionalFieldsStayOmitted(t *testing.T) {
	f := newFormRequest(url.Values{"rate": {""}})

	if _, ok := f.optionalPercent("rate").Get(); ok {
		t.Fatalf("expected blank rate to be omitted")
	}
	if got := f.optionalInteger("analysis_period", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
	if err := f.err(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(f.Inputs) != 0 {
		t.Fatalf("expected no recorded inputs, got %+v", f.Inputs)
	}
}

func TestFormReaderCollectsProblems(t *testing.T) {
	form := url.Values{}
	form.Set("cost", "abc")
	form.Set("life", "2.5")
	form.Set("method", "double")

	f := newFormRequest(form)
	f.float("cost")
	f.integer("life")
	f.float("salvage")
	f.choice("method", "straight_line", "straight_line", "sinking_fund")

	var inErr *inputError
	if err := f.err(); !errors.As(err, &inErr) {
		t.Fatalf("expected inputError, got %v", err)
	}
	if len(inErr.Problems) != 4 {
		t.Fatalf("expected 4 problems, got %v", inErr.Problems)
	}
	if statusFor(inErr) != 400 {
		t.Fatalf("expected status 400 for input errors")
	}
}

func TestFormReaderRejectsNonFiniteNumbers(t *testing.T) {
	f := newFormRequest(url.Values{"price": {"NaN"}, "volume": {"+Inf"}})
	f.float("price")
	f.float("volume")
	if f.err() == nil {
		t.Fatalf("expected NaN and Inf to be rejected")
	}
}

func TestFormReaderParsesLists(t *testing.T) {
	f := newFormRequest(url.Values{"flows": {"100, 200;300\n400"}})

	got := f.list("flows", true)
	want := []float64{100, 200, 300, 400}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if f.Inputs["flows[4]"] != 400 {
		t.Fatalf("expected indexed inputs, got %+v", f.Inputs)
	}

	f = newFormRequest(url.Values{"flows": {"100, x"}})
	if f.list("flows", true) != nil || f.err() == nil {
		t.Fatalf("expected list error")
	}

	f = newFormRequest(url.Values{})
	f.list("flows", true)
	if f.err() == nil {
		t.Fatalf("expected required list error")
	}
}

func TestFormReaderFlag(t *testing.T) {
	f := newFormRequest(url.Values{"year_zero": {"0"}, "save": {"1"}})
	if f.flag("year_zero", true) {
		t.Fatalf("expected year_zero=0 to be false")
	}
	if !f.flag("save", false) {
		t.Fatalf("expected save=1 to be true")
	}
	if !f.flag("missing", true) {
		t.Fatalf("expected default for missing flag")
	}
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
