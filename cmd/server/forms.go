package main

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/Simplici0/plantecon/internal/econ"
)

// inputError reports form values that could not be read as numbers.
type inputError struct {
	Problems []string
}

func (e *inputError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// formReader reads numeric form fields, converting percentages to decimal
// fractions, and records every accepted value in Inputs.
type formReader struct {
	r        *http.Request
	Inputs   econ.Inputs
	problems []string
}

func newFormReader(r *http.Request) *formReader {
	return &formReader{r: r, Inputs: econ.Inputs{}}
}

func (f *formReader) raw(name string) string {
	return strings.TrimSpace(f.r.FormValue(name))
}

func (f *formReader) fail(format string, args ...any) {
	f.problems = append(f.problems, fmt.Sprintf(format, args...))
}

func parseNumber(raw string) (float64, error) {
	// Accept thousands separators as typed in the forms.
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return value, nil
}

func (f *formReader) read(name string, required bool) (float64, bool) {
	raw := f.raw(name)
	if raw == "" {
		if required {
			f.fail("%s is required", name)
		}
		return 0, false
	}
	value, err := parseNumber(raw)
	if err != nil {
		f.fail("%s must be numeric", name)
		return 0, false
	}
	return value, true
}

// float reads a required number.
func (f *formReader) float(name string) float64 {
	value, ok := f.read(name, true)
	if ok {
		f.Inputs[name] = value
	}
	return value
}

// percent reads a required percentage and returns it as a fraction.
func (f *formReader) percent(name string) float64 {
	value, ok := f.read(name, true)
	if !ok {
		return 0
	}
	f.Inputs[name] = value / 100
	return value / 100
}

// optionalFloat reads a number that may be left blank.
func (f *formReader) optionalFloat(name string) econ.Param {
	value, ok := f.read(name, false)
	if !ok {
		return econ.Param{}
	}
	f.Inputs[name] = value
	return econ.Some(value)
}

// optionalPercent reads a percentage that may be left blank.
func (f *formReader) optionalPercent(name string) econ.Param {
	value, ok := f.read(name, false)
	if !ok {
		return econ.Param{}
	}
	f.Inputs[name] = value / 100
	return econ.Some(value / 100)
}

// integer reads a required whole number such as a life in years.
func (f *formReader) integer(name string) int {
	raw := f.raw(name)
	if raw == "" {
		f.fail("%s is required", name)
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		f.fail("%s must be a whole number", name)
		return 0
	}
	f.Inputs[name] = float64(value)
	return value
}

// optionalInteger reads a whole number, returning def when blank.
func (f *formReader) optionalInteger(name string, def int) int {
	if f.raw(name) == "" {
		return def
	}
	return f.integer(name)
}

// list reads a comma, semicolon or whitespace separated series of numbers.
// Thousands separators are not allowed inside a list. Elements are
// recorded in Inputs as name[1], name[2], ...
func (f *formReader) list(name string, required bool) []float64 {
	fields := strings.FieldsFunc(f.raw(name), func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		if required {
			f.fail("%s needs at least one value", name)
		}
		return nil
	}

	values := make([]float64, 0, len(fields))
	for i, field := range fields {
		value, err := parseNumber(field)
		if err != nil {
			f.fail("%s item %d must be numeric", name, i+1)
			return nil
		}
		values = append(values, value)
		f.Inputs[fmt.Sprintf("%s[%d]", name, i+1)] = value
	}
	return values
}

// choice reads an enumerated field, falling back to def when blank.
func (f *formReader) choice(name, def string, allowed ...string) string {
	raw := f.raw(name)
	if raw == "" {
		return def
	}
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	f.fail("%s must be one of %s", name, strings.Join(allowed, ", "))
	return def
}

// flag reads a "1"/"0" toggle, falling back to def when blank.
func (f *formReader) flag(name string, def bool) bool {
	switch f.raw(name) {
	case "":
		return def
	case "1", "true", "on":
		return true
	default:
		return false
	}
}

// err returns the accumulated problems, if any.
func (f *formReader) err() error {
	if len(f.problems) == 0 {
		return nil
	}
	return &inputError{Problems: f.problems}
}
