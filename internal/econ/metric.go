package econ

import (
	"encoding/json"
	"math"
)

// State tags whether a Metric carries a usable number.
type State string

const (
	StateDefined   State = "defined"
	StateUndefined State = "undefined"
	StateInfinite  State = "infinite"
)

// Metric is a numeric result that may have no answer. Undefined and infinite
// metrics never expose NaN or Inf to callers.
type Metric struct {
	Value  float64
	State  State
	Reason string
}

// Defined wraps v. Non-finite values become undefined.
func Defined(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined("result is not a finite number")
	}
	return Metric{Value: v, State: StateDefined}
}

// Undefined reports a valid request without a solution.
func Undefined(reason string) Metric {
	return Metric{State: StateUndefined, Reason: reason}
}

// Infinite reports an unbounded result, such as a payback that never completes at zero cash flow.
func Infinite(reason string) Metric {
	return Metric{State: StateInfinite, Reason: reason}
}

// IsDefined reports whether the metric carries a finite value.
func (m Metric) IsDefined() bool {
	return m.State == StateDefined
}

// Float returns the value and whether it is defined.
func (m Metric) Float() (float64, bool) {
	return m.Value, m.IsDefined()
}

// Scale multiplies a defined metric and passes other states through.
func (m Metric) Scale(f float64) Metric {
	if !m.IsDefined() {
		return m
	}
	return Defined(m.Value * f)
}

type metricJSON struct {
	Value  *float64 `json:"value"`
	State  State    `json:"state"`
	Reason string   `json:"reason,omitempty"`
}

// MarshalJSON renders undefined and infinite metrics with a null value.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := metricJSON{State: m.State, Reason: m.Reason}
	if out.State == "" {
		out.State = StateUndefined
	}
	if m.IsDefined() {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a metric written by MarshalJSON.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var in metricJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.State = in.State
	m.Reason = in.Reason
	m.Value = 0
	if in.Value != nil && in.State == StateDefined {
		m.Value = *in.Value
	}
	return nil
}
