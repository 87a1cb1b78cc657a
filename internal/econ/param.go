package econ

// Param is an optional calculation parameter. The zero value is "omitted".
type Param struct {
	value float64
	set   bool
}

// Some returns a supplied parameter.
func Some(v float64) Param {
	return Param{value: v, set: true}
}

// Get returns the value and whether it was supplied.
func (p Param) Get() (float64, bool) {
	return p.value, p.set
}

// ConfigurationDefault records a default substituted for an omitted parameter.
type ConfigurationDefault struct {
	Parameter string  `json:"parameter"`
	Rule      string  `json:"rule"`
	Value     float64 `json:"value"`
}

// Resolve returns the supplied value, or def together with a ConfigurationDefault
// describing the substitution.
func (p Param) Resolve(name, rule string, def float64) (float64, *ConfigurationDefault) {
	if p.set {
		return p.value, nil
	}
	return def, &ConfigurationDefault{Parameter: name, Rule: rule, Value: def}
}
