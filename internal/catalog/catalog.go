// Package catalog holds the industry estimating factors: Lang factors,
// capacity scaling exponents, fixed-capital category multipliers and
// working-capital splits.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/Simplici0/plantecon/internal/costest"
	"github.com/Simplici0/plantecon/internal/econ"
)

// DefaultCostSet names the category multipliers used by industries without their own.
const DefaultCostSet = "default"

//go:embed defaults.yaml
var defaultsYAML []byte

// IndustryFactor is a Lang factor for one industry.
type IndustryFactor struct {
	Industry string  `yaml:"industry" json:"industry"`
	Factor   float64 `yaml:"factor" json:"factor"`
}

// EquipmentExponent is a capacity scaling exponent for one equipment type.
type EquipmentExponent struct {
	Equipment string  `yaml:"equipment" json:"equipment"`
	Exponent  float64 `yaml:"exponent" json:"exponent"`
}

// CostFactorSet is the ordered category multipliers for one industry.
type CostFactorSet struct {
	Industry   string                   `yaml:"industry" json:"industry"`
	Categories []costest.CategoryFactor `yaml:"categories" json:"categories"`
}

// Document is the serialized form of a Catalog.
type Document struct {
	DefaultIndustry      string                        `yaml:"default_industry" json:"default_industry"`
	DefaultEquipment     string                        `yaml:"default_equipment" json:"default_equipment"`
	LangFactors          []IndustryFactor              `yaml:"lang_factors" json:"lang_factors"`
	ScalingExponents     []EquipmentExponent           `yaml:"scaling_exponents" json:"scaling_exponents"`
	CostFactors          []CostFactorSet               `yaml:"cost_factors" json:"cost_factors"`
	WorkingCapitalSplits []costest.WorkingCapitalSplit `yaml:"working_capital_splits" json:"working_capital_splits"`
}

// Catalog is a validated, read-only set of estimating factors. It satisfies
// costest.Factors.
type Catalog struct {
	doc       Document
	lang      map[string]float64
	exponents map[string]float64
	costs     map[string][]costest.CategoryFactor
}

var _ costest.Factors = (*Catalog)(nil)

// New validates doc and builds a Catalog from a private copy of it.
func New(doc Document) (*Catalog, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	c := &Catalog{
		doc:       cloneDocument(doc),
		lang:      make(map[string]float64, len(doc.LangFactors)),
		exponents: make(map[string]float64, len(doc.ScalingExponents)),
		costs:     make(map[string][]costest.CategoryFactor, len(doc.CostFactors)),
	}
	for _, f := range c.doc.LangFactors {
		c.lang[f.Industry] = f.Factor
	}
	for _, e := range c.doc.ScalingExponents {
		c.exponents[e.Equipment] = e.Exponent
	}
	for _, set := range c.doc.CostFactors {
		c.costs[set.Industry] = set.Categories
	}
	return c, nil
}

// Validate reports the first problem with doc.
func Validate(doc Document) error {
	if len(doc.LangFactors) == 0 {
		return fmt.Errorf("validate catalog: no lang factors")
	}
	industries := make(map[string]bool, len(doc.LangFactors))
	for _, f := range doc.LangFactors {
		if f.Industry == "" {
			return fmt.Errorf("validate catalog: lang factor without industry")
		}
		if industries[f.Industry] {
			return fmt.Errorf("validate catalog: industry %q listed twice", f.Industry)
		}
		industries[f.Industry] = true
		if err := econ.RequireFinite("validate catalog", "lang factor", f.Factor); err != nil {
			return err
		}
		if f.Factor < 1 {
			return fmt.Errorf("validate catalog: lang factor for %q must be at least 1", f.Industry)
		}
	}
	if doc.DefaultIndustry != "" && !industries[doc.DefaultIndustry] {
		return fmt.Errorf("validate catalog: default industry %q has no lang factor", doc.DefaultIndustry)
	}

	equipment := make(map[string]bool, len(doc.ScalingExponents))
	for _, e := range doc.ScalingExponents {
		if e.Equipment == "" {
			return fmt.Errorf("validate catalog: scaling exponent without equipment")
		}
		if equipment[e.Equipment] {
			return fmt.Errorf("validate catalog: equipment %q listed twice", e.Equipment)
		}
		equipment[e.Equipment] = true
		if err := econ.RequirePositive("validate catalog", "scaling exponent for "+e.Equipment, e.Exponent); err != nil {
			return err
		}
	}
	if doc.DefaultEquipment != "" && !equipment[doc.DefaultEquipment] {
		return fmt.Errorf("validate catalog: default equipment %q has no exponent", doc.DefaultEquipment)
	}

	sets := make(map[string]bool, len(doc.CostFactors))
	for _, set := range doc.CostFactors {
		if sets[set.Industry] {
			return fmt.Errorf("validate catalog: cost factors for %q listed twice", set.Industry)
		}
		sets[set.Industry] = true
		if err := costest.ValidateCategoryFactors("validate catalog", set.Categories); err != nil {
			return fmt.Errorf("cost factors for %q: %w", set.Industry, err)
		}
	}
	if !sets[DefaultCostSet] {
		return fmt.Errorf("validate catalog: missing %q cost factor set", DefaultCostSet)
	}

	return costest.ValidateSplits("validate catalog", doc.WorkingCapitalSplits)
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return New(doc)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Load reads the catalog at path, or returns the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Document returns a copy of the catalog's contents.
func (c *Catalog) Document() Document {
	return cloneDocument(c.doc)
}

// DefaultIndustry is the industry preselected in forms.
func (c *Catalog) DefaultIndustry() string {
	if c.doc.DefaultIndustry != "" {
		return c.doc.DefaultIndustry
	}
	return c.doc.LangFactors[0].Industry
}

// DefaultEquipment is the equipment type preselected in forms.
func (c *Catalog) DefaultEquipment() string {
	if c.doc.DefaultEquipment != "" || len(c.doc.ScalingExponents) == 0 {
		return c.doc.DefaultEquipment
	}
	return c.doc.ScalingExponents[0].Equipment
}

// Industries lists the industries in catalog order.
func (c *Catalog) Industries() []string {
	out := make([]string, len(c.doc.LangFactors))
	for i, f := range c.doc.LangFactors {
		out[i] = f.Industry
	}
	return out
}

// LangFactor returns the Lang factor for industry.
func (c *Catalog) LangFactor(industry string) (float64, bool) {
	v, ok := c.lang[industry]
	return v, ok
}

// EquipmentTypes lists the equipment types in catalog order.
func (c *Catalog) EquipmentTypes() []string {
	out := make([]string, len(c.doc.ScalingExponents))
	for i, e := range c.doc.ScalingExponents {
		out[i] = e.Equipment
	}
	return out
}

// ScalingExponent returns the capacity exponent for an equipment type.
func (c *Catalog) ScalingExponent(equipment string) (float64, bool) {
	v, ok := c.exponents[equipment]
	return v, ok
}

// CostFactors returns the category multipliers for industry, falling back
// to the default set.
func (c *Catalog) CostFactors(industry string) []costest.CategoryFactor {
	set, ok := c.costs[industry]
	if !ok {
		set = c.costs[DefaultCostSet]
	}
	return append([]costest.CategoryFactor(nil), set...)
}

// WorkingCapitalSplits returns the working-capital component shares.
func (c *Catalog) WorkingCapitalSplits() []costest.WorkingCapitalSplit {
	return append([]costest.WorkingCapitalSplit(nil), c.doc.WorkingCapitalSplits...)
}

func cloneDocument(d Document) Document {
	out := d
	out.LangFactors = append([]IndustryFactor(nil), d.LangFactors...)
	out.ScalingExponents = append([]EquipmentExponent(nil), d.ScalingExponents...)
	out.WorkingCapitalSplits = append([]costest.WorkingCapitalSplit(nil), d.WorkingCapitalSplits...)
	out.CostFactors = make([]CostFactorSet, len(d.CostFactors))
	for i, set := range d.CostFactors {
		out.CostFactors[i] = CostFactorSet{
			Industry:   set.Industry,
			Categories: append([]costest.CategoryFactor(nil), set.Categories...),
		}
	}
	return out
}
