// Package refdata loads the static reference tables the pipeline depends on:
// canonical parameters with their alias sets, unit conversions, demographic
// reference ranges, and insight rules. Tables are loaded once and treated as
// immutable; hot reload swaps a whole new table set atomically.
package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"github.com/harikantbajaj/labsight/internal/report"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Parameter is one canonical clinical parameter.
type Parameter struct {
	Code          string   `yaml:"code"`
	DisplayName   string   `yaml:"display_name"`
	CanonicalUnit string   `yaml:"canonical_unit"`
	Aliases       []string `yaml:"aliases"`
}

// Conversion converts a value in From units to the parameter's canonical
// unit by multiplying with Factor.
type Conversion struct {
	Parameter string  `yaml:"parameter"`
	From      string  `yaml:"from"`
	Factor    float64 `yaml:"factor"`
}

// Range is one reference range, optionally restricted by sex and age bounds.
// MinAge/MaxAge of zero mean unbounded. Declaration order is the tie-break
// when two ranges are equally specific.
type Range struct {
	Parameter string     `yaml:"parameter"`
	Sex       report.Sex `yaml:"sex"`
	MinAge    int        `yaml:"min_age"`
	MaxAge    int        `yaml:"max_age"`
	Low       float64    `yaml:"low"`
	High      float64    `yaml:"high"`
}

// Condition is one {parameter, verdict} precondition of an insight rule.
type Condition struct {
	Parameter string         `yaml:"parameter"`
	Verdict   report.Verdict `yaml:"verdict"`
}

// InsightRule fires when every condition matches. Rules are evaluated in
// declaration order and all matching rules fire.
type InsightRule struct {
	When           []Condition `yaml:"when"`
	Text           string      `yaml:"text"`
	Recommendation string      `yaml:"recommendation"`
}

// Tables is one immutable, fully-indexed snapshot of the reference data.
type Tables struct {
	Parameters []Parameter   `yaml:"parameters"`
	Conversion []Conversion  `yaml:"conversions"`
	Ranges     []Range       `yaml:"ranges"`
	Insights   []InsightRule `yaml:"insights"`

	byCode  map[string]*Parameter
	byAlias map[string]*Parameter
	aliases []string // folded alias keys, sorted
	ranges  map[string][]Range
	factors map[string]map[string]float64
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	data := defaultTables
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read reference tables: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and indexes a YAML table set.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse reference tables: %w", err)
	}
	if len(t.Parameters) == 0 {
		return nil, fmt.Errorf("reference tables define no parameters")
	}

	t.byCode = make(map[string]*Parameter, len(t.Parameters))
	t.byAlias = make(map[string]*Parameter)
	for i := range t.Parameters {
		p := &t.Parameters[i]
		if p.Code == "" || p.CanonicalUnit == "" {
			return nil, fmt.Errorf("parameter %d: code and canonical_unit are required", i)
		}
		if _, dup := t.byCode[p.Code]; dup {
			return nil, fmt.Errorf("duplicate parameter code %q", p.Code)
		}
		t.byCode[p.Code] = p
		t.byAlias[Fold(p.Code)] = p
		t.byAlias[Fold(p.DisplayName)] = p
		for _, a := range p.Aliases {
			t.byAlias[Fold(a)] = p
		}
	}

	t.aliases = make([]string, 0, len(t.byAlias))
	for a := range t.byAlias {
		t.aliases = append(t.aliases, a)
	}
	sort.Strings(t.aliases)

	t.ranges = make(map[string][]Range)
	for _, r := range t.Ranges {
		if _, ok := t.byCode[r.Parameter]; !ok {
			return nil, fmt.Errorf("range references unknown parameter %q", r.Parameter)
		}
		if r.High < r.Low {
			return nil, fmt.Errorf("range for %q: high %v below low %v", r.Parameter, r.High, r.Low)
		}
		t.ranges[r.Parameter] = append(t.ranges[r.Parameter], r)
	}

	t.factors = make(map[string]map[string]float64)
	for _, c := range t.Conversion {
		if _, ok := t.byCode[c.Parameter]; !ok {
			return nil, fmt.Errorf("conversion references unknown parameter %q", c.Parameter)
		}
		if c.Factor == 0 {
			return nil, fmt.Errorf("conversion for %q from %q has zero factor", c.Parameter, c.From)
		}
		m := t.factors[c.Parameter]
		if m == nil {
			m = make(map[string]float64)
			t.factors[c.Parameter] = m
		}
		m[FoldUnit(c.From)] = c.Factor
	}

	return &t, nil
}

// ParameterByCode returns the parameter for a canonical code.
func (t *Tables) ParameterByCode(code string) (*Parameter, bool) {
	p, ok := t.byCode[code]
	return p, ok
}

// ParameterByAlias returns the parameter whose folded alias set contains the
// folded form of label.
func (t *Tables) ParameterByAlias(label string) (*Parameter, bool) {
	p, ok := t.byAlias[Fold(label)]
	return p, ok
}

// FoldedAliases returns every folded alias in lexicographic order, for
// fuzzy matching passes. The slice is a copy; resolve entries through
// ParameterByAlias.
func (t *Tables) FoldedAliases() []string {
	return append([]string(nil), t.aliases...)
}

// RangesFor returns the declared reference ranges for a parameter, in
// declaration order.
func (t *Tables) RangesFor(code string) []Range {
	return t.ranges[code]
}

// ConversionFactor returns the multiplier that converts a value in unit
// to the parameter's canonical unit.
func (t *Tables) ConversionFactor(code, unit string) (float64, bool) {
	f, ok := t.factors[code][FoldUnit(unit)]
	return f, ok
}

// Provider hands out the current table snapshot and supports atomic swap
// for hot reload. Reads are safe for unsynchronized concurrent use.
type Provider struct {
	p atomic.Pointer[Tables]
}

// NewProvider creates a provider serving the given tables.
func NewProvider(t *Tables) *Provider {
	pr := &Provider{}
	pr.p.Store(t)
	return pr
}

// Tables returns the current immutable snapshot.
func (pr *Provider) Tables() *Tables {
	return pr.p.Load()
}

// Swap atomically replaces the served table set.
func (pr *Provider) Swap(t *Tables) {
	pr.p.Store(t)
}
