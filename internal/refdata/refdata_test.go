package refdata

import (
	"sort"
	"testing"

	"github.com/harikantbajaj/labsight/internal/report"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.Parameters) == 0 {
		t.Fatal("expected embedded tables to define parameters")
	}
	for _, code := range []string{"hemoglobin", "wbc", "rbc", "platelets", "glucose", "cholesterol", "hdl", "ldl", "triglycerides"} {
		if _, ok := tables.ParameterByCode(code); !ok {
			t.Errorf("expected parameter %q in embedded tables", code)
		}
	}
}

func TestParse_AliasLookupIsFolded(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		label string
		code  string
	}{
		{"Glucose", "glucose"},
		{"GLUCOSE", "glucose"},
		{"gluc.", "glucose"},
		{"  Hemoglobin  ", "hemoglobin"},
		{"HDL Cholesterol", "hdl"},
		{"White Blood Cells", "wbc"},
	}
	for _, c := range cases {
		p, ok := tables.ParameterByAlias(c.label)
		if !ok {
			t.Errorf("expected alias %q to resolve", c.label)
			continue
		}
		if p.Code != c.code {
			t.Errorf("alias %q: expected code %q, got %q", c.label, c.code, p.Code)
		}
	}
}

func TestParse_ConversionFactors(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, ok := tables.ConversionFactor("glucose", "mmol/L")
	if !ok {
		t.Fatal("expected a glucose mmol/L conversion")
	}
	if f < 18.0 || f > 18.1 {
		t.Errorf("expected glucose mmol/L factor near 18.02, got %v", f)
	}

	// Unit folding makes the lookup case and micro-sign insensitive.
	if _, ok := tables.ConversionFactor("platelets", "/µL"); !ok {
		t.Error("expected a platelets /µL conversion")
	}
	if _, ok := tables.ConversionFactor("platelets", "/uL"); !ok {
		t.Error("expected /uL to fold onto the /µL conversion")
	}
	if _, ok := tables.ConversionFactor("glucose", "furlongs"); ok {
		t.Error("expected no conversion for an unknown unit")
	}
}

func TestFoldedAliases_SortedAndDetached(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aliases := tables.FoldedAliases()
	if len(aliases) == 0 {
		t.Fatal("expected aliases from the embedded tables")
	}
	if !sort.StringsAreSorted(aliases) {
		t.Error("expected aliases in lexicographic order")
	}
	for _, a := range aliases {
		if _, ok := tables.ParameterByAlias(a); !ok {
			t.Errorf("expected alias %q to resolve through ParameterByAlias", a)
		}
	}

	// Mutating the returned slice must not touch the table set.
	aliases[0] = "zzz-mutated"
	if again := tables.FoldedAliases(); again[0] == "zzz-mutated" {
		t.Error("expected FoldedAliases to return a copy")
	}
}

func TestParse_RejectsMalformedTables(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no parameters", `parameters: []`},
		{"missing canonical unit", `
parameters:
  - code: glucose
    display_name: Glucose
`},
		{"duplicate code", `
parameters:
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
`},
		{"range for unknown parameter", `
parameters:
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
ranges:
  - {parameter: sodium, low: 1, high: 2}
`},
		{"inverted range", `
parameters:
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
ranges:
  - {parameter: glucose, low: 100, high: 70}
`},
		{"zero conversion factor", `
parameters:
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
conversions:
  - {parameter: glucose, from: mmol/L, factor: 0}
`},
	}
	for _, c := range cases {
		if _, err := Parse([]byte(c.data)); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}

func TestFold_NormalizesLabels(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Glucose", "glucose"},
		{"  HDL   Cholesterol ", "hdl cholesterol"},
		{"Gluc.", "gluc"},
		{"WBC:", "wbc"},
	}
	for _, c := range cases {
		if got := Fold(c.in); got != c.want {
			t.Errorf("Fold(%q): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestFoldUnit_MicroSignVariants(t *testing.T) {
	if FoldUnit("thousand/uL") != FoldUnit("thousand/µL") {
		t.Error("expected /uL and /µL to fold identically")
	}
	if FoldUnit("MG/DL") != FoldUnit("mg/dL") {
		t.Error("expected unit folding to be case insensitive")
	}
}

func TestProvider_SwapIsVisible(t *testing.T) {
	t1, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t2, err := Parse([]byte(`
parameters:
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pr := NewProvider(t1)
	if pr.Tables() != t1 {
		t.Fatal("expected provider to serve the initial tables")
	}
	pr.Swap(t2)
	if pr.Tables() != t2 {
		t.Fatal("expected provider to serve the swapped tables")
	}
}

func TestRangesFor_DeclarationOrderPreserved(t *testing.T) {
	tables, err := Parse([]byte(`
parameters:
  - {code: glucose, display_name: Glucose, canonical_unit: mg/dL}
ranges:
  - {parameter: glucose, sex: male, low: 1, high: 2}
  - {parameter: glucose, low: 3, high: 4}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ranges := tables.RangesFor("glucose")
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(ranges))
	}
	if ranges[0].Sex != report.SexMale || ranges[1].Sex != report.SexUnknown {
		t.Error("expected ranges to keep declaration order")
	}
}
