// Package mapper resolves raw measurement labels to canonical parameter
// codes and normalizes values into each parameter's canonical unit.
package mapper

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
	"github.com/harikantbajaj/labsight/internal/refdata"
	"github.com/harikantbajaj/labsight/internal/report"
)

// Per-measurement failures; the pipeline records them as warnings and
// continues with sibling measurements.
var (
	ErrUnmapped        = errors.New("unmapped parameter")
	ErrUnsupportedUnit = errors.New("unsupported unit")
)

// Mapper matches labels against the alias table: exact folded match first,
// then an edit-distance-bounded fuzzy pass.
type Mapper struct {
	tables      *refdata.Tables
	maxDistance int
}

// New creates a mapper. maxDistance bounds the fuzzy pass; values below 1
// fall back to the default of 2.
func New(tables *refdata.Tables, maxDistance int) *Mapper {
	if maxDistance < 1 {
		maxDistance = 2
	}
	return &Mapper{tables: tables, maxDistance: maxDistance}
}

// Map resolves one raw measurement. It returns ErrUnmapped when no alias is
// close enough and ErrUnsupportedUnit when the unit has no conversion to
// the canonical unit.
func (m *Mapper) Map(raw report.RawMeasurement) (report.NormalizedMeasurement, error) {
	param, ok := m.resolve(raw.Label)
	if !ok {
		return report.NormalizedMeasurement{}, fmt.Errorf("%w: %q", ErrUnmapped, raw.Label)
	}

	value, converted, err := m.normalize(param, raw.Value, raw.Unit)
	if err != nil {
		return report.NormalizedMeasurement{}, err
	}

	return report.NormalizedMeasurement{
		Parameter:    param.Code,
		Value:        value,
		OriginalUnit: raw.Unit,
		Converted:    converted,
		Line:         raw.Line,
	}, nil
}

// resolve finds the canonical parameter for a label. The fuzzy pass
// additionally requires the distance to stay within a third of the alias
// length, so short aliases cannot absorb unrelated labels. Aliases are
// visited in lexicographic order and only strictly closer matches replace
// the current best, so equidistant candidates resolve to the smallest
// alias and the same label always maps to the same parameter.
func (m *Mapper) resolve(label string) (*refdata.Parameter, bool) {
	if p, ok := m.tables.ParameterByAlias(label); ok {
		return p, true
	}

	folded := refdata.Fold(label)
	if folded == "" {
		return nil, false
	}

	var best *refdata.Parameter
	bestDist := m.maxDistance + 1
	for _, alias := range m.tables.FoldedAliases() {
		limit := m.maxDistance
		if l := len(alias) / 3; l < limit {
			limit = l
		}
		if limit == 0 {
			continue
		}
		d := levenshtein.ComputeDistance(folded, alias)
		if d <= limit && d < bestDist {
			p, _ := m.tables.ParameterByAlias(alias)
			best, bestDist = p, d
		}
	}
	return best, best != nil
}

// normalize converts value into the parameter's canonical unit. An empty
// unit is taken to already be canonical, which matches how most printed
// reports omit units the lab considers implied.
func (m *Mapper) normalize(p *refdata.Parameter, value float64, unit string) (float64, bool, error) {
	if unit == "" || refdata.FoldUnit(unit) == refdata.FoldUnit(p.CanonicalUnit) {
		return value, false, nil
	}
	factor, ok := m.tables.ConversionFactor(p.Code, unit)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q has no conversion to %s for %s",
			ErrUnsupportedUnit, unit, p.CanonicalUnit, p.Code)
	}
	return value * factor, true, nil
}
