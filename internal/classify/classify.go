// Package classify selects the applicable reference range for a normalized
// measurement and produces a Low/Normal/High verdict. Boundary values are
// inclusive on both ends.
package classify

import (
	"errors"
	"fmt"

	"github.com/harikantbajaj/labsight/internal/refdata"
	"github.com/harikantbajaj/labsight/internal/report"
)

// ErrNoReferenceRange marks a parameter with no reference data at all. The
// measurement is still recorded with an Unclassifiable verdict.
var ErrNoReferenceRange = errors.New("no reference range")

// Classify looks up the most specific matching range for the subject and
// classifies the value against it. When demographics are absent or match
// nothing, the parameter's unfiltered default range applies.
func Classify(m report.NormalizedMeasurement, demo report.Demographics, tables *refdata.Tables) (report.Classification, error) {
	param, ok := tables.ParameterByCode(m.Parameter)
	if !ok {
		return report.Classification{}, fmt.Errorf("unknown parameter code %q", m.Parameter)
	}

	cls := report.Classification{
		Parameter: param.Code,
		Display:   param.DisplayName,
		Value:     m.Value,
		Unit:      param.CanonicalUnit,
	}

	rng, ok := selectRange(tables.RangesFor(m.Parameter), demo)
	if !ok {
		cls.Verdict = report.VerdictUnclassifiable
		return cls, fmt.Errorf("%w for %s", ErrNoReferenceRange, m.Parameter)
	}

	cls.RangeLow = rng.Low
	cls.RangeHigh = rng.High
	cls.HasRange = true

	switch {
	case m.Value < rng.Low:
		cls.Verdict = report.VerdictLow
	case m.Value > rng.High:
		cls.Verdict = report.VerdictHigh
	default:
		cls.Verdict = report.VerdictNormal
	}
	return cls, nil
}

// selectRange picks the matching range with the most demographic
// constraints satisfied. Ties go to the earliest declared range.
func selectRange(candidates []refdata.Range, demo report.Demographics) (refdata.Range, bool) {
	var best refdata.Range
	bestScore := -1
	for _, r := range candidates {
		score, ok := match(r, demo)
		if ok && score > bestScore {
			best, bestScore = r, score
		}
	}
	return best, bestScore >= 0
}

// match reports whether a range's filter admits the subject and how many
// constraints it imposes. Constrained ranges never admit subjects with the
// relevant demographic missing.
func match(r refdata.Range, demo report.Demographics) (int, bool) {
	score := 0
	if r.Sex != report.SexUnknown {
		if demo.Sex != r.Sex {
			return 0, false
		}
		score++
	}
	if r.MinAge > 0 || r.MaxAge > 0 {
		if demo.Age <= 0 {
			return 0, false
		}
		if r.MinAge > 0 && demo.Age < r.MinAge {
			return 0, false
		}
		if r.MaxAge > 0 && demo.Age > r.MaxAge {
			return 0, false
		}
		score++
	}
	return score, true
}
