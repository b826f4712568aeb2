// Package measure scans extracted lines for {label, value, unit} candidates.
// The grammar tolerates common recognition artifacts; lines matching nothing
// are dropped silently since documents are mostly headers and boilerplate.
package measure

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/harikantbajaj/labsight/internal/refdata"
	"github.com/harikantbajaj/labsight/internal/report"
)

// lineRe matches "label [:|-] value [unit]" with optional trailing noise
// such as a printed reference interval. The label must start with a letter
// and stops at the first numeric token.
var lineRe = regexp.MustCompile(
	`^\s*([A-Za-z][A-Za-z .()/%+-]{0,49}?)\s*[:\-–]?\s+` + // label
		`([0-9OoIl]+(?:[.,][0-9OoIl]+)?)` + // value, possibly with OCR artifacts
		`(?:\s*([A-Za-zµμ%][A-Za-zµμ0-9/^.%-]*|/[A-Za-zµμ][A-Za-zµμ0-9^]*))?`, // unit
)

// labelOnlyRe matches a line holding just a label (often ending in a
// colon), whose value sits on the following line.
var labelOnlyRe = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z .()/%+-]{0,49}?)\s*:?\s*$`)

// valueOnlyRe matches a line holding just a value and optional unit.
var valueOnlyRe = regexp.MustCompile(
	`^\s*([0-9OoIl]+(?:[.,][0-9OoIl]+)?)(?:\s*([A-Za-zµμ%][A-Za-zµμ0-9/^.%-]*))?\s*$`)

// Scan walks the extracted lines in order and returns the raw measurement
// candidates. Duplicate labels keep the last occurrence. It fails with
// ErrNoMeasurements only when the whole document yields zero candidates.
func Scan(res *report.ExtractionResult) ([]report.RawMeasurement, error) {
	var out []report.RawMeasurement
	seen := make(map[string]int) // folded label -> index in out

	record := func(m report.RawMeasurement) {
		key := refdata.Fold(m.Label)
		if key == "" {
			return
		}
		if i, dup := seen[key]; dup {
			// A restated label is assumed to be a correction.
			out[i] = m
			return
		}
		seen[key] = len(out)
		out = append(out, m)
	}

	for i := 0; i < len(res.Lines); i++ {
		line := res.Lines[i]

		if m, ok := matchLine(line); ok {
			record(m)
			continue
		}

		// Two-line layout: label on this line, value on the next.
		if i+1 < len(res.Lines) {
			if lm := labelOnlyRe.FindStringSubmatch(line.Text); lm != nil {
				next := res.Lines[i+1]
				if vm := valueOnlyRe.FindStringSubmatch(next.Text); vm != nil {
					value, err := parseValue(vm[1])
					if err == nil {
						record(report.RawMeasurement{
							Label: strings.TrimSpace(lm[1]),
							Value: value,
							Unit:  vm[2],
							Line:  line.Number,
							Page:  line.Page,
						})
						i++ // consume the value line
					}
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, report.ErrNoMeasurements
	}
	return out, nil
}

func matchLine(line report.Line) (report.RawMeasurement, bool) {
	m := lineRe.FindStringSubmatch(line.Text)
	if m == nil {
		return report.RawMeasurement{}, false
	}
	value, err := parseValue(m[2])
	if err != nil {
		return report.RawMeasurement{}, false
	}
	label := strings.TrimSpace(m[1])
	if label == "" {
		return report.RawMeasurement{}, false
	}
	return report.RawMeasurement{
		Label: label,
		Value: value,
		Unit:  m[3],
		Line:  line.Number,
		Page:  line.Page,
	}, true
}

// parseValue repairs recognition artifacts in a numeric token and parses
// it. O/o become 0, I/l become 1, and a comma acts as either a thousands
// separator (three trailing digits) or a decimal comma.
func parseValue(token string) (float64, error) {
	// A token of artifacts alone ("o", "Il") is almost always prose, not a
	// mangled number.
	if !strings.ContainsAny(token, "0123456789") {
		return 0, fmt.Errorf("no digits in value %q", token)
	}
	repaired := strings.NewReplacer("O", "0", "o", "0", "I", "1", "l", "1").Replace(token)

	if i := strings.IndexByte(repaired, ','); i >= 0 {
		if len(repaired)-i-1 == 3 && !strings.ContainsRune(repaired, '.') {
			repaired = strings.Replace(repaired, ",", "", 1)
		} else {
			repaired = strings.Replace(repaired, ",", ".", 1)
		}
	}

	v, err := strconv.ParseFloat(repaired, 64)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", token, err)
	}
	return v, nil
}
