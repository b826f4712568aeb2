// Package insights derives narrative findings from a document's
// classification set using the declarative rule table in the reference
// data. Rules are evaluated in declaration order and every matching rule
// fires; none of the emitted text claims a diagnosis.
package insights

import (
	"github.com/harikantbajaj/labsight/internal/refdata"
	"github.com/harikantbajaj/labsight/internal/report"
)

// disclaimer trails every non-empty insight list.
const disclaimer = "These observations are informational only and are not a medical diagnosis; review the full report with a clinician."

// Evaluate runs the rule table over a classification set and returns the
// findings in rule-declaration order.
func Evaluate(classifications []report.Classification, tables *refdata.Tables) []report.Insight {
	verdicts := make(map[string]report.Verdict, len(classifications))
	for _, c := range classifications {
		verdicts[c.Parameter] = c.Verdict
	}

	var out []report.Insight
	for _, rule := range tables.Insights {
		if !fires(rule, verdicts) {
			continue
		}
		params := make([]string, 0, len(rule.When))
		for _, cond := range rule.When {
			params = append(params, cond.Parameter)
		}
		out = append(out, report.Insight{
			Text:           rule.Text,
			Recommendation: rule.Recommendation,
			Parameters:     params,
		})
	}

	if len(out) > 0 {
		out = append(out, report.Insight{Text: disclaimer})
	}
	return out
}

func fires(rule refdata.InsightRule, verdicts map[string]report.Verdict) bool {
	if len(rule.When) == 0 {
		return false
	}
	for _, cond := range rule.When {
		if verdicts[cond.Parameter] != cond.Verdict {
			return false
		}
	}
	return true
}
