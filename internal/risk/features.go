package risk

import (
	"math"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
)

// Sentinel marks a feature absent from both the current document and
// recent history. The scorer imputes it with the trained mean; a raw zero
// would silently bias the model.
var Sentinel = math.NaN()

// DefaultMaxHistoryAge bounds how stale a history value may be before it
// stops standing in for a missing current measurement.
const DefaultMaxHistoryAge = 90 * 24 * time.Hour

// Assess builds the fixed-order feature vector from the current
// classification set, backfilling gaps from recent history, and scores it.
// A nil predictor reports ErrModelUnavailable, which degrades the run's
// output rather than failing it.
func Assess(p *Predictor, classifications []report.Classification, history map[string][]report.TrendPoint, now time.Time, maxAge time.Duration) (report.RiskAssessment, error) {
	if p == nil {
		return report.RiskAssessment{}, report.ErrModelUnavailable
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxHistoryAge
	}

	current := make(map[string]float64, len(classifications))
	for _, c := range classifications {
		current[c.Parameter] = c.Value
	}

	vector := make([]float64, len(p.artifact.Features))
	for i, feature := range p.artifact.Features {
		if v, ok := current[feature]; ok {
			vector[i] = v
			continue
		}
		if v, ok := latestRecent(history[feature], now, maxAge); ok {
			vector[i] = v
			continue
		}
		vector[i] = Sentinel
	}

	score, err := p.Score(vector)
	if err != nil {
		return report.RiskAssessment{}, err
	}
	return report.RiskAssessment{
		Score:          score,
		FeatureVersion: p.artifact.FeatureVersion,
		ModelVersion:   p.artifact.ModelVersion,
	}, nil
}

// latestRecent returns the newest history value, unless it is older than
// maxAge. Points arrive ascending by timestamp.
func latestRecent(points []report.TrendPoint, now time.Time, maxAge time.Duration) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	last := points[len(points)-1]
	if now.Sub(last.Timestamp) > maxAge {
		return 0, false
	}
	return last.Value, true
}
