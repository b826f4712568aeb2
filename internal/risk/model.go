// Package risk assembles a fixed-order feature vector from the current
// classifications and recent history, and scores it with a previously
// trained, versioned logistic model.
package risk

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/harikantbajaj/labsight/internal/report"
)

// FeatureVersion is the feature-vector layout this build understands. A
// model artifact declaring a different version is refused.
const FeatureVersion = "v1"

//go:embed model_v1.json
var defaultArtifact []byte

// Artifact is the serialized trained model: standard-scaler statistics and
// logistic regression coefficients, tagged with versions.
type Artifact struct {
	ModelVersion   string    `json:"model_version"`
	FeatureVersion string    `json:"feature_vector_version"`
	Features       []string  `json:"features"`
	Means          []float64 `json:"means"`
	Stddevs        []float64 `json:"stddevs"`
	Weights        []float64 `json:"weights"`
	Intercept      float64   `json:"intercept"`
}

// Predictor scores feature vectors with a loaded artifact. It is immutable
// after Load and safe for concurrent use.
type Predictor struct {
	artifact Artifact
}

// Load reads a model artifact from path, or the embedded default when path
// is empty. Version or shape mismatches surface as ErrModelUnavailable so
// callers degrade instead of failing the run.
func Load(path string) (*Predictor, error) {
	data := defaultArtifact
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrModelUnavailable, err)
		}
		data = b
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: parse artifact: %v", report.ErrModelUnavailable, err)
	}
	if a.FeatureVersion != FeatureVersion {
		return nil, fmt.Errorf("%w: artifact has feature version %q, need %q",
			report.ErrModelUnavailable, a.FeatureVersion, FeatureVersion)
	}
	n := len(a.Features)
	if n == 0 || len(a.Means) != n || len(a.Stddevs) != n || len(a.Weights) != n {
		return nil, fmt.Errorf("%w: artifact shape mismatch", report.ErrModelUnavailable)
	}
	for i, s := range a.Stddevs {
		if s <= 0 {
			return nil, fmt.Errorf("%w: non-positive stddev for %s", report.ErrModelUnavailable, a.Features[i])
		}
	}
	return &Predictor{artifact: a}, nil
}

// ModelVersion returns the loaded artifact's version tag.
func (p *Predictor) ModelVersion() string {
	return p.artifact.ModelVersion
}

// Score scales a feature vector and applies the logistic model. NaN
// entries are the missing-value sentinel and are imputed with the trained
// feature mean before scaling, never a raw zero.
func (p *Predictor) Score(vector []float64) (float64, error) {
	a := p.artifact
	if len(vector) != len(a.Features) {
		return 0, fmt.Errorf("feature vector has %d entries, model expects %d", len(vector), len(a.Features))
	}
	z := a.Intercept
	for i, v := range vector {
		if math.IsNaN(v) {
			v = a.Means[i]
		}
		z += a.Weights[i] * (v - a.Means[i]) / a.Stddevs[i]
	}
	return 1 / (1 + math.Exp(-z)), nil
}
