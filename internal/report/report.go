// Package report defines the domain types shared by the analysis pipeline:
// the input document, extracted text, measurements at each stage of
// normalization, and the structured run result.
package report

import (
	"errors"
	"time"
)

// Format is the declared format of an uploaded document.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatImage    Format = "image"
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "markdown"
)

// Document is an opaque byte payload with its declared format. It is owned
// by a single pipeline run and discarded after extraction.
type Document struct {
	Data     []byte
	Format   Format
	Filename string
}

// Line is one extracted text line with positional metadata.
// Confidence is 1.0 for digital text layers and the recognition engine's
// reported (or assumed) confidence for OCR output.
type Line struct {
	Text       string
	Page       int
	Number     int // 1-based line number within the document
	Confidence float64
}

// ExtractionResult is the ordered line sequence produced from one Document.
type ExtractionResult struct {
	Lines      []Line
	Pages      int
	Recognized bool // true if any page went through image recognition
}

// RawMeasurement is an unvalidated {label, value, unit} candidate found by
// the measurement scanner. It carries a reference to its source line.
type RawMeasurement struct {
	Label string
	Value float64
	Unit  string
	Line  int
	Page  int
}

// NormalizedMeasurement is a mapped measurement expressed in the parameter's
// canonical unit.
type NormalizedMeasurement struct {
	Parameter    string // canonical parameter code
	Value        float64
	OriginalUnit string
	Converted    bool
	Line         int
}

// Sex is the subject's sex as relevant to reference-range selection.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = ""
)

// Demographics is the optional subject context used for range selection.
// Age zero means unknown.
type Demographics struct {
	Age int
	Sex Sex
}

// Verdict classifies a normalized value against its reference range.
type Verdict string

const (
	VerdictLow            Verdict = "Low"
	VerdictNormal         Verdict = "Normal"
	VerdictHigh           Verdict = "High"
	VerdictUnclassifiable Verdict = "Unclassifiable"
)

// Classification is the verdict for one measurement together with the range
// that produced it. RangeLow/RangeHigh are zero when no range applied.
type Classification struct {
	Parameter string  `json:"parameter"`
	Display   string  `json:"display_name"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	RangeLow  float64 `json:"range_low"`
	RangeHigh float64 `json:"range_high"`
	HasRange  bool    `json:"has_range"`
	Verdict   Verdict `json:"verdict"`
}

// Insight is one narrative finding derived from the classification set.
type Insight struct {
	Text           string   `json:"text"`
	Recommendation string   `json:"recommendation,omitempty"`
	Parameters     []string `json:"parameters"`
}

// TrendPoint is one historical value for a (user, parameter) pair.
type TrendPoint struct {
	Parameter string    `json:"parameter"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Direction is the band-relative reading of a parameter's trajectory.
type Direction string

const (
	DirectionImproving    Direction = "Improving"
	DirectionWorsening    Direction = "Worsening"
	DirectionStable       Direction = "Stable"
	DirectionInsufficient Direction = "Insufficient-Data"
)

// Trend is the computed trajectory for one parameter.
type Trend struct {
	Parameter  string    `json:"parameter"`
	Direction  Direction `json:"direction"`
	RatePerDay float64   `json:"rate_per_day"`
	PointsUsed int       `json:"points_used"`
}

// RiskAssessment is the model's probability-like score for one run.
type RiskAssessment struct {
	Score          float64 `json:"score"`
	FeatureVersion string  `json:"feature_vector_version"`
	ModelVersion   string  `json:"model_version"`
}

// WarningCode identifies a non-fatal, measurement-level issue.
type WarningCode string

const (
	WarnUnmappedParameter WarningCode = "unmapped_parameter"
	WarnUnsupportedUnit   WarningCode = "unsupported_unit"
	WarnNoReferenceRange  WarningCode = "no_reference_range"
)

// Warning records a measurement-level issue collected during a run.
type Warning struct {
	Code    WarningCode `json:"code"`
	Label   string      `json:"label,omitempty"`
	Message string      `json:"message"`
}

// Result is the full output of one pipeline run. Risk is nil when the run
// completed in degraded mode (model unavailable).
type Result struct {
	ReportID        string           `json:"report_id"`
	UserID          string           `json:"user_id"`
	Classifications []Classification `json:"classifications"`
	Insights        []Insight        `json:"insights"`
	Trends          map[string]Trend `json:"trends"`
	Risk            *RiskAssessment  `json:"risk,omitempty"`
	Degraded        bool             `json:"degraded"`
	Warnings        []Warning        `json:"warnings"`
	Recognized      bool             `json:"recognized"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Document-level failures abort a run; the warning codes above never do.
var (
	ErrExtractionFailure = errors.New("extraction failed")
	ErrExtractionTimeout = errors.New("extraction timed out")
	ErrNoMeasurements    = errors.New("no measurements found")
	ErrModelUnavailable  = errors.New("risk model unavailable")
)
