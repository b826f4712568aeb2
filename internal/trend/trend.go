// Package trend computes the band-relative trajectory of a parameter from
// its historical points plus the newly classified value. Direction is read
// against the reference band, not the raw value: a value drifting toward
// the band midpoint is Improving regardless of sign, so a rising HDL and a
// falling glucose can both read Improving.
package trend

import (
	"math"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
	"gonum.org/v1/gonum/stat"
)

// Config controls the analysis window and the stability threshold.
type Config struct {
	// Window is the number of most recent history points considered.
	// Zero means all history.
	Window int
	// StableEps is the band-drift rate (canonical units per day) below
	// which a trajectory reads Stable.
	StableEps float64
}

// DefaultConfig returns the defaults used when config is zero-valued.
func DefaultConfig() Config {
	return Config{Window: 0, StableEps: 0.05}
}

// Analyze computes the trend for one (user, parameter) history, ascending
// by timestamp, extended with the current classification taken at now.
// Fewer than one prior point yields Insufficient-Data; exactly one prior
// point is a simple sign comparison; two or more fit a regression line.
func Analyze(history []report.TrendPoint, current report.Classification, now time.Time, cfg Config) report.Trend {
	if cfg.StableEps <= 0 {
		cfg.StableEps = DefaultConfig().StableEps
	}
	if cfg.Window > 0 && len(history) > cfg.Window {
		history = history[len(history)-cfg.Window:]
	}

	t := report.Trend{
		Parameter:  current.Parameter,
		PointsUsed: len(history) + 1,
	}

	if len(history) == 0 {
		t.Direction = report.DirectionInsufficient
		return t
	}

	points := make([]report.TrendPoint, 0, len(history)+1)
	points = append(points, history...)
	points = append(points, report.TrendPoint{
		Parameter: current.Parameter,
		Value:     current.Value,
		Timestamp: now,
	})

	var rate float64
	if len(points) == 2 {
		rate = pairSlope(points[0], points[1])
	} else {
		rate = regressionSlope(points)
	}
	t.RatePerDay = rate

	if !current.HasRange {
		// Without a band the band-relative reading is undefined; the rate
		// is still reported.
		t.Direction = report.DirectionStable
		return t
	}

	mid := (current.RangeLow + current.RangeHigh) / 2
	drift := bandDriftRate(points, rate, mid)
	switch {
	case math.Abs(drift) < cfg.StableEps:
		t.Direction = report.DirectionStable
	case drift > 0:
		t.Direction = report.DirectionWorsening
	default:
		t.Direction = report.DirectionImproving
	}
	return t
}

// pairSlope is the per-day change between two points.
func pairSlope(a, b report.TrendPoint) float64 {
	days := b.Timestamp.Sub(a.Timestamp).Hours() / 24
	if days <= 0 {
		return 0
	}
	return (b.Value - a.Value) / days
}

// regressionSlope fits value over time (days since the first point) by
// ordinary least squares and returns the slope in units per day.
func regressionSlope(points []report.TrendPoint) float64 {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	origin := points[0].Timestamp
	for i, p := range points {
		xs[i] = p.Timestamp.Sub(origin).Hours() / 24
		ys[i] = p.Value
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0
	}
	return beta
}

// bandDriftRate is the rate at which the latest value's distance to the
// band midpoint is changing: positive means moving away from the Normal
// band (Worsening), negative means moving toward it.
func bandDriftRate(points []report.TrendPoint, rate, mid float64) float64 {
	latest := points[len(points)-1].Value
	if latest == mid {
		// Sitting on the midpoint; any movement is away from it.
		return math.Abs(rate)
	}
	if latest > mid {
		return rate
	}
	return -rate
}
