package trend

import (
	"testing"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func points(parameter string, daysAgo []float64, values []float64, now time.Time) []report.TrendPoint {
	out := make([]report.TrendPoint, len(values))
	for i := range values {
		out[i] = report.TrendPoint{
			Parameter: parameter,
			Value:     values[i],
			Timestamp: now.Add(-time.Duration(daysAgo[i]*24) * time.Hour),
		}
	}
	return out
}

func TestAnalyze_NoHistory(t *testing.T) {
	current := report.Classification{Parameter: "glucose", Value: 95, RangeLow: 70, RangeHigh: 100, HasRange: true}
	tr := Analyze(nil, current, t0, DefaultConfig())
	if tr.Direction != report.DirectionInsufficient {
		t.Errorf("expected Insufficient-Data, got %s", tr.Direction)
	}
	if tr.PointsUsed != 1 {
		t.Errorf("expected 1 point used, got %d", tr.PointsUsed)
	}
}

func TestAnalyze_RisingAboveMidpointIsWorsening(t *testing.T) {
	// Glucose climbing through the upper half of its 70-100 band.
	hist := points("glucose", []float64{90, 60, 30}, []float64{80, 85, 90}, t0)
	current := report.Classification{Parameter: "glucose", Value: 95, RangeLow: 70, RangeHigh: 100, HasRange: true}

	tr := Analyze(hist, current, t0, DefaultConfig())
	if tr.Direction != report.DirectionWorsening {
		t.Errorf("expected Worsening, got %s", tr.Direction)
	}
	if tr.RatePerDay <= 0 {
		t.Errorf("expected a positive rate, got %v", tr.RatePerDay)
	}
	if tr.PointsUsed != 4 {
		t.Errorf("expected 4 points used, got %d", tr.PointsUsed)
	}
}

func TestAnalyze_RisingTowardMidpointIsImproving(t *testing.T) {
	// HDL climbing from below its 40-60 band toward the midpoint: the raw
	// slope is positive but the band-relative reading is Improving.
	hist := points("hdl", []float64{90, 45}, []float64{32, 36}, t0)
	current := report.Classification{Parameter: "hdl", Value: 41, RangeLow: 40, RangeHigh: 60, HasRange: true}

	tr := Analyze(hist, current, t0, DefaultConfig())
	if tr.Direction != report.DirectionImproving {
		t.Errorf("expected Improving, got %s", tr.Direction)
	}
	if tr.RatePerDay <= 0 {
		t.Errorf("expected a positive raw rate, got %v", tr.RatePerDay)
	}
}

func TestAnalyze_FallingAboveMidpointIsImproving(t *testing.T) {
	hist := points("glucose", []float64{60, 30}, []float64{130, 120}, t0)
	current := report.Classification{Parameter: "glucose", Value: 110, RangeLow: 70, RangeHigh: 100, HasRange: true}

	tr := Analyze(hist, current, t0, DefaultConfig())
	if tr.Direction != report.DirectionImproving {
		t.Errorf("expected Improving, got %s", tr.Direction)
	}
	if tr.RatePerDay >= 0 {
		t.Errorf("expected a negative raw rate, got %v", tr.RatePerDay)
	}
}

func TestAnalyze_FlatSeriesIsStable(t *testing.T) {
	hist := points("glucose", []float64{60, 30}, []float64{95, 95}, t0)
	current := report.Classification{Parameter: "glucose", Value: 95, RangeLow: 70, RangeHigh: 100, HasRange: true}

	tr := Analyze(hist, current, t0, DefaultConfig())
	if tr.Direction != report.DirectionStable {
		t.Errorf("expected Stable, got %s", tr.Direction)
	}
}

func TestAnalyze_SinglePriorPointUsesPairSlope(t *testing.T) {
	hist := points("glucose", []float64{10}, []float64{85}, t0)
	current := report.Classification{Parameter: "glucose", Value: 95, RangeLow: 70, RangeHigh: 100, HasRange: true}

	tr := Analyze(hist, current, t0, DefaultConfig())
	if tr.PointsUsed != 2 {
		t.Fatalf("expected 2 points used, got %d", tr.PointsUsed)
	}
	// 85 -> 95 over 10 days is 1.0 per day, away from the 85 midpoint.
	if tr.RatePerDay < 0.99 || tr.RatePerDay > 1.01 {
		t.Errorf("expected rate near 1.0/day, got %v", tr.RatePerDay)
	}
	if tr.Direction != report.DirectionWorsening {
		t.Errorf("expected Worsening, got %s", tr.Direction)
	}
}

func TestAnalyze_WindowLimitsHistory(t *testing.T) {
	// With a window of 2 only the most recent prior points count.
	hist := points("glucose", []float64{300, 60, 30}, []float64{40, 95, 95}, t0)
	current := report.Classification{Parameter: "glucose", Value: 95, RangeLow: 70, RangeHigh: 100, HasRange: true}

	tr := Analyze(hist, current, t0, Config{Window: 2, StableEps: 0.05})
	if tr.PointsUsed != 3 {
		t.Errorf("expected 3 points used, got %d", tr.PointsUsed)
	}
	if tr.Direction != report.DirectionStable {
		t.Errorf("expected Stable inside the window, got %s", tr.Direction)
	}
}

func TestAnalyze_NoRangeReportsRateButStaysStable(t *testing.T) {
	hist := points("ferritin", []float64{30}, []float64{50}, t0)
	current := report.Classification{Parameter: "ferritin", Value: 80}

	tr := Analyze(hist, current, t0, DefaultConfig())
	if tr.Direction != report.DirectionStable {
		t.Errorf("expected Stable without a band, got %s", tr.Direction)
	}
	if tr.RatePerDay <= 0 {
		t.Errorf("expected the raw rate to be reported, got %v", tr.RatePerDay)
	}
}
