package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/harikantbajaj/labsight/internal/classify"
	"github.com/harikantbajaj/labsight/internal/config"
	"github.com/harikantbajaj/labsight/internal/extract"
	"github.com/harikantbajaj/labsight/internal/history"
	"github.com/harikantbajaj/labsight/internal/insights"
	"github.com/harikantbajaj/labsight/internal/mapper"
	"github.com/harikantbajaj/labsight/internal/measure"
	"github.com/harikantbajaj/labsight/internal/refdata"
	"github.com/harikantbajaj/labsight/internal/report"
	"github.com/harikantbajaj/labsight/internal/risk"
	"github.com/harikantbajaj/labsight/internal/trend"
)

// Runner executes the analysis pipeline for one document:
// extract → parse → map → classify → insight → trend → risk.
// It holds only immutable collaborators, so runs may proceed fully in
// parallel; the history store provides the one serialized append.
type Runner struct {
	engine *extract.Engine
	ref    *refdata.Provider
	model  *risk.Predictor // nil runs in degraded mode
	store  history.Store
	log    *slog.Logger
	cfg    config.Config
	stats  *StageStats
}

func NewRunner(engine *extract.Engine, ref *refdata.Provider, model *risk.Predictor, store history.Store, log *slog.Logger, cfg config.Config) *Runner {
	return &Runner{
		engine: engine,
		ref:    ref,
		model:  model,
		store:  store,
		log:    log,
		cfg:    cfg,
		stats:  NewStageStats(time.Hour),
	}
}

// Stats exposes the rolling stage latency aggregates.
func (r *Runner) Stats() *StageStats {
	return r.stats
}

// Run processes one document for one user. onPhase, when non-nil, is
// notified as the run moves through its stages. Document-level failures
// return a typed error; measurement-level issues are collected as warnings
// on the result.
func (r *Runner) Run(ctx context.Context, doc report.Document, demo report.Demographics, userID string, onPhase func(string)) (*report.Result, error) {
	phase := func(p string) {
		if onPhase != nil {
			onPhase(p)
		}
	}
	now := time.Now()
	tables := r.ref.Tables()

	result := &report.Result{
		ReportID:  uuid.NewString(),
		UserID:    userID,
		Trends:    make(map[string]report.Trend),
		Warnings:  []report.Warning{},
		CreatedAt: now,
	}

	// History is read once, up front, as a consistent snapshot.
	hist, err := r.store.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("history snapshot: %w", err)
	}

	// Stage 1: extraction.
	phase("extracting")
	extracted, err := r.timedExtract(ctx, doc)
	if err != nil {
		return nil, err
	}
	result.Recognized = extracted.Recognized

	// Stage 2: measurement scanning.
	phase("parsing")
	start := time.Now()
	raws, err := measure.Scan(extracted)
	r.stats.Record("parse", time.Since(start))
	if err != nil {
		return nil, err
	}

	// Stage 3: mapping and unit normalization.
	phase("mapping")
	start = time.Now()
	m := mapper.New(tables, r.cfg.AliasMaxDistance)
	var normalized []report.NormalizedMeasurement
	for _, raw := range raws {
		nm, err := m.Map(raw)
		switch {
		case errors.Is(err, mapper.ErrUnmapped):
			result.Warnings = append(result.Warnings, report.Warning{
				Code:    report.WarnUnmappedParameter,
				Label:   raw.Label,
				Message: err.Error(),
			})
		case errors.Is(err, mapper.ErrUnsupportedUnit):
			result.Warnings = append(result.Warnings, report.Warning{
				Code:    report.WarnUnsupportedUnit,
				Label:   raw.Label,
				Message: err.Error(),
			})
		case err != nil:
			return nil, fmt.Errorf("map %q: %w", raw.Label, err)
		default:
			normalized = append(normalized, nm)
		}
	}
	r.stats.Record("map", time.Since(start))

	// Stage 4: classification.
	phase("classifying")
	start = time.Now()
	for _, nm := range normalized {
		cls, err := classify.Classify(nm, demo, tables)
		if errors.Is(err, classify.ErrNoReferenceRange) {
			result.Warnings = append(result.Warnings, report.Warning{
				Code:    report.WarnNoReferenceRange,
				Label:   nm.Parameter,
				Message: err.Error(),
			})
		} else if err != nil {
			return nil, fmt.Errorf("classify %s: %w", nm.Parameter, err)
		}
		result.Classifications = append(result.Classifications, cls)
	}
	r.stats.Record("classify", time.Since(start))

	// Stage 5: insights.
	phase("analyzing")
	start = time.Now()
	result.Insights = insights.Evaluate(result.Classifications, tables)
	r.stats.Record("insight", time.Since(start))

	// Stage 6: trends against the pipeline-start snapshot.
	start = time.Now()
	tcfg := trend.Config{Window: r.cfg.TrendWindow, StableEps: r.cfg.TrendStableEps}
	for _, cls := range result.Classifications {
		result.Trends[cls.Parameter] = trend.Analyze(hist[cls.Parameter], cls, now, tcfg)
	}
	r.stats.Record("trend", time.Since(start))

	// Stage 7: risk, degrading when no model is loadable.
	start = time.Now()
	assessment, err := risk.Assess(r.model, result.Classifications, hist, now, r.cfg.FeatureMaxAge)
	if err != nil {
		if !errors.Is(err, report.ErrModelUnavailable) {
			return nil, fmt.Errorf("risk assessment: %w", err)
		}
		result.Degraded = true
		r.log.Warn("risk model unavailable, returning degraded result", "report_id", result.ReportID)
	} else {
		result.Risk = &assessment
	}
	r.stats.Record("risk", time.Since(start))

	// Hand the classifications to the history collaborator. A failed
	// append does not invalidate this run's result; it only costs future
	// trend points, so it is logged rather than returned.
	phase("storing")
	if err := r.store.Append(ctx, userID, result.ReportID, result.Classifications, now); err != nil {
		r.log.Error("history append failed", "report_id", result.ReportID, "error", err)
	}

	return result, nil
}

// timedExtract applies the configured extraction timeout and records the
// stage latency.
func (r *Runner) timedExtract(ctx context.Context, doc report.Document) (*report.ExtractionResult, error) {
	ectx := ctx
	if r.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, r.cfg.ExtractTimeout)
		defer cancel()
	}
	start := time.Now()
	res, err := r.engine.Extract(ectx, doc)
	r.stats.Record("extract", time.Since(start))
	return res, err
}
