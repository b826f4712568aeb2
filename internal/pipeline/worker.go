package pipeline

import (
	"context"
	"log/slog"
)

// Worker drains the job queue, running the full analysis pipeline for each
// job and recording the outcome on it.
type Worker struct {
	runner *Runner
	log    *slog.Logger
}

func NewWorker(runner *Runner, log *slog.Logger) *Worker {
	return &Worker{runner: runner, log: log}
}

// Process runs one job to completion.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID)

	job.SetStatus(StatusProcessing, "extracting")
	res, err := w.runner.Run(ctx, job.Document(), job.Demographics(), job.UserID, job.SetPhase)
	if err != nil {
		log.Error("analysis failed", "error", err)
		job.Fail(err.Error())
		return
	}

	job.Complete(res)
	log.Info("report analyzed",
		"report_id", res.ReportID,
		"classifications", len(res.Classifications),
		"insights", len(res.Insights),
		"warnings", len(res.Warnings),
		"degraded", res.Degraded,
	)
}
