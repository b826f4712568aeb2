// Package history is the persistence collaborator for classified
// measurements. The pipeline reads a consistent snapshot of a user's prior
// points at run start and appends the run's classifications afterwards;
// appends are linearizable per (user, parameter).
package history

import (
	"context"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
)

// Store is the history boundary the pipeline depends on.
type Store interface {
	// Snapshot returns all of a user's trend points grouped by parameter,
	// each sequence ascending by timestamp, read atomically.
	Snapshot(ctx context.Context, userID string) (map[string][]report.TrendPoint, error)

	// Append extends the user's history with one run's classifications,
	// all stamped at the same instant.
	Append(ctx context.Context, userID, reportID string, classifications []report.Classification, at time.Time) error

	Close() error
}
