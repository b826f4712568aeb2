package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harikantbajaj/labsight/internal/report"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists trend points in a local sqlite database. WAL mode
// allows concurrent snapshot reads while sqlite serializes writers, which
// gives Append its per-user linearizability.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS trend_points (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     TEXT NOT NULL,
	parameter   TEXT NOT NULL,
	value       REAL NOT NULL,
	report_id   TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trend_points_user_param
	ON trend_points (user_id, parameter, recorded_at);
`

// OpenSQLite opens (and if needed initializes) the history database at
// path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Snapshot reads every point for a user inside one transaction, ordered
// ascending per parameter.
func (s *SQLiteStore) Snapshot(ctx context.Context, userID string) (map[string][]report.TrendPoint, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT parameter, value, recorded_at FROM trend_points
		 WHERE user_id = ? ORDER BY parameter, recorded_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]report.TrendPoint)
	for rows.Next() {
		var p report.TrendPoint
		if err := rows.Scan(&p.Parameter, &p.Value, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out[p.Parameter] = append(out[p.Parameter], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return out, nil
}

// Append writes one run's classifications in a single transaction so the
// whole run becomes visible to snapshots atomically. Unclassifiable
// verdicts are still recorded; their values remain useful for trends.
func (s *SQLiteStore) Append(ctx context.Context, userID, reportID string, classifications []report.Classification, at time.Time) error {
	if len(classifications) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trend_points (user_id, parameter, value, report_id, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, c := range classifications {
		if _, err := stmt.ExecContext(ctx, userID, c.Parameter, c.Value, reportID, at.UTC()); err != nil {
			return fmt.Errorf("append %s: %w", c.Parameter, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}
