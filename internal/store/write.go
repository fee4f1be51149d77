package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fxlab/paramcheck/internal/checker"
	"github.com/fxlab/paramcheck/internal/effect"
)

// WriteRun persists a checker report for one instance transactionally:
// either the run row and every check row land, or nothing does.
// Returns the new run's id.
func (s *Store) WriteRun(ctx context.Context, desc effect.Descriptor, report *checker.Report, startedAt time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var fatal any
	if report.Fatal != nil {
		fatal = report.Fatal.Error()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (instance, implementor, uuid, band_min_db, band_max_db, started_at, passed, failed, fatal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		desc.Name,
		desc.Implementor,
		desc.UUID.String(),
		report.Band.MinLevelDB,
		report.Band.MaxLevelDB,
		startedAt.UTC().Format(time.RFC3339),
		report.Passed,
		report.Failed,
		fatal,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for i, c := range report.Checks {
		var roundTrip any
		if c.RoundTrip != nil {
			roundTrip = c.RoundTrip.String()
		}
		pass := 0
		if c.Pass {
			pass = 1
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO checks (run_id, ordinal, family, value, cap_max_db, expected, observed, round_trip, pass, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			i,
			c.Value.Family().String(),
			c.Value.String(),
			c.Capability.MaxLevelDB,
			string(c.Expected),
			string(c.Observed),
			roundTrip,
			pass,
			c.Detail,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert check %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}
