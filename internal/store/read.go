package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RunRecord is a stored evaluation pass.
type RunRecord struct {
	ID          int64
	Instance    string
	Implementor string
	UUID        string
	BandMinDB   int
	BandMaxDB   int
	StartedAt   time.Time
	Passed      int
	Failed      int
	Fatal       string // empty when the run completed
}

// Pass reports whether the stored run passed.
func (r RunRecord) Pass() bool {
	return r.Fatal == "" && r.Failed == 0
}

// CheckRecord is one stored check row.
type CheckRecord struct {
	Ordinal   int
	Family    string
	Value     string
	CapMaxDB  int
	Expected  string
	Observed  string
	RoundTrip string // empty when no get was issued
	Pass      bool
	Detail    string
}

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, instance, implementor, uuid, band_min_db, band_max_db, started_at, passed, failed, COALESCE(fatal, '')
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ReadRun returns one run and its checks in ordinal order.
func (s *Store) ReadRun(ctx context.Context, id int64) (RunRecord, []CheckRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, instance, implementor, uuid, band_min_db, band_max_db, started_at, passed, failed, COALESCE(fatal, '')
		FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
		}
		return RunRecord{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, family, value, cap_max_db, expected, observed, COALESCE(round_trip, ''), pass, detail
		FROM checks WHERE run_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return RunRecord{}, nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	var checks []CheckRecord
	for rows.Next() {
		var c CheckRecord
		var pass int
		if err := rows.Scan(&c.Ordinal, &c.Family, &c.Value, &c.CapMaxDB,
			&c.Expected, &c.Observed, &c.RoundTrip, &pass, &c.Detail); err != nil {
			return RunRecord{}, nil, fmt.Errorf("failed to scan check: %w", err)
		}
		c.Pass = pass != 0
		checks = append(checks, c)
	}
	return rec, checks, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var startedAt string
	if err := row.Scan(&rec.ID, &rec.Instance, &rec.Implementor, &rec.UUID,
		&rec.BandMinDB, &rec.BandMaxDB, &startedAt, &rec.Passed, &rec.Failed, &rec.Fatal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("failed to scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to parse started_at %q: %w", startedAt, err)
	}
	rec.StartedAt = t
	return rec, nil
}
