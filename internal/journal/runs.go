package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"specmix/internal/unmix"
)

// ErrAmbiguousID reports an id prefix matching more than one run.
var ErrAmbiguousID = errors.New("ambiguous run id")

// Abundance is one surviving end-member of a run.
type Abundance struct {
	EndMember  string   `json:"endmember"`
	Abundance  float64  `json:"abundance"`
	Error      float64  `json:"error"`
	Normalized *float64 `json:"normalized,omitempty"`
}

// Run is a recorded unmixing run.
type Run struct {
	ID            string      `json:"id"`
	CreatedAt     time.Time   `json:"created_at"`
	Algorithm     string      `json:"algorithm"`
	Mixed         string      `json:"mixed"`
	Selected      []string    `json:"selected"`
	Pruned        [][]string  `json:"pruned,omitempty"`
	RMS           float64     `json:"rms"`
	Channels      int         `json:"channels"`
	MaxWavelength float64     `json:"max_wavelength,omitempty"`
	Abundances    []Abundance `json:"abundances"`
}

// NewRun builds a Run from a solver result.
func NewRun(mixed string, selected []string, ds *unmix.Dataset, res *unmix.Result) *Run {
	run := &Run{
		Algorithm: string(res.Algorithm),
		Mixed:     mixed,
		Selected:  append([]string(nil), selected...),
		Pruned:    res.Pruned,
		RMS:       res.RMS,
	}
	if ds != nil {
		run.Channels = ds.Channels()
		run.MaxWavelength = ds.MaxWavelength
	}
	for i, name := range res.Names {
		a := Abundance{EndMember: name, Abundance: res.Abundances[i], Error: res.Errors[i]}
		if i < len(res.Normalized) {
			v := res.Normalized[i]
			a.Normalized = &v
		}
		run.Abundances = append(run.Abundances, a)
	}
	return run
}

// Record stores run, assigning an id and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, run *Run) (*Run, error) {
	if run == nil {
		return nil, errors.New("run is nil")
	}
	ctx = orBackground(ctx)
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	selected, err := json.Marshal(run.Selected)
	if err != nil {
		return nil, fmt.Errorf("marshal selection: %w", err)
	}
	var pruned any
	if len(run.Pruned) > 0 {
		data, err := json.Marshal(run.Pruned)
		if err != nil {
			return nil, fmt.Errorf("marshal pruned: %w", err)
		}
		pruned = string(data)
	}

	err = withBusyRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (
                id, created_at, algorithm, mixed_name, selected_json, pruned_json,
                rms, channels, max_wavelength
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.CreatedAt.UTC().Format(createdAtLayout),
			run.Algorithm,
			run.Mixed,
			string(selected),
			pruned,
			nullableFloat(run.RMS),
			run.Channels,
			nullablePositive(run.MaxWavelength),
		); err != nil {
			return err
		}
		for i, a := range run.Abundances {
			var normalized any
			if a.Normalized != nil {
				normalized = nullableFloat(*a.Normalized)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO run_abundances (run_id, position, endmember, abundance, abundance_error, normalized)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, i, a.EndMember, nullableFloat(a.Abundance), nullableFloat(a.Error), normalized,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// createdAtLayout is fixed width so text order in SQLite is time order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, created_at, algorithm, mixed_name, selected_json, pruned_json, rms, channels, max_wavelength"

// List returns the most recent runs first. A non-positive limit returns all
// runs. When mixed is non-empty only runs of that mixed spectrum are listed.
func (s *Store) List(ctx context.Context, mixed string, limit int) ([]*Run, error) {
	ctx = orBackground(ctx)
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if mixed != "" {
		query += ` WHERE mixed_name = ?`
		args = append(args, mixed)
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	for _, run := range runs {
		if err := s.loadAbundances(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Get returns the run whose id equals or starts with id, or nil when none
// matches.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	ctx = orBackground(ctx)
	fullID, err := s.resolveID(ctx, id)
	if err != nil || fullID == "" {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, fullID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if err := s.loadAbundances(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Delete removes the run matching id (or a unique prefix of it) and reports
// whether a run was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	ctx = orBackground(ctx)
	fullID, err := s.resolveID(ctx, id)
	if err != nil || fullID == "" {
		return false, err
	}
	var affected int64
	err = withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, fullID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	return affected > 0, nil
}

// Clear removes every run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = orBackground(ctx)
	var affected int64
	err := withBusyRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return affected, nil
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(id), id)
	if err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}
	defer rows.Close()
	var matches []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			return "", fmt.Errorf("resolve run id: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve run id: %w", err)
	}
	switch len(matches) {
	case 0:
		return "", nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}
}

func (s *Store) loadAbundances(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT endmember, abundance, abundance_error, normalized
         FROM run_abundances WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return fmt.Errorf("load abundances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name       string
			abundance  sql.NullFloat64
			abErr      sql.NullFloat64
			normalized sql.NullFloat64
		)
		if err := rows.Scan(&name, &abundance, &abErr, &normalized); err != nil {
			return fmt.Errorf("scan abundance: %w", err)
		}
		a := Abundance{EndMember: name, Abundance: floatOrNaN(abundance), Error: floatOrNaN(abErr)}
		if normalized.Valid {
			v := normalized.Float64
			a.Normalized = &v
		}
		run.Abundances = append(run.Abundances, a)
	}
	return rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run           Run
		createdRaw    string
		selectedRaw   string
		prunedRaw     sql.NullString
		rms           sql.NullFloat64
		maxWavelength sql.NullFloat64
	)
	if err := scanner.Scan(
		&run.ID,
		&createdRaw,
		&run.Algorithm,
		&run.Mixed,
		&selectedRaw,
		&prunedRaw,
		&rms,
		&run.Channels,
		&maxWavelength,
	); err != nil {
		return nil, err
	}
	created, err := time.Parse(createdAtLayout, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = created
	if err := json.Unmarshal([]byte(selectedRaw), &run.Selected); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	if prunedRaw.Valid && prunedRaw.String != "" {
		if err := json.Unmarshal([]byte(prunedRaw.String), &run.Pruned); err != nil {
			return nil, fmt.Errorf("decode pruned: %w", err)
		}
	}
	run.RMS = floatOrNaN(rms)
	if maxWavelength.Valid {
		run.MaxWavelength = maxWavelength.Float64
	}
	return &run, nil
}

// nullableFloat maps non-finite values to NULL; SQLite has no NaN.
func nullableFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nullablePositive(v float64) any {
	if v <= 0 {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
