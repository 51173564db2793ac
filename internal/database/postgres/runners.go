package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// RunnerRepository provides PostgreSQL-backed runner storage
type RunnerRepository struct {
	pool  *Pool
	newID database.IDGenerator
	now   func() time.Time
}

// NewRunnerRepository creates a new PostgreSQL runner repository
func NewRunnerRepository(pool *Pool) *RunnerRepository {
	return &RunnerRepository{pool: pool, newID: runner.GenerateID, now: time.Now}
}

// SetIDGenerator overrides the ID source, for tests that force collisions.
func (r *RunnerRepository) SetIDGenerator(gen database.IDGenerator) {
	r.newID = gen
}

// Create stores a new runner under a freshly drawn ID.
func (r *RunnerRepository) Create(ctx context.Context, n database.NewRunner) (*runner.Record, error) {
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	query := `
		INSERT INTO runners (runner_id, nickname, language, target_time, target_time_number,
			message, message_number, upper_phrase, lower_phrase, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (runner_id) DO NOTHING
	`

	id, err := database.InsertWithFreshID(ctx, r.newID, func(ctx context.Context, id string) error {
		res, err := r.pool.db.ExecContext(ctx, query,
			id, n.Nickname, n.Language, n.TargetTime, n.TargetTimeNumber,
			n.Message, n.MessageNumber, n.UpperPhrase, n.LowerPhrase, createdAt)
		if err != nil {
			return fmt.Errorf("insert runner: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}
		if affected == 0 {
			return database.ErrDuplicateID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := n.Record(id, createdAt)
	return &rec, nil
}

// Get retrieves a runner by ID, returns nil if not found
func (r *RunnerRepository) Get(ctx context.Context, runnerID string) (*runner.Record, error) {
	query := `SELECT ` + database.RunnerColumns + ` FROM runners WHERE runner_id = $1`

	rec, err := database.ScanRecord(r.pool.db.QueryRowContext(ctx, query, runnerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get runner: %w", err)
	}
	return rec, nil
}

// List returns the latest registrations, newest first
func (r *RunnerRepository) List(ctx context.Context, limit int) ([]runner.Record, error) {
	if limit <= 0 {
		limit = database.DefaultListLimit
	}
	query := `SELECT ` + database.RunnerColumns + ` FROM runners ORDER BY created_at DESC, runner_id LIMIT $1`

	rows, err := r.pool.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runners: %w", err)
	}
	defer rows.Close()

	var records []runner.Record
	for rows.Next() {
		rec, err := database.ScanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan runner: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runners: %w", err)
	}
	return records, nil
}

// Count returns the total number of runners
func (r *RunnerRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runners").Scan(&count); err != nil {
		return 0, fmt.Errorf("count runners: %w", err)
	}
	return count, nil
}

// UpdateCapture attaches photo and demographics to a runner
func (r *RunnerRepository) UpdateCapture(ctx context.Context, runnerID string, u database.CaptureUpdate) error {
	query := `
		UPDATE runners SET
			photo_url = COALESCE($2, photo_url),
			age_group = COALESCE($3, age_group),
			gender = COALESCE($4, gender)
		WHERE runner_id = $1
	`

	res, err := r.pool.db.ExecContext(ctx, query, runnerID,
		database.NullIfEmpty(u.PhotoURL), database.NullIfEmpty(u.AgeGroup), database.NullIfEmpty(u.Gender))
	if err != nil {
		return fmt.Errorf("update runner capture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Close closes the underlying pool
func (r *RunnerRepository) Close() error {
	return r.pool.Close()
}
