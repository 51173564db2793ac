package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/runner"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout has a fixed-width fraction so created_at sorts as text.
const timeLayout = "2006-01-02 15:04:05.000000000"

type RunnerStore struct {
	db    *sql.DB
	newID database.IDGenerator
	now   func() time.Time
}

func NewRunnerStore(db *sql.DB) *RunnerStore {
	return &RunnerStore{db: db, newID: runner.GenerateID, now: time.Now}
}

func (s *RunnerStore) SetIDGenerator(gen database.IDGenerator) {
	s.newID = gen
}

func isDuplicate(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (s *RunnerStore) Create(ctx context.Context, n database.NewRunner) (*runner.Record, error) {
	createdAt := s.now().UTC()

	query := `
		INSERT INTO runners (runner_id, nickname, language, target_time, target_time_number,
			message, message_number, upper_phrase, lower_phrase, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := database.InsertWithFreshID(ctx, s.newID, func(ctx context.Context, id string) error {
		_, err := s.db.ExecContext(ctx, query,
			id, n.Nickname, n.Language, n.TargetTime, n.TargetTimeNumber,
			n.Message, n.MessageNumber, n.UpperPhrase, n.LowerPhrase, createdAt.Format(timeLayout))
		if isDuplicate(err) {
			return database.ErrDuplicateID
		}
		if err != nil {
			return fmt.Errorf("insert runner: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := n.Record(id, createdAt)
	return &rec, nil
}

func (s *RunnerStore) Get(ctx context.Context, runnerID string) (*runner.Record, error) {
	query := `SELECT ` + database.RunnerColumns + ` FROM runners WHERE runner_id = ?`

	rec, err := database.ScanRecord(s.db.QueryRowContext(ctx, query, runnerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get runner: %w", err)
	}
	return rec, nil
}

func (s *RunnerStore) List(ctx context.Context, limit int) ([]runner.Record, error) {
	if limit <= 0 {
		limit = database.DefaultListLimit
	}
	query := `SELECT ` + database.RunnerColumns + ` FROM runners ORDER BY created_at DESC, runner_id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runners: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

func (s *RunnerStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runners").Scan(&count); err != nil {
		return 0, fmt.Errorf("count runners: %w", err)
	}
	return count, nil
}

func (s *RunnerStore) UpdateCapture(ctx context.Context, runnerID string, u database.CaptureUpdate) error {
	query := `
		UPDATE runners SET
			photo_url = COALESCE(?, photo_url),
			age_group = COALESCE(?, age_group),
			gender = COALESCE(?, gender)
		WHERE runner_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		database.NullIfEmpty(u.PhotoURL), database.NullIfEmpty(u.AgeGroup), database.NullIfEmpty(u.Gender), runnerID)
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

func (s *RunnerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing sqlite: %w", err)
	}
	return nil
}
