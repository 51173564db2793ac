package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// RunnerColumns is the column list every backend selects, in ScanRecord order.
const RunnerColumns = `runner_id, nickname, language, target_time, target_time_number,
	message, message_number, upper_phrase, lower_phrase, created_at,
	photo_url, age_group, gender`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanRecord scans one row selected with RunnerColumns.
func ScanRecord(s RowScanner) (*runner.Record, error) {
	var (
		r                          runner.Record
		photoURL, ageGroup, gender sql.NullString
	)
	err := s.Scan(
		&r.RunnerID,
		&r.Nickname,
		&r.Language,
		&r.TargetTime,
		&r.TargetTimeNumber,
		&r.Message,
		&r.MessageNumber,
		&r.UpperPhrase,
		&r.LowerPhrase,
		timeScanner{&r.CreatedAt},
		&photoURL,
		&ageGroup,
		&gender,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers distinguish sql.ErrNoRows
	}
	r.PhotoURL = photoURL.String
	r.AgeGroup = ageGroup.String
	r.Gender = gender.String
	return &r, nil
}

// timeScanner accepts the timestamp representations the three drivers return.
type timeScanner struct {
	t *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (s timeScanner) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*s.t = time.Time{}
		return nil
	case time.Time:
		*s.t = x
		return nil
	case []byte:
		return s.parse(string(x))
	case string:
		return s.parse(x)
	default:
		return fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func (s timeScanner) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", v)
}

// NullIfEmpty maps "" to a NULL parameter.
func NullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
