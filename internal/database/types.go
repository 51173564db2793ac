package database

import (
	"errors"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/runner"
)

var (
	// ErrNotFound is returned by updates addressed to an unknown runner ID.
	ErrNotFound = errors.New("runner not found")

	// ErrDuplicateID is returned by a backend insert when the runner ID is taken.
	ErrDuplicateID = errors.New("runner ID already exists")

	// ErrIDSpaceExhausted is returned when every drawn ID collided.
	ErrIDSpaceExhausted = errors.New("could not allocate a free runner ID")
)

// NewRunner is the registration payload. The ID and timestamp are assigned by the store.
type NewRunner struct {
	Nickname         string
	Language         string
	TargetTime       string
	TargetTimeNumber int
	Message          string
	MessageNumber    int
	UpperPhrase      string
	LowerPhrase      string
}

// Record builds the stored record for an assigned ID.
func (n NewRunner) Record(runnerID string, createdAt time.Time) runner.Record {
	return runner.Record{
		RunnerID:         runnerID,
		Nickname:         n.Nickname,
		Language:         n.Language,
		TargetTime:       n.TargetTime,
		TargetTimeNumber: n.TargetTimeNumber,
		Message:          n.Message,
		MessageNumber:    n.MessageNumber,
		UpperPhrase:      n.UpperPhrase,
		LowerPhrase:      n.LowerPhrase,
		CreatedAt:        createdAt,
	}
}

// CaptureUpdate holds the fields attached after a booth capture. Empty fields
// leave the stored value untouched.
type CaptureUpdate struct {
	PhotoURL string
	AgeGroup string
	Gender   string
}

// DefaultListLimit is the number of registrations returned by List when no limit is given.
const DefaultListLimit = 10
