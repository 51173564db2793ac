// Package registration implements the runner registration workflow:
// Input → Confirm → Complete, with Edit (Confirm → Input) and StartOver
// (Complete → Input).
package registration

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/messages"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// State of a registration flow.
type State string

const (
	StateInput    State = "input"
	StateConfirm  State = "confirm"
	StateComplete State = "complete"
)

// Writer is the part of the record store a registration needs.
type Writer interface {
	Create(ctx context.Context, r database.NewRunner) (*runner.Record, error)
}

// View is a point-in-time copy of a flow, safe to serialise.
type View struct {
	State    State          `json:"state"`
	Form     Form           `json:"form"`
	Resolved *Resolved      `json:"resolved,omitempty"`
	RunnerID string         `json:"runnerId,omitempty"`
	Record   *runner.Record `json:"record,omitempty"`
	Notice   *Notice        `json:"notice,omitempty"`
}

// Flow is one registration in progress. It is safe for concurrent use; Submit
// holds the flow lock for the duration of the store call so a double submit
// cannot create two records.
type Flow struct {
	catalog *messages.Catalog
	writer  Writer
	rng     runner.IntSource

	mu       sync.Mutex
	state    State
	form     Form
	resolved *Resolved
	record   *runner.Record
	notice   *Notice
}

// NewFlow starts a flow in Input. A nil rng uses the process-wide source.
func NewFlow(catalog *messages.Catalog, writer Writer, rng runner.IntSource) *Flow {
	if rng == nil {
		rng = runner.DefaultSource
	}
	return &Flow{catalog: catalog, writer: writer, rng: rng, state: StateInput}
}

// Confirm validates the form and draws the display phrases, then moves to Confirm.
// On validation failure the flow stays in Input with a validation notice.
func (f *Flow) Confirm(form Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateInput {
		return fmt.Errorf("confirm from %s: %w", f.state, ErrInvalidTransition)
	}

	f.form = form
	res, err := Resolve(f.catalog, form, f.rng)
	if err != nil {
		f.notice = &Notice{Kind: NoticeValidation, Message: "please check the highlighted fields", Fields: FieldErrors(err)}
		return err
	}

	f.resolved = &res
	f.notice = nil
	f.state = StateConfirm
	return nil
}

// Edit returns from Confirm to Input keeping the entered form.
func (f *Flow) Edit() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateConfirm {
		return fmt.Errorf("edit from %s: %w", f.state, ErrInvalidTransition)
	}
	f.resolved = nil
	f.notice = nil
	f.state = StateInput
	return nil
}

// Submit sends the confirmed registration to the store. Success moves to Complete
// with the assigned runner ID; failure moves back to Input with a retryable notice.
func (f *Flow) Submit(ctx context.Context) (*runner.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateConfirm || f.resolved == nil {
		return nil, fmt.Errorf("submit from %s: %w", f.state, ErrInvalidTransition)
	}

	rec, err := f.writer.Create(ctx, f.resolved.NewRunner())
	if err != nil {
		f.resolved = nil
		f.state = StateInput
		f.notice = &Notice{Kind: NoticeTransport, Message: ErrSubmitFailed.Error()}
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	f.record = rec
	f.notice = nil
	f.state = StateComplete
	return rec, nil
}

// StartOver clears every field and returns to Input.
func (f *Flow) StartOver() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.form = Form{}
	f.resolved = nil
	f.record = nil
	f.notice = nil
	f.state = StateInput
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// View returns a copy of the flow's current state.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	v := View{State: f.state, Form: f.form, Notice: f.notice}
	if f.resolved != nil {
		r := *f.resolved
		v.Resolved = &r
	}
	if f.record != nil {
		rec := *f.record
		v.Record = &rec
		v.RunnerID = rec.RunnerID
	}
	return v
}
