package registration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current state.
	ErrInvalidTransition = errors.New("action not allowed in current state")

	// ErrSubmitFailed wraps a record store failure during Submit. The flow is back in
	// Input and the user may submit again.
	ErrSubmitFailed = errors.New("registration could not be saved, please try again")
)

// ValidationError reports one invalid form field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors unpacks every ValidationError in err, which may be a join of several.
func FieldErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	walk(err)
	return out
}

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeValidation NoticeKind = "validation"
	NoticeTransport  NoticeKind = "transport"
)

// Notice is the transient message shown to the user after a failed action.
type Notice struct {
	Kind    NoticeKind         `json:"kind"`
	Message string             `json:"message"`
	Fields  []*ValidationError `json:"fields,omitempty"`
}
