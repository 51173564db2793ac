package capture

import "errors"

var (
	// ErrLookupNotFound means no runner has the searched ID.
	ErrLookupNotFound = errors.New("runner not found")

	// ErrLookupTransport means the record store could not be reached.
	ErrLookupTransport = errors.New("runner lookup failed")

	// ErrEmptyRunnerID is returned by Search for a blank ID.
	ErrEmptyRunnerID = errors.New("runner ID is required")

	// ErrNoFaceDetected is the soft miss after a countdown: the still was
	// discarded and the session is still armed.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrAnalysisFailed means the face analyzer returned an error; the still was discarded.
	ErrAnalysisFailed = errors.New("face analysis failed")

	// ErrInvalidTransition is returned when an action is not allowed in the current state.
	ErrInvalidTransition = errors.New("action not allowed in current state")

	// ErrBusy is returned when another operation is running on the same session.
	ErrBusy = errors.New("another booth operation is in progress")

	// ErrCameraNotReady is returned by StartCapture without an acquired stream.
	ErrCameraNotReady = errors.New("camera is not ready")

	// ErrInterrupted is returned by an operation that a reset overtook.
	ErrInterrupted = errors.New("operation interrupted")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("booth session closed")

	// ErrNoStill is returned by Publish when there is nothing to upload.
	ErrNoStill = errors.New("no still to publish")

	// ErrPublishUnavailable is returned by Publish when no blob store is configured.
	ErrPublishUnavailable = errors.New("photo storage is not configured")

	// ErrPublishFailed wraps an upload or record update failure during Publish.
	ErrPublishFailed = errors.New("photo could not be saved")
)

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeValidation       NoticeKind = "validation"
	NoticeNotFound         NoticeKind = "notFound"
	NoticeTransport        NoticeKind = "transport"
	NoticePermissionDenied NoticeKind = "permissionDenied"
	NoticeDeviceInit       NoticeKind = "deviceInit"
	NoticeNoFace           NoticeKind = "noFace"
)

// Notice is the transient message shown on the booth screen after a failed
// action. Every failure is recoverable.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}
