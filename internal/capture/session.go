// Package capture implements the photo booth session: look up a runner by ID,
// open a camera, count down, take one still, optionally estimate age and gender,
// then show the completion view.
//
//	Search → Camera → Processing → Complete
//	Complete → Camera (Retake), any → Search (NewSearch)
//
// A session serialises its operations. Actions started while another one runs
// fail with ErrBusy; resets (StopCamera, Retake, NewSearch, Close) cancel the
// running operation or timer and then take over.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/camera"
	"github.com/kozaktomas/marathon-booth/internal/constants"
	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/faceanalysis"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// State of a booth session.
type State string

const (
	StateSearch     State = "search"
	StateCamera     State = "camera"
	StateProcessing State = "processing"
	StateComplete   State = "complete"
)

// CameraStatus tracks the acquisition of the selected device.
type CameraStatus string

const (
	CameraIdle             CameraStatus = "idle"
	CameraInitializing     CameraStatus = "initializing"
	CameraReady            CameraStatus = "ready"
	CameraPermissionDenied CameraStatus = "permissionDenied"
	CameraFailed           CameraStatus = "failed"
)

// Store is the part of the record store a booth session needs.
type Store interface {
	Get(ctx context.Context, runnerID string) (*runner.Record, error)
	UpdateCapture(ctx context.Context, runnerID string, u database.CaptureUpdate) error
}

// Uploader stores a published still and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Deps are the collaborators of a session. Analyzer and Blobs are optional.
type Deps struct {
	Store    Store
	Camera   camera.Provider
	Analyzer faceanalysis.Analyzer
	Blobs    Uploader
}

// Options tune the session timers. They are used as given, except that a
// non-positive CountdownTicks falls back to the default.
type Options struct {
	CountdownTicks  int
	TickInterval    time.Duration
	ProcessingDelay time.Duration
}

// DefaultOptions returns the booth defaults: 5 ticks of 1s and a 3s processing screen.
func DefaultOptions() Options {
	return Options{
		CountdownTicks:  constants.DefaultCountdownTicks,
		TickInterval:    constants.DefaultTickInterval,
		ProcessingDelay: constants.DefaultProcessingDelay,
	}
}

// View is a point-in-time copy of a session, safe to serialise.
type View struct {
	ID           string                  `json:"id"`
	State        State                   `json:"state"`
	CameraStatus CameraStatus            `json:"cameraStatus"`
	RunnerID     string                  `json:"runnerId,omitempty"`
	Record       *runner.Record          `json:"record,omitempty"`
	Devices      []camera.Device         `json:"devices,omitempty"`
	DeviceID     string                  `json:"deviceId,omitempty"`
	Capturing    bool                    `json:"capturing"`
	Countdown    int                     `json:"countdown,omitempty"`
	HasStill     bool                    `json:"hasStill"`
	Detection    *faceanalysis.Detection `json:"detection,omitempty"`
	Published    bool                    `json:"published"`
	Notice       *Notice                 `json:"notice,omitempty"`
}

// Session is one booth screen. It owns at most one camera stream at a time.
type Session struct {
	Broadcaster

	id   string
	deps Deps
	opts Options

	// op serialises operations; held for the whole of a countdown.
	op sync.Mutex
	wg sync.WaitGroup

	mu           sync.RWMutex
	state        State
	cameraStatus CameraStatus
	runnerID     string
	record       *runner.Record
	devices      []camera.Device
	deviceID     string
	stream       camera.Stream
	still        []byte
	detection    *faceanalysis.Detection
	capturing    bool
	countdown    int
	published    bool
	notice       *Notice
	gen          uint64
	cancel       context.CancelFunc
	closed       bool
	lastActive   time.Time
}

// NewSession creates a session in Search.
func NewSession(id string, deps Deps, opts Options) *Session {
	if opts.CountdownTicks <= 0 {
		opts.CountdownTicks = constants.DefaultCountdownTicks
	}
	return &Session{
		id:           id,
		deps:         deps,
		opts:         opts,
		state:        StateSearch,
		cameraStatus: CameraIdle,
		lastActive:   time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastActive returns the time of the last operation.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// View returns a copy of the session.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:           s.id,
		State:        s.state,
		CameraStatus: s.cameraStatus,
		RunnerID:     s.runnerID,
		DeviceID:     s.deviceID,
		Capturing:    s.capturing,
		Countdown:    s.countdown,
		HasStill:     len(s.still) > 0,
		Published:    s.published,
	}
	if s.record != nil {
		rec := *s.record
		v.Record = &rec
	}
	if len(s.devices) > 0 {
		v.Devices = append([]camera.Device(nil), s.devices...)
	}
	if s.detection != nil {
		d := *s.detection
		v.Detection = &d
	}
	if s.notice != nil {
		n := *s.notice
		v.Notice = &n
	}
	return v
}

// Still returns a copy of the captured JPEG, or nil when there is none.
func (s *Session) Still() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.still) == 0 {
		return nil
	}
	return append([]byte(nil), s.still...)
}

// takeOp prepares an operation once s.op is held. On error s.op is released.
func (s *Session) takeOp(ctx context.Context) (context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.op.Unlock()
		return nil, 0, ErrClosed
	}
	opCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.lastActive = time.Now()
	return opCtx, s.gen, nil
}

// beginOp starts an action, failing fast when another operation runs.
func (s *Session) beginOp(ctx context.Context) (context.Context, uint64, error) {
	if !s.op.TryLock() {
		return nil, 0, ErrBusy
	}
	return s.takeOp(ctx)
}

func (s *Session) endOp() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.op.Unlock()
}

// interrupt invalidates the running operation, cancels it and waits for s.op.
func (s *Session) interrupt() {
	s.mu.Lock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.op.Lock()
}

// current reports whether gen is still live. Caller holds s.mu.
func (s *Session) current(gen uint64) bool {
	return s.gen == gen && !s.closed
}

// update runs fn under s.mu if gen is still live.
func (s *Session) update(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return false
	}
	fn()
	return true
}

// Caller holds s.mu.
func (s *Session) setNotice(n *Notice) {
	s.notice = n
	if n != nil {
		s.SendEvent(Event{Type: EventNotice, Message: n.Message, Data: n})
	}
}

// Caller holds s.mu.
func (s *Session) emitState() {
	s.SendEvent(Event{Type: EventState, Data: s.viewLocked()})
}

// releaseStream stops the active stream. Caller holds s.mu.
func (s *Session) releaseStream() {
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			log.Printf("booth %s: failed to stop camera %s: %v", s.id, s.stream.DeviceID(), err)
		}
		s.stream = nil
	}
	s.cameraStatus = CameraIdle
}

// Search looks up a runner by ID. The session stays in Search; on a hit the
// record is held and OpenCamera becomes available.
func (s *Session) Search(ctx context.Context, runnerID string) (*runner.Record, error) {
	opCtx, gen, err := s.beginOp(ctx)
	if err != nil {
		return nil, err
	}
	defer s.endOp()

	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != StateSearch {
		return nil, fmt.Errorf("search from %s: %w", state, ErrInvalidTransition)
	}

	id := strings.TrimSpace(runnerID)
	if id == "" {
		s.update(gen, func() {
			s.record = nil
			s.runnerID = ""
			s.setNotice(&Notice{Kind: NoticeValidation, Message: "Enter a runner ID."})
		})
		return nil, ErrEmptyRunnerID
	}

	rec, err := s.deps.Store.Get(opCtx, id)
	if errors.Is(err, database.ErrNotFound) {
		rec, err = nil, nil
	}

	var result error
	ok := s.update(gen, func() {
		s.runnerID = id
		switch {
		case err != nil:
			s.record = nil
			s.setNotice(&Notice{Kind: NoticeTransport, Message: "The runner could not be looked up. Check the connection and try again."})
			result = fmt.Errorf("%w: %w", ErrLookupTransport, err)
		case rec == nil:
			s.record = nil
			s.setNotice(&Notice{Kind: NoticeNotFound, Message: "No runner with this ID."})
			result = fmt.Errorf("%w: %s", ErrLookupNotFound, id)
		default:
			s.record = rec
			s.notice = nil
		}
		s.emitState()
	})
	if !ok {
		return nil, ErrInterrupted
	}
	if result != nil {
		return nil, result
	}
	out := *rec
	return &out, nil
}

// Devices lists the available cameras and selects the first one if nothing is selected.
func (s *Session) Devices(ctx context.Context) ([]camera.Device, error) {
	opCtx, gen, err := s.beginOp(ctx)
	if err != nil {
		return nil, err
	}
	defer s.endOp()

	devices, err := s.deps.Camera.Devices(opCtx)
	if err != nil {
		return nil, s.cameraFailed(gen, err)
	}

	s.update(gen, func() {
		s.devices = devices
		if s.deviceID == "" && len(devices) > 0 {
			s.deviceID = devices[0].ID
		}
	})
	return append([]camera.Device(nil), devices...), nil
}

// SelectDevice chooses the device for the next acquisition. A stream open on
// another device is released.
func (s *Session) SelectDevice(deviceID string) error {
	_, gen, err := s.beginOp(context.Background())
	if err != nil {
		return err
	}
	defer s.endOp()

	var result error
	s.update(gen, func() {
		if len(s.devices) > 0 && !containsDevice(s.devices, deviceID) {
			result = fmt.Errorf("%w: %s", camera.ErrUnknownDevice, deviceID)
			return
		}
		if s.stream != nil && s.stream.DeviceID() != deviceID {
			s.releaseStream()
			s.SendEvent(Event{Type: EventCamera, Data: s.cameraStatus})
		}
		s.deviceID = deviceID
	})
	return result
}

func containsDevice(devices []camera.Device, id string) bool {
	for _, d := range devices {
		if d.ID == id {
			return true
		}
	}
	return false
}

// OpenCamera moves to Camera and acquires the selected device. Acquisition
// failures leave the session in Camera with PermissionDenied or Failed status.
func (s *Session) OpenCamera(ctx context.Context) error {
	opCtx, gen, err := s.beginOp(ctx)
	if err != nil {
		return err
	}
	defer s.endOp()

	s.mu.Lock()
	switch {
	case s.state != StateSearch && s.state != StateCamera:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("open camera from %s: %w", state, ErrInvalidTransition)
	case s.record == nil:
		s.mu.Unlock()
		return fmt.Errorf("open camera without a runner: %w", ErrInvalidTransition)
	case s.stream != nil:
		s.mu.Unlock()
		return nil
	}
	s.state = StateCamera
	s.cameraStatus = CameraInitializing
	s.notice = nil
	deviceID := s.deviceID
	s.emitState()
	s.mu.Unlock()

	return s.acquire(opCtx, gen, deviceID)
}

// acquire opens deviceID, or the first listed device when none is selected.
func (s *Session) acquire(ctx context.Context, gen uint64, deviceID string) error {
	if deviceID == "" {
		devices, err := s.deps.Camera.Devices(ctx)
		if err == nil && len(devices) == 0 {
			err = fmt.Errorf("%w: no camera devices found", camera.ErrDeviceInit)
		}
		if err != nil {
			return s.cameraFailed(gen, err)
		}
		deviceID = devices[0].ID
		s.update(gen, func() {
			s.devices = devices
			s.deviceID = deviceID
		})
	}

	stream, err := s.deps.Camera.Acquire(ctx, deviceID)
	if err != nil {
		return s.cameraFailed(gen, err)
	}

	ok := s.update(gen, func() {
		s.stream = stream
		s.deviceID = deviceID
		s.cameraStatus = CameraReady
		s.SendEvent(Event{Type: EventCamera, Data: s.cameraStatus})
	})
	if !ok {
		if err := stream.Stop(); err != nil {
			log.Printf("booth %s: failed to stop camera %s: %v", s.id, deviceID, err)
		}
		return ErrInterrupted
	}
	return nil
}

// cameraFailed records an acquisition failure and returns it classified.
func (s *Session) cameraFailed(gen uint64, err error) error {
	if !errors.Is(err, camera.ErrPermissionDenied) && !errors.Is(err, camera.ErrDeviceInit) {
		err = fmt.Errorf("%w: %w", camera.ErrDeviceInit, err)
	}

	ok := s.update(gen, func() {
		if errors.Is(err, camera.ErrPermissionDenied) {
			s.cameraStatus = CameraPermissionDenied
			s.setNotice(&Notice{Kind: NoticePermissionDenied, Message: "Camera access was denied. Allow camera access and try again."})
		} else {
			s.cameraStatus = CameraFailed
			s.setNotice(&Notice{Kind: NoticeDeviceInit, Message: "The camera could not be started. Try again or choose another camera."})
		}
		s.SendEvent(Event{Type: EventCamera, Data: s.cameraStatus})
	})
	if !ok {
		return ErrInterrupted
	}
	return err
}

// StopCamera releases the stream and cancels a running countdown. The session
// stays where it is.
func (s *Session) StopCamera() {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != StateCamera && state != StateSearch {
		return
	}

	s.interrupt()
	defer s.op.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	// A reset queued on s.op may have moved the session meanwhile.
	if s.state != StateCamera && s.state != StateSearch {
		return
	}
	s.releaseStream()
	s.capturing = false
	s.countdown = 0
	s.SendEvent(Event{Type: EventCamera, Data: s.cameraStatus})
}

// Retake discards the still and re-acquires the camera: Complete → Camera.
func (s *Session) Retake(ctx context.Context) error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != StateComplete {
		return fmt.Errorf("retake from %s: %w", state, ErrInvalidTransition)
	}

	s.interrupt()
	opCtx, gen, err := s.takeOp(ctx)
	if err != nil {
		return err
	}
	defer s.endOp()

	s.mu.Lock()
	// Re-check once s.op is held: a NewSearch queued ahead of us clears the runner.
	if s.state != StateComplete || s.record == nil {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("retake from %s: %w", state, ErrInvalidTransition)
	}
	s.still = nil
	s.detection = nil
	s.published = false
	s.notice = nil
	s.releaseStream()
	s.state = StateCamera
	s.cameraStatus = CameraInitializing
	deviceID := s.deviceID
	s.emitState()
	s.mu.Unlock()

	return s.acquire(opCtx, gen, deviceID)
}

// NewSearch clears the runner, still and detection and returns to Search.
// The selected device is kept.
func (s *Session) NewSearch() {
	s.interrupt()
	defer s.op.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseStream()
	s.state = StateSearch
	s.runnerID = ""
	s.record = nil
	s.still = nil
	s.detection = nil
	s.capturing = false
	s.countdown = 0
	s.published = false
	s.notice = nil
	s.lastActive = time.Now()
	s.emitState()
}

// Close releases the camera, stops every timer and closes the listeners.
// Calling Close twice is harmless.
func (s *Session) Close() {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}

	s.interrupt()
	s.mu.Lock()
	s.releaseStream()
	s.closed = true
	s.capturing = false
	s.mu.Unlock()
	s.op.Unlock()

	s.wg.Wait()
	s.shutdown(Event{Type: EventClosed})
}
