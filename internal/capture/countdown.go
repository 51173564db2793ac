package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/camera"
	"github.com/kozaktomas/marathon-booth/internal/faceanalysis"
)

// prepareCapture checks the session is armed and claims it for a countdown.
// On success s.op is held and must be released with endOp.
func (s *Session) prepareCapture(ctx context.Context) (context.Context, uint64, camera.Stream, error) {
	if !s.op.TryLock() {
		return nil, 0, nil, ErrBusy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		s.op.Unlock()
		return nil, 0, nil, ErrClosed
	case s.state != StateCamera:
		s.op.Unlock()
		return nil, 0, nil, fmt.Errorf("capture from %s: %w", s.state, ErrInvalidTransition)
	case s.stream == nil || s.cameraStatus != CameraReady:
		s.op.Unlock()
		return nil, 0, nil, ErrCameraNotReady
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.capturing = true
	s.countdown = s.opts.CountdownTicks
	s.notice = nil
	s.lastActive = time.Now()
	return runCtx, s.gen, s.stream, nil
}

// StartCapture starts the countdown in the background and returns immediately.
// Progress is reported through events and View.
func (s *Session) StartCapture(ctx context.Context) error {
	runCtx, gen, stream, err := s.prepareCapture(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.endOp()
		if err := s.runCapture(runCtx, gen, stream); err != nil && !errors.Is(err, ErrInterrupted) {
			log.Printf("booth %s: capture: %v", s.id, err)
		}
	}()
	return nil
}

// Capture runs the countdown in the caller's goroutine and returns once the
// session reached Complete or the capture failed. Cancelling ctx aborts it.
func (s *Session) Capture(ctx context.Context) error {
	runCtx, gen, stream, err := s.prepareCapture(ctx)
	if err != nil {
		return err
	}
	defer s.endOp()
	return s.runCapture(runCtx, gen, stream)
}

func (s *Session) runCapture(ctx context.Context, gen uint64, stream camera.Stream) error {
	defer s.update(gen, func() {
		s.capturing = false
		s.countdown = 0
	})

	for remaining := s.opts.CountdownTicks; remaining > 0; remaining-- {
		ok := s.update(gen, func() {
			s.countdown = remaining
			s.SendEvent(Event{Type: EventCountdown, Data: remaining})
		})
		if !ok || !sleepCtx(ctx, s.opts.TickInterval) {
			return ErrInterrupted
		}
	}

	frame, err := stream.Snapshot(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		s.update(gen, func() {
			s.cameraStatus = CameraFailed
			s.setNotice(&Notice{Kind: NoticeDeviceInit, Message: "The photo could not be taken. Restart the camera and try again."})
			s.SendEvent(Event{Type: EventCamera, Data: s.cameraStatus})
		})
		return fmt.Errorf("snapshot: %w", err)
	}

	var detection *faceanalysis.Detection
	if s.deps.Analyzer != nil {
		detection, err = s.deps.Analyzer.Analyze(ctx, frame)
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if err != nil {
			s.update(gen, func() {
				s.setNotice(&Notice{Kind: NoticeTransport, Message: "The photo could not be analysed. Please try again."})
			})
			return fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
		}
		if detection == nil {
			s.update(gen, func() {
				s.setNotice(&Notice{Kind: NoticeNoFace, Message: "No face was detected. Please face the camera and try again."})
			})
			return ErrNoFaceDetected
		}
	}

	ok := s.update(gen, func() {
		s.still = frame
		s.detection = detection
		s.published = false
		s.capturing = false
		s.countdown = 0
		s.releaseStream()
		s.state = StateProcessing
		s.emitState()
	})
	if !ok {
		return ErrInterrupted
	}

	if !sleepCtx(ctx, s.opts.ProcessingDelay) {
		return ErrInterrupted
	}

	if !s.update(gen, func() {
		s.state = StateComplete
		s.emitState()
	}) {
		return ErrInterrupted
	}
	return nil
}

// sleepCtx waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
