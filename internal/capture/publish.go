package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/database"
)

// Publish uploads the still and attaches its URL, age group and gender to the
// runner record. It does not change the session state.
func (s *Session) Publish(ctx context.Context) (string, error) {
	opCtx, gen, err := s.beginOp(ctx)
	if err != nil {
		return "", err
	}
	defer s.endOp()

	s.mu.RLock()
	state := s.state
	runnerID := s.runnerID
	still := s.still
	detection := s.detection
	s.mu.RUnlock()

	switch {
	case state != StateComplete:
		return "", fmt.Errorf("publish from %s: %w", state, ErrInvalidTransition)
	case len(still) == 0:
		return "", ErrNoStill
	case s.deps.Blobs == nil:
		return "", ErrPublishUnavailable
	}

	name := fmt.Sprintf("%s_%d.jpg", runnerID, time.Now().UnixMilli())
	url, err := s.deps.Blobs.Upload(opCtx, name, still, "image/jpeg")
	if err != nil {
		s.publishFailed(gen)
		return "", fmt.Errorf("%w: upload: %w", ErrPublishFailed, err)
	}

	update := database.CaptureUpdate{PhotoURL: url}
	if detection != nil {
		update.AgeGroup = detection.AgeGroup()
		update.Gender = detection.Gender
	}
	if err := s.deps.Store.UpdateCapture(opCtx, runnerID, update); err != nil {
		s.publishFailed(gen)
		return "", fmt.Errorf("%w: update runner %s: %w", ErrPublishFailed, runnerID, err)
	}

	s.update(gen, func() {
		if s.record != nil {
			s.record.PhotoURL = update.PhotoURL
			if update.AgeGroup != "" {
				s.record.AgeGroup = update.AgeGroup
				s.record.Gender = update.Gender
			}
		}
		s.published = true
		s.notice = nil
		s.emitState()
	})
	return url, nil
}

func (s *Session) publishFailed(gen uint64) {
	s.update(gen, func() {
		s.setNotice(&Notice{Kind: NoticeTransport, Message: "The photo could not be saved. Please try again."})
	})
}
