package services

import (
	"sync"
	"time"

	"github.com/tasklight/core/internal/domain/entities"
	"github.com/tasklight/core/internal/infrastructure/logger"
)

// NotificationService holds the single active transient notification and
// expires it automatically. Each publish cancels the previous expiry before
// scheduling its own, and a generation counter guards against a stale timer
// that already fired clearing a newer message.
type NotificationService struct {
	mu      sync.Mutex
	ttl     time.Duration
	logger  *logger.Logger
	current *entities.Notification
	timer   *time.Timer
	gen     uint64
}

// NewNotificationService creates a new notification service with the given
// time to live per message.
func NewNotificationService(ttl time.Duration, logger *logger.Logger) *NotificationService {
	return &NotificationService{
		ttl:    ttl,
		logger: logger,
	}
}

// Publish overwrites the current notification unconditionally and resets the
// expiry clock. Queued display is deliberately not supported; the newest
// mutation wins.
func (s *NotificationService) Publish(message string, kind entities.NotificationKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.current = &entities.Notification{Message: message, Kind: kind}
	s.timer = time.AfterFunc(s.ttl, func() {
		s.expire(gen)
	})

	s.logger.Debugw("Notification published", "kind", kind, "message", message)
}

// Clear dismisses the notification before its timer fires.
func (s *NotificationService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.current = nil
}

// Current returns a copy of the active notification, or nil when none is
// active.
func (s *NotificationService) Current() *entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *NotificationService) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer publish or an explicit clear supersedes this timer.
	if gen != s.gen {
		return
	}
	s.current = nil
	s.timer = nil
}
