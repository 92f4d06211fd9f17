package orchestrator

import (
	"math/rand/v2"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/aristath/agentboard/internal/events"
)

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock. Tests pass a clockwork.FakeClock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventBus publishes session events on a caller-owned bus. Without it the
// session creates and closes its own.
func WithEventBus(b *events.EventBus) Option {
	return func(s *Session) {
		if b != nil {
			s.bus = b
			s.ownsBus = false
		}
	}
}

// WithMetrics records session activity on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithRand supplies the random source used for jitter and, when the
// randomized policy is enabled, for selection and agent draws.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}
