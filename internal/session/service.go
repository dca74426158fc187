package session

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/quiz"
)

const defaultTTL = 2 * time.Hour

// Service starts and tracks answering sessions.
type Service struct {
	store  quiz.Store
	logger *logging.Logger

	ttl     time.Duration
	now     func() time.Time
	newRand func() *rand.Rand

	mu       sync.Mutex
	sessions map[string]*Session
	lastSeen map[string]time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the random source factory used for new sessions.
func WithRand(fn func() *rand.Rand) Option {
	return func(s *Service) {
		s.newRand = fn
	}
}

// WithTTL sets how long an idle session is kept before it is dropped.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithClock sets the clock used to expire sessions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService initializes and returns a new Service reading questions from store.
func NewService(store quiz.Store, logger *logging.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		logger:   logger,
		ttl:      defaultTTL,
		now:      time.Now,
		newRand:  func() *rand.Rand { return nil },
		sessions: make(map[string]*Session),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads a fresh snapshot of the questions and starts a session over it.
// Starting a session over an empty store is allowed; its first Next returns ErrNoMoreQuestions.
func (s *Service) Start(ctx context.Context) (*Session, error) {
	questions, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	sess := New(xid.New().String(), questions, s.newRand())
	sess.CreatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(ctx)
	s.sessions[sess.ID] = sess
	s.lastSeen[sess.ID] = sess.CreatedAt

	s.logger.Info(ctx, "session started", logging.String("session", sess.ID), logging.Int("questions", len(questions)))

	return sess, nil
}

// Get returns the session with the given ID and marks it as active.
// Returns ErrSessionNotFound if the session does not exist or has been idle for longer than the TTL.
func (s *Service) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(id) {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	s.lastSeen[id] = s.now()

	return sess, nil
}

// End removes the session with the given ID.
// Returns ErrSessionNotFound if the session does not exist.
func (s *Service) End(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	delete(s.lastSeen, id)

	score := sess.Score()
	s.logger.Info(
		ctx, "session ended",
		logging.String("session", id),
		logging.Int("answered", score.Answered),
		logging.Int("correct", score.Correct),
	)

	return nil
}

func (s *Service) expired(id string) bool {
	return s.now().Sub(s.lastSeen[id]) > s.ttl
}

func (s *Service) expireLocked(ctx context.Context) {
	for id := range s.sessions {
		if s.expired(id) {
			delete(s.sessions, id)
			delete(s.lastSeen, id)
			s.logger.Debug(ctx, "session expired", logging.String("session", id))
		}
	}
}
