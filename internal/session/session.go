// Package session contains the answering session logic: questions are drawn at random from a per-session pool
// without replacement, answered, and scored. The persisted store is never modified by a session.
package session

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/starquake/quizgen/internal/quiz"
)

var (
	// ErrNoMoreQuestions is returned when the session pool is exhausted. It marks the normal end of a session.
	ErrNoMoreQuestions = errors.New("no more questions available")
	// ErrNoAnswer is returned when an answer is submitted without a selection.
	ErrNoAnswer = errors.New("please select an answer before submitting")
	// ErrNoCurrentQuestion is returned when an answer is submitted before a question was drawn.
	ErrNoCurrentQuestion = errors.New("no question has been drawn")
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
)

// Draw picks one question uniformly at random from pool. It returns the picked question and a new pool without
// it; the other questions keep their relative order and pool itself is not modified. ok is false when pool is
// empty. A nil rnd uses the global source.
func Draw(pool []quiz.Question, rnd *rand.Rand) (picked quiz.Question, rest []quiz.Question, ok bool) {
	if len(pool) == 0 {
		return quiz.Question{}, []quiz.Question{}, false
	}

	var i int
	if rnd != nil {
		i = rnd.IntN(len(pool))
	} else {
		i = rand.IntN(len(pool)) //nolint:gosec // Quiz order does not need a cryptographic source.
	}

	rest = make([]quiz.Question, 0, len(pool)-1)
	rest = append(rest, pool[:i]...)
	rest = append(rest, pool[i+1:]...)

	return pool[i], rest, true
}

// Score is the running tally of a session.
type Score struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// Result is the outcome of answering a question.
type Result struct {
	Question quiz.Question
	Selected quiz.Key
	Correct  bool
}

// Session is one run through a snapshot of the questions.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	pool    []quiz.Question
	current *quiz.Question
	score   Score
	rnd     *rand.Rand
}

// New creates a session over a copy of questions.
func New(id string, questions []quiz.Question, rnd *rand.Rand) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		pool:      slices.Clone(questions),
		score:     Score{Total: len(questions)},
		rnd:       rnd,
	}
}

// Next returns the question to answer. A question that was drawn but not answered yet is returned again.
// Returns ErrNoMoreQuestions once every question has been answered.
func (s *Session) Next() (quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return *s.current, nil
	}

	q, rest, ok := Draw(s.pool, s.rnd)
	if !ok {
		return quiz.Question{}, ErrNoMoreQuestions
	}
	s.pool = rest
	s.current = &q

	return q, nil
}

// Answer checks selection against the current question and retires it.
// An empty selection returns ErrNoAnswer and keeps the question current. A selection that is not a choice key
// returns quiz.ErrInvalidKey.
func (s *Session) Answer(selection string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Result{}, ErrNoCurrentQuestion
	}
	if strings.TrimSpace(selection) == "" {
		return Result{}, ErrNoAnswer
	}
	key, err := quiz.ParseKey(selection)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Question: *s.current,
		Selected: key,
		Correct:  key == s.current.Answer,
	}
	s.current = nil
	s.score.Answered++
	if res.Correct {
		s.score.Correct++
	}

	return res, nil
}

// Remaining returns the number of questions not answered yet, including the current one.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pool)
	if s.current != nil {
		n++
	}

	return n
}

// Score returns the running tally.
func (s *Session) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.score
}
