// Package manage contains the question management operations behind the admin pages.
// Questions are addressed by their 0-based position in store order.
package manage

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/quiz"
)

// ErrNoSelection is returned when an index does not address a stored question.
var ErrNoSelection = errors.New("no question selected")

// Service lists, creates, deletes and edits stored questions.
type Service struct {
	store  quiz.Store
	logger *logging.Logger
}

// NewService initializes and returns a new Service.
func NewService(store quiz.Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns all questions in store order.
func (s *Service) List(ctx context.Context) ([]quiz.Question, error) {
	qs, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	return qs, nil
}

// Count returns the number of stored questions.
func (s *Service) Count(ctx context.Context) (int, error) {
	qs, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	return len(qs), nil
}

// Create appends q to the end of the store.
func (s *Service) Create(ctx context.Context, q quiz.Question) error {
	if err := s.store.Append(ctx, q); err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	s.logger.Info(ctx, "question saved", logging.String("question", q.Question))

	return nil
}

// Get returns the question at index.
func (s *Service) Get(ctx context.Context, index int) (quiz.Question, error) {
	qs, err := s.List(ctx)
	if err != nil {
		return quiz.Question{}, err
	}
	if index < 0 || index >= len(qs) {
		return quiz.Question{}, fmt.Errorf("%w: index %d", ErrNoSelection, index)
	}

	return qs[index], nil
}

// Delete removes the question at index. The other questions keep their order.
func (s *Service) Delete(ctx context.Context, index int) error {
	removed, err := s.remove(ctx, index)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "question deleted", logging.Int("index", index), logging.String("question", removed.Question))

	return nil
}

// Edit removes the question at index and returns it for editing.
// The question is stored again only when it is resubmitted through Create, at the end of the order.
func (s *Service) Edit(ctx context.Context, index int) (quiz.Question, error) {
	removed, err := s.remove(ctx, index)
	if err != nil {
		return quiz.Question{}, err
	}
	s.logger.Info(ctx, "question extracted for editing", logging.Int("index", index), logging.String("question", removed.Question))

	return removed, nil
}

func (s *Service) remove(ctx context.Context, index int) (quiz.Question, error) {
	qs, err := s.List(ctx)
	if err != nil {
		return quiz.Question{}, err
	}
	if index < 0 || index >= len(qs) {
		return quiz.Question{}, fmt.Errorf("%w: index %d", ErrNoSelection, index)
	}

	removed := qs[index]
	if err = s.store.Overwrite(ctx, slices.Delete(slices.Clone(qs), index, index+1)); err != nil {
		return quiz.Question{}, fmt.Errorf("failed to remove question: %w", err)
	}

	return removed, nil
}
