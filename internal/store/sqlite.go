package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/quiz"
)

// SQLiteStore stores questions in the questions table of a SQLite database.
// The order of the questions is kept in the position column.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewSQLiteStore creates a new SQLiteStore. The database must be migrated.
func NewSQLiteStore(conn *sql.DB, logger *logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: conn, logger: logger}
}

// Ping checks the connection to the database.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Load returns all questions ordered by position.
func (s *SQLiteStore) Load(ctx context.Context) ([]quiz.Question, error) {
	query := `SELECT question, choice_a, choice_b, choice_c, choice_d, answer FROM questions ORDER BY position, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying questions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error(ctx, "error closing question rows", logging.ErrAttr(closeErr))
		}
	}()

	questions := []quiz.Question{}
	for rows.Next() {
		var q quiz.Question
		var answer string
		if err = rows.Scan(&q.Question, &q.Choices.A, &q.Choices.B, &q.Choices.C, &q.Choices.D, &answer); err != nil {
			return nil, fmt.Errorf("error scanning question row: %w", err)
		}
		q.Answer = quiz.Key(answer)
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}

	return questions, nil
}

// Append validates q and inserts it after the last question.
func (s *SQLiteStore) Append(ctx context.Context, q quiz.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO questions (position, question, choice_a, choice_b, choice_c, choice_d, answer)
		VALUES ((SELECT coalesce(max(position), 0) + 1 FROM questions), ?, ?, ?, ?, ?, ?)`

	if err := insertQuestion(ctx, s.db, query, q); err != nil {
		return err
	}

	s.logger.Debug(ctx, "question appended")

	return nil
}

// Overwrite replaces all questions with qs in a single transaction.
func (s *SQLiteStore) Overwrite(ctx context.Context, qs []quiz.Question) error {
	if err := validateAll(qs); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, execErr := tx.ExecContext(ctx, `DELETE FROM questions`); execErr != nil {
			return fmt.Errorf("error deleting questions: %w", execErr)
		}

		query := `INSERT INTO questions (position, question, choice_a, choice_b, choice_c, choice_d, answer)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		for i, q := range qs {
			_, execErr := tx.ExecContext(
				ctx, query,
				i+1, q.Question, q.Choices.A, q.Choices.B, q.Choices.C, q.Choices.D, string(q.Answer),
			)
			if execErr != nil {
				return fmt.Errorf("error inserting question %d: %w", i+1, execErr)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "questions overwritten", logging.Int("count", len(qs)))

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertQuestion(ctx context.Context, e execer, query string, q quiz.Question) error {
	_, err := e.ExecContext(ctx, query, q.Question, q.Choices.A, q.Choices.B, q.Choices.C, q.Choices.D, string(q.Answer))
	if err != nil {
		return fmt.Errorf("error inserting question: %w", err)
	}

	return nil
}

// withTx runs fn in a transaction, rolling back if fn fails.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback error: %w)", err, rbErr)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
