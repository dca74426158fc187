package store

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/starquake/quizgen/internal/logging"
	"github.com/starquake/quizgen/internal/quiz"
)

const (
	filePerm = 0o644

	// maxLineSize caps the length of a single record line.
	maxLineSize = 1 << 20
)

// FileStore stores questions in a newline-delimited JSON file, one question per line.
//
// FileStore serializes its own calls, but it does not lock the file. Only one process may mutate the file at a
// time.
type FileStore struct {
	path          string
	logger        *logging.Logger
	skipMalformed bool

	mu sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithSkipMalformed makes Load log and skip lines that cannot be parsed instead of failing.
func WithSkipMalformed(skip bool) FileOption {
	return func(s *FileStore) {
		s.skipMalformed = skip
	}
}

// NewFileStore creates a FileStore backed by the file at path. The file is created on the first write.
func NewFileStore(path string, logger *logging.Logger, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the path of the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Ping checks that the directory holding the backing file exists.
func (s *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(s.path)
	fi, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error checking quiz directory: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("error checking quiz directory: %s is not a directory", dir)
	}

	return nil
}

// Load reads all questions in file order. A missing or empty file yields no questions. Blank lines are ignored.
// The first line that cannot be parsed fails the whole load with a *quiz.MalformedRecordError, unless the store
// was created with WithSkipMalformed.
func (s *FileStore) Load(ctx context.Context) ([]quiz.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []quiz.Question{}, nil
		}

		return nil, fmt.Errorf("error opening quiz file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Error(ctx, "error closing quiz file", logging.ErrAttr(closeErr))
		}
	}()

	questions := []quiz.Question{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		q, decodeErr := quiz.Decode(line)
		if decodeErr != nil {
			malformed := &quiz.MalformedRecordError{Line: lineNo, Err: decodeErr}
			if !s.skipMalformed {
				return nil, malformed
			}
			s.logger.Warn(
				ctx,
				"skipping malformed question record",
				logging.String("path", s.path),
				logging.Int("line", lineNo),
				logging.ErrAttr(decodeErr),
			)

			continue
		}
		questions = append(questions, q)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading quiz file: %w", err)
	}

	return questions, nil
}

// Append validates q and adds it to the end of the file.
// Nothing is written if q is invalid.
func (s *FileStore) Append(ctx context.Context, q quiz.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	line, err := quiz.Encode(q)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("error opening quiz file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			s.logger.Error(ctx, "error closing quiz file", logging.ErrAttr(closeErr))
		}
	}()

	needsNewline, err := missingTrailingNewline(f)
	if err != nil {
		return err
	}

	buf := make([]byte, 0, len(line)+2)
	if needsNewline {
		buf = append(buf, '\n')
	}
	buf = append(buf, line...)
	buf = append(buf, '\n')

	if _, err = f.Write(buf); err != nil {
		return fmt.Errorf("error appending question: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("error syncing quiz file: %w", err)
	}

	s.logger.Debug(ctx, "question appended", logging.String("path", s.path))

	return nil
}

// Overwrite replaces the file contents with exactly qs, in order.
// All questions are validated first; nothing is written if any of them is invalid.
// The new contents are written to a temporary file that is then renamed over the backing file.
func (s *FileStore) Overwrite(ctx context.Context, qs []quiz.Question) error {
	if err := validateAll(qs); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, q := range qs {
		line, encodeErr := quiz.Encode(q)
		if encodeErr != nil {
			return encodeErr
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary quiz file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if committed {
			return
		}
		if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			s.logger.Error(ctx, "error removing temporary quiz file", logging.ErrAttr(removeErr))
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("error writing temporary quiz file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("error syncing temporary quiz file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary quiz file: %w", err)
	}
	if err = os.Chmod(tmpPath, filePerm); err != nil {
		return fmt.Errorf("error setting quiz file permissions: %w", err)
	}
	if err = os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("error replacing quiz file: %w", err)
	}
	committed = true

	s.logger.Debug(ctx, "questions overwritten", logging.String("path", s.path), logging.Int("count", len(qs)))

	return nil
}

// missingTrailingNewline reports whether f is non-empty and does not end in a newline.
func missingTrailingNewline(f *os.File) (bool, error) {
	fi, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("error reading quiz file info: %w", err)
	}
	if fi.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err = f.ReadAt(last, fi.Size()-1); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("error reading quiz file: %w", err)
	}

	return last[0] != '\n', nil
}
