// Package quiz defines multiple-choice quiz questions, their validation and their line encoding,
// and the Store interface used to persist them.
package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid question")
	// ErrMalformedRecord is matched by every *MalformedRecordError and by Decode failures.
	ErrMalformedRecord = errors.New("malformed question record")
	// ErrInvalidKey is returned when a choice key is not one of a, b, c or d.
	ErrInvalidKey = errors.New("invalid choice key")
)

// Key identifies one of the four choices of a question.
type Key string

// The choice keys, in display order.
const (
	KeyA Key = "a"
	KeyB Key = "b"
	KeyC Key = "c"
	KeyD Key = "d"
)

// Keys lists the valid choice keys in display order.
//
//nolint:gochecknoglobals // Fixed set of keys.
var Keys = [...]Key{KeyA, KeyB, KeyC, KeyD}

// Valid reports whether k is one of the four choice keys.
func (k Key) Valid() bool {
	return slices.Contains(Keys[:], k)
}

// Label returns the upper-case letter shown to users, like "B".
func (k Key) Label() string {
	return strings.ToUpper(string(k))
}

// ParseKey parses a choice key. Surrounding whitespace and upper case are accepted.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}

	return k, nil
}

// Choices holds the option text for each of the four keys.
type Choices struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Text returns the option text for k, or "" if k is not a valid key.
func (c Choices) Text(k Key) string {
	switch k {
	case KeyA:
		return c.A
	case KeyB:
		return c.B
	case KeyC:
		return c.C
	case KeyD:
		return c.D
	default:
		return ""
	}
}

// Set returns a copy of c with the option text for k replaced.
func (c Choices) Set(k Key, text string) Choices {
	switch k {
	case KeyA:
		c.A = text
	case KeyB:
		c.B = text
	case KeyC:
		c.C = text
	case KeyD:
		c.D = text
	}

	return c
}

// Question is a multiple-choice question with four lettered options and the key of the correct one.
type Question struct {
	Question string  `json:"question"`
	Choices  Choices `json:"choices"`
	Answer   Key     `json:"answer"`
}

// Normalize returns a copy of q with whitespace trimmed from all text and the answer key lower-cased.
func (q Question) Normalize() Question {
	q.Question = strings.TrimSpace(q.Question)
	for _, k := range Keys {
		q.Choices = q.Choices.Set(k, strings.TrimSpace(q.Choices.Text(k)))
	}
	q.Answer = Key(strings.ToLower(strings.TrimSpace(string(q.Answer))))

	return q
}

// AnswerText returns the text of the correct choice.
func (q Question) AnswerText() string {
	return q.Choices.Text(q.Answer)
}

// Valid checks if the question is valid. It returns the problems found, keyed by field name.
func (q Question) Valid(_ context.Context) map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(q.Question) == "" {
		problems["question"] = "Question is required"
	}
	for _, k := range Keys {
		if strings.TrimSpace(q.Choices.Text(k)) == "" {
			problems["choice_"+string(k)] = fmt.Sprintf("Choice %s is required", k.Label())
		}
	}
	switch {
	case q.Answer == "":
		problems["answer"] = "Select the correct answer"
	case !q.Answer.Valid():
		problems["answer"] = fmt.Sprintf("Answer %q is not one of a, b, c or d", string(q.Answer))
	}

	return problems
}

// Validate returns a *ValidationError if q is not valid.
func (q Question) Validate() error {
	problems := q.Valid(context.Background())
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	return nil
}

// ValidationError is returned when a question cannot be persisted because a field is empty or the answer key is
// not recognized.
type ValidationError struct {
	Problems map[string]string
}

func (e *ValidationError) Error() string {
	fields := slices.Sorted(maps.Keys(e.Problems))
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e.Problems[f])
	}

	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrValidation) true.
func (*ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// MalformedRecordError is returned when a stored line cannot be parsed into a Question.
type MalformedRecordError struct {
	// Line is the 1-based line number in the backing file. Zero when unknown.
	Line int
	Err  error
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}

	return e.Err.Error()
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedRecord) true.
func (*MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Encode encodes q as a single line of JSON without the trailing newline. Text is written as raw UTF-8.
func Encode(q Question) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(q); err != nil {
		return nil, fmt.Errorf("error encoding question: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// record mirrors Question with pointers so missing fields can be told apart from empty ones.
type record struct {
	Question *string `json:"question"`
	Choices  *struct {
		A *string `json:"a"`
		B *string `json:"b"`
		C *string `json:"c"`
		D *string `json:"d"`
	} `json:"choices"`
	Answer *string `json:"answer"`
}

// Decode parses a single encoded question. Unknown or missing fields, trailing data and records that fail
// validation are reported as ErrMalformedRecord.
func Decode(line []byte) (Question, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()

	var r record
	if err := dec.Decode(&r); err != nil {
		return Question{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Question{}, fmt.Errorf("%w: trailing data after record", ErrMalformedRecord)
	}

	var missing []string
	if r.Question == nil {
		missing = append(missing, "question")
	}
	if r.Answer == nil {
		missing = append(missing, "answer")
	}
	if r.Choices == nil {
		missing = append(missing, "choices")
	} else {
		for k, v := range map[Key]*string{KeyA: r.Choices.A, KeyB: r.Choices.B, KeyC: r.Choices.C, KeyD: r.Choices.D} {
			if v == nil {
				missing = append(missing, "choices."+string(k))
			}
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)

		return Question{}, fmt.Errorf("%w: missing %s", ErrMalformedRecord, strings.Join(missing, ", "))
	}

	q := Question{
		Question: *r.Question,
		Choices:  Choices{A: *r.Choices.A, B: *r.Choices.B, C: *r.Choices.C, D: *r.Choices.D},
		Answer:   Key(*r.Answer),
	}
	if err := q.Validate(); err != nil {
		return Question{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}

	return q, nil
}

// Store is the durable, ordered collection of questions.
// It is implemented for a line-delimited JSON file and for SQLite.
type Store interface {
	// Load returns all persisted questions in order. A missing or empty backing resource yields no questions.
	Load(ctx context.Context) ([]Question, error)
	// Append validates q and adds it to the end of the persisted sequence.
	Append(ctx context.Context, q Question) error
	// Overwrite replaces the persisted sequence with exactly qs, in order.
	Overwrite(ctx context.Context, qs []Question) error
	// Ping reports whether the backing resource is reachable.
	Ping(ctx context.Context) error
}
